package statweights

import (
	"bytes"
	"context"
	"encoding/csv"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const profile = `
character:
  name: Tester
  level: 70
gear:
  - name: Bow
    slot: weapon
    physical_damage: 104
    delay_seconds: 3.04
    stats: {dexterity: 347, critical_hit: 302}
simulation:
  iterations: 2
  combat_seconds: 30
  execute_seconds: 6
  seed: 11
logging:
  level: error
  outputs: [%LOG%]
`

func writeProfile(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	doc := strings.ReplaceAll(profile, "%LOG%", filepath.Join(dir, "sim.log"))
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestParseOptionsDefaults(t *testing.T) {
	fs := flag.NewFlagSet("statweights", flag.ContinueOnError)
	opts, err := ParseOptions(fs, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.Delta != 50 || opts.Stat != "" || opts.Step != 25 {
		t.Fatalf("unexpected defaults %+v", opts)
	}
}

func TestWeights(t *testing.T) {
	var out bytes.Buffer
	opts := Options{Profile: writeProfile(t), Delta: 100, Concurrency: 2, Verbose: true}
	if err := Run(context.Background(), opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	for _, want := range []string{"shared seed 11", "Baseline DPS", "critical_hit", "skill_speed", "Normalized (dexterity = 1.0)"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output is missing %q:\n%s", want, text)
		}
	}
}

func TestSweepWritesCurve(t *testing.T) {
	dir := t.TempDir()
	opts := Options{Profile: writeProfile(t), Delta: 50, Stat: "crit", Stop: 50, Step: 25, OutputDir: dir}
	if err := Run(context.Background(), opts, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	f, err := os.Open(filepath.Join(dir, "critical_hit.csv"))
	if err != nil {
		t.Fatalf("open curve: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read curve: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header and 3 points, got %d rows", len(rows))
	}
	if strings.Join(rows[0], ",") != "critical_hit_bonus,dps,dps_per_point" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "0" || rows[3][0] != "50" || rows[1][2] != "" || rows[2][2] == "" {
		t.Fatalf("unexpected curve %v", rows)
	}
}

func TestRejectsBadDelta(t *testing.T) {
	if err := Run(context.Background(), Options{Profile: writeProfile(t)}, nil); err == nil {
		t.Fatalf("expected zero delta to be rejected")
	}
}
