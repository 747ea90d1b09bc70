package simulate

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stormblood-bard-sim/internal/store"
)

const profile = `
character:
  name: Tester
  job: bard
  race: highlander
  level: 70
  target: {name: Striking Dummy, level: 70}
gear:
  - name: Bow
    slot: weapon
    physical_damage: 104
    delay_seconds: 3.04
    stats: {dexterity: 347, critical_hit: 302}
rotation:
  source: %SOURCE%
  file: %FILE%
simulation:
  iterations: 3
  combat_seconds: 40
  execute_seconds: 8
  seed: 7
  workers: 2
logging:
  level: error
  outputs: [%LOG%]
output:
  damage_csv: %DIR%/out/damage.csv
  aura_csv: %DIR%/out/auras.csv
  results_dsn: %DIR%/results.db
`

func writeProfile(t *testing.T, source, file string) (path, dir string) {
	t.Helper()
	dir = t.TempDir()
	doc := strings.NewReplacer(
		"%SOURCE%", source,
		"%FILE%", file,
		"%LOG%", filepath.Join(dir, "sim.log"),
		"%DIR%", dir,
	).Replace(profile)
	path = filepath.Join(dir, "profile.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path, dir
}

func TestParseOptionsDefaults(t *testing.T) {
	fs := flag.NewFlagSet("simulator", flag.ContinueOnError)
	opts, err := ParseOptions(fs, []string{"-iterations", "50"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.Profile != "configs/profile.yaml" {
		t.Fatalf("expected default profile, got %q", opts.Profile)
	}
	if opts.Iterations != 50 || opts.Seed != 0 {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestRunShippedRotations(t *testing.T) {
	rotations, err := filepath.Abs(filepath.Join("..", "..", "..", "configs", "rotations"))
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	tests := []struct {
		source string
		file   string
	}{
		{"builtin", `""`},
		{"apl", filepath.Join(rotations, "bard.yaml")},
		{"lua", filepath.Join(rotations, "bard.lua")},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			path, dir := writeProfile(t, tt.source, tt.file)
			var out bytes.Buffer
			if err := Run(context.Background(), Options{Profile: path, NoEnv: true, Label: tt.source}, &out); err != nil {
				t.Fatalf("run: %v", err)
			}
			text := out.String()
			for _, want := range []string{"Iterations: 3", "Tester DPS", "Heavy Shot", "Straight Shot"} {
				if !strings.Contains(text, want) {
					t.Fatalf("report is missing %q:\n%s", want, text)
				}
			}

			for _, name := range []string{"damage.csv", "auras.csv"} {
				info, err := os.Stat(filepath.Join(dir, "out", name))
				if err != nil || info.Size() == 0 {
					t.Fatalf("expected %s to be written: %v", name, err)
				}
			}

			st, err := store.Open(context.Background(), filepath.Join(dir, "results.db"))
			if err != nil {
				t.Fatalf("open store: %v", err)
			}
			defer st.Close()
			batches, err := st.Batches(context.Background())
			if err != nil {
				t.Fatalf("batches: %v", err)
			}
			if len(batches) != 1 || batches[0].Label != tt.source || batches[0].Seed != 7 || batches[0].Iterations != 3 {
				t.Fatalf("unexpected stored batches %+v", batches)
			}
		})
	}
}

func TestRunRejectsBadProfile(t *testing.T) {
	path, _ := writeProfile(t, "lua", `""`)
	if err := Run(context.Background(), Options{Profile: path, NoEnv: true}, nil); err == nil {
		t.Fatalf("expected a lua rotation without a file to be rejected")
	}
}
