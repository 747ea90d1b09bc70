package apl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type catalog struct{}

func (catalog) HasAction(n string) bool { return n == "heavy_shot" || n == "straight_shot" || n == "miserys_end" }
func (catalog) HasBuff(n string) bool { return n == "straight_shot" || n == "barrage" }
func (catalog) HasDebuff(n string) bool { return n == "windbite" }
func (catalog) HasResource(n string) bool { return n == "tp" || n == "mp" }

type fakeContext struct {
	buffs     map[string]time.Duration
	stacks    map[string]int
	debuffs   map[string]time.Duration
	resources map[string]float64
	cooldowns map[string]time.Duration
	execute   bool
	remaining time.Duration
}

func (f fakeContext) BuffActive(n string) bool { return f.buffs[n] > 0 }
func (f fakeContext) BuffRemaining(n string) time.Duration { return f.buffs[n] }
func (f fakeContext) BuffStacks(n string) int { return f.stacks[n] }
func (f fakeContext) DebuffActive(n string) bool { return f.debuffs[n] > 0 }
func (f fakeContext) DebuffRemaining(n string) time.Duration { return f.debuffs[n] }
func (f fakeContext) ResourcePercent(n string) float64 { return f.resources[n] }
func (f fakeContext) CooldownReady(n string) bool { return f.cooldowns[n] == 0 }
func (f fakeContext) CooldownRemaining(n string) time.Duration { return f.cooldowns[n] }
func (f fakeContext) InExecute() bool { return f.execute }
func (f fakeContext) CombatRemaining() time.Duration { return f.remaining }

const rotationYAML = `
name: test
variables:
  refresh_at: 3
rotation:
  - action: use
    ability: Misery's End
    when:
      in_execute: true
  - action: use
    ability: straight_shot
    when:
      not:
        buff_active:
          buff: straight_shot
          min_remaining: 2
  - action: group
    steps:
      - action: use
        ability: heavy_shot
        when:
          debuff_remaining:
            debuff: windbite
            lt_seconds: ${refresh_at}
  - action: wait
    duration_seconds: 0.5
`

func compileString(t *testing.T, doc string) *CompiledRotation {
	t.Helper()
	file, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rot, err := Compile(file, catalog{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return rot
}

func TestCompileRotation(t *testing.T) {
	rot := compileString(t, rotationYAML)
	if len(rot.Actions) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(rot.Actions))
	}
	if rot.Actions[0].Ability != "miserys_end" {
		t.Fatalf("expected normalised ability name, got %q", rot.Actions[0].Ability)
	}
	if rot.Actions[2].Type != ActionGroup || len(rot.Actions[2].Steps) != 1 {
		t.Fatalf("expected a group with one step, got %+v", rot.Actions[2])
	}
	if rot.Actions[3].Duration != 500*time.Millisecond {
		t.Fatalf("expected 500ms wait, got %v", rot.Actions[3].Duration)
	}
}

func TestConditionsEvaluate(t *testing.T) {
	rot := compileString(t, rotationYAML)
	ctx := fakeContext{
		buffs:   map[string]time.Duration{"straight_shot": time.Second},
		debuffs: map[string]time.Duration{"windbite": 2 * time.Second},
	}
	if rot.Actions[0].Condition.Eval(ctx) {
		t.Fatalf("execute-only entry should not match outside execute")
	}
	ctx.execute = true
	if !rot.Actions[0].Condition.Eval(ctx) {
		t.Fatalf("execute-only entry should match in execute")
	}
	// one second left is below min_remaining, so the negation holds
	if !rot.Actions[1].Condition.Eval(ctx) {
		t.Fatalf("expected straight shot refresh condition to hold")
	}
	if !rot.Actions[2].Steps[0].Condition.Eval(ctx) {
		t.Fatalf("expected windbite refresh condition to hold at 2s")
	}
	ctx.debuffs["windbite"] = 10 * time.Second
	if rot.Actions[2].Steps[0].Condition.Eval(ctx) {
		t.Fatalf("windbite condition should fail with 10s left")
	}
}

func TestCompileRejectsUnknownNames(t *testing.T) {
	cases := map[string]string{
		"ability":  "rotation:\n  - action: use\n    ability: fire_iv\n",
		"buff":     "rotation:\n  - action: use\n    ability: heavy_shot\n    when:\n      buff_active:\n        buff: enochian\n",
		"resource": "rotation:\n  - action: use\n    ability: heavy_shot\n    when:\n      resource_percent:\n        resource: soul\n        lt: 0.5\n",
		"variable": "rotation:\n  - action: use\n    ability: heavy_shot\n    when:\n      stacks:\n        buff: barrage\n        gte: ${missing}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			file, err := Parse([]byte(doc))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if _, err := Compile(file, catalog{}); err == nil {
				t.Fatalf("expected compile error")
			}
		})
	}
}

func TestLoadResolvesImports(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("base.yaml", "rotation:\n  - action: use\n    ability: straight_shot\n")
	write("main.yaml", "imports: [base.yaml]\nrotation:\n  - action: use\n    ability: heavy_shot\n")
	write("loop.yaml", "imports: [loop.yaml]\n")

	rot, err := Load(dir, "main.yaml", catalog{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rot.Actions) != 2 || rot.Actions[0].Ability != "straight_shot" {
		t.Fatalf("expected imported entry first, got %+v", rot.Actions)
	}
	if _, err := Load(dir, "loop.yaml", nil); err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected import cycle error, got %v", err)
	}
}
