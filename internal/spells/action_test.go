package spells

import (
	"errors"
	"testing"
	"time"

	"stormblood-bard-sim/internal/character"
	"stormblood-bard-sim/internal/stats"
	"stormblood-bard-sim/internal/timeline"
)

type testEnv struct {
	*timeline.Queue[int]
	execute bool
}

func (e *testEnv) InExecute() bool { return e.execute }

func (e *testEnv) advanceTo(at time.Duration) {
	e.Schedule(e.Add(0), at-e.Now())
	e.Pop()
}

func newEnv() *testEnv {
	return &testEnv{Queue: timeline.New[int]()}
}

func newActor(t *testing.T) *character.Actor {
	t.Helper()
	a := character.New(1, "bard", stats.Bard, stats.Highlander, 70, nil)
	if err := a.Arise(); err != nil {
		t.Fatalf("arise: %v", err)
	}
	return a
}

func reasonOf(t *testing.T, err error) Reason {
	t.Helper()
	var illegal *IllegalActionError
	if !errors.As(err, &illegal) {
		t.Fatalf("expected IllegalActionError, got %v", err)
	}
	return illegal.Reason
}

func TestCheckReasons(t *testing.T) {
	env := newEnv()
	src := newActor(t)
	gcd := &Action{Name: "Heavy Shot", Potency: 150, Animation: DefaultAnimation}
	ogcd := &Action{Name: "Bloodletter", Potency: 130, Animation: DefaultAnimation, OffGCD: true, BaseRecast: 15 * time.Second}

	if err := gcd.Check(src, env); err != nil {
		t.Fatalf("expected fresh actor to act, got %v", err)
	}

	src.AnimationLock.Reset(0, DefaultAnimation)
	src.GCDLock.Reset(0, DefaultGCD)
	if r := reasonOf(t, ogcd.Check(src, env)); r != ReasonAnimationLocked {
		t.Fatalf("expected animation lock, got %v", r)
	}

	env.advanceTo(time.Second)
	if r := reasonOf(t, gcd.Check(src, env)); r != ReasonGCDLocked {
		t.Fatalf("expected gcd lock, got %v", r)
	}
	if err := ogcd.Check(src, env); err != nil {
		t.Fatalf("expected off-GCD action to weave, got %v", err)
	}

	ogcd.StartRecast(env.Now() + ogcd.BaseRecast)
	if r := reasonOf(t, ogcd.Check(src, env)); r != ReasonOnCooldown {
		t.Fatalf("expected cooldown, got %v", r)
	}
}

func TestCheckResourceAndUsable(t *testing.T) {
	env := newEnv()
	src := newActor(t)
	src.SetPool(stats.TP, 40, 1000)
	costly := &Action{Name: "Costly", Cost: &Cost{Resource: stats.TP, Amount: 50}}
	if r := reasonOf(t, costly.Check(src, env)); r != ReasonInsufficientResource {
		t.Fatalf("expected insufficient resource, got %v", r)
	}

	execute := &Action{Name: "Misery's End", Usable: func(_ *character.Actor, e Env) bool { return e.InExecute() }}
	if r := reasonOf(t, execute.Check(src, env)); r != ReasonNotUsable {
		t.Fatalf("expected not usable, got %v", r)
	}
	env.execute = true
	if err := execute.Check(src, env); err != nil {
		t.Fatalf("expected usable in execute, got %v", err)
	}
}

func TestSharedCooldown(t *testing.T) {
	env := newEnv()
	src := newActor(t)
	bloodletter := &Action{Name: "Bloodletter", OffGCD: true, BaseRecast: 15 * time.Second}
	rainOfDeath := &Action{Name: "Rain of Death", OffGCD: true, BaseRecast: 15 * time.Second}
	bloodletter.SharesCooldownWith = []*Action{rainOfDeath}
	rainOfDeath.SharesCooldownWith = []*Action{bloodletter}

	bloodletter.StartRecast(15 * time.Second)
	if r := reasonOf(t, rainOfDeath.Check(src, env)); r != ReasonOnCooldown {
		t.Fatalf("expected shared cooldown, got %v", r)
	}
	if rainOfDeath.CanRecastAt() != 15*time.Second {
		t.Fatalf("expected shared ready time, got %v", rainOfDeath.CanRecastAt())
	}
	rainOfDeath.Reset()
	if rainOfDeath.OnCooldown(0) {
		t.Fatalf("expected reset to clear cooldown")
	}
}

func TestExecuteTime(t *testing.T) {
	env := newEnv()
	src := newActor(t)
	instant := &Action{Name: "Instant", Animation: DefaultAnimation}
	if got := instant.ExecuteTime(src, env); got != DefaultAnimation {
		t.Fatalf("expected animation to dominate, got %v", got)
	}
	cast := &Action{Name: "Cast", Animation: DefaultAnimation, BaseCast: 2 * time.Second}
	if got := cast.ExecuteTime(src, env); got != 2*time.Second {
		t.Fatalf("expected cast time to dominate, got %v", got)
	}

	hasted := &Action{Name: "Hasted", HastedBy: stats.SkillSpeed}
	src.SetStat(stats.SkillSpeed, 364+1000)
	if got := hasted.GCD(src, env); got != 2350*time.Millisecond {
		t.Fatalf("expected hasted gcd 2.35s, got %v", got)
	}
	if got := (&Action{Name: "Plain"}).GCD(src, env); got != DefaultGCD {
		t.Fatalf("expected unhasted gcd, got %v", got)
	}
}
