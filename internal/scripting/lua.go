// Package scripting runs rotations written in Lua. A script defines a global
// decide(state) function returning the actor's priorities.
package scripting

import (
	"fmt"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
	"go.uber.org/zap"

	"stormblood-bard-sim/internal/apl"
	"stormblood-bard-sim/internal/character"
	"stormblood-bard-sim/internal/engine"
)

// APIVersion is exposed to scripts as API_VERSION.
const APIVersion = 1

const entryPoint = "decide"

// Script is a compiled rotation. It is immutable and may be shared by the
// deciders of concurrent runs.
type Script struct {
	name  string
	proto *lua.FunctionProto
}

// Compile parses and compiles Lua source.
func Compile(name, source string) (*Script, error) {
	chunk, err := parse.Parse(strings.NewReader(source), name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return &Script{name: name, proto: proto}, nil
}

// Load compiles the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return Compile(path, string(data))
}

// Decider calls a script's decide function. It owns a Lua VM and must be
// used by one run at a time; Close releases the VM.
type Decider struct {
	script  *Script
	vm      *lua.LState
	decide  lua.LValue
	loadout *engine.Loadout
	log     *zap.Logger

	ctx     apl.EvaluationContext
	unknown map[string]bool
}

// NewDecider starts a VM, runs the script's top level and looks up decide.
// Names passed to the query functions and returned from decide are the
// loadout's keyed names ("straight_shot").
func (s *Script) NewDecider(loadout *engine.Loadout, log *zap.Logger) (*Decider, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(APIVersion))

	d := &Decider{
		script:  s,
		vm:      vm,
		loadout: loadout,
		log:     log.With(zap.String("script", s.name)),
		unknown: make(map[string]bool),
	}
	d.register()

	vm.Push(vm.NewFunctionFromProto(s.proto))
	if err := vm.PCall(0, lua.MultRet, nil); err != nil {
		vm.Close()
		return nil, fmt.Errorf("run %s: %w", s.name, err)
	}
	d.decide = vm.GetGlobal(entryPoint)
	if d.decide.Type() != lua.LTFunction {
		vm.Close()
		return nil, fmt.Errorf("%s: no %s function", s.name, entryPoint)
	}
	return d, nil
}

// Close releases the VM.
func (d *Decider) Close() {
	d.vm.Close()
}

// Decide builds the state table, calls decide(state) and turns the result
// into choices. Script errors are logged and yield no choices.
func (d *Decider) Decide(s *engine.Simulation, actor *character.Actor) []engine.Choice {
	d.ctx = engine.Conditions(s, actor, d.loadout)
	defer func() { d.ctx = nil }()

	if err := d.vm.CallByParam(lua.P{
		Fn:      d.decide,
		NRet:    1,
		Protect: true,
	}, d.state(s, actor)); err != nil {
		d.log.Error("lua decide error", zap.Error(err))
		return nil
	}
	result := d.vm.Get(-1)
	d.vm.Pop(1)
	return d.choices(result)
}

func (d *Decider) state(s *engine.Simulation, actor *character.Actor) *lua.LTable {
	vm := d.vm
	t := vm.NewTable()
	t.RawSetString("now", seconds(s.Now()))
	t.RawSetString("remaining", seconds(s.Remaining()))
	t.RawSetString("in_execute", lua.LBool(s.InExecute()))
	t.RawSetString("level", lua.LNumber(actor.Level))
	t.RawSetString("gcd_ready", lua.LBool(actor.GCDReady(s.Now())))

	resources := vm.NewTable()
	for _, res := range actor.Resources() {
		pool := actor.Resource(res)
		rt := vm.NewTable()
		rt.RawSetString("current", lua.LNumber(pool.Current))
		rt.RawSetString("max", lua.LNumber(pool.Max))
		resources.RawSetString(res.String(), rt)
	}
	t.RawSetString("resources", resources)

	buffs := vm.NewTable()
	for _, name := range d.loadout.BuffKeys() {
		bt := vm.NewTable()
		bt.RawSetString("active", lua.LBool(d.ctx.BuffActive(name)))
		bt.RawSetString("remaining", seconds(d.ctx.BuffRemaining(name)))
		bt.RawSetString("stacks", lua.LNumber(d.ctx.BuffStacks(name)))
		buffs.RawSetString(name, bt)
	}
	t.RawSetString("buffs", buffs)

	debuffs := vm.NewTable()
	for _, name := range d.loadout.DebuffKeys() {
		dt := vm.NewTable()
		dt.RawSetString("active", lua.LBool(d.ctx.DebuffActive(name)))
		dt.RawSetString("remaining", seconds(d.ctx.DebuffRemaining(name)))
		debuffs.RawSetString(name, dt)
	}
	t.RawSetString("debuffs", debuffs)
	return t
}

// choices accepts a list whose entries are action names, {action = name}
// tables or {wait = seconds} tables. A bare number means wait.
func (d *Decider) choices(v lua.LValue) []engine.Choice {
	switch v := v.(type) {
	case lua.LNumber:
		return []engine.Choice{{Wait: duration(v)}}
	case lua.LString:
		if c, ok := d.use(string(v)); ok {
			return []engine.Choice{c}
		}
		return nil
	case *lua.LTable:
		var out []engine.Choice
		v.ForEach(func(_, entry lua.LValue) {
			switch e := entry.(type) {
			case lua.LString:
				if c, ok := d.use(string(e)); ok {
					out = append(out, c)
				}
			case *lua.LTable:
				if wait, ok := e.RawGetString("wait").(lua.LNumber); ok {
					out = append(out, engine.Choice{Wait: duration(wait)})
					return
				}
				if name, ok := e.RawGetString("action").(lua.LString); ok {
					if c, ok := d.use(string(name)); ok {
						out = append(out, c)
					}
				}
			}
		})
		return out
	}
	return nil
}

func (d *Decider) use(name string) (engine.Choice, bool) {
	a, ok := d.loadout.Action(name)
	if !ok {
		if !d.unknown[name] {
			d.unknown[name] = true
			d.log.Warn("script chose unknown action", zap.String("action", name))
		}
		return engine.Choice{}, false
	}
	return engine.Use(a), true
}

// register exposes the condition queries as global functions.
func (d *Decider) register() {
	query := func(fn func(apl.EvaluationContext, string) lua.LValue) *lua.LFunction {
		return d.vm.NewFunction(func(L *lua.LState) int {
			name := engine.Key(L.CheckString(1))
			if d.ctx == nil {
				L.RaiseError("called outside decide")
				return 0
			}
			L.Push(fn(d.ctx, name))
			return 1
		})
	}
	funcs := map[string]func(apl.EvaluationContext, string) lua.LValue{
		"buff_active":        func(c apl.EvaluationContext, n string) lua.LValue { return lua.LBool(c.BuffActive(n)) },
		"buff_remaining":     func(c apl.EvaluationContext, n string) lua.LValue { return seconds(c.BuffRemaining(n)) },
		"buff_stacks":        func(c apl.EvaluationContext, n string) lua.LValue { return lua.LNumber(c.BuffStacks(n)) },
		"debuff_active":      func(c apl.EvaluationContext, n string) lua.LValue { return lua.LBool(c.DebuffActive(n)) },
		"debuff_remaining":   func(c apl.EvaluationContext, n string) lua.LValue { return seconds(c.DebuffRemaining(n)) },
		"cooldown_ready":     func(c apl.EvaluationContext, n string) lua.LValue { return lua.LBool(c.CooldownReady(n)) },
		"cooldown_remaining": func(c apl.EvaluationContext, n string) lua.LValue { return seconds(c.CooldownRemaining(n)) },
		"resource_percent":   func(c apl.EvaluationContext, n string) lua.LValue { return lua.LNumber(c.ResourcePercent(n) * 100) },
	}
	for name, fn := range funcs {
		d.vm.SetGlobal(name, query(fn))
	}
}

func seconds(v time.Duration) lua.LNumber {
	return lua.LNumber(v.Seconds())
}

func duration(v lua.LNumber) time.Duration {
	return time.Duration(float64(v) * float64(time.Second)).Round(time.Millisecond)
}
