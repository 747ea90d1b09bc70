package apl

import (
	"cmp"
	"time"
)

// EvaluationContext is what conditions can ask about the acting combatant.
// Names arrive normalised ("straight_shot").
type EvaluationContext interface {
	BuffActive(name string) bool
	BuffRemaining(name string) time.Duration
	BuffStacks(name string) int
	DebuffActive(name string) bool
	DebuffRemaining(name string) time.Duration
	ResourcePercent(resource string) float64
	CooldownReady(name string) bool
	CooldownRemaining(name string) time.Duration
	InExecute() bool
	CombatRemaining() time.Duration
}

// Condition evaluates to true/false for a given context.
type Condition interface {
	Eval(ctx EvaluationContext) bool
}

// bounds holds optional comparisons; every present one must hold.
type bounds[T cmp.Ordered] struct {
	lt, lte, gt, gte *T
}

func (b bounds[T]) match(v T) bool {
	if b.lt != nil && !(v < *b.lt) {
		return false
	}
	if b.lte != nil && !(v <= *b.lte) {
		return false
	}
	if b.gt != nil && !(v > *b.gt) {
		return false
	}
	if b.gte != nil && !(v >= *b.gte) {
		return false
	}
	return true
}

type trueCondition struct{}

func (trueCondition) Eval(EvaluationContext) bool { return true }

type falseCondition struct{}

func (falseCondition) Eval(EvaluationContext) bool { return false }

// anyCondition is logical OR.
type anyCondition struct {
	children []Condition
}

func (c anyCondition) Eval(ctx EvaluationContext) bool {
	for _, child := range c.children {
		if child.Eval(ctx) {
			return true
		}
	}
	return false
}

// allCondition is logical AND.
type allCondition struct {
	children []Condition
}

func (c allCondition) Eval(ctx EvaluationContext) bool {
	for _, child := range c.children {
		if !child.Eval(ctx) {
			return false
		}
	}
	return true
}

type notCondition struct {
	child Condition
}

func (c notCondition) Eval(ctx EvaluationContext) bool {
	if c.child == nil {
		return true
	}
	return !c.child.Eval(ctx)
}

// buffActiveCondition checks an aura on the acting combatant.
type buffActiveCondition struct {
	name      string
	remaining bounds[time.Duration]
}

func (c buffActiveCondition) Eval(ctx EvaluationContext) bool {
	if ctx == nil || !ctx.BuffActive(c.name) {
		return false
	}
	return c.remaining.match(ctx.BuffRemaining(c.name))
}

// debuffActiveCondition checks an aura the combatant keeps on its target.
type debuffActiveCondition struct {
	name      string
	remaining bounds[time.Duration]
}

func (c debuffActiveCondition) Eval(ctx EvaluationContext) bool {
	if ctx == nil || !ctx.DebuffActive(c.name) {
		return false
	}
	return c.remaining.match(ctx.DebuffRemaining(c.name))
}

// debuffRemainingCondition compares time left on a debuff; a missing
// debuff has zero remaining.
type debuffRemainingCondition struct {
	name      string
	remaining bounds[time.Duration]
}

func (c debuffRemainingCondition) Eval(ctx EvaluationContext) bool {
	if ctx == nil {
		return false
	}
	return c.remaining.match(ctx.DebuffRemaining(c.name))
}

type resourcePercentCondition struct {
	resource string
	percent  bounds[float64]
}

func (c resourcePercentCondition) Eval(ctx EvaluationContext) bool {
	if ctx == nil {
		return false
	}
	return c.percent.match(ctx.ResourcePercent(c.resource))
}

type cooldownReadyCondition struct {
	name string
}

func (c cooldownReadyCondition) Eval(ctx EvaluationContext) bool {
	if ctx == nil {
		return false
	}
	return ctx.CooldownReady(c.name)
}

type cooldownRemainingCondition struct {
	name      string
	remaining bounds[time.Duration]
}

func (c cooldownRemainingCondition) Eval(ctx EvaluationContext) bool {
	if ctx == nil {
		return false
	}
	return c.remaining.match(ctx.CooldownRemaining(c.name))
}

type stacksCondition struct {
	buff   string
	stacks bounds[int]
}

func (c stacksCondition) Eval(ctx EvaluationContext) bool {
	if ctx == nil {
		return false
	}
	return c.stacks.match(ctx.BuffStacks(c.buff))
}

type inExecuteCondition struct {
	want bool
}

func (c inExecuteCondition) Eval(ctx EvaluationContext) bool {
	if ctx == nil {
		return false
	}
	return ctx.InExecute() == c.want
}

type combatRemainingCondition struct {
	remaining bounds[time.Duration]
}

func (c combatRemainingCondition) Eval(ctx EvaluationContext) bool {
	if ctx == nil {
		return false
	}
	return c.remaining.match(ctx.CombatRemaining())
}
