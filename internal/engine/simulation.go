// Package engine runs a single simulated encounter: it owns the event queue,
// dispatches events to the actors and records what happened.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"time"

	"go.uber.org/zap"

	"stormblood-bard-sim/internal/character"
	"stormblood-bard-sim/internal/report"
	"stormblood-bard-sim/internal/timeline"
)

const (
	// DefaultRetryDelay is how long an actor waits before deciding again
	// when nothing it wanted was legal.
	DefaultRetryDelay = 100 * time.Millisecond
	// DefaultServerTick is the resource regeneration interval.
	DefaultServerTick = 3 * time.Second
	// DotTickInterval is the spacing of damage-over-time ticks.
	DotTickInterval = 3 * time.Second
)

// ErrNoCombatants is returned by Run when nobody is set to act.
var ErrNoCombatants = errors.New("engine: no combatants")

// Trace selects which queue operations are logged at debug level.
type Trace struct {
	Pushes  bool
	Pops    bool
	Actions bool
	// Filter, when set, restricts traces to events whose kind matches.
	Filter *regexp.Regexp
}

// Config is fixed for the lifetime of a Simulation.
type Config struct {
	CombatLength  time.Duration
	ExecuteWindow time.Duration
	RetryDelay    time.Duration
	ServerTick    time.Duration
	Seed          int64
	Iteration     int
	Trace         Trace
}

func (c Config) withDefaults() Config {
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.ServerTick <= 0 {
		c.ServerTick = DefaultServerTick
	}
	return c
}

// RunStats counts what happened during a run.
type RunStats struct {
	Events  int
	Actions int
	Illegal int
	Desyncs int
}

// Combatant is an actor that makes decisions.
type Combatant struct {
	Actor   *character.Actor
	Decider Decider
	Loadout *Loadout

	ready timeline.Handle
	swing timeline.Handle
}

// Simulation is the context of one encounter. It is not safe for concurrent
// use; batches run one Simulation per goroutine.
type Simulation struct {
	cfg   Config
	queue *timeline.Queue[Event]
	rng   *rand.Rand
	log   *zap.Logger
	sink  report.Sink

	combatants []*Combatant
	actors     []*character.Actor

	serverTick timeline.Handle
	ended      bool
	stats      RunStats
}

// New creates a simulation. A nil logger disables logging and a nil sink
// discards records.
func New(cfg Config, log *zap.Logger, sink report.Sink) *Simulation {
	cfg = cfg.withDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = discard{}
	}
	return &Simulation{
		cfg:   cfg,
		queue: timeline.New[Event](),
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		log:   log.With(zap.Int("iteration", cfg.Iteration)),
		sink:  sink,
	}
}

// AddCombatant registers an actor that decides what to do. Its loadout's
// auras are reset at the start of every run.
func (s *Simulation) AddCombatant(c *Combatant) {
	s.combatants = append(s.combatants, c)
	s.AddActor(c.Actor)
}

// AddActor registers a participant that never acts, such as a target dummy.
func (s *Simulation) AddActor(a *character.Actor) {
	for _, existing := range s.actors {
		if existing == a {
			return
		}
	}
	s.actors = append(s.actors, a)
}

func (s *Simulation) Config() Config { return s.cfg }
func (s *Simulation) Log() *zap.Logger { return s.log }
func (s *Simulation) Rand() *rand.Rand { return s.rng }
func (s *Simulation) Stats() RunStats { return s.stats }
func (s *Simulation) Combatants() []*Combatant { return s.combatants }

// Now returns the simulation clock.
func (s *Simulation) Now() time.Duration { return s.queue.Now() }

func (s *Simulation) Live(h timeline.Handle) bool { return s.queue.Live(h) }
func (s *Simulation) Pending(h timeline.Handle) bool { return s.queue.Pending(h) }
func (s *Simulation) Timestamp(h timeline.Handle) time.Duration { return s.queue.Timestamp(h) }

// InExecute reports whether the encounter is in its final execute window.
func (s *Simulation) InExecute() bool {
	if s.cfg.ExecuteWindow <= 0 {
		return false
	}
	return s.Now()+s.cfg.ExecuteWindow >= s.cfg.CombatLength
}

// Remaining returns the time left in the encounter.
func (s *Simulation) Remaining() time.Duration {
	if r := s.cfg.CombatLength - s.Now(); r > 0 {
		return r
	}
	return 0
}

func (s *Simulation) traced(k Kind) bool {
	return s.cfg.Trace.Filter == nil || s.cfg.Trace.Filter.MatchString(k.String())
}

// push schedules h delta from now.
func (s *Simulation) push(h timeline.Handle, delta time.Duration) {
	at, ok := s.queue.Schedule(h, delta)
	if !ok {
		s.desync("schedule of foreign handle")
		return
	}
	if s.cfg.Trace.Pushes {
		if ev := s.queue.Payload(h); ev != nil && s.traced(ev.Kind) {
			s.log.Debug("=>", zap.Duration("now", s.Now()), zap.Duration("at", at), zap.Stringer("event", ev))
		}
	}
}

// schedule stores ev in a fresh slot and pushes it.
func (s *Simulation) schedule(ev Event, delta time.Duration) timeline.Handle {
	h := s.queue.Add(ev)
	s.push(h, delta)
	return h
}

// unschedule cancels h. Cancelling an event whose time has already passed
// is a desync: something still holds a handle it should have dropped.
func (s *Simulation) unschedule(h timeline.Handle) bool {
	if !s.queue.Owns(h) || !s.queue.Pending(h) {
		return false
	}
	if s.queue.Timestamp(h) < s.Now() {
		s.desync("unschedule of past event", zap.Duration("at", s.queue.Timestamp(h)))
		return false
	}
	ok := s.queue.Unschedule(h)
	if ok && s.cfg.Trace.Pushes {
		if ev := s.queue.Payload(h); ev != nil && s.traced(ev.Kind) {
			s.log.Debug("XX", zap.Duration("now", s.Now()), zap.Duration("at", s.queue.Timestamp(h)), zap.Stringer("event", ev))
		}
	}
	return ok
}

func (s *Simulation) desync(msg string, fields ...zap.Field) {
	s.stats.Desyncs++
	s.log.Warn("scheduling desync: "+msg, append(fields, zap.Duration("now", s.Now()))...)
}

// Run plays one encounter from start to finish.
func (s *Simulation) Run(ctx context.Context) (RunStats, error) {
	if len(s.combatants) == 0 {
		return RunStats{}, ErrNoCombatants
	}
	s.queue.Reset()
	s.stats = RunStats{}
	s.ended = false
	for _, c := range s.combatants {
		c.ready = timeline.Handle{}
		c.swing = timeline.Handle{}
	}

	s.schedule(Event{Kind: KindCombatStart}, 0)
	s.schedule(Event{Kind: KindCombatEnd}, s.cfg.CombatLength)
	if s.cfg.ServerTick < s.cfg.CombatLength {
		s.serverTick = s.schedule(Event{Kind: KindServerTick}, s.cfg.ServerTick)
	}
	for _, c := range s.combatants {
		c.ready = s.schedule(Event{Kind: KindActorReady, Combatant: c}, 0)
	}

	for !s.ended {
		if s.stats.Events%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return s.stats, err
			}
		}
		h, at, late, ok := s.queue.Pop()
		if !ok {
			break
		}
		s.stats.Events++
		ev := s.queue.Payload(h)
		if late {
			s.desync("event behind clock", zap.Duration("at", at), zap.Stringer("event", ev))
		}
		if s.cfg.Trace.Pops && s.traced(ev.Kind) {
			s.log.Debug("<=", zap.Duration("now", s.Now()), zap.Stringer("event", ev))
		}
		if err := s.dispatch(h, ev); err != nil {
			return s.stats, fmt.Errorf("%s at %v: %w", ev.Kind, s.Now(), err)
		}
	}
	return s.stats, nil
}

func (s *Simulation) dispatch(h timeline.Handle, ev *Event) error {
	switch ev.Kind {
	case KindCombatStart:
		return s.combatStart()
	case KindCombatEnd:
		s.combatEnd()
	case KindActorReady:
		s.actorReady(ev.Combatant)
	case KindApplyAura:
		s.applyAura(ev)
	case KindExpireAura:
		s.expireAura(h, ev)
	case KindRefreshAura:
		s.refreshAura(ev)
	case KindConsumeAura:
		s.consumeAura(ev)
	case KindApplyAuraStack:
		s.applyAuraStack(ev)
	case KindDamage:
		s.damage(ev)
	case KindDotTick:
		s.dotTick(h, ev)
	case KindResource:
		s.resource(ev)
	case KindServerTick:
		s.serverTickEvent(h)
	case KindSwing:
		s.swingEvent(h, ev)
	default:
		return fmt.Errorf("unknown event kind %d", int(ev.Kind))
	}
	return nil
}

func (s *Simulation) combatStart() error {
	for _, a := range s.actors {
		if err := a.Arise(); err != nil {
			return err
		}
	}
	for _, c := range s.combatants {
		if c.Loadout != nil {
			c.Loadout.reset()
		}
		if c.Actor.Target == nil && len(s.actors) > 1 {
			for _, a := range s.actors {
				if a != c.Actor {
					c.Actor.Target = a
					break
				}
			}
		}
		s.startSwing(c)
	}
	s.log.Debug("combat start", zap.Int("actors", len(s.actors)))
	return nil
}

func (s *Simulation) combatEnd() {
	s.queue.Clear()
	s.ended = true
	s.log.Debug("combat end", zap.Duration("now", s.Now()), zap.Int("events", s.stats.Events))
}

type discard struct{}

func (discard) Damage(report.Damage) {}
func (discard) Aura(report.Aura) {}
func (discard) Resource(report.Resource) {}
