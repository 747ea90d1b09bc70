// Package report collects per-run combat records and turns them into
// summaries, tables and CSV exports.
package report

import (
	"sort"
	"sync"
	"time"
)

// AuraChange is what happened to an aura.
type AuraChange string

const (
	AuraApply   AuraChange = "apply"
	AuraExpire  AuraChange = "expire"
	AuraRefresh AuraChange = "refresh"
	AuraConsume AuraChange = "consume"
	AuraStack   AuraChange = "stack"
)

// Damage is one damage instance.
type Damage struct {
	Iteration  int
	Timestamp  time.Duration
	Source     string
	Target     string
	Action     string
	Potency    int
	Critical   bool
	Direct     bool
	Dot        bool
	AutoAttack bool
	Amount     int
}

// Aura is one aura lifecycle change.
type Aura struct {
	Iteration int
	Timestamp time.Duration
	Target    string
	Aura      string
	Change    AuraChange
	Remains   time.Duration
	Stacks    int
}

// Resource is one change to a resource pool.
type Resource struct {
	Iteration int
	Timestamp time.Duration
	Target    string
	Resource  string
	Amount    int
	Level     int
}

// Sink receives records from a running simulation.
type Sink interface {
	Damage(Damage)
	Aura(Aura)
	Resource(Resource)
}

// Recorder buffers the records of a single run. It is owned by that run and
// is not safe for concurrent use.
type Recorder struct {
	Iteration    int
	CombatLength time.Duration
	Desyncs      int

	Damages   []Damage
	Auras     []Aura
	Resources []Resource
}

func NewRecorder(iteration int, combatLength time.Duration) *Recorder {
	return &Recorder{Iteration: iteration, CombatLength: combatLength}
}

func (r *Recorder) Damage(d Damage) {
	d.Iteration = r.Iteration
	r.Damages = append(r.Damages, d)
}

func (r *Recorder) Aura(a Aura) {
	a.Iteration = r.Iteration
	r.Auras = append(r.Auras, a)
}

func (r *Recorder) Resource(res Resource) {
	res.Iteration = r.Iteration
	r.Resources = append(r.Resources, res)
}

// TotalDamage sums every damage instance of the run.
func (r *Recorder) TotalDamage() int {
	total := 0
	for _, d := range r.Damages {
		total += d.Amount
	}
	return total
}

// Collector gathers finished runs from concurrent workers.
type Collector struct {
	mu   sync.Mutex
	runs []*Recorder
}

func NewCollector() *Collector {
	return &Collector{}
}

// Add stores a finished run.
func (c *Collector) Add(r *Recorder) {
	if r == nil {
		return
	}
	c.mu.Lock()
	c.runs = append(c.runs, r)
	c.mu.Unlock()
}

// Runs returns the stored runs ordered by iteration.
func (c *Collector) Runs() []*Recorder {
	c.mu.Lock()
	out := make([]*Recorder, len(c.runs))
	copy(out, c.runs)
	c.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Iteration < out[j].Iteration })
	return out
}

// Len returns how many runs have been stored.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.runs)
}
