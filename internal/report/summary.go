package report

import (
	"math"
	"sort"
	"time"
)

// Distribution summarises a sample.
type Distribution struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

func distribution(samples []float64) Distribution {
	if len(samples) == 0 {
		return Distribution{}
	}
	d := Distribution{Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	for _, v := range samples {
		sum += v
		d.Min = math.Min(d.Min, v)
		d.Max = math.Max(d.Max, v)
	}
	d.Mean = sum / float64(len(samples))
	if len(samples) > 1 {
		varSum := 0.0
		for _, v := range samples {
			varSum += (v - d.Mean) * (v - d.Mean)
		}
		d.StdDev = math.Sqrt(varSum / float64(len(samples)-1))
	}
	return d
}

// ActionRow aggregates one (source, action, kind) across runs.
type ActionRow struct {
	Source     string
	Action     string
	Dot        bool
	AutoAttack bool

	Count    int
	Total    int
	Min      int
	Max      int
	Crits    int
	Directs  int
	PerRun   float64
	Share    float64
	MeanHit  float64
	CritRate float64
	DHRate   float64
}

// AuraRow is the average uptime of one aura on one target.
type AuraRow struct {
	Target    string
	Aura      string
	Uptime    time.Duration
	UptimePct float64
	Applies   float64
	Refreshes float64
	Consumes  float64
}

// TargetRow is total damage taken by one target.
type TargetRow struct {
	Target string
	Total  int
	PerRun float64
	Share  float64
}

// Summary is the aggregate over a batch.
type Summary struct {
	Iterations   int
	CombatLength time.Duration
	Desyncs      int

	DPS      map[string]Distribution
	Sources  []string
	Actions  []ActionRow
	Targets  []TargetRow
	Auras    []AuraRow
	Resource map[string]int
}

type actionKey struct {
	source, action string
	dot, auto      bool
}

// Summarize aggregates runs. Runs are processed in iteration order so the
// result does not depend on worker scheduling.
func Summarize(runs []*Recorder) *Summary {
	sorted := make([]*Recorder, len(runs))
	copy(sorted, runs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Iteration < sorted[j].Iteration })

	s := &Summary{
		Iterations: len(sorted),
		DPS:        make(map[string]Distribution),
		Resource:   make(map[string]int),
	}
	if len(sorted) == 0 {
		return s
	}
	s.CombatLength = sorted[0].CombatLength

	dpsSamples := make(map[string][]float64)
	actions := make(map[actionKey]*ActionRow)
	var actionOrder []actionKey
	targets := make(map[string]int)
	uptime := make(map[[2]string]*AuraRow)
	var auraOrder [][2]string
	grand := 0

	for _, run := range sorted {
		s.Desyncs += run.Desyncs
		perSource := make(map[string]int)
		for _, d := range run.Damages {
			perSource[d.Source] += d.Amount
			targets[d.Target] += d.Amount
			grand += d.Amount

			key := actionKey{d.Source, d.Action, d.Dot, d.AutoAttack}
			row, ok := actions[key]
			if !ok {
				row = &ActionRow{Source: d.Source, Action: d.Action, Dot: d.Dot, AutoAttack: d.AutoAttack, Min: math.MaxInt}
				actions[key] = row
				actionOrder = append(actionOrder, key)
			}
			row.Count++
			row.Total += d.Amount
			if d.Amount < row.Min {
				row.Min = d.Amount
			}
			if d.Amount > row.Max {
				row.Max = d.Amount
			}
			if d.Critical {
				row.Crits++
			}
			if d.Direct {
				row.Directs++
			}
		}
		length := run.CombatLength.Seconds()
		for src, total := range perSource {
			if length > 0 {
				dpsSamples[src] = append(dpsSamples[src], float64(total)/length)
			}
		}
		for _, iv := range auraIntervals(run) {
			key := [2]string{iv.target, iv.aura}
			row, ok := uptime[key]
			if !ok {
				row = &AuraRow{Target: iv.target, Aura: iv.aura}
				uptime[key] = row
				auraOrder = append(auraOrder, key)
			}
			row.Uptime += iv.up
			row.Applies += float64(iv.applies)
			row.Refreshes += float64(iv.refreshes)
			row.Consumes += float64(iv.consumes)
		}
		for _, r := range run.Resources {
			s.Resource[r.Resource] += r.Amount
		}
	}

	n := float64(len(sorted))
	for src, samples := range dpsSamples {
		s.DPS[src] = distribution(samples)
		s.Sources = append(s.Sources, src)
	}
	sort.Strings(s.Sources)

	for _, key := range actionOrder {
		row := actions[key]
		row.PerRun = float64(row.Count) / n
		if grand > 0 {
			row.Share = float64(row.Total) / float64(grand)
		}
		if row.Count > 0 {
			row.MeanHit = float64(row.Total) / float64(row.Count)
			row.CritRate = float64(row.Crits) / float64(row.Count)
			row.DHRate = float64(row.Directs) / float64(row.Count)
		}
		s.Actions = append(s.Actions, *row)
	}
	sort.SliceStable(s.Actions, func(i, j int) bool {
		if s.Actions[i].Total == s.Actions[j].Total {
			return s.Actions[i].Action < s.Actions[j].Action
		}
		return s.Actions[i].Total > s.Actions[j].Total
	})

	for name, total := range targets {
		row := TargetRow{Target: name, Total: total, PerRun: float64(total) / n}
		if grand > 0 {
			row.Share = float64(total) / float64(grand)
		}
		s.Targets = append(s.Targets, row)
	}
	sort.Slice(s.Targets, func(i, j int) bool { return s.Targets[i].Total > s.Targets[j].Total })

	for _, key := range auraOrder {
		row := uptime[key]
		row.Uptime = time.Duration(float64(row.Uptime) / n)
		row.Applies /= n
		row.Refreshes /= n
		row.Consumes /= n
		if s.CombatLength > 0 {
			row.UptimePct = float64(row.Uptime) / float64(s.CombatLength)
		}
		s.Auras = append(s.Auras, *row)
	}
	return s
}

type interval struct {
	target, aura                 string
	up                           time.Duration
	applies, refreshes, consumes int
}

func auraIntervals(run *Recorder) []interval {
	type state struct {
		iv      interval
		since   time.Duration
		present bool
	}
	states := make(map[[2]string]*state)
	var order [][2]string
	for _, a := range run.Auras {
		key := [2]string{a.Target, a.Aura}
		st, ok := states[key]
		if !ok {
			st = &state{iv: interval{target: a.Target, aura: a.Aura}}
			states[key] = st
			order = append(order, key)
		}
		switch a.Change {
		case AuraApply:
			st.iv.applies++
			if !st.present {
				st.present = true
				st.since = a.Timestamp
			}
		case AuraRefresh:
			st.iv.refreshes++
		case AuraExpire, AuraConsume:
			if a.Change == AuraConsume {
				st.iv.consumes++
			}
			if st.present {
				st.iv.up += a.Timestamp - st.since
				st.present = false
			}
		}
	}
	out := make([]interval, 0, len(order))
	for _, key := range order {
		st := states[key]
		if st.present && run.CombatLength > st.since {
			st.iv.up += run.CombatLength - st.since
		}
		out = append(out, st.iv)
	}
	return out
}
