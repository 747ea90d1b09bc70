package engine

import (
	"stormblood-bard-sim/internal/stats"
	"stormblood-bard-sim/internal/timeline"
)

const (
	// ServerTickMPPercent of maximum MP is restored every server tick.
	ServerTickMPPercent = 2
	// ServerTickTP is restored every server tick.
	ServerTickTP = 60
)

// serverTickEvent regenerates MP and TP for everyone and reschedules itself
// while the next tick still falls inside the encounter.
func (s *Simulation) serverTickEvent(h timeline.Handle) {
	for _, a := range s.actors {
		if mp := a.Resource(stats.MP); mp.Max > 0 && mp.Current < mp.Max {
			s.adjustResource(a, stats.MP, mp.Max*ServerTickMPPercent/100)
		}
		if tp := a.Resource(stats.TP); tp.Max > 0 && tp.Current < tp.Max {
			s.adjustResource(a, stats.TP, ServerTickTP)
		}
	}
	if s.Now()+s.cfg.ServerTick < s.cfg.CombatLength {
		s.push(h, s.cfg.ServerTick)
	}
}
