package report

import (
	"io"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const rule = "--------------------------------------------------------------------------------"

// Print writes a human readable summary. Numbers are grouped per tag.
func Print(w io.Writer, s *Summary, tag language.Tag) {
	p := message.NewPrinter(tag)
	p.Fprintln(w, "========================================")
	p.Fprintln(w, "Simulation Results")
	p.Fprintln(w, "========================================")
	p.Fprintf(w, "Combat length: %.0fs\n", s.CombatLength.Seconds())
	p.Fprintf(w, "Iterations: %d\n", s.Iterations)
	if s.Desyncs > 0 {
		p.Fprintf(w, "Scheduling desyncs: %d\n", s.Desyncs)
	}
	p.Fprintln(w)

	for _, src := range s.Sources {
		d := s.DPS[src]
		p.Fprintf(w, "%s DPS: %.2f (sd %.2f, min %.2f, max %.2f)\n", src, d.Mean, d.StdDev, d.Min, d.Max)
	}
	p.Fprintln(w)

	p.Fprintln(w, "Damage by action (average per iteration):")
	p.Fprintln(w, rule)
	p.Fprintf(w, "%-20s | %7s | %10s | %6s | %7s | %7s | %7s | %6s | %6s\n",
		"Action", "Count", "Damage", "Share", "Avg", "Min", "Max", "Crit%", "DH%")
	p.Fprintln(w, rule)
	n := float64(s.Iterations)
	if n == 0 {
		n = 1
	}
	for _, row := range s.Actions {
		p.Fprintf(w, "%-20s | %7.1f | %10.0f | %5.1f%% | %7.0f | %7d | %7d | %5.1f%% | %5.1f%%\n",
			actionLabel(row), row.PerRun, float64(row.Total)/n, row.Share*100,
			row.MeanHit, row.Min, row.Max, row.CritRate*100, row.DHRate*100)
	}
	p.Fprintln(w, rule)

	if len(s.Targets) > 0 {
		p.Fprintln(w)
		p.Fprintln(w, "Damage by target:")
		p.Fprintln(w, "----------------------------------------")
		for _, row := range s.Targets {
			p.Fprintf(w, "%-20s %12.0f (%.1f%%)\n", row.Target, row.PerRun, row.Share*100)
		}
	}

	if len(s.Auras) > 0 {
		p.Fprintln(w)
		p.Fprintln(w, "Aura uptimes:")
		p.Fprintln(w, "----------------------------------------")
		for _, row := range s.Auras {
			p.Fprintf(w, "%-28s %6.1fs (%.1f%%) applies %.1f refreshes %.1f\n",
				row.Target+": "+row.Aura, row.Uptime.Seconds(), row.UptimePct*100, row.Applies, row.Refreshes)
		}
	}

	if len(s.Resource) > 0 {
		p.Fprintln(w)
		p.Fprintln(w, "Resource changes (total over all iterations):")
		p.Fprintln(w, "----------------------------------------")
		for _, name := range sortedKeys(s.Resource) {
			p.Fprintf(w, "%-12s %d\n", name, s.Resource[name])
		}
	}
	p.Fprintln(w, "========================================")
}

func actionLabel(row ActionRow) string {
	var b strings.Builder
	b.WriteString(row.Action)
	switch {
	case row.Dot:
		b.WriteString(" (tick)")
	case row.AutoAttack:
		b.WriteString(" (auto)")
	}
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatDPS renders a single DPS figure using the locale of tag.
func FormatDPS(tag language.Tag, dps float64) string {
	return message.NewPrinter(tag).Sprintf("%.2f", dps)
}
