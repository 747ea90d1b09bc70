package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var damageHeader = []string{
	"iteration", "timestamp_ms", "source", "target", "action",
	"potency", "critical", "direct", "dot", "auto_attack", "amount",
}

// WriteDamageCSV exports every damage record of runs, in iteration order.
func WriteDamageCSV(w io.Writer, runs []*Recorder) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(damageHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, run := range runs {
		for _, d := range run.Damages {
			row := []string{
				strconv.Itoa(d.Iteration),
				strconv.FormatInt(d.Timestamp.Milliseconds(), 10),
				d.Source,
				d.Target,
				d.Action,
				strconv.Itoa(d.Potency),
				strconv.FormatBool(d.Critical),
				strconv.FormatBool(d.Direct),
				strconv.FormatBool(d.Dot),
				strconv.FormatBool(d.AutoAttack),
				strconv.Itoa(d.Amount),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAuraCSV exports aura changes.
func WriteAuraCSV(w io.Writer, runs []*Recorder) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"iteration", "timestamp_ms", "target", "aura", "change", "remains_ms", "stacks"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, run := range runs {
		for _, a := range run.Auras {
			row := []string{
				strconv.Itoa(a.Iteration),
				strconv.FormatInt(a.Timestamp.Milliseconds(), 10),
				a.Target,
				a.Aura,
				string(a.Change),
				strconv.FormatInt(a.Remains.Milliseconds(), 10),
				strconv.Itoa(a.Stacks),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
