package observ

import (
	"fmt"
	"time"
)

// Phase records the duration of one pipeline step.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer tracks the steps of one file's run. Not safe for concurrent use.
type Timer struct {
	phases []Phase
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End finishes a phase by its index.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// Summary returns a human-readable string summarizing all tracked phases.
func (t *Timer) Summary() string {
	report := t.Report()
	out := "timings:\n"
	for _, p := range report.Phases {
		out += fmt.Sprintf("  %-20s %7.2f ms", p.Name, p.DurationMS)
		if p.Count > 1 {
			out += fmt.Sprintf(" x%d", p.Count)
		}
		if p.Note != "" {
			out += "  // " + p.Note
		}
		out += "\n"
	}
	out += fmt.Sprintf("  %-20s %7.2f ms\n", "total", report.TotalMS)
	return out
}

// PhaseReport is the serializable form of the phases sharing a name.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Count      int     `json:"count"`
	Note       string  `json:"note,omitempty"`
}

// Report aggregates the phases of a Timer.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report sums the phases by name, in order of first use. The note of the
// last phase of each name is kept.
func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	var (
		report Report
		total  time.Duration
		durs   []time.Duration
	)
	index := make(map[string]int, len(t.phases))
	for _, phase := range t.phases {
		total += phase.Dur
		i, ok := index[phase.Name]
		if !ok {
			i = len(report.Phases)
			index[phase.Name] = i
			report.Phases = append(report.Phases, PhaseReport{Name: phase.Name})
			durs = append(durs, 0)
		}
		durs[i] += phase.Dur
		report.Phases[i].Count++
		if phase.Note != "" {
			report.Phases[i].Note = phase.Note
		}
	}
	for i := range report.Phases {
		report.Phases[i].DurationMS = durationToMillis(durs[i])
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
