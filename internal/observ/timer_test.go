package observ

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportGroupsPhasesByName(t *testing.T) {
	timer := NewTimer()
	for _, name := range []string{"lex", "reconcile", "lex", "reconcile", "write"} {
		timer.End(timer.Begin(name), "pass")
	}
	report := timer.Report()
	require.Len(t, report.Phases, 3)
	assert.Equal(t, "lex", report.Phases[0].Name)
	assert.Equal(t, 2, report.Phases[0].Count)
	assert.Equal(t, "write", report.Phases[2].Name)
	assert.Equal(t, 1, report.Phases[2].Count)

	var sum float64
	for _, p := range report.Phases {
		sum += p.DurationMS
	}
	assert.InDelta(t, report.TotalMS, sum, 1e-9)
}

func TestEndIgnoresUnknownIndex(t *testing.T) {
	timer := NewTimer()
	timer.End(3, "nothing")
	assert.Empty(t, timer.Report().Phases)
}

func TestSummary(t *testing.T) {
	timer := NewTimer()
	timer.End(timer.Begin("lex"), "pass 1")
	timer.End(timer.Begin("lex"), "pass 2")
	out := timer.Summary()
	assert.True(t, strings.HasPrefix(out, "timings:\n"))
	assert.Contains(t, out, " x2")
	assert.Contains(t, out, "// pass 2")
	assert.Contains(t, out, "total")
}
