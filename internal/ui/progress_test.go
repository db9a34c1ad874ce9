package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrsync/internal/driver"
)

func send(m tea.Model, msg tea.Msg) tea.Model {
	next, _ := m.Update(msg)
	return next
}

func TestProgressModelTracksEvents(t *testing.T) {
	files := []string{"a.php", "b.php", "c.php"}
	m := NewProgressModel("fix", files, nil)

	m = send(m, eventMsg(driver.Event{File: "a.php", Stage: driver.StageReconcile, Status: driver.StatusWorking, Pass: 1}))
	m = send(m, eventMsg(driver.Event{File: "b.php", Status: driver.StatusCached}))
	m = send(m, eventMsg(driver.Event{File: "c.php", Status: driver.StatusError}))
	m = send(m, eventMsg(driver.Event{File: "unknown.php", Status: driver.StatusDone}))

	pm, ok := m.(*progressModel)
	require.True(t, ok)
	assert.Equal(t, "reconciling", pm.items[0].status)
	assert.Equal(t, 1, pm.items[0].pass)
	assert.Equal(t, "cached", pm.items[1].status)
	assert.Equal(t, "error", pm.items[2].status)
	assert.Equal(t, 2, pm.finished())

	view := stripANSI(m.View())
	assert.Contains(t, view, "fix [2/3]")
	assert.Contains(t, view, "reconciling")
}

func TestProgressModelQuitsWhenEventsClose(t *testing.T) {
	events := make(chan driver.Event)
	close(events)
	m := NewProgressModel("check", []string{"a.php"}, events)
	pm := m.(*progressModel)
	msg := pm.listenForEvent()()
	_, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	assert.True(t, pm.done)
	assert.True(t, strings.HasPrefix(stripANSI(m.View()), "done: check"))
}

func TestVisibleBoundsRows(t *testing.T) {
	files := make([]string, 50)
	for i := range files {
		files[i] = strings.Repeat("x", i+1) + ".php"
	}
	m := NewProgressModel("check", files, nil).(*progressModel)
	assert.Len(t, m.visible(), maxRows)
	assert.Contains(t, stripANSI(m.View()), "and 30 more")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdefgh", 5))
	assert.Equal(t, "ab", truncate("abcdefgh", 2))
}

func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
