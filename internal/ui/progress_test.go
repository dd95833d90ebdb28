package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vela/internal/driver"
)

func TestProgressModel_AppliesEvents(t *testing.T) {
	m := NewProgressModel("tokenize", []string{"a.vl", "b.vl"}, nil).(*progressModel)

	m.Update(eventMsg(driver.Event{File: "a.vl", Stage: driver.StageLex, Status: driver.StatusWorking}))
	assert.Equal(t, "lexing", m.items[0].status)
	assert.InDelta(t, 0.25, m.percent(), 1e-9)

	m.Update(eventMsg(driver.Event{File: "a.vl", Stage: driver.StageLex, Status: driver.StatusDone, Tokens: 7, Cached: true}))
	m.Update(eventMsg(driver.Event{File: "b.vl", Stage: driver.StageLex, Status: driver.StatusError, Tokens: 2, Err: errors.New("boom")}))
	m.Update(eventMsg(driver.Event{File: "unknown.vl", Stage: driver.StageLex, Status: driver.StatusDone, Tokens: 100}))

	assert.Equal(t, 9, m.tokens)
	assert.Equal(t, 1, m.errors)
	assert.InDelta(t, 1.0, m.percent(), 1e-9)

	_, cmd := m.Update(doneMsg{})
	require.NotNil(t, cmd)
	view := m.View()
	assert.Contains(t, view, "done: tokenize (9 tokens, 1 with errors)")
	assert.Contains(t, view, "a.vl  7 tokens (cached)")
	assert.Contains(t, view, "b.vl  boom")
}

func TestProgressModel_EmptyView(t *testing.T) {
	m := NewProgressModel("tokenize", nil, nil)
	assert.Empty(t, m.View())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	got := truncate(strings.Repeat("x", 30), 10)
	assert.Equal(t, "xxxxxxx...", got)
	assert.Equal(t, "xx", truncate("xxxx", 2))
	assert.Equal(t, "ключ...", truncate("ключевое", 7))
}
