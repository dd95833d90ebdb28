package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "PHASE", "Detail", "debug"} {
		lvl, err := ParseLevel(s)
		require.NoError(t, err)
		assert.Equal(t, strings.ToLower(s), lvl.String())
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLevelFiltering(t *testing.T) {
	assert.True(t, LevelPhase.ShouldEmit(ScopePass, KindSpanBegin))
	assert.False(t, LevelPhase.ShouldEmit(ScopeFile, KindSpanBegin))
	assert.True(t, LevelDetail.ShouldEmit(ScopeFile, KindSpanEnd))
	assert.False(t, LevelDetail.ShouldEmit(ScopeToken, KindPoint))
	assert.True(t, LevelError.ShouldEmit(ScopeToken, KindError))
	assert.False(t, LevelError.ShouldEmit(ScopeDriver, KindSpanBegin))
	assert.False(t, LevelOff.ShouldEmit(ScopeDriver, KindError))
}

func TestStreamTracer_NDJSONSpans(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDetail, Format: FormatNDJSON, Output: &buf})
	require.NoError(t, err)

	ctx := WithTracer(context.Background(), tr)
	ctx, root := BeginCtx(ctx, ScopeDriver, "tokenize")
	_, file := BeginCtx(ctx, ScopeFile, "file:a.vl")
	file.WithExtra("tokens", "12").End("")
	Point(tr, ScopeToken, "skipped", root.ID(), "") // отфильтрован уровнем
	root.End("ok")
	require.NoError(t, tr.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	var events []jsonEvent
	for _, line := range lines {
		var ev jsonEvent
		require.NoError(t, json.Unmarshal([]byte(line), &ev))
		events = append(events, ev)
	}
	assert.Equal(t, "begin", events[0].Kind)
	assert.Equal(t, "driver", events[0].Scope)
	assert.Equal(t, events[0].SpanID, events[1].ParentID)
	assert.Equal(t, "12", events[2].Extra["tokens"])
	assert.Equal(t, "ok", events[3].Detail)
	for i := 1; i < len(events); i++ {
		assert.Greater(t, events[i].Seq, events[i-1].Seq)
	}
}

func TestStreamTracer_Text(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelError, FormatText)
	Begin(tr, ScopeDriver, "tokenize", 0).End("")
	Error(tr, ScopeFile, "lex", 0, "a.vl:1:1: unexpected character")
	out := buf.String()
	assert.NotContains(t, out, "tokenize")
	assert.Contains(t, out, "! file lex (a.vl:1:1: unexpected character)")
}

func TestRingTracer_KeepsLast(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ring, ScopeToken, name, 0, "")
	}
	snap := ring.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []string{"c", "d", "e"}, []string{snap[0].Name, snap[1].Name, snap[2].Name})

	var buf bytes.Buffer
	require.NoError(t, ring.Dump(&buf, FormatText))
	assert.Equal(t, 3, strings.Count(buf.String(), "\n"))
}

func TestNopAndDisabled(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	require.NoError(t, err)
	assert.False(t, tr.Enabled())
	s := Begin(tr, ScopeDriver, "x", 0)
	assert.Zero(t, s.ID())
	assert.Zero(t, s.End(""))
	assert.Equal(t, Nop, FromContext(context.Background()))
	assert.Zero(t, CurrentSpan(context.Background()))
}

func TestParseModeAndFormat(t *testing.T) {
	m, err := ParseMode("ring")
	require.NoError(t, err)
	assert.Equal(t, ModeRing, m)
	_, err = ParseMode("both")
	assert.Error(t, err)

	f, err := ParseFormat("ndjson")
	require.NoError(t, err)
	assert.Equal(t, FormatNDJSON, f)
}
