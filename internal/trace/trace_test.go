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

func TestLevelScopes(t *testing.T) {
	assert.False(t, LevelOff.ShouldEmit(ScopeDriver))
	assert.True(t, LevelPhase.ShouldEmit(ScopeFile))
	assert.False(t, LevelPhase.ShouldEmit(ScopePass))
	assert.True(t, LevelDetail.ShouldEmit(ScopePass))
	assert.False(t, LevelDetail.ShouldEmit(ScopeNode))
	assert.True(t, LevelDebug.ShouldEmit(ScopeNode))

	l, err := ParseLevel("DETAIL")
	require.NoError(t, err)
	assert.Equal(t, LevelDetail, l)
	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestStartNestsSpans(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), ring)

	ctx, run := Start(ctx, ScopeDriver, "run")
	fileCtx, file := Start(ctx, ScopeFile, "file:a.js")
	_, pass := Start(fileCtx, ScopePass, "lower")
	pass.WithExtra("target", "es2019").End("ok")
	file.End("")
	run.End("")

	evs := ring.Snapshot()
	require.Len(t, evs, 6)
	assert.Equal(t, uint64(0), evs[0].ParentID)
	assert.Equal(t, run.ID(), evs[1].ParentID)
	assert.Equal(t, file.ID(), evs[2].ParentID)
	assert.Equal(t, KindSpanEnd, evs[3].Kind)
	assert.Equal(t, "es2019", evs[3].Extra["target"])
	for i := 1; i < len(evs); i++ {
		assert.Greater(t, evs[i].Seq, evs[i-1].Seq)
	}
}

func TestDisabledSpansAreInert(t *testing.T) {
	ctx, sp := Start(context.Background(), ScopeFile, "x")
	assert.Zero(t, sp.ID())
	assert.Zero(t, ParentID(ctx))
	assert.Zero(t, sp.WithExtra("k", "v").End("done"))

	ring := NewRingTracer(4, LevelPhase)
	Begin(ring, ScopePass, "lower", 0).End("")
	assert.Empty(t, ring.Snapshot())
}

func TestRingWrapsAround(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ring, ScopeNode, name, "", 0)
	}
	var names []string
	for _, ev := range ring.Snapshot() {
		names = append(names, ev.Name)
	}
	assert.Equal(t, []string{"c", "d", "e"}, names)

	var buf bytes.Buffer
	require.NoError(t, ring.Dump(&buf, FormatChrome))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "c", first["name"])
}

func TestStreamChromeIsValidJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatChrome)
	sp := Begin(tr, ScopeFile, "file:a.js", 0)
	Point(tr, ScopePass, "defect", "DEF9001", sp.ID())
	sp.End("")
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())

	var doc struct {
		TraceEvents []map[string]any `json:"traceEvents"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.TraceEvents, 3)
	assert.Equal(t, "B", doc.TraceEvents[0]["ph"])
	assert.Equal(t, "i", doc.TraceEvents[1]["ph"])
	assert.Equal(t, "E", doc.TraceEvents[2]["ph"])
}

func TestTextFormatSortsExtras(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	Begin(tr, ScopeFile, "file:a.js", 0).WithExtra("z", "1").WithExtra("a", "2").End("ok")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "→ file:a.js")
	assert.True(t, strings.HasSuffix(lines[1], "← file:a.js (ok) {a=2, z=1}"), lines[1])
}

func TestNewPicksFormatAndMode(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	require.NoError(t, err)
	assert.Equal(t, Nop, tr)

	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	require.NoError(t, err)
	require.NotNil(t, RingOf(tr))
	Begin(tr, ScopeDriver, "run", 0).End("")
	assert.Len(t, RingOf(tr).Snapshot(), 2)
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))

	assert.Equal(t, FormatChrome, formatForPath("out.json"))
	assert.Equal(t, FormatNDJSON, formatForPath("out.ndjson"))
	assert.Equal(t, FormatText, formatForPath("out.log"))

	_, err = ParseMode("tape")
	assert.Error(t, err)
}
