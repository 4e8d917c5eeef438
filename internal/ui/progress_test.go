package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"downlevel/internal/driver"
)

func newModel(files ...string) *progressModel {
	m, ok := NewProgressModel("lowering", files, nil).(*progressModel)
	if !ok {
		panic("unexpected model type")
	}
	return m
}

func TestApplyEventTracksStages(t *testing.T) {
	m := newModel("a.json", "b.json")

	m.applyEvent(driver.Event{File: "a.json", Stage: driver.StageLower, Status: driver.StatusWorking})
	assert.Equal(t, "lowering", m.items[0].status)
	assert.InDelta(t, 0.2, m.percent(), 1e-9)

	m.applyEvent(driver.Event{File: "a.json", Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: "b.json", Stage: driver.StageDecode, Status: driver.StatusError, Err: errors.New("bad")})
	assert.Equal(t, 2, m.finished())
	assert.Equal(t, 1, m.failed)
	assert.InDelta(t, 1.0, m.percent(), 1e-9)

	// final states stick
	m.applyEvent(driver.Event{File: "b.json", Stage: driver.StagePrint, Status: driver.StatusWorking})
	assert.Equal(t, "error", m.items[1].status)

	assert.Nil(t, m.applyEvent(driver.Event{File: "unknown.json", Status: driver.StatusDone}))
}

func TestViewListsFiles(t *testing.T) {
	m := newModel("src/" + strings.Repeat("x", 200) + ".json")
	m.width = 40
	m.done = true
	view := m.View()
	require.Contains(t, view, "done: lowering (0/1)")
	assert.Contains(t, view, "queued")
	assert.Contains(t, view, "...")
	assert.Empty(t, newModel().View())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "a...", truncate("abcdef", 4))
	assert.Equal(t, "界...", truncate("界界界界", 5))
}
