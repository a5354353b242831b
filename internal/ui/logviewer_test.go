package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turkosaurus/cion/internal/ui/keys"
	"github.com/turkosaurus/cion/internal/ui/styles"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLogViewerSearch(t *testing.T) {
	s := styles.DefaultStyles()
	k := keys.DefaultKeyMap()

	t.Run("enter search mode and submit query", func(t *testing.T) {
		lv := NewLogViewer(s, k)
		lv.SetLogs("line one\nline two error\nline three\nline four error\nline five", "acme/repoA#1")

		lv, _ = lv.Update(runes("/"), 40)
		assert.True(t, lv.Searching())

		for _, r := range "error" {
			lv, _ = lv.Update(runes(string(r)), 40)
		}
		lv, _ = lv.Update(tea.KeyMsg{Type: tea.KeyEnter}, 40)
		assert.False(t, lv.Searching())
		assert.Equal(t, "error", lv.logQuery)
		assert.NotEmpty(t, lv.contextLines)
		assert.NotEmpty(t, lv.matchGroups)
	})

	t.Run("search next and prev", func(t *testing.T) {
		lv := NewLogViewer(s, k)
		lv.SetLogs(strings.Repeat("filler\n", 20)+"ERROR here\n"+strings.Repeat("filler\n", 20)+"ERROR again\n", "acme/repoA#1")

		lv.logQuery = "ERROR"
		lv.contextLines, lv.matchGroups = buildLogContext(lv.lines(), "ERROR", logContextSize)
		require.True(t, len(lv.matchGroups) >= 2, "expected at least 2 match groups")
		assert.Equal(t, 0, lv.matchIdx)

		lv, _ = lv.Update(runes("n"), 40)
		assert.Equal(t, 1, lv.matchIdx)

		lv, _ = lv.Update(runes("p"), 40)
		assert.Equal(t, 0, lv.matchIdx)

		lv, _ = lv.Update(runes("p"), 40)
		assert.Equal(t, 0, lv.matchIdx, "should not go below 0")
	})

	t.Run("escape cancels search mode", func(t *testing.T) {
		lv := NewLogViewer(s, k)
		lv.SetLogs("test", "job")

		lv, _ = lv.Update(runes("/"), 40)
		assert.True(t, lv.Searching())

		lv, _ = lv.Update(tea.KeyMsg{Type: tea.KeyEscape}, 40)
		assert.False(t, lv.Searching())
	})

	t.Run("back clears an active search before leaving", func(t *testing.T) {
		lv := NewLogViewer(s, k)
		lv.SetLogs("a\nerror\nb", "job")
		lv.logQuery = "error"
		lv.contextLines, lv.matchGroups = buildLogContext(lv.lines(), "error", logContextSize)

		lv, cmd := lv.Update(tea.KeyMsg{Type: tea.KeyEscape}, 40)
		assert.Nil(t, cmd)
		assert.Empty(t, lv.logQuery)

		_, cmd = lv.Update(tea.KeyMsg{Type: tea.KeyEscape}, 40)
		require.NotNil(t, cmd)
		_, ok := cmd().(backToMainMsg)
		assert.True(t, ok)
	})

	t.Run("backspace returns to main", func(t *testing.T) {
		lv := NewLogViewer(s, k)
		lv.SetLogs("test", "job")

		_, cmd := lv.Update(tea.KeyMsg{Type: tea.KeyBackspace}, 40)
		require.NotNil(t, cmd)
		msg := cmd()
		_, ok := msg.(backToMainMsg)
		assert.True(t, ok, "expected backToMainMsg, got %T", msg)
	})
}

func TestLogViewerScrolling(t *testing.T) {
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = "line"
	}
	lv := NewLogViewer(styles.DefaultStyles(), keys.DefaultKeyMap())
	lv.SetLogs(strings.Join(lines, "\n"), "job")
	height := 30

	// a fresh viewer follows the tail; the first key press snaps to it
	lv, _ = lv.Update(runes("j"), height)
	assert.Equal(t, 100-(height-logViewOverhead), lv.logOffset)

	lv, _ = lv.Update(runes("g"), height)
	assert.Equal(t, 0, lv.logOffset)
	assert.False(t, lv.follow)

	lv, _ = lv.Update(runes("j"), height)
	assert.Equal(t, 1, lv.logOffset)

	lv, _ = lv.Update(runes("k"), height)
	assert.Equal(t, 0, lv.logOffset)

	lv, _ = lv.Update(runes("k"), height)
	assert.Equal(t, 0, lv.logOffset, "up at 0 stays at 0")

	lv, _ = lv.Update(runes("G"), height)
	assert.Greater(t, lv.logOffset, 0)
	assert.True(t, lv.follow)
}

func TestLogViewerRefresh(t *testing.T) {
	lv := NewLogViewer(styles.DefaultStyles(), keys.DefaultKeyMap())
	lv.SetLogs("step 1\nstep 2", "acme/repoA#1")
	lv.follow = false
	lv.logOffset = 1
	lv.logQuery = "fail"
	lv.contextLines, lv.matchGroups = buildLogContext(lv.lines(), "fail", logContextSize)
	assert.Empty(t, lv.matchGroups)

	lv.Refresh("step 1\nstep 2\nstep 3 failed")
	assert.Equal(t, 1, lv.logOffset, "refresh keeps the scroll position")
	assert.Equal(t, "fail", lv.logQuery, "refresh keeps the search")
	assert.Len(t, lv.matchGroups, 1)
	assert.Contains(t, lv.View(80, 20), "step 3 failed")
}
