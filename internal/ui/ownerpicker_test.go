package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turkosaurus/cion/internal/ui/styles"
)

func TestOwnerPicker(t *testing.T) {
	owners := []string{"acme", "globex", "initech"}

	t.Run("open and close with esc", func(t *testing.T) {
		op := NewOwnerPicker()
		assert.False(t, op.Active())

		op.Open(owners)
		assert.True(t, op.Active())

		op, _, result := op.Update(tea.KeyMsg{Type: tea.KeyEscape})
		assert.False(t, op.Active())
		assert.Nil(t, result)
	})

	t.Run("select with enter", func(t *testing.T) {
		op := NewOwnerPicker()
		op.Open(owners)

		op, _, result := op.Update(tea.KeyMsg{Type: tea.KeyEnter})
		assert.False(t, op.Active())
		require.NotNil(t, result)
		assert.Equal(t, "acme", result.Chosen)
	})

	t.Run("navigate down and select", func(t *testing.T) {
		op := NewOwnerPicker()
		op.Open(owners)

		op, _, _ = op.Update(tea.KeyMsg{Type: tea.KeyDown})
		_, _, result := op.Update(tea.KeyMsg{Type: tea.KeyEnter})
		require.NotNil(t, result)
		assert.Equal(t, "globex", result.Chosen)
	})

	t.Run("filter narrows suggestions", func(t *testing.T) {
		op := NewOwnerPicker()
		op.Open(owners)

		for _, r := range "tech" {
			op, _, _ = op.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		}
		_, _, result := op.Update(tea.KeyMsg{Type: tea.KeyEnter})
		require.NotNil(t, result)
		assert.Equal(t, "initech", result.Chosen)
	})

	t.Run("unlisted owner can be typed", func(t *testing.T) {
		op := NewOwnerPicker()
		op.Open(nil)

		for _, r := range "umbrella" {
			op, _, _ = op.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		}
		_, _, result := op.Update(tea.KeyMsg{Type: tea.KeyEnter})
		require.NotNil(t, result)
		assert.Equal(t, "umbrella", result.Chosen)
	})

	t.Run("late owner listing", func(t *testing.T) {
		op := NewOwnerPicker()
		op.Open(nil)
		op.SetOwners(owners)
		assert.Len(t, op.View(styles.DefaultStyles(), 30), 1+len(owners))
	})
}
