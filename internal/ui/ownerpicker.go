package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/turkosaurus/cion/internal/api"
	"github.com/turkosaurus/cion/internal/ui/styles"
)

// OwnerPickResult is returned when the picker closes with a selection.
type OwnerPickResult struct {
	Chosen string
}

// OwnerPicker is the popover for switching the owner whose repositories are
// shown. Owners come from the API's owner listing; a typed name that is not
// listed can still be chosen.
type OwnerPicker struct {
	active           bool
	input            textinput.Model
	owners           []string
	suggestionCursor int
}

func NewOwnerPicker() OwnerPicker {
	oi := textinput.New()
	oi.Placeholder = "owner..."
	oi.CharLimit = 100
	return OwnerPicker{input: oi}
}

// Open activates the picker, resetting its state.
func (op *OwnerPicker) Open(owners []string) tea.Cmd {
	op.active = true
	op.owners = owners
	op.input.SetValue("")
	op.input.Focus()
	op.suggestionCursor = 0
	return textinput.Blink
}

// SetOwners replaces the suggestions, e.g. when the listing arrives after
// the picker opened.
func (op *OwnerPicker) SetOwners(owners []string) {
	op.owners = owners
	if n := len(op.filtered()); op.suggestionCursor >= n {
		op.suggestionCursor = max(0, n-1)
	}
}

// Active returns whether the picker is currently showing.
func (op OwnerPicker) Active() bool { return op.active }

// Update handles key events while the picker is active.
// result is non-nil when the picker closes with a selection.
func (op OwnerPicker) Update(msg tea.KeyMsg) (OwnerPicker, tea.Cmd, *OwnerPickResult) {
	switch msg.Type {
	case tea.KeyEscape:
		op.active = false
		op.input.Blur()
		return op, nil, nil

	case tea.KeyEnter:
		chosen := strings.TrimSpace(op.input.Value())
		if suggestions := op.filtered(); len(suggestions) > 0 {
			chosen = suggestions[min(op.suggestionCursor, len(suggestions)-1)]
		}
		op.active = false
		op.input.Blur()
		if chosen != "" {
			return op, nil, &OwnerPickResult{Chosen: chosen}
		}
		return op, nil, nil

	case tea.KeyUp:
		if op.suggestionCursor > 0 {
			op.suggestionCursor--
		}
		return op, nil, nil

	case tea.KeyDown:
		if op.suggestionCursor < len(op.filtered())-1 {
			op.suggestionCursor++
		}
		return op, nil, nil

	default:
		var cmd tea.Cmd
		op.input, cmd = op.input.Update(msg)
		op.suggestionCursor = 0
		return op, cmd, nil
	}
}

func (op OwnerPicker) filtered() []string {
	q := strings.ToLower(op.input.Value())
	var out []string
	for _, o := range op.owners {
		if q == "" || strings.Contains(strings.ToLower(o), q) {
			out = append(out, o)
		}
	}
	return out
}

// View renders the input and suggestion list as individual rows.
func (op OwnerPicker) View(s styles.Styles, width int) []string {
	const maxSugg = 6
	selectedStyle := lipgloss.NewStyle().Bold(true).
		Background(styles.ColorBgLight).Foreground(styles.ColorWhite)

	rows := []string{op.input.View()}
	suggestions := op.filtered()
	for i, o := range suggestions[:min(maxSugg, len(suggestions))] {
		if i == op.suggestionCursor {
			rows = append(rows, selectedStyle.Render("> "+api.TruncateString(o, width-4)))
		} else {
			rows = append(rows, s.Dimmed.Render("  "+api.TruncateString(o, width-4)))
		}
	}
	return rows
}

// HelpView returns the help bar text when the picker is active.
func (op OwnerPicker) HelpView(s styles.Styles) string {
	return s.Dimmed.Render("↑/↓ navigate  ↵ switch owner  esc cancel")
}
