package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/turkosaurus/cion/internal/api"
	"github.com/turkosaurus/cion/internal/ui/keys"
	"github.com/turkosaurus/cion/internal/ui/styles"
)

// LogViewer shows a job log with scrolling and context-window search.
type LogViewer struct {
	logs         string
	title        string
	logOffset    int
	follow       bool // pin the view to the last line as the log grows
	logQuery     string
	searching    bool
	textInput    textinput.Model
	contextLines []logContextLine
	matchGroups  []int
	matchIdx     int

	styles styles.Styles
	keys   keys.KeyMap
}

func NewLogViewer(s styles.Styles, k keys.KeyMap) LogViewer {
	ti := textinput.New()
	ti.Placeholder = "search logs..."
	ti.CharLimit = 100
	return LogViewer{
		styles:    s,
		keys:      k,
		textInput: ti,
		follow:    true,
	}
}

// SetLogs replaces the viewer contents and resets scroll and search state.
func (lv *LogViewer) SetLogs(logs, title string) {
	lv.logs = logs
	lv.title = title
	lv.logOffset = 0
	lv.follow = true
	lv.logQuery = ""
	lv.searching = false
	lv.contextLines = nil
	lv.matchGroups = nil
	lv.matchIdx = 0
}

// Refresh swaps in a newer copy of the same log, keeping the scroll position
// and re-running an active search.
func (lv *LogViewer) Refresh(logs string) {
	if logs == lv.logs {
		return
	}
	lv.logs = logs
	if lv.logQuery == "" {
		return
	}
	lv.contextLines, lv.matchGroups = buildLogContext(lv.lines(), lv.logQuery, logContextSize)
	if lv.matchIdx >= len(lv.matchGroups) {
		lv.matchIdx = max(0, len(lv.matchGroups)-1)
	}
	lv.logOffset = min(lv.logOffset, max(0, len(lv.contextLines)-1))
}

// Searching reports whether the search prompt has focus.
func (lv LogViewer) Searching() bool { return lv.searching }

func (lv LogViewer) lines() []string {
	return strings.Split(lv.logs, "\n")
}

func (lv LogViewer) displayLen() int {
	if lv.logQuery != "" {
		return len(lv.contextLines)
	}
	return len(lv.lines())
}

// Update handles key events for the log viewer.
func (lv LogViewer) Update(msg tea.KeyMsg, height int) (LogViewer, tea.Cmd) {
	if lv.searching {
		return lv.handleSearch(msg)
	}

	displayLen := lv.displayLen()
	visibleLines := max(1, height-logViewOverhead)
	maxOffset := max(0, displayLen-visibleLines)
	if lv.follow && lv.logQuery == "" {
		lv.logOffset = maxOffset
	}

	switch {
	case key.Matches(msg, lv.keys.Back), msg.Type == tea.KeyBackspace:
		if lv.logQuery != "" {
			lv.logQuery = ""
			lv.contextLines = nil
			lv.matchGroups = nil
			lv.matchIdx = 0
			lv.logOffset = 0
			return lv, nil
		}
		return lv, func() tea.Msg { return backToMainMsg{} }

	case key.Matches(msg, lv.keys.Search):
		lv.searching = true
		lv.textInput.SetValue("")
		lv.textInput.Focus()
		return lv, textinput.Blink

	case key.Matches(msg, lv.keys.SearchNext):
		if lv.logQuery != "" && lv.matchIdx < len(lv.matchGroups)-1 {
			lv.matchIdx++
			lv.logOffset = lv.matchGroups[lv.matchIdx]
		}

	case key.Matches(msg, lv.keys.SearchPrev):
		if lv.logQuery != "" && lv.matchIdx > 0 {
			lv.matchIdx--
			lv.logOffset = lv.matchGroups[lv.matchIdx]
		}

	case key.Matches(msg, lv.keys.Up):
		lv.follow = false
		if lv.logOffset > 0 {
			lv.logOffset--
		}

	case key.Matches(msg, lv.keys.Down):
		if lv.logOffset < maxOffset {
			lv.logOffset++
		}

	case key.Matches(msg, lv.keys.PageUp):
		lv.follow = false
		lv.logOffset = max(0, lv.logOffset-visibleLines)

	case key.Matches(msg, lv.keys.PageDown):
		lv.logOffset = min(maxOffset, lv.logOffset+visibleLines)

	case key.Matches(msg, lv.keys.HalfPageUp):
		lv.follow = false
		lv.logOffset = max(0, lv.logOffset-visibleLines/2)

	case key.Matches(msg, lv.keys.HalfPageDown):
		lv.logOffset = min(maxOffset, lv.logOffset+visibleLines/2)

	case key.Matches(msg, lv.keys.Top):
		lv.follow = false
		lv.logOffset = 0

	case key.Matches(msg, lv.keys.Bottom):
		lv.follow = true
		lv.logOffset = maxOffset
	}

	return lv, nil
}

func (lv LogViewer) handleSearch(msg tea.KeyMsg) (LogViewer, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		lv.searching = false
		lv.textInput.Blur()
		return lv, nil
	case tea.KeyEnter:
		lv.logQuery = lv.textInput.Value()
		lv.searching = false
		lv.textInput.Blur()
		lv.logOffset = 0
		lv.matchIdx = 0
		if lv.logQuery != "" {
			lv.contextLines, lv.matchGroups = buildLogContext(lv.lines(), lv.logQuery, logContextSize)
		} else {
			lv.contextLines = nil
			lv.matchGroups = nil
		}
		return lv, nil
	}
	var cmd tea.Cmd
	lv.textInput, cmd = lv.textInput.Update(msg)
	return lv, cmd
}

// View renders the log into a width x height box.
func (lv LogViewer) View(width, height int) string {
	w := width
	if w == 0 {
		w = 80
	}
	visibleLines := max(1, height-logViewOverhead)
	maxLineW := max(10, w-7)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.ColorPurple)

	var sb strings.Builder

	if lv.logQuery != "" && len(lv.contextLines) > 0 {
		// context-window mode
		total := len(lv.contextLines)
		end := min(lv.logOffset+visibleLines, total)
		matchInfo := fmt.Sprintf("[/%s  match %d/%d]", lv.logQuery, lv.matchIdx+1, len(lv.matchGroups))
		sb.WriteString(titleStyle.Render(lv.title) + "  " + lv.styles.Dimmed.Render(matchInfo))
		sb.WriteString("\n\n")

		for i := lv.logOffset; i < end; i++ {
			cl := lv.contextLines[i]
			if cl.lineNo == 0 {
				sb.WriteString("\n")
				continue
			}
			text := api.TruncateString(cl.text, maxLineW)
			sb.WriteString(lv.styles.LogLineNumber.Render(fmt.Sprintf("%5d ", cl.lineNo)))
			if cl.isMatch {
				sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(styles.ColorYellow).Render(text))
			} else {
				sb.WriteString(lv.styles.Dimmed.Render(text))
			}
			sb.WriteString("\n")
		}
	} else if lv.logQuery != "" {
		sb.WriteString(titleStyle.Render(lv.title))
		sb.WriteString("\n\n")
		sb.WriteString(lv.styles.Dimmed.Render(fmt.Sprintf("no matches for /%s", lv.logQuery)))
		sb.WriteString("\n")
	} else {
		logLines := lv.lines()
		offset := lv.logOffset
		if lv.follow {
			offset = max(0, len(logLines)-visibleLines)
		}
		end := min(offset+visibleLines, len(logLines))
		scrollInfo := fmt.Sprintf("%d-%d / %d", offset+1, end, len(logLines))
		gap := max(1, w-lipgloss.Width(lv.title)-len(scrollInfo)-1)
		sb.WriteString(titleStyle.Render(lv.title) + strings.Repeat(" ", gap) + lv.styles.Dimmed.Render(scrollInfo))
		sb.WriteString("\n\n")

		for i := offset; i < end; i++ {
			sb.WriteString(lv.styles.LogLineNumber.Render(fmt.Sprintf("%5d ", i+1)))
			sb.WriteString(lv.styles.LogLine.Render(api.TruncateString(logLines[i], maxLineW)))
			sb.WriteString("\n")
		}
	}

	if lv.searching {
		sb.WriteString(lv.styles.HelpKey.Render("/") + " " + lv.textInput.View())
	}
	return sb.String()
}

// HelpView returns the key hints for the help bar.
func (lv LogViewer) HelpView() string {
	var items []string
	switch {
	case lv.searching:
		items = []string{
			lv.styles.HelpKey.Render("↵") + " " + lv.styles.HelpDesc.Render("search"),
			lv.styles.HelpKey.Render("esc") + " " + lv.styles.HelpDesc.Render("cancel"),
		}
	case lv.logQuery != "":
		items = []string{
			bindingHelp(lv.styles, lv.keys.SearchNext),
			bindingHelp(lv.styles, lv.keys.SearchPrev),
			lv.styles.HelpKey.Render("↑/↓") + " " + lv.styles.HelpDesc.Render("scroll"),
			lv.styles.HelpKey.Render(lv.keys.Search.Help().Key) + " " + lv.styles.HelpDesc.Render("new search"),
			lv.styles.HelpKey.Render("esc") + " " + lv.styles.HelpDesc.Render("clear search"),
		}
	default:
		items = []string{
			bindingHelp(lv.styles, lv.keys.Up),
			bindingHelp(lv.styles, lv.keys.Down),
			lv.styles.HelpKey.Render("g/G") + " " + lv.styles.HelpDesc.Render("top/follow"),
			lv.styles.HelpKey.Render("ctrl+u/d") + " " + lv.styles.HelpDesc.Render("½ page"),
			bindingHelp(lv.styles, lv.keys.Search),
			lv.styles.HelpKey.Render("esc") + " " + lv.styles.HelpDesc.Render("close"),
		}
	}
	return strings.Join(items, "  ")
}
