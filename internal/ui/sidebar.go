package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/turkosaurus/cion/internal/api"
	"github.com/turkosaurus/cion/internal/ui/styles"
)

// currentMarker prefixes the repository whose jobs are shown.
const currentMarker = "▸ "

// Sidebar lists the owner's repositories.
type Sidebar struct {
	cursor int
}

// Move shifts the cursor by delta, clamped to n entries.
func (sb *Sidebar) Move(delta, n int) {
	sb.cursor = max(0, min(n-1, sb.cursor+delta))
}

// MoveTo puts the cursor on repo when it is listed.
func (sb *Sidebar) MoveTo(repo string, repos []string) {
	for i, r := range repos {
		if r == repo {
			sb.cursor = i
			return
		}
	}
}

// Selected returns the repository under the cursor.
func (sb Sidebar) Selected(repos []string) string {
	if sb.cursor >= 0 && sb.cursor < len(repos) {
		return repos[sb.cursor]
	}
	return ""
}

// View renders the owner header followed by one row per repository. The
// entry equal to current carries the current marker.
func (sb Sidebar) View(s styles.Styles, owner string, repos Fetchable[[]string], current string, active bool, width, height int) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.ColorGray)
	if active {
		headerStyle = headerStyle.Foreground(styles.ColorPurple)
	}
	selectedStyle := lipgloss.NewStyle().Bold(true).Background(styles.ColorBgLight).Foreground(styles.ColorWhite)

	header := "OWNER"
	if repos.Stale() {
		header += " (stale)"
	}
	rows := []string{
		headerStyle.Render(header),
		s.Repo.Render(api.TruncateString(owner, width-2)),
		s.Dimmed.Render(strings.Repeat("─", max(1, width-1))),
		headerStyle.Render("REPOS"),
	}

	switch {
	case repos.State == LoadError:
		rows = append(rows, s.Error.Render(api.TruncateString(repos.Err.Error(), width-2)))
		return strings.Join(rows, "\n")
	case !repos.HasData():
		rows = append(rows, s.Dimmed.Render("loading..."))
		return strings.Join(rows, "\n")
	case len(repos.Data) == 0:
		rows = append(rows, s.Dimmed.Render("no repositories"))
		return strings.Join(rows, "\n")
	}

	listH := max(1, height-len(rows))
	start := 0
	if sb.cursor >= listH {
		start = sb.cursor - listH + 1
	}
	end := min(start+listH, len(repos.Data))
	for i := start; i < end; i++ {
		name := repos.Data[i]
		prefix := "  "
		if name == current {
			prefix = currentMarker
		}
		text := fmt.Sprintf("%-*s", max(0, width-2), prefix+api.TruncateString(name, width-4))
		switch {
		case i == sb.cursor && active:
			rows = append(rows, selectedStyle.Render(text))
		case name == current:
			rows = append(rows, lipgloss.NewStyle().Bold(true).Foreground(styles.ColorPurple).Render(text))
		default:
			rows = append(rows, s.Normal.Render(text))
		}
	}
	return strings.Join(rows, "\n")
}
