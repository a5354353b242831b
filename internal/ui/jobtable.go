package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/turkosaurus/cion/internal/api"
	"github.com/turkosaurus/cion/internal/types"
	"github.com/turkosaurus/cion/internal/ui/styles"
)

const shortSHALen = 6

// colSep is the number of spaces between columns in the job table.
const colSep = 2

const (
	colOk      = 2
	colNum     = 6
	colStarted = 16
	colTook    = 8
)

// JobTable lists the jobs of the current repository.
type JobTable struct {
	cursor int
}

// Move shifts the cursor by delta, clamped to n rows.
func (jt *JobTable) Move(delta, n int) {
	jt.cursor = max(0, min(n-1, jt.cursor+delta))
}

// Clamp keeps the cursor inside a list that may have shrunk.
func (jt *JobTable) Clamp(n int) {
	jt.cursor = max(0, min(n-1, jt.cursor))
}

// Selected returns the job under the cursor.
func (jt JobTable) Selected(jobs []types.Job) *types.Job {
	if jt.cursor >= 0 && jt.cursor < len(jobs) {
		return &jobs[jt.cursor]
	}
	return nil
}

// commitCell renders "sha[:6] (branch)".
func commitCell(j types.Job) string {
	return fmt.Sprintf("%s (%s)", j.ShortSHA(shortSHALen), j.Branch)
}

// startedCell renders the start time relative to now, e.g. "3 minutes ago".
func startedCell(j types.Job) string {
	if j.StartedAt == nil || j.StartedAt.IsZero() {
		return "-"
	}
	return humanize.Time(*j.StartedAt)
}

// tookCell renders the duration, or "-" while the job has not ended.
func tookCell(j types.Job) string {
	d, ok := j.Duration()
	if !ok {
		return "-"
	}
	return api.FormatDuration(int64(d.Seconds()))
}

// View renders the table header and one row per job.
func (jt JobTable) View(s styles.Styles, jobs Fetchable[[]types.Job], repo string, active bool, width, height int) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.ColorGray)
	if active {
		headerStyle = headerStyle.Foreground(styles.ColorPurple)
	}

	switch {
	case repo == "":
		return s.Dimmed.Render("no repository selected")
	case jobs.State == LoadError:
		return s.Error.Render(api.TruncateString(jobs.Err.Error(), width))
	case !jobs.HasData():
		return s.Dimmed.Render("loading jobs...")
	case len(jobs.Data) == 0:
		return s.Dimmed.Render("no jobs for " + repo)
	}

	colCommit := max(10, width-colNum-colStarted-colTook-colOk-4*colSep)
	header := fmt.Sprintf("%*s  %-*s  %-*s  %-*s  %-*s",
		colNum, "#",
		colCommit, "COMMIT",
		colStarted, "STARTED",
		colTook, "TOOK",
		colOk, "OK",
	)
	rows := []string{headerStyle.Render(header)}

	listH := max(1, height-2)
	start := 0
	if jt.cursor >= listH {
		start = jt.cursor - listH + 1
	}
	end := min(start+listH, len(jobs.Data))
	for i := start; i < end; i++ {
		rows = append(rows, jt.renderRow(s, jobs.Data[i], i == jt.cursor, active, width, colCommit))
	}

	footer := ""
	if len(jobs.Data) > listH {
		footer = fmt.Sprintf(" %d/%d", jt.cursor+1, len(jobs.Data))
	}
	if jobs.Stale() {
		footer += " (stale)"
	}
	if footer != "" {
		rows = append(rows, s.Dimmed.Render(footer))
	}
	return strings.Join(rows, "\n")
}

func (jt JobTable) renderRow(s styles.Styles, job types.Job, selected, active bool, width, colCommit int) string {
	status := job.Status()
	numS := fmt.Sprintf("%*d", colNum, job.Number)
	commitS := fmt.Sprintf("%-*s", colCommit, api.TruncateString(commitCell(job), colCommit))
	startedS := fmt.Sprintf("%-*s", colStarted, api.TruncateString(startedCell(job), colStarted))
	tookS := fmt.Sprintf("%-*s", colTook, tookCell(job))
	iconS := fmt.Sprintf("%-*s", colOk, styles.StatusIcon(status))

	if selected && active {
		// shared background so status and duration colors are preserved
		bg := lipgloss.NewStyle().Background(styles.ColorBgLight)
		sep := bg.Render("  ")
		num := lipgloss.NewStyle().Foreground(styles.ColorWhite).Background(styles.ColorBgLight).Render(numS)
		commit := lipgloss.NewStyle().Bold(true).Foreground(styles.ColorWhite).Background(styles.ColorBgLight).Render(commitS)
		started := s.Dimmed.Background(styles.ColorBgLight).Render(startedS)
		took := s.Duration.Background(styles.ColorBgLight).Render(tookS)
		st := s.StatusStyle(status).Background(styles.ColorBgLight).Render(iconS)
		row := num + sep + commit + sep + started + sep + took + sep + st
		used := colNum + colCommit + colStarted + colTook + colOk + 4*colSep
		if pad := width - used; pad > 0 {
			row += bg.Render(strings.Repeat(" ", pad))
		}
		return row
	}

	if selected {
		plain := numS + "  " + commitS + "  " + startedS + "  " + tookS + "  " + iconS
		return lipgloss.NewStyle().Bold(true).Foreground(styles.ColorPurple).Render(plain)
	}

	return numS + "  " + commitS + "  " + s.Dimmed.Render(startedS) + "  " +
		s.Duration.Render(tookS) + "  " + s.StatusStyle(status).Render(iconS)
}
