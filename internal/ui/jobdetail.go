package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/turkosaurus/cion/internal/api"
	"github.com/turkosaurus/cion/internal/poll"
	"github.com/turkosaurus/cion/internal/types"
	"github.com/turkosaurus/cion/internal/ui/keys"
	"github.com/turkosaurus/cion/internal/ui/styles"
)

// Phase is the refresh state of the job detail pane.
type Phase int

const (
	PhasePolling Phase = iota
	PhaseSettled
)

func (p Phase) String() string {
	if p == PhaseSettled {
		return "settled"
	}
	return "polling"
}

// detailHeaderRows is the height of the job summary above the log.
const detailHeaderRows = 7

// JobDetail follows one job until it ends. While the job runs, the job and
// its log are refetched every interval. The first response showing the job
// ended stops the session and triggers one last log fetch; nothing is
// polled after that. Opening another job starts over with a new session.
type JobDetail struct {
	client api.Client

	open    bool
	key     types.JobKey
	session poll.Session
	phase   Phase
	job     Fetchable[*types.Job]
	log     Fetchable[string]
	viewer  LogViewer

	styles styles.Styles
}

func NewJobDetail(client api.Client, interval time.Duration, s styles.Styles, k keys.KeyMap) JobDetail {
	return JobDetail{
		client:  client,
		session: poll.New(interval),
		viewer:  NewLogViewer(s, k),
		styles:  s,
	}
}

// Open shows job in the pane, using it as the initial summary until the
// first response arrives. Opening the job already shown is a no-op.
func (d *JobDetail) Open(job types.Job) tea.Cmd {
	key := job.Key()
	if d.open && key == d.key {
		return nil
	}
	interval := d.session.Interval()
	d.session.Stop()
	d.open = true
	d.key = key
	d.phase = PhasePolling
	d.job.Reset()
	d.job.SetData(&job)
	d.log.Reset()
	d.viewer.SetLogs("", key.String())
	d.session = poll.New(interval)
	return d.session.Start()
}

// Close hides the pane and stops polling.
func (d *JobDetail) Close() {
	d.session.Stop()
	d.open = false
}

// Refresh polls immediately while the job runs. A settled job only has its
// log fetched again.
func (d *JobDetail) Refresh(ctx context.Context) tea.Cmd {
	if !d.open {
		return nil
	}
	if d.phase == PhaseSettled {
		return fetchLog(ctx, d.client, d.session.ID(), d.key, true)
	}
	return d.session.Restart(d.session.Interval())
}

func (d JobDetail) IsOpen() bool      { return d.open }
func (d JobDetail) Key() types.JobKey { return d.key }
func (d JobDetail) Phase() Phase      { return d.phase }

// Polling reports whether the pane still has a live refresh session.
func (d JobDetail) Polling() bool { return d.session.Live() }

// Fetching reports whether a job request is in flight.
func (d JobDetail) Fetching() bool { return d.job.IsFetching() }

// Job returns the latest job summary, nil before anything was loaded.
func (d JobDetail) Job() *types.Job { return d.job.Data }

// Searching reports whether the log search prompt has focus.
func (d JobDetail) Searching() bool { return d.viewer.Searching() }

// Update handles detail ticks and fetch results. Everything addressed to
// another session or job is ignored.
func (d JobDetail) Update(ctx context.Context, msg tea.Msg) (JobDetail, tea.Cmd) {
	switch msg := msg.(type) {
	case poll.TickMsg:
		fire, next := d.session.Update(msg)
		if !fire {
			return d, nil
		}
		d.job.SetFetching()
		id := d.session.ID()
		return d, tea.Batch(next,
			fetchJob(ctx, d.client, id, d.key),
			fetchLog(ctx, d.client, id, d.key, false),
		)

	case jobLoadedMsg:
		if !d.current(msg.session, msg.key) || !d.session.Live() {
			return d, nil
		}
		if msg.err != nil {
			d.job.SetError(msg.err)
			return d, nil
		}
		d.job.SetData(msg.job)
		if msg.job.Terminal() {
			d.phase = PhaseSettled
			d.session.Stop()
			return d, fetchLog(ctx, d.client, d.session.ID(), d.key, true)
		}

	case logLoadedMsg:
		if !d.current(msg.session, msg.key) {
			return d, nil
		}
		// a refresh issued before the job settled must not replace the final log
		if d.phase == PhaseSettled && !msg.final {
			return d, nil
		}
		if msg.err != nil {
			d.log.SetError(msg.err)
			return d, nil
		}
		d.log.SetData(msg.log)
		d.viewer.Refresh(msg.log)
	}
	return d, nil
}

func (d JobDetail) current(session int, key types.JobKey) bool {
	return d.open && session == d.session.ID() && key == d.key
}

// HandleKey forwards keys to the log viewer.
func (d JobDetail) HandleKey(msg tea.KeyMsg, height int) (JobDetail, tea.Cmd) {
	var cmd tea.Cmd
	d.viewer, cmd = d.viewer.Update(msg, height-detailHeaderRows)
	return d, cmd
}

// HelpView returns the log viewer's key hints.
func (d JobDetail) HelpView() string { return d.viewer.HelpView() }

// View renders the job summary above its log.
func (d JobDetail) View(active bool, width, height int) string {
	if !d.open {
		return d.styles.Dimmed.Render("no job selected")
	}
	s := d.styles

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.ColorGray)
	if active {
		headerStyle = headerStyle.Foreground(styles.ColorPurple)
	}
	phase := s.StatusRunning.Render("● " + d.phase.String())
	if d.phase == PhaseSettled {
		phase = s.Dimmed.Render(d.phase.String())
	}
	title := headerStyle.Render(api.TruncateString(d.key.String(), width-12))
	gap := max(1, width-lipgloss.Width(title)-lipgloss.Width(phase))

	var sb strings.Builder
	sb.WriteString(title + strings.Repeat(" ", gap) + phase + "\n")

	field := func(label, value string) {
		sb.WriteString(s.Dimmed.Render(fmt.Sprintf("%-8s", label)))
		sb.WriteString(value + "\n")
	}
	if job := d.job.Data; job != nil {
		status := job.Status()
		field("commit", s.Normal.Render(job.ShortSHA(shortSHALen))+" "+s.Branch.Render(job.Branch))
		field("started", startedCell(*job))
		field("took", s.Duration.Render(tookCell(*job)))
		field("status", s.StatusStyle(status).Render(styles.StatusIcon(status)+" "+string(status)))
	} else {
		for range 4 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString(d.refreshLine() + "\n")
	sb.WriteString(s.Dimmed.Render(strings.Repeat("─", max(1, width-1))) + "\n")

	switch {
	case d.log.State == LoadError:
		sb.WriteString(s.Error.Render(api.TruncateString(d.log.Err.Error(), width)))
	case !d.log.HasData():
		sb.WriteString(s.Dimmed.Render("loading log..."))
	default:
		sb.WriteString(d.viewer.View(width, height-detailHeaderRows))
	}
	return sb.String()
}

// refreshLine says when the summary was last updated and whether the last
// refresh failed.
func (d JobDetail) refreshLine() string {
	if d.job.FetchedAt.IsZero() {
		return ""
	}
	line := "updated " + humanize.Time(d.job.FetchedAt)
	if d.job.Stale() || d.log.Stale() {
		return d.styles.Error.Render(line + " (stale)")
	}
	return d.styles.Dimmed.Render(line)
}
