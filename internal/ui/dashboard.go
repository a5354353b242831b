package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/turkosaurus/cion/internal/api"
	"github.com/turkosaurus/cion/internal/types"
	"github.com/turkosaurus/cion/internal/ui/keys"
	"github.com/turkosaurus/cion/internal/ui/styles"
)

const (
	panelRepos = iota
	panelJobs
	panelDetail
)

const sidebarW = 22

// request asks App for something that involves its poll sessions.
type request struct {
	repo    string // switch the current repository
	owner   string // switch owner
	refresh bool
	quit    bool
}

// Dashboard is the three-panel view: repositories, jobs, job detail.
type Dashboard struct {
	activePanel int

	owner       string
	currentRepo string
	repos       Fetchable[[]string]
	jobs        Fetchable[[]types.Job]
	owners      Fetchable[[]string]

	sidebar Sidebar
	table   JobTable
	detail  JobDetail
	picker  OwnerPicker

	client api.Client
	styles styles.Styles
	keys   keys.KeyMap
}

func NewDashboard(client api.Client, detail JobDetail, s styles.Styles, k keys.KeyMap) Dashboard {
	return Dashboard{
		activePanel: panelRepos,
		detail:      detail,
		picker:      NewOwnerPicker(),
		client:      client,
		styles:      s,
		keys:        k,
	}
}

// SetOwner switches to owner, forgetting its repositories and jobs.
func (d *Dashboard) SetOwner(owner, repo string) {
	d.owner = owner
	d.currentRepo = repo
	d.repos.Reset()
	d.jobs.Reset()
	d.sidebar = Sidebar{}
	d.table = JobTable{}
	d.detail.Close()
	d.activePanel = panelRepos
}

// SetRepo makes repo current and forgets the previous repository's jobs.
func (d *Dashboard) SetRepo(repo string) {
	if repo == d.currentRepo {
		return
	}
	d.currentRepo = repo
	d.jobs.Reset()
	d.table = JobTable{}
	d.detail.Close()
}

// SetRepos replaces the repository list.
func (d *Dashboard) SetRepos(repos []string) {
	first := !d.repos.HasData()
	d.repos.SetData(repos)
	if first {
		d.sidebar.MoveTo(d.currentRepo, repos)
	}
	d.sidebar.Move(0, len(repos))
}

// SetJobs replaces the job list.
func (d *Dashboard) SetJobs(jobs []types.Job) {
	d.jobs.SetData(jobs)
	d.table.Clamp(len(jobs))
}

// Update handles a key event.
func (d Dashboard) Update(ctx context.Context, msg tea.KeyMsg, height int) (Dashboard, tea.Cmd, *request) {
	if d.picker.Active() {
		var cmd tea.Cmd
		var result *OwnerPickResult
		d.picker, cmd, result = d.picker.Update(msg)
		if result != nil && result.Chosen != d.owner {
			return d, cmd, &request{owner: result.Chosen}
		}
		return d, cmd, nil
	}

	if d.activePanel == panelDetail && d.detail.Searching() {
		var cmd tea.Cmd
		d.detail, cmd = d.detail.HandleKey(msg, d.bodyHeight(height))
		return d, cmd, nil
	}

	switch {
	case key.Matches(msg, d.keys.Quit):
		return d, nil, &request{quit: true}

	case key.Matches(msg, d.keys.Owner):
		return d, tea.Batch(d.picker.Open(d.owners.Data), fetchOwners(ctx, d.client)), nil

	case key.Matches(msg, d.keys.Refresh):
		return d, d.detail.Refresh(ctx), &request{refresh: true}

	case key.Matches(msg, d.keys.Left):
		if d.activePanel > panelRepos {
			d.activePanel--
		}
		return d, nil, nil
	}

	if d.activePanel == panelDetail {
		var cmd tea.Cmd
		d.detail, cmd = d.detail.HandleKey(msg, d.bodyHeight(height))
		return d, cmd, nil
	}

	switch {
	case key.Matches(msg, d.keys.Up):
		d.move(-1)
	case key.Matches(msg, d.keys.Down):
		d.move(1)
	case key.Matches(msg, d.keys.PageUp):
		d.move(-10)
	case key.Matches(msg, d.keys.PageDown):
		d.move(10)
	case key.Matches(msg, d.keys.Top):
		d.move(-1 << 30)
	case key.Matches(msg, d.keys.Bottom):
		d.move(1 << 30)

	case key.Matches(msg, d.keys.Right):
		if d.activePanel == panelRepos || d.detail.IsOpen() {
			d.activePanel++
		}

	case key.Matches(msg, d.keys.Enter):
		switch d.activePanel {
		case panelRepos:
			repo := d.sidebar.Selected(d.repos.Data)
			if repo == "" {
				return d, nil, nil
			}
			d.activePanel = panelJobs
			if repo != d.currentRepo {
				return d, nil, &request{repo: repo}
			}
		case panelJobs:
			if job := d.table.Selected(d.jobs.Data); job != nil {
				d.activePanel = panelDetail
				return d, d.detail.Open(*job), nil
			}
		}

	case key.Matches(msg, d.keys.Back):
		if d.activePanel == panelJobs && d.detail.IsOpen() {
			d.detail.Close()
		} else if d.activePanel > panelRepos {
			d.activePanel--
		}
	}
	return d, nil, nil
}

func (d *Dashboard) move(delta int) {
	switch d.activePanel {
	case panelRepos:
		d.sidebar.Move(delta, len(d.repos.Data))
	case panelJobs:
		d.table.Move(delta, len(d.jobs.Data))
	}
}

// CloseDetail unmounts the detail pane and gives focus to the job table.
func (d *Dashboard) CloseDetail() {
	d.detail.Close()
	if d.activePanel == panelDetail {
		d.activePanel = panelJobs
	}
}

// bodyHeight is the panel height for a terminal of the given height.
func (d Dashboard) bodyHeight(height int) int {
	if height == 0 {
		height = 24
	}
	return max(5, height-3) // title + panel headers + help
}

// View renders the complete dashboard (title + panels + help bar).
func (d Dashboard) View(width, height int, message string) string {
	w := width
	if w == 0 {
		w = 80
	}
	bodyH := d.bodyHeight(height)

	rest := max(20, w-sidebarW-1)
	tableW, detailW := rest, 0
	if d.detail.IsOpen() {
		tableW = rest * 45 / 100
		detailW = rest - tableW - 1
	}

	sep := lipgloss.NewStyle().
		Foreground(styles.ColorSubtle).
		Render(strings.Repeat("│\n", bodyH-1) + "│")

	panels := []string{
		lipgloss.NewStyle().Width(sidebarW).Height(bodyH).Render(
			d.sidebar.View(d.styles, d.owner, d.repos, d.currentRepo, d.activePanel == panelRepos, sidebarW, bodyH)),
		sep,
		lipgloss.NewStyle().Width(tableW).Height(bodyH).Render(
			d.table.View(d.styles, d.jobs, d.currentRepo, d.activePanel == panelJobs, tableW, bodyH)),
	}
	if d.detail.IsOpen() {
		panels = append(panels, sep,
			lipgloss.NewStyle().Width(detailW).Height(bodyH).MaxHeight(bodyH).Render(
				d.detail.View(d.activePanel == panelDetail, detailW, bodyH)))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		renderTitle(d.owner, d.currentRepo),
		d.renderPanelHeaders(tableW, detailW),
		lipgloss.JoinHorizontal(lipgloss.Top, panels...),
		d.renderHelpBar(w, message),
	)
}

func (d Dashboard) renderPanelHeaders(tableW, detailW int) string {
	sep := lipgloss.NewStyle().Background(styles.ColorBgLight).Foreground(styles.ColorSubtle).Render("│")
	label := func(panel int, text string, w int) string {
		style := lipgloss.NewStyle().Width(w).Align(lipgloss.Center)
		if d.activePanel == panel {
			style = style.Bold(true).Background(styles.ColorPurple).Foreground(styles.ColorBg)
		} else {
			style = style.Background(styles.ColorBgLight).Foreground(styles.ColorWhite)
		}
		return style.Render(text)
	}
	labels := []string{
		label(panelRepos, withFetching("REPOS", d.repos.IsFetching()), sidebarW),
		sep,
		label(panelJobs, withFetching("JOBS", d.jobs.IsFetching()), tableW),
	}
	if detailW > 0 {
		labels = append(labels, sep, label(panelDetail, withFetching("DETAIL", d.detail.Fetching()), detailW))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, labels...)
}

// fetchingMark trails a panel label while its request is in flight.
const fetchingMark = " ↻"

func withFetching(label string, fetching bool) string {
	if fetching {
		return label + fetchingMark
	}
	return label
}

func (d Dashboard) renderHelpBar(width int, message string) string {
	if d.picker.Active() {
		rows := d.picker.View(d.styles, width)
		return strings.Join(rows, "  ") + "  " + d.picker.HelpView(d.styles)
	}
	if message != "" {
		return d.styles.Dimmed.Render(message)
	}

	var left string
	if d.activePanel == panelDetail {
		left = d.detail.HelpView()
	} else {
		items := []string{
			bindingHelp(d.styles, d.keys.Enter),
			bindingHelp(d.styles, d.keys.Owner),
			bindingHelp(d.styles, d.keys.Refresh),
		}
		if d.detail.IsOpen() {
			items = append(items, bindingHelp(d.styles, d.keys.Back))
		}
		left = strings.Join(items, "  ")
	}
	right := bindingHelp(d.styles, d.keys.Quit)
	gap := max(2, width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}
