package ui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/turkosaurus/cion/internal/api"
	"github.com/turkosaurus/cion/internal/config"
	"github.com/turkosaurus/cion/internal/poll"
	"github.com/turkosaurus/cion/internal/ui/keys"
	"github.com/turkosaurus/cion/internal/ui/styles"
)

// override at build time
//
//	go build -ldflags "-X 'github.com/turkosaurus/cion/internal/ui.Version=1.2.3'"
var Version string = "dev"

// App is the top-level tea.Model. It owns the repository and job list poll
// sessions; the job detail pane owns its own.
type App struct {
	config *config.Config
	client api.Client

	ctx    context.Context
	cancel context.CancelFunc

	reposPoll poll.Session
	jobsPoll  poll.Session

	width, height int
	message       string

	dashboard Dashboard
}

// NewApp builds the root view. ctx bounds every request the app makes.
func NewApp(ctx context.Context, cfg *config.Config, client api.Client) App {
	s := styles.DefaultStyles()
	k := keys.DefaultKeyMap()
	ctx, cancel := context.WithCancel(ctx)

	d := NewDashboard(client, NewJobDetail(client, cfg.DetailInterval, s, k), s, k)
	d.SetOwner(cfg.Owner, cfg.Repo)

	return App{
		config:    cfg,
		client:    client,
		ctx:       ctx,
		cancel:    cancel,
		reposPoll: poll.New(cfg.PollInterval),
		jobsPoll:  poll.New(cfg.PollInterval),
		dashboard: d,
	}
}

// Init starts the repository and job list sessions.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.reposPoll.Start(), a.jobsPoll.Start())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case tea.KeyMsg:
		var cmd tea.Cmd
		var req *request
		a.dashboard, cmd, req = a.dashboard.Update(a.ctx, msg, a.height)
		if req == nil {
			return a, cmd
		}
		return a.handleRequest(*req, cmd)

	case poll.TickMsg:
		return a.handleTick(msg)

	case reposLoadedMsg:
		if msg.session != a.reposPoll.ID() || !a.reposPoll.Live() || msg.owner != a.dashboard.owner {
			slog.Debug("dropped stale response", "path", api.ReposPath(msg.owner))
			return a, nil
		}
		if msg.err != nil {
			a.dashboard.repos.SetError(msg.err)
			return a, nil
		}
		a.dashboard.SetRepos(msg.repos)
		if a.dashboard.currentRepo == "" && len(msg.repos) > 0 {
			return a, a.switchRepo(msg.repos[0])
		}

	case jobsLoadedMsg:
		if msg.session != a.jobsPoll.ID() || !a.jobsPoll.Live() ||
			msg.owner != a.dashboard.owner || msg.repo != a.dashboard.currentRepo {
			slog.Debug("dropped stale response", "path", api.JobsPath(msg.owner, msg.repo))
			return a, nil
		}
		if msg.err != nil {
			a.dashboard.jobs.SetError(msg.err)
			return a, nil
		}
		a.dashboard.SetJobs(msg.jobs)

	case jobLoadedMsg, logLoadedMsg:
		var cmd tea.Cmd
		a.dashboard.detail, cmd = a.dashboard.detail.Update(a.ctx, msg)
		return a, cmd

	case ownersLoadedMsg:
		if msg.err != nil {
			a.dashboard.owners.SetError(msg.err)
			return a, nil
		}
		a.dashboard.owners.SetData(msg.owners)
		a.dashboard.picker.SetOwners(msg.owners)

	case backToMainMsg:
		a.dashboard.CloseDetail()

	case clearMsgMsg:
		a.message = ""
	}

	return a, nil
}

// handleTick routes a tick to the session that owns it. Ticks of stopped
// or replaced sessions fall through every owner and are dropped.
func (a App) handleTick(msg poll.TickMsg) (tea.Model, tea.Cmd) {
	if fire, next := a.reposPoll.Update(msg); fire {
		a.dashboard.repos.SetFetching()
		return a, tea.Batch(next, fetchRepos(a.ctx, a.client, a.reposPoll.ID(), a.dashboard.owner))
	}
	if fire, next := a.jobsPoll.Update(msg); fire {
		repo := a.dashboard.currentRepo
		if repo == "" {
			// no repository yet; the first repos response picks one
			return a, next
		}
		a.dashboard.jobs.SetFetching()
		return a, tea.Batch(next, fetchJobs(a.ctx, a.client, a.jobsPoll.ID(), a.dashboard.owner, repo))
	}
	var cmd tea.Cmd
	a.dashboard.detail, cmd = a.dashboard.detail.Update(a.ctx, msg)
	return a, cmd
}

func (a App) handleRequest(req request, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	switch {
	case req.quit:
		a.stop()
		return a, tea.Quit

	case req.owner != "":
		slog.Info("switching owner", "from", a.dashboard.owner, "to", req.owner)
		a.dashboard.SetOwner(req.owner, "")
		a.message = "owner " + req.owner
		return a, tea.Batch(cmd, a.restartLists(), clearMsg())

	case req.repo != "":
		return a, tea.Batch(cmd, a.switchRepo(req.repo))

	case req.refresh:
		a.message = "refreshing..."
		return a, tea.Batch(cmd, a.restartLists(), clearMsg())
	}
	return a, cmd
}

// switchRepo makes repo current and replaces the jobs session so responses
// for the previous repository are dropped.
func (a *App) switchRepo(repo string) tea.Cmd {
	slog.Debug("switching repo", "owner", a.dashboard.owner, "repo", repo)
	a.dashboard.SetRepo(repo)
	a.jobsPoll.Stop()
	a.jobsPoll = poll.New(a.config.PollInterval)
	return a.jobsPoll.Start()
}

// restartLists replaces both list sessions; their first ticks fire at once.
func (a *App) restartLists() tea.Cmd {
	a.reposPoll.Stop()
	a.jobsPoll.Stop()
	a.reposPoll = poll.New(a.config.PollInterval)
	a.jobsPoll = poll.New(a.config.PollInterval)
	return tea.Batch(a.reposPoll.Start(), a.jobsPoll.Start())
}

// stop ends every session and cancels in-flight requests.
func (a *App) stop() {
	a.reposPoll.Stop()
	a.jobsPoll.Stop()
	a.dashboard.detail.Close()
	a.cancel()
}

func (a App) View() string {
	return a.dashboard.View(a.width, a.height, a.message)
}

// bindingHelp renders a single key binding as a "key  desc" help item.
func bindingHelp(s styles.Styles, b key.Binding) string {
	return s.HelpKey.Render(b.Help().Key) + " " + s.HelpDesc.Render(b.Help().Desc)
}

func renderTitle(owner, repo string) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(styles.ColorPurple).
		Render(fmt.Sprintf("cion (%s)", Version))
	target := owner
	if repo != "" {
		target += "/" + repo
	}
	return title + "  " + lipgloss.NewStyle().Foreground(styles.ColorBlue).Render(target)
}
