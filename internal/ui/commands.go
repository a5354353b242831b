package ui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/turkosaurus/cion/internal/api"
	"github.com/turkosaurus/cion/internal/types"
)

// pollFailed is the single error path for every fetch. The caller keeps its
// prior data and the next tick retries.
func pollFailed(path string, err error) {
	if errors.Is(err, context.Canceled) {
		slog.Debug("poll cancelled", "path", path)
		return
	}
	slog.Error("poll failed",
		"path", path,
		"error", err,
	)
}

func fetchOwners(ctx context.Context, client api.Client) tea.Cmd {
	return func() tea.Msg {
		owners, err := client.ListOwners(ctx)
		if err != nil {
			pollFailed(api.OwnersPath(), err)
		}
		return ownersLoadedMsg{owners: owners, err: err}
	}
}

func fetchRepos(ctx context.Context, client api.Client, session int, owner string) tea.Cmd {
	return func() tea.Msg {
		repos, err := client.ListRepos(ctx, owner)
		if err != nil {
			pollFailed(api.ReposPath(owner), err)
		}
		return reposLoadedMsg{session: session, owner: owner, repos: repos, err: err}
	}
}

func fetchJobs(ctx context.Context, client api.Client, session int, owner, repo string) tea.Cmd {
	return func() tea.Msg {
		jobs, err := client.ListJobs(ctx, owner, repo)
		if err != nil {
			pollFailed(api.JobsPath(owner, repo), err)
		}
		return jobsLoadedMsg{session: session, owner: owner, repo: repo, jobs: jobs, err: err}
	}
}

func fetchJob(ctx context.Context, client api.Client, session int, key types.JobKey) tea.Cmd {
	return func() tea.Msg {
		job, err := client.GetJob(ctx, key.Owner, key.Repo, key.Number)
		if err != nil {
			pollFailed(api.JobPath(key.Owner, key.Repo, key.Number), err)
		}
		return jobLoadedMsg{session: session, key: key, job: job, err: err}
	}
}

func fetchLog(ctx context.Context, client api.Client, session int, key types.JobKey, final bool) tea.Cmd {
	return func() tea.Msg {
		log, err := client.GetJobLog(ctx, key.Owner, key.Repo, key.Number)
		if err != nil {
			pollFailed(api.LogPath(key.Owner, key.Repo, key.Number), err)
		}
		return logLoadedMsg{session: session, key: key, log: log, final: final, err: err}
	}
}

func clearMsg() tea.Cmd {
	return tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
		return clearMsgMsg{}
	})
}
