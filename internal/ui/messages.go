package ui

import "github.com/turkosaurus/cion/internal/types"

// Fetch results carry the session that issued them so responses for a
// stopped or replaced session can be dropped.
type (
	ownersLoadedMsg struct {
		owners []string
		err    error
	}
	reposLoadedMsg struct {
		session int
		owner   string
		repos   []string
		err     error
	}
	jobsLoadedMsg struct {
		session int
		owner   string
		repo    string
		jobs    []types.Job
		err     error
	}
	jobLoadedMsg struct {
		session int
		key     types.JobKey
		job     *types.Job
		err     error
	}
	logLoadedMsg struct {
		session int
		key     types.JobKey
		log     string
		final   bool // fetched after the job settled
		err     error
	}
	clearMsgMsg struct{}
)

// backToMainMsg signals that the log viewer wants to give focus back to the
// job table.
type backToMainMsg struct{}
