// Package apitest provides an in-memory api.Client for tests.
package apitest

import (
	"context"
	"errors"
	"sync"

	"github.com/turkosaurus/cion/internal/api"
	"github.com/turkosaurus/cion/internal/types"
)

// Fake serves canned responses and records the paths it was asked for.
// Responses can be changed between calls; failures are injected per path.
type Fake struct {
	mu     sync.Mutex
	owners []string
	repos  map[string][]string
	jobs   map[string][]types.Job
	job    map[string][]types.Job // queued responses per job path; last one repeats
	logs   map[string]string
	fail   map[string]error
	calls  []string
}

var _ api.Client = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		repos: make(map[string][]string),
		jobs:  make(map[string][]types.Job),
		job:   make(map[string][]types.Job),
		logs:  make(map[string]string),
		fail:  make(map[string]error),
	}
}

func (f *Fake) SetOwners(owners ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owners = owners
}

func (f *Fake) SetRepos(owner string, repos ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repos[api.ReposPath(owner)] = repos
}

func (f *Fake) SetJobs(owner, repo string, jobs ...types.Job) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[api.JobsPath(owner, repo)] = jobs
}

// QueueJob appends responses for the job's detail route. Each GetJob call
// consumes one; the last stays in place.
func (f *Fake) QueueJob(jobs ...types.Job) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range jobs {
		p := api.JobPath(j.Owner, j.Repo, j.Number)
		f.job[p] = append(f.job[p], j)
	}
}

func (f *Fake) SetLog(owner, repo string, number uint64, log string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs[api.LogPath(owner, repo, number)] = log
}

// Fail makes requests for path return err until cleared with a nil err.
func (f *Fake) Fail(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, path)
		return
	}
	f.fail[path] = err
}

// Calls returns the requested paths in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many times path was requested.
func (f *Fake) CallCount(path string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == path {
			n++
		}
	}
	return n
}

func (f *Fake) record(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	return f.fail[path]
}

func (f *Fake) ListOwners(ctx context.Context) ([]string, error) {
	if err := f.record(api.OwnersPath()); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.owners...), nil
}

func (f *Fake) ListRepos(ctx context.Context, owner string) ([]string, error) {
	path := api.ReposPath(owner)
	if err := f.record(path); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	repos, ok := f.repos[path]
	if !ok {
		return nil, &api.APIError{Path: path, StatusCode: 404, Message: "not found"}
	}
	return append([]string(nil), repos...), nil
}

func (f *Fake) ListJobs(ctx context.Context, owner, repo string) ([]types.Job, error) {
	path := api.JobsPath(owner, repo)
	if err := f.record(path); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	jobs, ok := f.jobs[path]
	if !ok {
		return nil, &api.APIError{Path: path, StatusCode: 404, Message: "not found"}
	}
	return append([]types.Job(nil), jobs...), nil
}

func (f *Fake) GetJob(ctx context.Context, owner, repo string, number uint64) (*types.Job, error) {
	path := api.JobPath(owner, repo, number)
	if err := f.record(path); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	queue := f.job[path]
	if len(queue) == 0 {
		// the server answers a missing job with 200 and a null body
		return nil, &api.APIError{Path: path, StatusCode: 200, Message: api.ErrJobNotFound.Error(), Err: api.ErrJobNotFound}
	}
	j := queue[0]
	if len(queue) > 1 {
		f.job[path] = queue[1:]
	}
	return &j, nil
}

func (f *Fake) GetJobLog(ctx context.Context, owner, repo string, number uint64) (string, error) {
	path := api.LogPath(owner, repo, number)
	if err := f.record(path); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logs[path], nil
}

// ErrOffline is a ready-made network failure.
var ErrOffline = errors.New("connection refused")

// NetworkError wraps ErrOffline the way the HTTP client reports it.
func NetworkError(path string) error {
	return &api.NetworkError{Path: path, Err: ErrOffline}
}
