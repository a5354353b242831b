package types

import (
	"fmt"
	"time"
)

// Job is one build run for a repository at a specific commit, as served by
// the Cion API. Field names match the backend's JSON keys.
type Job struct {
	Number    uint64     `json:"Number"`
	Owner     string     `json:"Owner"`
	Repo      string     `json:"Repo"`
	Branch    string     `json:"Branch"`
	SHA       string     `json:"SHA"`
	StartedAt *time.Time `json:"StartedAt"`
	EndedAt   *time.Time `json:"EndedAt,omitempty"`
	Success   bool       `json:"Success"`
}

// JobStatus is a display-friendly job state.
type JobStatus string

const (
	JobStatusRunning JobStatus = "running"
	JobStatusSuccess JobStatus = "success"
	JobStatusFailure JobStatus = "failure"
)

// JobKey identifies a job across polls.
type JobKey struct {
	Owner  string
	Repo   string
	Number uint64
}

func (k JobKey) String() string {
	return fmt.Sprintf("%s/%s#%d", k.Owner, k.Repo, k.Number)
}

// Key returns the identity of the job.
func (j *Job) Key() JobKey {
	return JobKey{Owner: j.Owner, Repo: j.Repo, Number: j.Number}
}

// Terminal reports whether the job has ended. A job never changes again
// once it is terminal.
func (j *Job) Terminal() bool {
	return j.EndedAt != nil && !j.EndedAt.IsZero()
}

// Status returns the display status of the job
func (j *Job) Status() JobStatus {
	if !j.Terminal() {
		return JobStatusRunning
	}
	if j.Success {
		return JobStatusSuccess
	}
	return JobStatusFailure
}

// Duration returns how long the job took. ok is false while the job is
// still running or when the start time is unknown.
func (j *Job) Duration() (d time.Duration, ok bool) {
	if !j.Terminal() || j.StartedAt == nil || j.StartedAt.IsZero() {
		return 0, false
	}
	return j.EndedAt.Sub(*j.StartedAt), true
}

// ShortSHA returns the first n characters of the commit hash.
func (j *Job) ShortSHA(n int) string {
	if n < 0 || len(j.SHA) <= n {
		return j.SHA
	}
	return j.SHA[:n]
}
