package watch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turkosaurus/cion/internal/api"
	"github.com/turkosaurus/cion/internal/api/apitest"
	"github.com/turkosaurus/cion/internal/types"
)

func job(number uint64, ended bool, success bool) types.Job {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	j := types.Job{Number: number, Owner: "acme", Repo: "repoA", SHA: "abcdef0", Branch: "main", StartedAt: &start, Success: success}
	if ended {
		end := start.Add(90 * time.Second)
		j.EndedAt = &end
	}
	return j
}

func TestWatcher_SettlesAndStopsPolling(t *testing.T) {
	fake := apitest.New()
	fake.QueueJob(job(1, false, false), job(1, false, false), job(1, true, true))
	key := types.JobKey{Owner: "acme", Repo: "repoA", Number: 1}

	var updates []types.JobStatus
	w := New(fake, key, 5*time.Millisecond)
	w.OnUpdate = func(j types.Job) { updates = append(updates, j.Status()) }

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := w.Run(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.True(t, got.Terminal())
	assert.Equal(t, Settled, w.Phase())
	assert.Equal(t, 3, w.Polls())
	assert.Equal(t, []types.JobStatus{types.JobStatusRunning, types.JobStatusSuccess}, updates)

	path := api.JobPath("acme", "repoA", 1)
	n := fake.CallCount(path)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, fake.CallCount(path), "no polls after the job settled")
}

func TestWatcher_AlreadyTerminal(t *testing.T) {
	fake := apitest.New()
	fake.QueueJob(job(2, true, false))
	w := New(fake, types.JobKey{Owner: "acme", Repo: "repoA", Number: 2}, time.Hour)

	got, err := w.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.JobStatusFailure, got.Status())
	assert.Equal(t, 1, w.Polls())
}

func TestWatcher_FailuresAreRetried(t *testing.T) {
	fake := apitest.New()
	path := api.JobPath("acme", "repoA", 3)
	fake.Fail(path, apitest.NetworkError(path))
	fake.QueueJob(job(3, true, true))

	w := New(fake, types.JobKey{Owner: "acme", Repo: "repoA", Number: 3}, 5*time.Millisecond)
	go func() {
		time.Sleep(20 * time.Millisecond)
		fake.Fail(path, nil)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := w.Run(ctx)
	require.NoError(t, err)
	assert.True(t, got.Terminal())
	assert.Greater(t, w.Polls(), 1)
}

func TestWatcher_ContextCancelled(t *testing.T) {
	fake := apitest.New()
	fake.QueueJob(job(4, false, false))
	w := New(fake, types.JobKey{Owner: "acme", Repo: "repoA", Number: 4}, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	got, err := w.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, got)
	assert.False(t, got.Terminal())
	assert.Equal(t, Polling, w.Phase())
}

func TestWatcher_MissingJob(t *testing.T) {
	fake := apitest.New()
	w := New(fake, types.JobKey{Owner: "acme", Repo: "repoA", Number: 40}, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := w.Run(ctx)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, api.IsNotFound(err))
	assert.Equal(t, 1, w.Polls(), "a missing job is not retried")
}

func TestWatcher_NullJobFromServer(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("null"))
	}))
	defer srv.Close()

	key := types.JobKey{Owner: "acme", Repo: "repoA", Number: 99}
	w := New(api.NewClient(srv.URL), key, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := w.Run(ctx)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, api.ErrJobNotFound)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, w.Polls())
	assert.EqualValues(t, 1, hits.Load())
}
