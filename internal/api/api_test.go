package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.EscapedPath()]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientListRepos(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/api/acme": `["repoA","repoB"]`,
	})
	c := NewClient(srv.URL + "/")

	repos, err := c.ListRepos(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"repoA", "repoB"}, repos)
}

func TestClientListJobs(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/api/acme/repoA": `[{"Number":1,"Owner":"acme","Repo":"repoA","SHA":"abcdef0","Branch":"main","StartedAt":"2024-01-01T00:00:00Z"}]`,
	})
	c := NewClient(srv.URL)

	jobs, err := c.ListJobs(context.Background(), "acme", "repoA")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, uint64(1), jobs[0].Number)
	assert.Equal(t, "main", jobs[0].Branch)
	assert.False(t, jobs[0].Terminal())
}

func TestClientGetJobAndLog(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/api/acme/repoA/3":     `{"Number":3,"Owner":"acme","Repo":"repoA","StartedAt":"2024-01-01T00:00:00Z","EndedAt":"2024-01-01T00:01:30Z","Success":true}`,
		"/api/acme/repoA/3/log": "CION: build\nok\n",
		"/api/acme/repoA/4":     `null`,
	})
	c := NewClient(srv.URL)
	ctx := context.Background()

	job, err := c.GetJob(ctx, "acme", "repoA", 3)
	require.NoError(t, err)
	d, ok := job.Duration()
	require.True(t, ok)
	assert.Equal(t, 90*time.Second, d)

	log, err := c.GetJobLog(ctx, "acme", "repoA", 3)
	require.NoError(t, err)
	assert.Equal(t, "CION: build\nok\n", log)

	_, err = c.GetJob(ctx, "acme", "repoA", 4)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "/api/acme/repoA/4", apiErr.Path)
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.True(t, IsNotFound(err), "a null job counts as missing")
}

func TestClientAPIError(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/api/acme": `not json`,
	})
	c := NewClient(srv.URL)
	ctx := context.Background()

	_, err := c.ListRepos(ctx, "acme")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "/api/acme")

	_, err = c.ListRepos(ctx, "nobody")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.True(t, IsNotFound(err))
}

func TestClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, WithTimeout(time.Second))
	_, err := c.ListRepos(context.Background(), "acme")
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "/api/acme", netErr.Path)
	assert.False(t, IsNotFound(err))
	assert.NotNil(t, errors.Unwrap(err))
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/api", OwnersPath())
	assert.Equal(t, "/api/acme", ReposPath("acme"))
	assert.Equal(t, "/api/acme/my%20repo", JobsPath("acme", "my repo"))
	assert.Equal(t, "/api/acme/repoA/12", JobPath("acme", "repoA", 12))
	assert.Equal(t, "/api/acme/repoA/12/log", LogPath("acme", "repoA", 12))
}

func TestParseJobRef(t *testing.T) {
	key, err := ParseJobRef("acme/repoA/42")
	require.NoError(t, err)
	assert.Equal(t, "acme", key.Owner)
	assert.Equal(t, "repoA", key.Repo)
	assert.Equal(t, uint64(42), key.Number)

	for _, bad := range []string{"", "acme/repoA", "acme/repoA/x", "/repoA/1"} {
		_, err := ParseJobRef(bad)
		assert.Error(t, err, "ParseJobRef(%q)", bad)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    int64
		want string
	}{
		{0, "0s"},
		{45, "45s"},
		{60, "1m 0s"},
		{90, "1m 30s"},
		{3600, "1h 0m"},
		{3661, "1h 1m"},
	}
	for _, tt := range tests {
		got := FormatDuration(tt.d)
		if got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		s      string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 3, "hel"},
		{"hello", -1, ""},
	}
	for _, tt := range tests {
		got := TruncateString(tt.s, tt.maxLen)
		if got != tt.want {
			t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
		}
	}
}

func TestSplitRepo(t *testing.T) {
	tests := []struct {
		repo      string
		wantOwner string
		wantName  string
	}{
		{"acme/repoA", "acme", "repoA"},
		{"acme", "", "acme"},
		{"", "", ""},
	}
	for _, tt := range tests {
		owner, name := SplitRepo(tt.repo)
		if owner != tt.wantOwner || name != tt.wantName {
			t.Errorf("SplitRepo(%q) = (%q, %q), want (%q, %q)",
				tt.repo, owner, name, tt.wantOwner, tt.wantName)
		}
	}
}
