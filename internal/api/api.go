package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/turkosaurus/cion/internal/types"
)

const defaultTimeout = 10 * time.Second

// maxLogBytes caps how much of a job log is read per request.
const maxLogBytes = 8 << 20

// Client is the read-only view of the Cion API used by the dashboard.
type Client interface {
	ListOwners(ctx context.Context) ([]string, error)
	ListRepos(ctx context.Context, owner string) ([]string, error)
	ListJobs(ctx context.Context, owner, repo string) ([]types.Job, error)
	GetJob(ctx context.Context, owner, repo string, number uint64) (*types.Job, error)
	GetJobLog(ctx context.Context, owner, repo string, number uint64) (string, error)
}

// HTTPClient talks to a Cion server over HTTP.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout bounds every request. Zero disables the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

// NewClient creates a client for the Cion server at baseURL,
// e.g. "http://localhost:8000".
func NewClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    http.DefaultClient,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Client = (*HTTPClient)(nil)

// OwnersPath is the route listing every owner with jobs.
func OwnersPath() string { return "/api" }

// ReposPath is the route listing an owner's repositories.
func ReposPath(owner string) string {
	return "/api/" + url.PathEscape(owner)
}

// JobsPath is the route listing a repository's jobs.
func JobsPath(owner, repo string) string {
	return ReposPath(owner) + "/" + url.PathEscape(repo)
}

// JobPath is the route for a single job.
func JobPath(owner, repo string, number uint64) string {
	return JobsPath(owner, repo) + "/" + strconv.FormatUint(number, 10)
}

// LogPath is the route for a job's raw log.
func LogPath(owner, repo string, number uint64) string {
	return JobPath(owner, repo, number) + "/log"
}

// ListOwners fetches every owner known to the server.
func (c *HTTPClient) ListOwners(ctx context.Context) ([]string, error) {
	var owners []string
	if err := c.FetchJSON(ctx, OwnersPath(), &owners); err != nil {
		return nil, err
	}
	return owners, nil
}

// ListRepos fetches the repository names for an owner.
func (c *HTTPClient) ListRepos(ctx context.Context, owner string) ([]string, error) {
	var repos []string
	if err := c.FetchJSON(ctx, ReposPath(owner), &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// ListJobs fetches the jobs of a repository.
func (c *HTTPClient) ListJobs(ctx context.Context, owner, repo string) ([]types.Job, error) {
	var jobs []types.Job
	if err := c.FetchJSON(ctx, JobsPath(owner, repo), &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob fetches a single job by number.
func (c *HTTPClient) GetJob(ctx context.Context, owner, repo string, number uint64) (*types.Job, error) {
	path := JobPath(owner, repo, number)
	var job *types.Job
	if err := c.FetchJSON(ctx, path, &job); err != nil {
		return nil, err
	}
	// the server answers a missing job with a JSON null
	if job == nil {
		return nil, &APIError{Path: path, StatusCode: http.StatusOK, Message: ErrJobNotFound.Error(), Err: ErrJobNotFound}
	}
	return job, nil
}

// GetJobLog fetches the raw log of a job.
func (c *HTTPClient) GetJobLog(ctx context.Context, owner, repo string, number uint64) (string, error) {
	path := LogPath(owner, repo, number)
	body, err := c.get(ctx, path)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchJSON issues a GET for path and decodes the JSON body into v.
func (c *HTTPClient) FetchJSON(ctx context.Context, path string, v any) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &APIError{Path: path, StatusCode: http.StatusOK, Message: fmt.Sprintf("parse response: %v", err)}
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &NetworkError{Path: path, Err: err}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLogBytes))
	if err != nil {
		return nil, &NetworkError{Path: path, Err: fmt.Errorf("read body: %w", err)}
	}
	slog.Debug("api request",
		"path", path,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}
	return body, nil
}

// IsNotFound reports whether err is an API error for a missing resource,
// either a 404 or a job the server answered with null.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrJobNotFound) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d int64) string {
	seconds := d
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	minutes := seconds / 60
	seconds = seconds % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// TruncateString truncates a string to a maximum length
func TruncateString(s string, maxLen int) string {
	if maxLen < 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// SplitRepo splits an "owner/repo" string into its parts.
func SplitRepo(repo string) (owner, name string) {
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 {
		return "", repo
	}
	return parts[0], parts[1]
}

// ParseJobRef parses "owner/repo/number" into a job key.
func ParseJobRef(ref string) (types.JobKey, error) {
	repo, num, ok := cutLast(strings.Trim(ref, "/"), "/")
	owner, name := SplitRepo(repo)
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return types.JobKey{}, fmt.Errorf("job reference %q: want owner/repo/number", ref)
	}
	n, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return types.JobKey{}, fmt.Errorf("job reference %q: parse number: %w", ref, err)
	}
	return types.JobKey{Owner: owner, Repo: name, Number: n}, nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}
