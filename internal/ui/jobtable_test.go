package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turkosaurus/cion/internal/types"
	"github.com/turkosaurus/cion/internal/ui/styles"
)

func TestJobCells(t *testing.T) {
	running := startedJob("acme", "repoA", 1, 5*time.Minute)
	assert.Equal(t, "abcdef (main)", commitCell(running))
	assert.Equal(t, "5 minutes ago", startedCell(running))
	assert.Equal(t, "-", tookCell(running))

	done := endedJob(running, 75*time.Second, true)
	assert.Equal(t, "1m 15s", tookCell(done))

	unstarted := types.Job{Number: 2, SHA: "abc", Branch: "dev"}
	assert.Equal(t, "abc (dev)", commitCell(unstarted))
	assert.Equal(t, "-", startedCell(unstarted))
}

func TestJobTable_View(t *testing.T) {
	s := styles.DefaultStyles()
	var jobs Fetchable[[]types.Job]
	var jt JobTable

	assert.Contains(t, jt.View(s, jobs, "", false, 100, 20), "no repository selected")
	assert.Contains(t, jt.View(s, jobs, "repoA", false, 100, 20), "loading jobs")

	jobs.SetError(errors.New("GET /api/acme/repoA: connection refused"))
	assert.Contains(t, jt.View(s, jobs, "repoA", false, 100, 20), "connection refused")

	jobs.SetData([]types.Job{startedJob("acme", "repoA", 1, time.Minute)})
	view := jt.View(s, jobs, "repoA", false, 100, 20)
	lines := strings.Split(view, "\n")
	require.Len(t, lines, 2)

	header := strings.Fields(lines[0])
	assert.Equal(t, []string{"#", "COMMIT", "STARTED", "TOOK", "OK"}, header)

	row := strings.Fields(lines[1])
	require.GreaterOrEqual(t, len(row), 5)
	assert.Equal(t, "1", row[0])
	assert.Equal(t, "abcdef", row[1])
	assert.Equal(t, "(main)", row[2])
	assert.Equal(t, "-", row[len(row)-2], "TOOK is blank while the job runs")
	assert.Equal(t, styles.StatusIcon(types.JobStatusRunning), row[len(row)-1])

	jobs.SetError(errors.New("timeout"))
	assert.Contains(t, jt.View(s, jobs, "repoA", false, 100, 20), "(stale)")
}

func TestJobTable_Cursor(t *testing.T) {
	jobs := []types.Job{
		startedJob("acme", "repoA", 3, time.Minute),
		startedJob("acme", "repoA", 2, time.Hour),
		startedJob("acme", "repoA", 1, 2*time.Hour),
	}
	var jt JobTable
	assert.EqualValues(t, 3, jt.Selected(jobs).Number)

	jt.Move(1, len(jobs))
	jt.Move(5, len(jobs))
	assert.EqualValues(t, 1, jt.Selected(jobs).Number)

	jt.Clamp(1)
	assert.EqualValues(t, 3, jt.Selected(jobs[:1]).Number)

	jt.Move(-1, 0)
	assert.Nil(t, jt.Selected(nil))
}

func TestSidebar_View(t *testing.T) {
	s := styles.DefaultStyles()
	var repos Fetchable[[]string]
	var sb Sidebar

	assert.Contains(t, sb.View(s, "acme", repos, "", true, 22, 20), "loading")

	repos.SetData([]string{"repoA", "repoB"})
	view := sb.View(s, "acme", repos, "repoA", false, 22, 20)
	assert.Contains(t, view, "acme")
	assert.Contains(t, view, currentMarker+"repoA")
	assert.Contains(t, view, "  repoB")

	view = sb.View(s, "acme", repos, "repoC", false, 22, 20)
	assert.NotContains(t, view, currentMarker, "no entry is current when currentRepo is not listed")

	sb.MoveTo("repoB", repos.Data)
	assert.Equal(t, "repoB", sb.Selected(repos.Data))
	sb.Move(-3, len(repos.Data))
	assert.Equal(t, "repoA", sb.Selected(repos.Data))

	repos.SetData(nil)
	assert.Contains(t, sb.View(s, "acme", repos, "", false, 22, 20), "no repositories")
}
