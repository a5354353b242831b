// Package poll runs fixed-interval refresh loops.
//
// Session is driven by the bubbletea event loop: it never owns a goroutine,
// it only schedules tick messages and filters out the ones that belong to a
// stopped or restarted session. Handle (see loop.go) is the goroutine-based
// equivalent for headless callers.
package poll

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// TickMsg asks the owner of session ID to refresh.
type TickMsg struct {
	ID   int
	tag  int
	Time time.Time
}

// Session is a repeating refresh bound to the lifetime of a view.
type Session struct {
	id       int
	tag      int
	interval time.Duration
	live     bool
}

// New returns a stopped session. Call Start to begin polling.
func New(interval time.Duration) Session {
	return Session{id: nextID(), interval: interval}
}

// ID returns the session's process-unique id.
func (s Session) ID() int { return s.id }

// Interval returns the time between refreshes.
func (s Session) Interval() time.Duration { return s.interval }

// Live reports whether the session is started and not stopped.
func (s Session) Live() bool { return s.live }

// Start begins polling. The first tick is delivered immediately; following
// ticks arrive every Interval. Starting a live session restarts it, and any
// tick still queued from the earlier run is dropped.
func (s *Session) Start() tea.Cmd {
	s.tag++
	s.live = true
	id, tag := s.id, s.tag
	return func() tea.Msg {
		return TickMsg{ID: id, tag: tag, Time: time.Now()}
	}
}

// Stop cancels future refreshes. Stopping a stopped or never-started session
// is a no-op.
func (s *Session) Stop() {
	if !s.live {
		return
	}
	s.live = false
	s.tag++
}

// Restart stops the session and starts it again with a new interval.
func (s *Session) Restart(interval time.Duration) tea.Cmd {
	s.Stop()
	s.interval = interval
	return s.Start()
}

// Owns reports whether msg is a current tick of this session.
func (s Session) Owns(msg TickMsg) bool {
	return s.live && msg.ID == s.id && msg.tag == s.tag
}

// Update consumes a tick. fire is true when the owner should refresh now; cmd
// schedules the next tick. Ticks of other sessions, of an earlier run of this
// session, or arriving after Stop yield fire=false and no command.
func (s Session) Update(msg tea.Msg) (fire bool, cmd tea.Cmd) {
	tick, ok := msg.(TickMsg)
	if !ok || !s.Owns(tick) {
		return false, nil
	}
	return true, s.next()
}

func (s Session) next() tea.Cmd {
	id, tag := s.id, s.tag
	return tea.Tick(s.interval, func(t time.Time) tea.Msg {
		return TickMsg{ID: id, tag: tag, Time: t}
	})
}
