package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/baseapi-backend/internal/data/uow"
)

// HooksRecorder captures unit-of-work hook signals in tests.
type HooksRecorder struct {
	mu sync.Mutex

	Commits      []CommitEvent
	AuditDropped []int
}

type CommitEvent struct {
	Status   string
	Rows     int
	Duration time.Duration
}

var _ uow.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveCommit(status string, rows int, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Commits = append(h.Commits, CommitEvent{
		Status:   status,
		Rows:     rows,
		Duration: dur,
	})
}

func (h *HooksRecorder) IncAuditDropped(entries int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.AuditDropped = append(h.AuditDropped, entries)
}

// Last returns the most recent commit event.
func (h *HooksRecorder) Last() (CommitEvent, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.Commits) == 0 {
		return CommitEvent{}, false
	}
	return h.Commits[len(h.Commits)-1], true
}
