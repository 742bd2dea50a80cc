package store

import (
	"context"
	"sync"
	"time"
)

// Job states.
const (
	StateQueued     = "queued"
	StateProcessing = "processing"
	StateSuccess    = "success"
	StateFailed     = "failed"
)

type Status struct {
	Status   string                 `json:"status"`
	Progress int                    `json:"progress"`
	Message  string                 `json:"message"`
	Start    *time.Time             `json:"start_time,omitempty"`
	End      *time.Time             `json:"end_time,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// StatusStore persists per-job status. Get reports false for unknown jobs.
type StatusStore interface {
	Set(ctx context.Context, jobID string, st Status) error
	Get(ctx context.Context, jobID string) (Status, bool, error)
}

// MemoryStatus keeps statuses in process. Used when no Redis is configured.
type MemoryStatus struct {
	mu sync.RWMutex
	m  map[string]Status
}

func NewMemoryStatus() *MemoryStatus { return &MemoryStatus{m: map[string]Status{}} }

func (s *MemoryStatus) Set(_ context.Context, jobID string, st Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[jobID] = copyStatus(st)
	return nil
}

func (s *MemoryStatus) Get(_ context.Context, jobID string) (Status, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.m[jobID]
	if !ok {
		return Status{}, false, nil
	}
	return copyStatus(st), true, nil
}

func copyStatus(st Status) Status {
	if st.Metadata != nil {
		md := make(map[string]interface{}, len(st.Metadata))
		for k, v := range st.Metadata {
			md[k] = v
		}
		st.Metadata = md
	}
	return st
}
