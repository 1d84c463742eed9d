package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/medscreen/adscreen/internal/core/domain"
)

// BatchStore is the process-wide registry of in-flight and recently
// completed batches. It is the only mutable shared structure; every
// mutation happens under its lock through the orchestrator's operations.
type BatchStore struct {
	mu      sync.Mutex
	batches map[string]*domain.Batch

	retention     time.Duration
	sweepInterval time.Duration
	now           func() time.Time
}

func NewBatchStore(retention, sweepInterval time.Duration) *BatchStore {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	if sweepInterval <= 0 {
		sweepInterval = time.Hour
	}
	return &BatchStore{
		batches:       make(map[string]*domain.Batch),
		retention:     retention,
		sweepInterval: sweepInterval,
		now:           time.Now,
	}
}

// Create registers a new batch with every task pending.
func (s *BatchStore) Create(batchID string, filenames []string) *domain.Batch {
	tasks := make([]domain.FileTask, 0, len(filenames))
	for _, name := range filenames {
		tasks = append(tasks, domain.FileTask{Filename: name, State: domain.TaskPending})
	}

	batch := &domain.Batch{
		ID:        batchID,
		Status:    domain.BatchProcessing,
		Total:     len(filenames),
		StartTime: s.now().UTC(),
		Tasks:     tasks,
		Results:   []domain.FileResult{},
		Errors:    []string{},
	}

	s.mu.Lock()
	s.batches[batchID] = batch
	s.mu.Unlock()
	return batch.Clone()
}

// Get returns a snapshot of the batch, if still resident in memory.
func (s *BatchStore) Get(batchID string) (*domain.Batch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.batches[batchID]
	if !ok {
		return nil, false
	}
	return batch.Clone(), true
}

// UpdateTask advances one task's lifecycle state. Terminal states are
// absorbing: a completed or failed task never transitions again.
func (s *BatchStore) UpdateTask(batchID, filename string, state domain.TaskState, progress int, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.batches[batchID]
	if !ok {
		return
	}
	for i := range batch.Tasks {
		if batch.Tasks[i].Filename != filename {
			continue
		}
		if batch.Tasks[i].State.Terminal() {
			return
		}
		batch.Tasks[i].State = state
		batch.Tasks[i].Progress = progress
		if errMsg != "" {
			batch.Tasks[i].Error = errMsg
		}
		return
	}
	batch.Tasks = append(batch.Tasks, domain.FileTask{
		Filename: filename, State: state, Progress: progress, Error: errMsg,
	})
}

// RecordResult appends one completed item in completion order, advances
// the processed counter, and recomputes progress and the ETA. The ETA
// accounts for the worker-pool width: (remaining/concurrency) x avg.
func (s *BatchStore) RecordResult(batchID string, result domain.FileResult, concurrency int) {
	if concurrency <= 0 {
		concurrency = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.batches[batchID]
	if !ok {
		return
	}

	batch.Processed++
	batch.Results = append(batch.Results, result)
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "알 수 없는 오류"
		}
		batch.Errors = append(batch.Errors, result.Filename+": "+msg)
	}

	if batch.Total > 0 {
		batch.ProgressPercent = float64(batch.Processed) / float64(batch.Total) * 100
	}

	now := s.now()
	elapsed := now.Sub(batch.StartTime)
	batch.ElapsedSeconds = elapsed.Seconds()

	remaining := batch.Total - batch.Processed
	avgPerFile := elapsed.Seconds() / float64(batch.Processed)
	estRemaining := float64(remaining) / float64(concurrency) * avgPerFile
	estimated := now.Add(time.Duration(estRemaining * float64(time.Second)))
	batch.EstimatedCompletion = &estimated
}

// Finalize moves the batch to a terminal status and returns a snapshot
// for persistence. Calling it on an already-terminal batch is a no-op.
func (s *BatchStore) Finalize(batchID string, status domain.BatchStatus, errMsg string) *domain.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.batches[batchID]
	if !ok {
		return nil
	}
	if !batch.Status.Terminal() {
		batch.Status = status
		done := s.now().UTC()
		batch.CompletedAt = &done
		if errMsg != "" {
			batch.Errors = append(batch.Errors, errMsg)
		}
	}
	return batch.Clone()
}

// MarkFailed forces a batch into the failed terminal status, recording
// the orchestration error. Used when persisting a completed batch fails.
func (s *BatchStore) MarkFailed(batchID, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.batches[batchID]
	if !ok {
		return
	}
	batch.Status = domain.BatchFailed
	if errMsg != "" {
		batch.Errors = append(batch.Errors, errMsg)
	}
}

// Sweep removes terminal batches older than the retention window, plus
// any terminal batch that carries no start time.
func (s *BatchStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, batch := range s.batches {
		if !batch.Status.Terminal() {
			continue
		}
		if batch.StartTime.IsZero() || now.Sub(batch.StartTime) > s.retention {
			delete(s.batches, id)
			removed++
		}
	}
	return removed
}

// Run drives the periodic sweep until the context is cancelled. Meant to
// run as a goroutine owned by the process entrypoint.
func (s *BatchStore) Run(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := s.Sweep(now); removed > 0 {
				slog.Info("batch_store_sweep", "removed", removed)
			}
		}
	}
}
