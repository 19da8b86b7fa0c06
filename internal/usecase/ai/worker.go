package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-copilot/pkg/jobcontext"
)

const (
	summaryQueueSize = 64
	summaryJobType   = "meeting_summary"
)

// Enqueue schedules summary generation for a meeting. It returns false when
// the pool is not running, the queue is full or the meeting is already queued.
func (s *aiService) Enqueue(meetingID string) bool {
	// held through the send so StopWorkerPool cannot drain in between
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()
	if !s.isWorkerPoolRunning {
		return false
	}

	s.pendingMutex.Lock()
	defer s.pendingMutex.Unlock()

	if s.pending[meetingID] {
		return false
	}
	select {
	case s.jobs <- meetingID:
		s.pending[meetingID] = true
		s.metrics.SummaryQueueDepth.Inc()
		return true
	default:
		if s.logger != nil {
			s.logger.Warn("⚠️ Summary queue full, meeting dropped",
				zap.String("meeting_id", meetingID),
			)
		}
		return false
	}
}

// StartWorkerPool starts background workers to process summary jobs
func (s *aiService) StartWorkerPool(ctx context.Context, workerCount int) error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool already running")
	}
	if workerCount <= 0 {
		workerCount = 1
	}

	s.isWorkerPoolRunning = true
	s.workerStopChan = make(chan struct{})

	if s.logger != nil {
		s.logger.Info("🚀 Starting summary worker pool",
			zap.Int("worker_count", workerCount),
		)
	}

	for i := 0; i < workerCount; i++ {
		s.workerWg.Add(1)
		go s.summaryWorker(ctx, i)
	}
	return nil
}

// StopWorkerPool gracefully stops all worker goroutines.
// Jobs still queued are dropped.
func (s *aiService) StopWorkerPool() error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if !s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool not running")
	}

	if s.logger != nil {
		s.logger.Info("🛑 Stopping summary worker pool...")
	}

	close(s.workerStopChan)
	s.workerWg.Wait()
	s.isWorkerPoolRunning = false

	dropped := s.drain()
	if s.logger != nil {
		s.logger.Info("✅ Summary worker pool stopped",
			zap.Int("dropped_jobs", dropped),
		)
	}
	return nil
}

func (s *aiService) drain() int {
	s.pendingMutex.Lock()
	defer s.pendingMutex.Unlock()

	n := 0
	for {
		select {
		case id := <-s.jobs:
			delete(s.pending, id)
			s.metrics.SummaryQueueDepth.Dec()
			n++
		default:
			return n
		}
	}
}

// summaryWorker takes meetings off the queue and generates their summaries
func (s *aiService) summaryWorker(parentCtx context.Context, workerID int) {
	defer s.workerWg.Done()

	if s.logger != nil {
		s.logger.Info("👷 Worker started",
			zap.Int("worker_id", workerID),
		)
	}

	for {
		select {
		case <-s.workerStopChan:
			if s.logger != nil {
				s.logger.Info("👷 Worker stopping",
					zap.Int("worker_id", workerID),
				)
			}
			return

		case <-parentCtx.Done():
			return

		case meetingID := <-s.jobs:
			s.pendingMutex.Lock()
			delete(s.pending, meetingID)
			s.pendingMutex.Unlock()
			s.metrics.SummaryQueueDepth.Dec()

			s.runSummaryJob(parentCtx, workerID, meetingID)
		}
	}
}

func (s *aiService) runSummaryJob(parentCtx context.Context, workerID int, meetingID string) {
	if s.logger != nil {
		s.logger.Info("👷 Worker claimed job",
			zap.Int("worker_id", workerID),
			zap.String("meeting_id", meetingID),
		)
	}

	jobCtx, cancel := jobcontext.JobBegin(parentCtx, meetingID, summaryJobType, workerID, jobcontext.Options{})
	defer cancel()

	var outcome SummaryOutcome
	err := jobcontext.JobEnd(jobCtx, func(ctx context.Context) error {
		var runErr error
		outcome, runErr = s.GenerateSummaryWithInsights(ctx, meetingID)
		return runErr
	})

	if err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Job failed after retries",
				zap.String("meeting_id", meetingID),
				zap.Error(err),
			)
		}
		return
	}

	if s.logger != nil {
		s.logger.Info("✅ Job completed successfully",
			zap.String("meeting_id", meetingID),
			zap.String("outcome", string(outcome)),
		)
	}
}
