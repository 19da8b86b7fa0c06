package jobcontext

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type KeyContext string

var (
	keyJobID        KeyContext = "job_id"
	keyJobType      KeyContext = "job_type"
	keyWorkerID     KeyContext = "worker_id"
	keyRetryAttempt KeyContext = "retry_attempt"
	keyJobStartTime KeyContext = "job_start_time"
	keyMaxRetries   KeyContext = "max_retries"
	keyBaseDelay    KeyContext = "base_delay"
)

const (
	DefaultTimeout    = 5 * time.Minute
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 5 * time.Second
	maxBackoff        = 60 * time.Second
)

// Options tunes a single job run. Zero values fall back to the defaults.
type Options struct {
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
}

// JobMetadata holds metadata for a job execution
type JobMetadata struct {
	JobID        string
	JobType      string
	WorkerID     int
	RetryAttempt int
	MaxRetries   int
	StartTime    time.Time
}

// JobBegin derives a job context carrying metadata and a timeout
func JobBegin(parentCtx context.Context, jobID, jobType string, workerID int, opts Options) (context.Context, context.CancelFunc) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = DefaultBaseDelay
	}

	ctx, cancel := context.WithTimeout(parentCtx, opts.Timeout)

	ctx = context.WithValue(ctx, keyJobID, jobID)
	ctx = context.WithValue(ctx, keyJobType, jobType)
	ctx = context.WithValue(ctx, keyWorkerID, workerID)
	ctx = context.WithValue(ctx, keyRetryAttempt, 0)
	ctx = context.WithValue(ctx, keyMaxRetries, opts.MaxRetries)
	ctx = context.WithValue(ctx, keyBaseDelay, opts.BaseDelay)
	ctx = context.WithValue(ctx, keyJobStartTime, time.Now())

	return ctx, cancel
}

// JobEnd runs jobFunc with panic recovery, retrying retryable failures
// with exponential backoff until the attempt budget or the context runs out.
func JobEnd(ctx context.Context, jobFunc func(context.Context) error) error {
	var (
		err        error
		maxRetries = GetMaxRetries(ctx)
		baseDelay  = getBaseDelay(ctx)
	)

	for attempt := GetRetryAttempt(ctx); attempt < maxRetries; {
		ctx = SetRetryAttempt(ctx, attempt)
		err = runOnce(ctx, jobFunc)
		if err == nil {
			return nil
		}

		if !IsRetryableError(err) {
			return fmt.Errorf("non-retryable error: %w", err)
		}

		attempt++
		if attempt >= maxRetries {
			return fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(CalculateBackoff(attempt, baseDelay)):
		}
	}

	return fmt.Errorf("job failed after %d attempts: %w", maxRetries, err)
}

func runOnce(ctx context.Context, jobFunc func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = permanent{fmt.Errorf("panic recovered: %v", p)}
		}
	}()
	if ctx.Err() != nil {
		return permanent{fmt.Errorf("context cancelled before job execution: %w", ctx.Err())}
	}
	return jobFunc(ctx)
}

type permanent struct{ err error }

func (p permanent) Error() string { return p.err.Error() }
func (p permanent) Unwrap() error { return p.err }

// Permanent marks err so JobEnd never retries it
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanent{err}
}

// GetJobID extracts job ID from context
func GetJobID(ctx context.Context) (string, bool) {
	jobID, ok := ctx.Value(keyJobID).(string)
	return jobID, ok
}

// GetJobType extracts job type from context
func GetJobType(ctx context.Context) (string, bool) {
	jobType, ok := ctx.Value(keyJobType).(string)
	return jobType, ok
}

// GetWorkerID extracts worker ID from context
func GetWorkerID(ctx context.Context) int {
	workerID, ok := ctx.Value(keyWorkerID).(int)
	if !ok {
		return -1
	}
	return workerID
}

// GetRetryAttempt extracts current retry attempt from context
func GetRetryAttempt(ctx context.Context) int {
	attempt, ok := ctx.Value(keyRetryAttempt).(int)
	if !ok {
		return 0
	}
	return attempt
}

// SetRetryAttempt updates retry attempt in context
func SetRetryAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, keyRetryAttempt, attempt)
}

// GetMaxRetries extracts max retries from context
func GetMaxRetries(ctx context.Context) int {
	maxRetries, ok := ctx.Value(keyMaxRetries).(int)
	if !ok {
		return DefaultMaxRetries
	}
	return maxRetries
}

func getBaseDelay(ctx context.Context) time.Duration {
	d, ok := ctx.Value(keyBaseDelay).(time.Duration)
	if !ok {
		return DefaultBaseDelay
	}
	return d
}

// GetJobStartTime extracts job start time from context
func GetJobStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyJobStartTime).(time.Time)
	return startTime, ok
}

// GetJobMetadata extracts all job metadata from context
func GetJobMetadata(ctx context.Context) *JobMetadata {
	jobID, _ := GetJobID(ctx)
	jobType, _ := GetJobType(ctx)
	startTime, _ := GetJobStartTime(ctx)

	return &JobMetadata{
		JobID:        jobID,
		JobType:      jobType,
		WorkerID:     GetWorkerID(ctx),
		RetryAttempt: GetRetryAttempt(ctx),
		MaxRetries:   GetMaxRetries(ctx),
		StartTime:    startTime,
	}
}

// IsRetryableError reports whether err looks transient: timeouts, network
// failures, Postgres serialization conflicts, rate limits and 5xx replies.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var p permanent
	if errors.As(err, &p) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, marker := range retryableMarkers {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}

var retryableMarkers = []string{
	// network
	"connection refused",
	"connection reset",
	"network unreachable",
	"no such host",
	"i/o timeout",
	// postgres
	"deadlock",
	"40001",
	"40p01",
	// rate limiting
	"rate limit",
	"too many requests",
	"status 429",
	// upstream
	"status 5",
	"internal server error",
	"service unavailable",
	"bad gateway",
	"temporary failure",
	"try again",
}

// CalculateBackoff returns 2^attempt * baseDelay, capped at one minute
func CalculateBackoff(attempt int, baseDelay time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	backoff := time.Duration(1<<uint(attempt)) * baseDelay
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	return backoff
}
