package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-onboarding/internal/logging"
	"github.com/goliatone/go-onboarding/pkg/interfaces"
)

// RetryOption configures the retrying decorator.
type RetryOption func(*RetryingRepository)

// WithRetryLogger sets the logger used to report transient failures.
func WithRetryLogger(logger interfaces.Logger) RetryOption {
	return func(r *RetryingRepository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRetryBackoff sets the pause between the first attempt and the retry.
func WithRetryBackoff(backoff time.Duration) RetryOption {
	return func(r *RetryingRepository) {
		if backoff >= 0 {
			r.backoff = backoff
		}
	}
}

// RetryingRepository retries each failed storage call once. A second failure is
// reported as ErrStorageUnavailable. Not-found results and context errors are final.
type RetryingRepository struct {
	next    Repository
	logger  interfaces.Logger
	backoff time.Duration
}

// NewRetrying decorates repo with a single retry per call.
func NewRetrying(repo Repository, opts ...RetryOption) *RetryingRepository {
	r := &RetryingRepository{
		next:    repo,
		logger:  logging.NoOp(),
		backoff: 25 * time.Millisecond,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

var _ Repository = (*RetryingRepository)(nil)

func (r *RetryingRepository) Get(ctx context.Context, projectID uuid.UUID, milestoneID string) (*Record, error) {
	var out *Record
	err := r.do(ctx, "get", func() error {
		var err error
		out, err = r.next.Get(ctx, projectID, milestoneID)
		return err
	})
	return out, err
}

func (r *RetryingRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*Record, error) {
	var out []*Record
	err := r.do(ctx, "list_by_project", func() error {
		var err error
		out, err = r.next.ListByProject(ctx, projectID)
		return err
	})
	return out, err
}

func (r *RetryingRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*Record, error) {
	var out []*Record
	err := r.do(ctx, "list_by_creator", func() error {
		var err error
		out, err = r.next.ListByCreator(ctx, creatorID)
		return err
	})
	return out, err
}

func (r *RetryingRepository) InsertIfAbsent(ctx context.Context, record *Record) (bool, error) {
	var inserted bool
	err := r.do(ctx, "insert_if_absent", func() error {
		var err error
		inserted, err = r.next.InsertIfAbsent(ctx, record)
		return err
	})
	return inserted, err
}

func (r *RetryingRepository) Update(ctx context.Context, record *Record) (*Record, error) {
	var out *Record
	err := r.do(ctx, "update", func() error {
		var err error
		out, err = r.next.Update(ctx, record)
		return err
	})
	return out, err
}

func (r *RetryingRepository) UpdateBatch(ctx context.Context, batch []*Record) error {
	return r.do(ctx, "update_batch", func() error {
		return r.next.UpdateBatch(ctx, batch)
	})
}

func (r *RetryingRepository) do(ctx context.Context, op string, call func() error) error {
	err := call()
	if err == nil || !retryable(ctx, err) {
		return err
	}
	r.logger.Warn("records.storage.retry", "operation", op, "error", err)

	if r.backoff > 0 {
		timer := time.NewTimer(r.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	err = call()
	if err == nil || !retryable(ctx, err) {
		return err
	}
	r.logger.Error("records.storage.unavailable", "operation", op, "error", err)
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}

func retryable(ctx context.Context, err error) bool {
	if IsNotFound(err) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return ctx.Err() == nil
}
