package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrAlreadyMaterialized signals a duplicate (project, milestone) insert. InsertIfAbsent
	// swallows it; it never reaches callers of the engine.
	ErrAlreadyMaterialized = errors.New("records: milestone already materialized")
	// ErrStorageUnavailable is returned once a storage call failed after its retry.
	ErrStorageUnavailable = errors.New("records: storage unavailable")
)

// NotFoundError is returned when a record is missing.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// Repository persists milestone records. Records are unique per (project, milestone).
type Repository interface {
	Get(ctx context.Context, projectID uuid.UUID, milestoneID string) (*Record, error)
	// ListByProject returns the project's records ordered by sort key.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*Record, error)
	// ListByCreator returns every record the creator owns across projects.
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*Record, error)
	// InsertIfAbsent stores the record unless one already exists for its
	// (project, milestone) pair. It reports whether a row was written.
	InsertIfAbsent(ctx context.Context, record *Record) (bool, error)
	Update(ctx context.Context, record *Record) (*Record, error)
	// UpdateBatch applies every update or none of them.
	UpdateBatch(ctx context.Context, records []*Record) error
}

func recordKey(projectID uuid.UUID, milestoneID string) string {
	return projectID.String() + "/" + milestoneID
}
