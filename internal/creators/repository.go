package creators

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrDuplicateEmail indicates another creator already registered the email.
var ErrDuplicateEmail = errors.New("creators: email already registered")

// CreatorRepository persists creators.
type CreatorRepository interface {
	Create(ctx context.Context, creator *Creator) (*Creator, error)
	Update(ctx context.Context, creator *Creator) (*Creator, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Creator, error)
	GetByEmail(ctx context.Context, email string) (*Creator, error)
	List(ctx context.Context) ([]*Creator, error)
}

// ProjectRepository persists project contexts.
type ProjectRepository interface {
	Create(ctx context.Context, project *Project) (*Project, error)
	Update(ctx context.Context, project *Project) (*Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when a creator or project cannot be located.
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
	var target *NotFoundError
	return errors.As(err, &target)
}
