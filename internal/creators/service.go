package creators

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/identity"
)

// Service exposes creator registration and lookup.
type Service interface {
	Create(ctx context.Context, input CreateCreatorInput) (*Creator, error)
	Get(ctx context.Context, id uuid.UUID) (*Creator, error)
	GetByEmail(ctx context.Context, email string) (*Creator, error)
	List(ctx context.Context) ([]*Creator, error)
	Projects(ctx context.Context, creatorID uuid.UUID) ([]*Project, error)
}

// CreateCreatorInput captures the fields required to register a creator.
type CreateCreatorInput struct {
	Email       string
	Name        string
	ContentPath string
}

var (
	ErrCreatorRepositoryRequired = errors.New("creators: creator repository required")
	ErrProjectRepositoryRequired = errors.New("creators: project repository required")

	ErrInvalidCreator  = errors.New("creators: invalid creator input")
	ErrCreatorNotFound = errors.New("creators: creator not found")
	ErrCreatorExists   = errors.New("creators: creator already exists")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

type service struct {
	creators CreatorRepository
	projects ProjectRepository
	now      func() time.Time
}

// NewService constructs a creator service instance.
func NewService(creatorRepo CreatorRepository, projectRepo ProjectRepository, opts ...ServiceOption) Service {
	if creatorRepo == nil {
		panic(ErrCreatorRepositoryRequired)
	}
	if projectRepo == nil {
		panic(ErrProjectRepositoryRequired)
	}
	s := &service{
		creators: creatorRepo,
		projects: projectRepo,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks the registration input.
func (input CreateCreatorInput) Validate() error {
	return validation.ValidateStruct(&input,
		validation.Field(&input.Email, validation.Required, validation.Match(emailPattern).Error("must be a valid email address")),
		validation.Field(&input.Name, validation.Length(0, 200)),
		validation.Field(&input.ContentPath, validation.By(func(value any) error {
			_, err := domain.ParseContentPath(value.(string))
			return err
		})),
	)
}

func (s *service) Create(ctx context.Context, input CreateCreatorInput) (*Creator, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCreator, err)
	}
	path, err := domain.ParseContentPath(input.ContentPath)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.creators.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrCreatorExists, email)
	} else if !IsNotFound(err) {
		return nil, err
	}

	now := s.now().UTC()
	creatorID := identity.CreatorUUID(email)
	project := &Project{
		ID:          identity.ProjectUUID(creatorID, 1),
		CreatorID:   creatorID,
		Sequence:    1,
		ContentPath: path,
		Status:      domain.ProjectStatusActive,
		StartedAt:   now,
	}
	if _, err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	creator := &Creator{
		ID:               creatorID,
		Email:            email,
		Name:             strings.TrimSpace(input.Name),
		ContentPath:      path,
		CurrentProjectID: project.ID,
		Status:           domain.CreatorStatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	created, err := s.creators.Create(ctx, creator)
	if errors.Is(err, ErrDuplicateEmail) {
		return nil, fmt.Errorf("%w: %s", ErrCreatorExists, email)
	}
	return created, err
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Creator, error) {
	creator, err := s.creators.GetByID(ctx, id)
	if IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s", ErrCreatorNotFound, id)
	}
	return creator, err
}

func (s *service) GetByEmail(ctx context.Context, email string) (*Creator, error) {
	creator, err := s.creators.GetByEmail(ctx, email)
	if IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s", ErrCreatorNotFound, email)
	}
	return creator, err
}

func (s *service) List(ctx context.Context) ([]*Creator, error) {
	return s.creators.List(ctx)
}

func (s *service) Projects(ctx context.Context, creatorID uuid.UUID) ([]*Project, error) {
	if _, err := s.Get(ctx, creatorID); err != nil {
		return nil, err
	}
	return s.projects.ListByCreator(ctx, creatorID)
}
