package creators

import (
	"context"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewCreatorRepository builds the go-repository-bun handlers for creators. Email is the identifier.
func NewCreatorRepository(db *bun.DB) repository.Repository[*Creator] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Creator]{
		NewRecord: func() *Creator { return &Creator{} },
		GetID: func(c *Creator) uuid.UUID {
			return c.ID
		},
		SetID: func(c *Creator, id uuid.UUID) {
			c.ID = id
		},
		GetIdentifier: func() string {
			return "email"
		},
		GetIdentifierValue: func(c *Creator) string {
			return c.Email
		},
	})
}

// NewProjectRepository builds the go-repository-bun handlers for projects.
func NewProjectRepository(db *bun.DB) repository.Repository[*Project] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Project]{
		NewRecord: func() *Project { return &Project{} },
		GetID: func(p *Project) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Project, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(p *Project) string {
			if p == nil {
				return ""
			}
			return p.ID.String()
		},
	})
}

type BunCreatorRepository struct {
	repo repository.Repository[*Creator]
}

func NewBunCreatorRepository(db *bun.DB) *BunCreatorRepository {
	return NewBunCreatorRepositoryWithCache(db, nil, nil)
}

// NewBunCreatorRepositoryWithCache constructs a CreatorRepository with optional caching.
func NewBunCreatorRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunCreatorRepository {
	base := NewCreatorRepository(db)
	return &BunCreatorRepository{repo: wrapWithCache(base, cacheService, keySerializer)}
}

func (r *BunCreatorRepository) Create(ctx context.Context, creator *Creator) (*Creator, error) {
	if _, err := r.repo.GetByIdentifier(ctx, creator.Email); err == nil {
		return nil, ErrDuplicateEmail
	}
	created, err := r.repo.Create(ctx, creator)
	if err != nil {
		return nil, fmt.Errorf("creator repository error: %w", err)
	}
	return created, nil
}

func (r *BunCreatorRepository) Update(ctx context.Context, creator *Creator) (*Creator, error) {
	updated, err := r.repo.Update(ctx, creator,
		repository.UpdateByID(creator.ID.String()),
		repository.UpdateColumns(
			"email",
			"name",
			"content_path",
			"current_phase_id",
			"current_project_id",
			"status",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "creator", creator.ID.String())
	}
	return updated, nil
}

func (r *BunCreatorRepository) GetByID(ctx context.Context, id uuid.UUID) (*Creator, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "creator", id.String())
	}
	return result, nil
}

func (r *BunCreatorRepository) GetByEmail(ctx context.Context, email string) (*Creator, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	result, err := r.repo.GetByIdentifier(ctx, key)
	if err != nil {
		return nil, mapRepositoryError(err, "creator", key)
	}
	return result, nil
}

func (r *BunCreatorRepository) List(ctx context.Context) ([]*Creator, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.created_at ASC").OrderExpr("?TableAlias.email ASC")
	}))
	return records, err
}

type BunProjectRepository struct {
	repo repository.Repository[*Project]
}

func NewBunProjectRepository(db *bun.DB) *BunProjectRepository {
	return NewBunProjectRepositoryWithCache(db, nil, nil)
}

// NewBunProjectRepositoryWithCache constructs a ProjectRepository with optional caching.
func NewBunProjectRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunProjectRepository {
	base := NewProjectRepository(db)
	return &BunProjectRepository{repo: wrapWithCache(base, cacheService, keySerializer)}
}

func (r *BunProjectRepository) Create(ctx context.Context, project *Project) (*Project, error) {
	created, err := r.repo.Create(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("project repository error: %w", err)
	}
	return created, nil
}

func (r *BunProjectRepository) Update(ctx context.Context, project *Project) (*Project, error) {
	updated, err := r.repo.Update(ctx, project,
		repository.UpdateByID(project.ID.String()),
		repository.UpdateColumns(
			"content_path",
			"status",
			"archived_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "project", project.ID.String())
	}
	return updated, nil
}

func (r *BunProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "project", id.String())
	}
	return result, nil
}

func (r *BunProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Project{ID: id}); err != nil {
		return mapRepositoryError(err, "project", id.String())
	}
	return nil
}

func (r *BunProjectRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*Project, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.creator_id = ?", creatorID).OrderExpr("?TableAlias.sequence ASC")
	}))
	return records, err
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
