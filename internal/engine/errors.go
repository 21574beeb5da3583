package engine

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-onboarding/internal/catalog"
	"github.com/goliatone/go-onboarding/internal/creators"
	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/records"
	"github.com/goliatone/go-onboarding/internal/workflow"
)

var (
	// ErrNotFound matches every NotFoundError returned by the engine.
	ErrNotFound = errors.New("engine: not found")
	// ErrInvalidTransition indicates the record's current status does not permit the operation.
	ErrInvalidTransition = errors.New("engine: invalid transition")
	// ErrInvalidInput indicates missing or malformed operation input.
	ErrInvalidInput = errors.New("engine: invalid input")

	ErrCatalogRequired  = errors.New("engine: catalog required")
	ErrRecordsRequired  = errors.New("engine: records repository required")
	ErrCreatorsRequired = errors.New("engine: creator repository required")
	ErrProjectsRequired = errors.New("engine: project repository required")
)

// Text codes attached when errors cross the engine boundary.
const (
	TextCodeNotFound           = "MILESTONE_NOT_FOUND"
	TextCodeInvalidTransition  = "INVALID_TRANSITION"
	TextCodeInvalidPath        = "INVALID_PATH"
	TextCodeInvalidPayload     = "INVALID_PAYLOAD"
	TextCodeInvalidInput       = "INVALID_INPUT"
	TextCodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	TextCodeCreatorExists      = "CREATOR_EXISTS"
)

// NotFoundError identifies a missing creator, project, milestone, or record.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("engine: %s %q not found", e.Resource, e.Key)
}

// Is lets errors.Is(err, ErrNotFound) match any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func invalidTransition(milestoneID string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInvalidTransition, milestoneID, err)
}

func invalidInput(field string) error {
	return fmt.Errorf("%w: %s required", ErrInvalidInput, field)
}

// Categorize wraps engine errors with a go-errors category and text code so transports can
// map them without knowing engine sentinels. Already wrapped errors pass through unchanged.
func Categorize(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, creators.ErrCreatorNotFound):
		return goerrors.Wrap(err, goerrors.CategoryNotFound, err.Error()).
			WithTextCode(TextCodeNotFound)
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, workflow.ErrInvalidTransition):
		return goerrors.Wrap(err, goerrors.CategoryConflict, err.Error()).
			WithTextCode(TextCodeInvalidTransition)
	case errors.Is(err, creators.ErrCreatorExists):
		return goerrors.Wrap(err, goerrors.CategoryConflict, err.Error()).
			WithTextCode(TextCodeCreatorExists)
	case errors.Is(err, domain.ErrInvalidPath):
		return goerrors.Wrap(err, goerrors.CategoryBadInput, err.Error()).
			WithTextCode(TextCodeInvalidPath)
	case errors.Is(err, catalog.ErrPayloadInvalid):
		return goerrors.Wrap(err, goerrors.CategoryBadInput, err.Error()).
			WithTextCode(TextCodeInvalidPayload)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, creators.ErrInvalidCreator):
		return goerrors.Wrap(err, goerrors.CategoryBadInput, err.Error()).
			WithTextCode(TextCodeInvalidInput)
	case errors.Is(err, records.ErrStorageUnavailable):
		return goerrors.Wrap(err, goerrors.CategoryExternal, err.Error()).
			WithTextCode(TextCodeStorageUnavailable)
	default:
		return err
	}
}
