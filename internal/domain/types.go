package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPath indicates a content path value outside the supported enumeration.
var ErrInvalidPath = errors.New("domain: invalid content path")

// ContentPath identifies the type of deliverable a creator is producing.
type ContentPath string

const (
	// PathBlog is the lightweight blog deliverable.
	PathBlog ContentPath = "blog"
	// PathDownload is the digital-download deliverable.
	PathDownload ContentPath = "download"
	// PathCourse is the full course deliverable.
	PathCourse ContentPath = "course"
	// PathUnset marks creators that have not selected a path yet.
	PathUnset ContentPath = "unset"
)

// ContentPaths lists every selectable path in display order.
func ContentPaths() []ContentPath {
	return []ContentPath{PathBlog, PathDownload, PathCourse}
}

// ParseContentPath normalises input and rejects unknown values. Empty input maps to PathUnset.
func ParseContentPath(input string) (ContentPath, error) {
	normalized := ContentPath(strings.ToLower(strings.TrimSpace(input)))
	switch normalized {
	case "":
		return PathUnset, nil
	case PathBlog, PathDownload, PathCourse, PathUnset:
		return normalized, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, input)
	}
}

// Valid reports whether the path is part of the enumeration.
func (p ContentPath) Valid() bool {
	switch p {
	case PathBlog, PathDownload, PathCourse, PathUnset:
		return true
	default:
		return false
	}
}

// CreatorStatus tracks whether a creator is still progressing.
type CreatorStatus string

const (
	CreatorStatusActive   CreatorStatus = "active"
	CreatorStatusArchived CreatorStatus = "archived"
)

// ProjectStatus tracks whether a project context is the creator's current one.
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusArchived ProjectStatus = "archived"
)

// SubmissionKind distinguishes creator submissions that complete immediately from those needing review.
type SubmissionKind string

const (
	// SubmissionConfirmation completes the milestone and unlocks the next one.
	SubmissionConfirmation SubmissionKind = "confirmation"
	// SubmissionReview parks the milestone until the team approves it.
	SubmissionReview SubmissionKind = "review_submission"
)

// ParseSubmissionKind normalises a submission kind string.
func ParseSubmissionKind(input string) (SubmissionKind, error) {
	switch kind := SubmissionKind(strings.ToLower(strings.TrimSpace(input))); kind {
	case SubmissionConfirmation, SubmissionReview:
		return kind, nil
	case "review":
		return SubmissionReview, nil
	default:
		return "", fmt.Errorf("domain: invalid submission kind %q", input)
	}
}

// WaitingOn classifies who is expected to act next for a creator.
type WaitingOn string

const (
	WaitingOnLaunched WaitingOn = "launched"
	WaitingOnStalled  WaitingOn = "stalled"
	WaitingOnTeam     WaitingOn = "tdi"
	WaitingOnCreator  WaitingOn = "creator"
)

// EventKind enumerates outbound notification kinds.
type EventKind string

const (
	EventCompleted         EventKind = "completed"
	EventWaitingApproval   EventKind = "waiting_approval"
	EventRevisionRequested EventKind = "revision_requested"
)

const (
	adminActorPrefix  = "admin:"
	systemActorPrefix = "system:"
)

// AdminActor renders the provenance string stamped on admin-driven changes.
func AdminActor(email string) string {
	return adminActorPrefix + strings.ToLower(strings.TrimSpace(email))
}

// SystemActor renders the provenance string stamped on automated changes.
func SystemActor(reason string) string {
	return systemActorPrefix + strings.TrimSpace(reason)
}

// IsAdminActor reports whether the actor string was produced by AdminActor.
func IsAdminActor(actor string) bool {
	return strings.HasPrefix(actor, adminActorPrefix)
}

// IsSystemActor reports whether the actor string was produced by SystemActor.
func IsSystemActor(actor string) bool {
	return strings.HasPrefix(actor, systemActorPrefix)
}

// CreatorActor renders the provenance string stamped on creator-driven changes.
func CreatorActor(creatorID string) string {
	return strings.TrimSpace(creatorID)
}
