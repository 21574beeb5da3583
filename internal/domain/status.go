package domain

import (
	"fmt"
	"strings"
)

// Status represents the lifecycle state of a creator milestone record.
type Status string

const (
	// StatusLocked marks milestones that cannot be acted on yet.
	StatusLocked Status = "locked"
	// StatusAvailable marks milestones the creator (or team) can act on.
	StatusAvailable Status = "available"
	// StatusWaitingApproval marks submissions waiting on team review.
	StatusWaitingApproval Status = "waiting_approval"
	// StatusCompleted marks finished milestones.
	StatusCompleted Status = "completed"
	// StatusPaused marks milestones an admin put on hold.
	StatusPaused Status = "paused"
)

// Statuses lists every status in pipeline order.
func Statuses() []Status {
	return []Status{StatusLocked, StatusAvailable, StatusWaitingApproval, StatusCompleted, StatusPaused}
}

// ParseStatus normalises a status string and rejects unknown values.
func ParseStatus(input string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(input)))
	if !status.Valid() {
		return "", fmt.Errorf("domain: invalid status %q", input)
	}
	return status, nil
}

// Valid reports whether the status is part of the enumeration.
func (s Status) Valid() bool {
	switch s {
	case StatusLocked, StatusAvailable, StatusWaitingApproval, StatusCompleted, StatusPaused:
		return true
	default:
		return false
	}
}

// Open reports whether the creator or team can currently act on the milestone.
func (s Status) Open() bool {
	return s == StatusAvailable || s == StatusWaitingApproval
}
