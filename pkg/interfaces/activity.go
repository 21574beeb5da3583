package interfaces

import (
	"context"

	usertypes "github.com/goliatone/go-users/pkg/types"
)

// ActivityRecord is the go-users activity record; onboarding events are written as
// records with ObjectType ActivityObjectMilestone.
type ActivityRecord = usertypes.ActivityRecord

// Activity vocabulary used for onboarding events.
const (
	ActivityChannel         = "onboarding"
	ActivityObjectMilestone = "milestone"

	ActivityVerbCompleted         = "milestone.completed"
	ActivityVerbSubmitted         = "milestone.submitted"
	ActivityVerbRevisionRequested = "milestone.revision_requested"
	activityVerbPrefix            = "milestone."
)

// ActivityVerb returns the verb for an event kind without a dedicated constant.
func ActivityVerb(kind string) string {
	return activityVerbPrefix + kind
}

// ActivitySink receives activity records. A go-users activity repository satisfies it.
type ActivitySink interface {
	Log(ctx context.Context, record ActivityRecord) error
}
