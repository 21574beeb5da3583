package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// CreatorUUID keys creators by their lowercased email.
func CreatorUUID(email string) uuid.UUID {
	return UUID("go-onboarding:creator:" + strings.ToLower(strings.TrimSpace(email)))
}

// ProjectUUID keys project contexts by creator and sequence number.
func ProjectUUID(creatorID uuid.UUID, sequence int) uuid.UUID {
	return UUID("go-onboarding:project:" + creatorID.String() + ":" + strconv.Itoa(sequence))
}

// RecordUUID keys milestone records by project and milestone id.
func RecordUUID(projectID uuid.UUID, milestoneID string) uuid.UUID {
	return UUID("go-onboarding:milestone_record:" + projectID.String() + ":" + strings.TrimSpace(milestoneID))
}
