package access

import (
	"time"

	"github.com/linesmerrill/wepass-api/models"
)

// DefaultValidity is how long an access code stays usable after creation
const DefaultValidity = 7 * time.Hour

// LeaseGrace keeps a code's lease alive past the last instant the code itself
// is valid.
const LeaseGrace = time.Second

// IsExpired reports whether more than validity has passed between createdAt
// and at. A code checked exactly validity after creation is still valid.
func IsExpired(createdAt, at time.Time, validity time.Duration) bool {
	return at.Sub(createdAt) > validity
}

// MissingDetails lists the required identity fields the visitor lacks
func MissingDetails(visitor *models.User) []string {
	if visitor == nil {
		return []string{"firstName", "lastName", "documentID"}
	}
	missing := []string{}
	if visitor.FirstName == "" {
		missing = append(missing, "firstName")
	}
	if visitor.LastName == "" {
		missing = append(missing, "lastName")
	}
	if visitor.DocumentID == "" {
		missing = append(missing, "documentID")
	}
	return missing
}

// Resolve computes the resolution code of an access code. Expiry is measured
// at the verification instant when there is one, otherwise at now.
func Resolve(code models.AccessCode, visitor *models.User, now time.Time, validity time.Duration) (int, []string) {
	at := now
	if code.VerifiedAt != nil {
		at = *code.VerifiedAt
	}
	if IsExpired(code.CreatedAt, at, validity) {
		return models.ResolutionExpired, []string{}
	}
	if missing := MissingDetails(visitor); len(missing) > 0 {
		return models.ResolutionMissingInfo, missing
	}
	return models.ResolutionSuccess, []string{}
}
