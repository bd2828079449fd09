package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resolution codes returned alongside a verification
const (
	ResolutionSuccess     = 1
	ResolutionMissingInfo = 2
	ResolutionExpired     = 3
)

// AccessCode represents the structure of an access code document in MongoDB
type AccessCode struct {
	ID             primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	Unit           primitive.ObjectID  `json:"unit" bson:"unit"`
	ParentProperty primitive.ObjectID  `json:"parentProperty" bson:"parentProperty"`
	Visitor        primitive.ObjectID  `json:"visitor" bson:"visitor"`
	CreatedBy      primitive.ObjectID  `json:"createdBy" bson:"createdBy"`
	AccessCode     int                 `json:"accessCode" bson:"accessCode"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
	Verified       bool                `json:"verified" bson:"verified"`
	VerifiedBy     *primitive.ObjectID `json:"verifiedBy,omitempty" bson:"verifiedBy,omitempty"`
	VerifiedAt     *time.Time          `json:"verifiedAt,omitempty" bson:"verifiedAt,omitempty"`
}

// PopulatedAccessCode is an access code with the visitor reference replaced
// by the visitor document
type PopulatedAccessCode struct {
	AccessCode
	Visitor *User `json:"visitor"`
}

// MaskedAccessCode is the history projection shown to non-privileged callers,
// it leaves out the verified flag
type MaskedAccessCode struct {
	ID             primitive.ObjectID  `json:"_id"`
	Unit           primitive.ObjectID  `json:"unit"`
	ParentProperty primitive.ObjectID  `json:"parentProperty"`
	Visitor        primitive.ObjectID  `json:"visitor"`
	CreatedBy      primitive.ObjectID  `json:"createdBy"`
	AccessCode     int                 `json:"accessCode"`
	CreatedAt      time.Time           `json:"createdAt"`
	VerifiedBy     *primitive.ObjectID `json:"verifiedBy,omitempty"`
	VerifiedAt     *time.Time          `json:"verifiedAt,omitempty"`
}

// Mask drops the verified flag from an access code
func (a AccessCode) Mask() MaskedAccessCode {
	return MaskedAccessCode{
		ID:             a.ID,
		Unit:           a.Unit,
		ParentProperty: a.ParentProperty,
		Visitor:        a.Visitor,
		CreatedBy:      a.CreatedBy,
		AccessCode:     a.AccessCode,
		CreatedAt:      a.CreatedAt,
		VerifiedBy:     a.VerifiedBy,
		VerifiedAt:     a.VerifiedAt,
	}
}

// VerificationResult is returned every time an access code is presented at an entry point
type VerificationResult struct {
	ResolutionCode int                 `json:"resolutionCode"`
	MissingDetails []string            `json:"missingDetails"`
	AccessCode     PopulatedAccessCode `json:"accessCode"`
}

// AccessCodeLease reserves a code value while the access code holding it is
// active. The code itself is the document id so the collection enforces
// uniqueness, and a TTL index on ExpiresAt frees it after the validity window.
type AccessCodeLease struct {
	Code         int                `json:"code" bson:"_id"`
	AccessCodeID primitive.ObjectID `json:"accessCodeId" bson:"accessCodeId"`
	ExpiresAt    time.Time          `json:"expiresAt" bson:"expiresAt"`
}
