package access

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/linesmerrill/wepass-api/databases"
	"github.com/linesmerrill/wepass-api/models"
)

// Service runs the access code lifecycle: creation, verification, visitor
// enrichment and history
type Service struct {
	Codes     databases.AccessCodeDatabase
	Leases    databases.AccessCodeLeaseDatabase
	Users     databases.UserDatabase
	Units     databases.UnitDatabase
	Clock     Clock
	Generator *Generator
	Validity  time.Duration
}

// NewService wires a Service over the given collections
func NewService(codes databases.AccessCodeDatabase, leases databases.AccessCodeLeaseDatabase, users databases.UserDatabase, units databases.UnitDatabase, clock Clock, generator *Generator, validity time.Duration) *Service {
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &Service{
		Codes:     codes,
		Leases:    leases,
		Users:     users,
		Units:     units,
		Clock:     clock,
		Generator: generator,
		Validity:  validity,
	}
}

// Create issues a new access code for visitor to enter unit
func (s *Service) Create(ctx context.Context, visitorID, unitID string, issuer Agent) (*models.AccessCode, error) {
	visitor, err := parseID("visitor", visitorID)
	if err != nil {
		return nil, err
	}
	unitOID, err := parseID("unit", unitID)
	if err != nil {
		return nil, err
	}

	unit, err := s.Units.FindOne(ctx, bson.M{"_id": unitOID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, validationError("unit %s could not be resolved", unitID)
		}
		return nil, err
	}
	if unit.ParentProperty.IsZero() {
		return nil, validationError("unit %s has no parent property", unitID)
	}

	now := s.Clock.Now()
	accessCode := models.AccessCode{
		ID:             primitive.NewObjectID(),
		Unit:           unitOID,
		ParentProperty: unit.ParentProperty,
		Visitor:        visitor,
		CreatedBy:      issuer.ID,
		CreatedAt:      now,
	}

	code, err := s.Generator.Generate(ctx, s.claimLease(accessCode.ID, now.Add(s.Validity+LeaseGrace)))
	if err != nil {
		if errors.Is(err, ErrCodeSpaceExhausted) {
			zap.S().Errorw("access code space exhausted",
				"property", unit.ParentProperty.Hex(),
				"error", err)
		}
		return nil, err
	}
	accessCode.AccessCode = code

	if _, err := s.Codes.InsertOne(ctx, accessCode); err != nil {
		s.releaseLease(ctx, code, accessCode.ID)
		return nil, err
	}

	zap.S().Infow("access code created",
		"accessCodeId", accessCode.ID.Hex(),
		"property", accessCode.ParentProperty.Hex(),
		"createdBy", issuer.ID.Hex())
	return &accessCode, nil
}

// Verify marks the presented code as used by agent and resolves it
func (s *Service) Verify(ctx context.Context, code int, agent Agent) (*models.VerificationResult, error) {
	accessCode, err := s.findByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !agent.InProperty(accessCode.ParentProperty) {
		zap.S().Warnw("access code verification outside agent property",
			"agent", agent.ID.Hex(),
			"accessCodeId", accessCode.ID.Hex())
		return nil, ErrPropertyScopeMismatch
	}

	if !accessCode.Verified {
		accessCode, err = s.markVerified(ctx, accessCode, agent)
		if err != nil {
			return nil, err
		}
	}

	visitor, err := s.findVisitor(ctx, accessCode.Visitor)
	if err != nil {
		return nil, err
	}

	resolution, missing := Resolve(*accessCode, visitor, s.Clock.Now(), s.Validity)
	return &models.VerificationResult{
		ResolutionCode: resolution,
		MissingDetails: missing,
		AccessCode:     models.PopulatedAccessCode{AccessCode: *accessCode, Visitor: visitor},
	}, nil
}

// Get returns an access code with its visitor
func (s *Service) Get(ctx context.Context, accessCodeID string, agent Agent) (*models.PopulatedAccessCode, error) {
	accessCode, err := s.findByID(ctx, accessCodeID)
	if err != nil {
		return nil, err
	}
	if !agent.canView(accessCode) {
		return nil, ErrPropertyScopeMismatch
	}
	visitor, err := s.findVisitor(ctx, accessCode.Visitor)
	if err != nil {
		return nil, err
	}
	return &models.PopulatedAccessCode{AccessCode: *accessCode, Visitor: visitor}, nil
}

func (s *Service) markVerified(ctx context.Context, accessCode *models.AccessCode, agent Agent) (*models.AccessCode, error) {
	updated, err := s.setVerified(ctx, accessCode.ID, agent.ID, s.Clock.Now())
	if err == nil {
		s.releaseLease(ctx, updated.AccessCode, updated.ID)
		zap.S().Infow("access code verified",
			"accessCodeId", updated.ID.Hex(),
			"verifiedBy", agent.ID.Hex())
		return updated, nil
	}
	if !errors.Is(err, ErrPersistenceConflict) {
		return nil, err
	}

	// another agent verified it first, their write stands
	zap.S().Debugw("access code already verified, re-reading",
		"accessCodeId", accessCode.ID.Hex())
	current, err := s.Codes.FindOne(ctx, bson.M{"_id": accessCode.ID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return current, nil
}

// setVerified writes the verification fields only while the record is still unverified
func (s *Service) setVerified(ctx context.Context, id, agentID primitive.ObjectID, at time.Time) (*models.AccessCode, error) {
	updated, err := s.Codes.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "verified": false},
		bson.M{"$set": bson.M{
			"verified":   true,
			"verifiedBy": agentID,
			"verifiedAt": at,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPersistenceConflict
	}
	return updated, err
}

// claimLease reserves candidates for id until expiresAt. A duplicate key means
// another active code holds the candidate.
func (s *Service) claimLease(id primitive.ObjectID, expiresAt time.Time) TakenFunc {
	return func(ctx context.Context, candidate int) (bool, error) {
		err := s.Leases.InsertOne(ctx, models.AccessCodeLease{
			Code:         candidate,
			AccessCodeID: id,
			ExpiresAt:    expiresAt,
		})
		if err == nil {
			return false, nil
		}
		if mongo.IsDuplicateKeyError(err) {
			return true, nil
		}
		return false, err
	}
}

func (s *Service) releaseLease(ctx context.Context, code int, id primitive.ObjectID) {
	err := s.Leases.DeleteOne(context.WithoutCancel(ctx), bson.M{"_id": code, "accessCodeId": id})
	if err != nil {
		zap.S().Warnw("failed to release access code lease",
			"accessCodeId", id.Hex(),
			"error", err)
	}
}

// findByCode returns the newest record carrying code. Codes are reused once
// their previous holder expired or was verified.
func (s *Service) findByCode(ctx context.Context, code int) (*models.AccessCode, error) {
	accessCode, err := s.Codes.FindOne(ctx,
		bson.M{"accessCode": code},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return accessCode, nil
}

func (s *Service) findByID(ctx context.Context, accessCodeID string) (*models.AccessCode, error) {
	id, err := parseID("access code", accessCodeID)
	if err != nil {
		return nil, err
	}
	accessCode, err := s.Codes.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return accessCode, nil
}

// findVisitor returns nil when the visitor document is gone
func (s *Service) findVisitor(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	visitor, err := s.Users.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			zap.S().Warnw("visitor not found for access code", "visitor", id.Hex())
			return nil, nil
		}
		return nil, err
	}
	return visitor, nil
}

func parseID(field, value string) (primitive.ObjectID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return primitive.NilObjectID, validationError("%s is required", field)
	}
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, validationError("%s is not a valid id", field)
	}
	return id, nil
}
