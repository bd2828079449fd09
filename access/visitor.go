package access

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/linesmerrill/wepass-api/models"
)

// visitorPatch builds the $set document for the supplied details. Blank values
// count as absent so existing data is never cleared.
func visitorPatch(details models.VisitorDetails) bson.M {
	set := bson.M{}
	put := func(field string, value *string, normalize func(string) string) {
		if value == nil {
			return
		}
		v := strings.TrimSpace(*value)
		if normalize != nil {
			v = normalize(v)
		}
		if v != "" {
			set[field] = v
		}
	}
	put("firstName", details.FirstName, nil)
	put("lastName", details.LastName, nil)
	put("documentID", details.DocumentID, nil)
	put("email", details.Email, strings.ToLower)
	put("vehiclePlate", details.VehiclePlate, nil)
	put("phoneNumber", details.PhoneNumber, nil)
	return set
}

// ApplyMissingDetails fills in the visitor of an access code and returns the
// code with the updated visitor. The resolution is not recomputed.
func (s *Service) ApplyMissingDetails(ctx context.Context, accessCodeID string, details models.VisitorDetails, agent Agent) (*models.PopulatedAccessCode, error) {
	accessCode, err := s.findByID(ctx, accessCodeID)
	if err != nil {
		return nil, err
	}
	if !agent.canView(accessCode) {
		return nil, ErrPropertyScopeMismatch
	}

	set := visitorPatch(details)
	if len(set) == 0 {
		visitor, err := s.findVisitor(ctx, accessCode.Visitor)
		if err != nil {
			return nil, err
		}
		return &models.PopulatedAccessCode{AccessCode: *accessCode, Visitor: visitor}, nil
	}

	visitor, err := s.Users.FindOneAndUpdate(ctx,
		bson.M{"_id": accessCode.Visitor},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, validationError("visitor %s does not exist", accessCode.Visitor.Hex())
		}
		return nil, err
	}

	zap.S().Infow("visitor details updated",
		"accessCodeId", accessCode.ID.Hex(),
		"visitor", visitor.ID.Hex(),
		"fields", len(set))
	return &models.PopulatedAccessCode{AccessCode: *accessCode, Visitor: visitor}, nil
}
