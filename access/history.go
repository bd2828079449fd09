package access

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/wepass-api/databases"
	"github.com/linesmerrill/wepass-api/models"
)

const dayLayout = "2006-01-02"

// HistoryQuery selects the codes of a property verified in [From, To)
type HistoryQuery struct {
	ParentProperty primitive.ObjectID
	From           time.Time
	To             time.Time
}

// BuildHistoryQuery covers every calendar day from `from` through `to` in loc.
// A nil to selects the single day of from.
func BuildHistoryQuery(parentProperty primitive.ObjectID, from time.Time, to *time.Time, loc *time.Location) (HistoryQuery, error) {
	start := StartOfDay(from, loc)
	lastDay := start
	if to != nil {
		lastDay = StartOfDay(*to, loc)
	}
	if lastDay.Before(start) {
		return HistoryQuery{}, validationError("to date %s is before from date %s", lastDay.Format(dayLayout), start.Format(dayLayout))
	}
	return HistoryQuery{
		ParentProperty: parentProperty,
		From:           start,
		To:             lastDay.AddDate(0, 0, 1),
	}, nil
}

// Filter is the store filter for the query
func (q HistoryQuery) Filter() bson.M {
	return bson.M{
		"parentProperty": q.ParentProperty,
		"verified":       true,
		"verifiedAt": bson.M{
			"$gte": q.From,
			"$lt":  q.To,
		},
	}
}

// ParseDay reads a calendar day (2006-01-02) in loc, or a full RFC 3339 timestamp
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation(dayLayout, value, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, validationError("%q is not a valid date", value)
	}
	return t.In(loc), nil
}

// HistoryRequest carries the raw parameters of a history lookup
type HistoryRequest struct {
	PropertyID string
	From       string
	To         string
	Limit      int
	Page       int
}

// History returns the codes of a property verified between the requested days
func (s *Service) History(ctx context.Context, req HistoryRequest, agent Agent) ([]models.AccessCode, error) {
	property, err := parseID("property", req.PropertyID)
	if err != nil {
		return nil, err
	}
	if !agent.Privileged() && !agent.InProperty(property) {
		return nil, ErrPropertyScopeMismatch
	}
	if strings.TrimSpace(req.From) == "" {
		return nil, validationError("from date is required")
	}
	if req.Limit < 0 || req.Page < 0 {
		return nil, validationError("limit and page must not be negative")
	}
	if req.Page > 0 && req.Limit == 0 {
		return nil, validationError("page requires a limit")
	}

	loc := s.Clock.Location()
	from, err := ParseDay(req.From, loc)
	if err != nil {
		return nil, err
	}
	var to *time.Time
	if strings.TrimSpace(req.To) != "" {
		t, err := ParseDay(req.To, loc)
		if err != nil {
			return nil, err
		}
		to = &t
	}

	query, err := BuildHistoryQuery(property, from, to, loc)
	if err != nil {
		return nil, err
	}

	opts := []*options.FindOptions{options.Find().SetSort(bson.D{{Key: "verifiedAt", Value: 1}})}
	if req.Limit > 0 {
		opts = append(opts, databases.PaginatedFindOptions(req.Limit, req.Page))
	}
	accessCodes, err := s.Codes.Find(ctx, query.Filter(), opts...)
	if err != nil {
		return nil, err
	}
	if accessCodes == nil {
		accessCodes = []models.AccessCode{}
	}
	return accessCodes, nil
}
