package databases

// go generate: mockery --name AccessCodeDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/wepass-api/models"
)

const accessCodeName = "accessCodes"

// AccessCodeDatabase contains the methods to use with the access code database
type AccessCodeDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.AccessCode, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AccessCode, error)
	InsertOne(ctx context.Context, accessCode models.AccessCode) (InsertOneResultHelper, error)
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.AccessCode, error)
	EnsureIndexes(ctx context.Context) error
}

type accessCodeDatabase struct {
	db DatabaseHelper
}

// NewAccessCodeDatabase initializes a new instance of access code database with the provided db connection
func NewAccessCodeDatabase(db DatabaseHelper) AccessCodeDatabase {
	return &accessCodeDatabase{
		db: db,
	}
}

func (a *accessCodeDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.AccessCode, error) {
	accessCode := &models.AccessCode{}
	err := a.db.Collection(accessCodeName).FindOne(ctx, filter, opts...).Decode(&accessCode)
	if err != nil {
		return nil, err
	}
	return accessCode, nil
}

func (a *accessCodeDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AccessCode, error) {
	var accessCodes []models.AccessCode
	cur, err := a.db.Collection(accessCodeName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&accessCodes)
	if err != nil {
		return nil, err
	}
	return accessCodes, nil
}

func (a *accessCodeDatabase) InsertOne(ctx context.Context, accessCode models.AccessCode) (InsertOneResultHelper, error) {
	return a.db.Collection(accessCodeName).InsertOne(ctx, accessCode)
}

func (a *accessCodeDatabase) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.AccessCode, error) {
	accessCode := &models.AccessCode{}
	err := a.db.Collection(accessCodeName).FindOneAndUpdate(ctx, filter, update, opts...).Decode(&accessCode)
	if err != nil {
		return nil, err
	}
	return accessCode, nil
}

// EnsureIndexes creates the lookup-by-code and history indexes
func (a *accessCodeDatabase) EnsureIndexes(ctx context.Context) error {
	return a.db.Collection(accessCodeName).CreateIndexes(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "accessCode", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "parentProperty", Value: 1}, {Key: "verified", Value: 1}, {Key: "verifiedAt", Value: 1}}},
	})
}
