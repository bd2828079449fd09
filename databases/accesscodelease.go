package databases

// go generate: mockery --name AccessCodeLeaseDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/wepass-api/models"
)

const accessCodeLeaseName = "accessCodeLeases"

// AccessCodeLeaseDatabase contains the methods to use with the access code lease database
type AccessCodeLeaseDatabase interface {
	InsertOne(ctx context.Context, lease models.AccessCodeLease) error
	DeleteOne(ctx context.Context, filter interface{}) error
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type accessCodeLeaseDatabase struct {
	db DatabaseHelper
}

// NewAccessCodeLeaseDatabase initializes a new instance of access code lease database with the provided db connection
func NewAccessCodeLeaseDatabase(db DatabaseHelper) AccessCodeLeaseDatabase {
	return &accessCodeLeaseDatabase{
		db: db,
	}
}

func (l *accessCodeLeaseDatabase) InsertOne(ctx context.Context, lease models.AccessCodeLease) error {
	_, err := l.db.Collection(accessCodeLeaseName).InsertOne(ctx, lease)
	return err
}

func (l *accessCodeLeaseDatabase) DeleteOne(ctx context.Context, filter interface{}) error {
	return l.db.Collection(accessCodeLeaseName).DeleteOne(ctx, filter)
}

func (l *accessCodeLeaseDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return l.db.Collection(accessCodeLeaseName).CountDocuments(ctx, filter)
}

// EnsureIndexes creates the TTL index that frees a code once its lease expires
func (l *accessCodeLeaseDatabase) EnsureIndexes(ctx context.Context) error {
	return l.db.Collection(accessCodeLeaseName).CreateIndexes(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
}
