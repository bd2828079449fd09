package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/wepass-api/databases"
	"github.com/linesmerrill/wepass-api/databases/mocks"
	"github.com/linesmerrill/wepass-api/models"
)

func TestAccessCodeDatabase_FindOne(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.AccessCode)
		(*arg).AccessCode = 12345
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": true}).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": false}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "accessCodes").Return(collectionHelper)

	// Create new database with mocked Database interface
	accessCodeDba := databases.NewAccessCodeDatabase(dbHelper)

	accessCode, err := accessCodeDba.FindOne(context.Background(), bson.M{"error": true})

	assert.Empty(t, accessCode)
	assert.EqualError(t, err, "mocked-error")

	accessCode, err = accessCodeDba.FindOne(context.Background(), bson.M{"error": false})

	assert.Equal(t, &models.AccessCode{AccessCode: 12345}, accessCode)
	assert.NoError(t, err)
}

func TestAccessCodeDatabase_Find(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}
	property := primitive.NewObjectID()

	cursorHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.AccessCode)
		*arg = append(*arg, models.AccessCode{ParentProperty: property, Verified: true})
	})
	collectionHelper.On("Find", context.Background(), bson.M{"error": true}).Return(nil, errors.New("mocked-error"))
	collectionHelper.On("Find", context.Background(), bson.M{"error": false}).Return(cursorHelper, nil)
	dbHelper.On("Collection", "accessCodes").Return(collectionHelper)

	accessCodeDba := databases.NewAccessCodeDatabase(dbHelper)

	accessCodes, err := accessCodeDba.Find(context.Background(), bson.M{"error": true})
	assert.Nil(t, accessCodes)
	assert.EqualError(t, err, "mocked-error")

	accessCodes, err = accessCodeDba.Find(context.Background(), bson.M{"error": false})
	assert.NoError(t, err)
	assert.Equal(t, []models.AccessCode{{ParentProperty: property, Verified: true}}, accessCodes)
}

func TestAccessCodeDatabase_FindOneAndUpdate(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	srHelper := &mocks.SingleResultHelper{}
	id := primitive.NewObjectID()

	srHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	collectionHelper.On("FindOneAndUpdate", context.Background(), bson.M{"_id": id, "verified": false}, mock.Anything).Return(srHelper)
	dbHelper.On("Collection", "accessCodes").Return(collectionHelper)

	accessCode, err := databases.NewAccessCodeDatabase(dbHelper).FindOneAndUpdate(context.Background(),
		bson.M{"_id": id, "verified": false},
		bson.M{"$set": bson.M{"verified": true}})

	assert.Nil(t, accessCode)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestAccessCodeDatabase_InsertOne(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	insertResult := &mocks.InsertOneResultHelper{}
	accessCode := models.AccessCode{ID: primitive.NewObjectID(), AccessCode: 10001}

	collectionHelper.On("InsertOne", context.Background(), accessCode).Return(insertResult, nil)
	dbHelper.On("Collection", "accessCodes").Return(collectionHelper)

	result, err := databases.NewAccessCodeDatabase(dbHelper).InsertOne(context.Background(), accessCode)

	assert.NoError(t, err)
	assert.Equal(t, insertResult, result)
}

func TestAccessCodeDatabase_EnsureIndexes(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("CreateIndexes", context.Background(), mock.Anything).Return(nil)
	dbHelper.On("Collection", "accessCodes").Return(collectionHelper)

	assert.NoError(t, databases.NewAccessCodeDatabase(dbHelper).EnsureIndexes(context.Background()))

	indexes := collectionHelper.Calls[0].Arguments.Get(1).([]mongo.IndexModel)
	assert.Len(t, indexes, 2)
	assert.Equal(t, bson.D{{Key: "accessCode", Value: 1}, {Key: "createdAt", Value: -1}}, indexes[0].Keys)
}
