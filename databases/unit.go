package databases

// go generate: mockery --name UnitDatabase

import (
	"context"

	"github.com/linesmerrill/wepass-api/models"
)

const unitName = "units"

// UnitDatabase contains the methods to use with the unit database
type UnitDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Unit, error)
}

type unitDatabase struct {
	db DatabaseHelper
}

// NewUnitDatabase initializes a new instance of unit database with the provided db connection
func NewUnitDatabase(db DatabaseHelper) UnitDatabase {
	return &unitDatabase{
		db: db,
	}
}

func (u *unitDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Unit, error) {
	unit := &models.Unit{}
	err := u.db.Collection(unitName).FindOne(ctx, filter).Decode(&unit)
	if err != nil {
		return nil, err
	}
	return unit, nil
}
