package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleUser       = "user"
	RoleGuest      = "guest"
	RoleAgent      = "agent"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superAdmin"
)

// User holds the structure for the user collection in mongo. Visitors,
// occupants and agents are all users.
type User struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	FirstName    string             `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName     string             `json:"lastName,omitempty" bson:"lastName,omitempty"`
	DocumentID   string             `json:"documentID,omitempty" bson:"documentID,omitempty"`
	Email        string             `json:"email,omitempty" bson:"email,omitempty"`
	VehiclePlate string             `json:"vehiclePlate,omitempty" bson:"vehiclePlate,omitempty"`
	PhoneNumber  string             `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
	Password     string             `json:"-" bson:"password,omitempty"`
	Role         string             `json:"role" bson:"role"`
	Company      primitive.ObjectID `json:"company,omitempty" bson:"company,omitempty"`
	Property     primitive.ObjectID `json:"property,omitempty" bson:"property,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}

// VisitorDetails is a partial update of a visitor's identity. Nil fields are
// left untouched.
type VisitorDetails struct {
	FirstName    *string `json:"firstName,omitempty"`
	LastName     *string `json:"lastName,omitempty"`
	DocumentID   *string `json:"documentID,omitempty"`
	Email        *string `json:"email,omitempty"`
	VehiclePlate *string `json:"vehiclePlate,omitempty"`
	PhoneNumber  *string `json:"phoneNumber,omitempty"`
}
