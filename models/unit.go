package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Unit holds the structure for the unit collection in mongo
type Unit struct {
	ID             primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Company        primitive.ObjectID   `json:"company" bson:"company"`
	ParentProperty primitive.ObjectID   `json:"parentProperty" bson:"parentProperty"`
	ParentModule   primitive.ObjectID   `json:"parentModule" bson:"parentModule"`
	Occupants      []primitive.ObjectID `json:"occupants" bson:"occupants"`
	Identifier     string               `json:"identifier" bson:"identifier"`
}
