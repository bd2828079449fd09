package access

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/wepass-api/models"
)

// Agent is the authenticated caller of an operation
type Agent struct {
	ID       primitive.ObjectID
	Role     string
	Property primitive.ObjectID
}

// Privileged reports whether the agent may act across properties
func (a Agent) Privileged() bool {
	return a.Role == models.RoleAdmin || a.Role == models.RoleSuperAdmin
}

// InProperty reports whether the agent is scoped to property
func (a Agent) InProperty(property primitive.ObjectID) bool {
	return !a.Property.IsZero() && a.Property == property
}

func (a Agent) canView(code *models.AccessCode) bool {
	return a.Privileged() || a.InProperty(code.ParentProperty) || a.ID == code.CreatedBy
}
