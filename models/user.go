package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}

type Account struct {
	ID               bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string        `bson:"name" json:"name"`
	Email            string        `bson:"email" json:"email"`
	PasswordHash     string        `bson:"passwordHash" json:"-"` // never expose
	Role             Role          `bson:"role" json:"role"`
	Permissions      []string      `bson:"permissions" json:"permissions"`
	TwoFactorEnabled bool          `bson:"twoFactorEnabled" json:"twoFactorEnabled"`
	LastLogin        *time.Time    `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt        time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time     `bson:"updatedAt" json:"updatedAt"`
}
