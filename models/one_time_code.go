package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type CodeType string

const (
	CodeTypeLogin      CodeType = "login"
	CodeTypeEnable2FA  CodeType = "enable_2fa"
	CodeTypeDisable2FA CodeType = "disable_2fa"
)

func (t CodeType) Valid() bool {
	switch t {
	case CodeTypeLogin, CodeTypeEnable2FA, CodeTypeDisable2FA:
		return true
	}
	return false
}

// OneTimeCode records are kept after use; lookups filter on isUsed and expiresAt.
type OneTimeCode struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	AccountID bson.ObjectID `bson:"accountId" json:"accountId"`
	Code      string        `bson:"code" json:"-"`
	Type      CodeType      `bson:"type" json:"type"`
	ExpiresAt time.Time     `bson:"expiresAt" json:"expiresAt"`
	IsUsed    bool          `bson:"isUsed" json:"isUsed"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}
