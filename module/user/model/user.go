package model

import (
	"time"

	mgo "Alvin/service/mgo"

	"go.mongodb.org/mongo-driver/mongo"
)

// Status
const (
	UserNormal int32 = 0
	UserBanned int32 = 1
	UserClosed int32 = 2
)

// User is the account master record. Only what the gateway and the login
// endpoint need lives here.
type User struct {
	UserID       string `bson:"user_id" json:"UserID"` // globally unique, immutable
	Username     string `bson:"username" json:"Username"`
	AvatarURL    string `bson:"avatar_url" json:"AvatarURL"`
	PasswordHash string `bson:"password_hash" json:"-"` // sha256 hex

	Status    int32     `bson:"status,omitempty" json:"Status"`
	LastLogin time.Time `bson:"last_login,omitempty" json:"LastLogin"`

	CreateTime time.Time `bson:"create_time" json:"CreateTime"`
	UpdateTime time.Time `bson:"update_time" json:"UpdateTime"`
}

func (u *User) GetTableName() string {
	return "user"
}

func (u *User) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(u.GetTableName())
}
