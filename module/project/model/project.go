package model

import (
	"time"

	mgo "Alvin/service/mgo"

	"go.mongodb.org/mongo-driver/mongo"
)

// Collaborator status
const (
	CollabActive  string = "active"
	CollabRevoked string = "revoked"
	CollabPending string = "pending"
)

// Project is the scene-editing workspace a room maps onto.
type Project struct {
	ProjectID string `bson:"project_id" json:"ProjectID"`
	OwnerID   string `bson:"owner_id" json:"OwnerID"`
	Name      string `bson:"name" json:"Name"`

	CreateTime time.Time `bson:"create_time" json:"CreateTime"`
	UpdateTime time.Time `bson:"update_time" json:"UpdateTime"`
}

func (p *Project) GetTableName() string {
	return "project"
}

func (p *Project) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(p.GetTableName())
}

// Collaborator grants a non-owner user access to a project.
type Collaborator struct {
	ProjectID string `bson:"project_id" json:"ProjectID"`
	UserID    string `bson:"user_id" json:"UserID"`
	Status    string `bson:"status" json:"Status"` // active/revoked/pending

	CreateTime time.Time `bson:"create_time" json:"CreateTime"`
	UpdateTime time.Time `bson:"update_time" json:"UpdateTime"`
}

func (c *Collaborator) GetTableName() string {
	return "project_collaborator"
}

func (c *Collaborator) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(c.GetTableName())
}
