package store

import (
	"context"

	"Alvin/module/project/model"
	"Alvin/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AccessStore answers project authorization queries against Mongo. Access is
// granted to the project owner and to active collaborators.
type AccessStore struct{}

func NewAccessStore() *AccessStore { return &AccessStore{} }

func (s *AccessStore) HasProjectAccess(ctx context.Context, userID, projectID string) (bool, error) {
	var p model.Project
	err := p.Collection().FindOne(ctx, bson.M{"project_id": projectID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, errs.Wrap(err)
	}
	if p.OwnerID == userID {
		return true, nil
	}

	var collab model.Collaborator
	err = collab.Collection().FindOne(ctx, bson.M{
		"project_id": projectID,
		"user_id":    userID,
		"status":     model.CollabActive,
	}).Decode(&collab)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, errs.Wrap(err)
	}
	return true, nil
}
