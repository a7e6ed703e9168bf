package store

import (
	"context"

	"Alvin/module/user/model"
	"Alvin/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserStore struct{}

func NewUserStore() *UserStore { return &UserStore{} }

func (s *UserStore) FindByID(ctx context.Context, userID string) (*model.User, error) {
	var u model.User
	err := u.Collection().FindOne(ctx, bson.M{"user_id": userID}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrUnauthenticated.WithDetail("unknown user")
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	if u.Status != model.UserNormal {
		return nil, errs.ErrUnauthenticated.WithDetail("account disabled")
	}
	return &u, nil
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := u.Collection().FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrUnauthenticated.WithDetail("unknown user")
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &u, nil
}
