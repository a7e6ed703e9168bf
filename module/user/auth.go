package user

import (
	"context"

	"Alvin/module/user/store"
	"Alvin/service/collab"
	"Alvin/tools/errs"
	"Alvin/tools/security"
)

// TokenAuthenticator verifies a JWT and resolves the subject against the
// user store. It is the gateway's authentication collaborator.
type TokenAuthenticator struct {
	opts  security.Options
	users *store.UserStore
}

func NewTokenAuthenticator(opts security.Options, users *store.UserStore) *TokenAuthenticator {
	return &TokenAuthenticator{opts: opts, users: users}
}

func (a *TokenAuthenticator) Authenticate(ctx context.Context, credential string) (*collab.Identity, error) {
	if credential == "" {
		return nil, errs.ErrUnauthenticated.WithDetail("empty token")
	}
	userID, err := security.Verify(a.opts, credential)
	if err != nil {
		return nil, errs.ErrUnauthenticated.WithDetail(err.Error())
	}
	u, err := a.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &collab.Identity{
		UserID:    u.UserID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
	}, nil
}
