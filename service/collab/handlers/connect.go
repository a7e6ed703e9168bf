package handlers

import (
	"time"

	"Alvin/logger"
	"Alvin/service/collab"
	"Alvin/tools/decode"
	"Alvin/tools/errs"
)

// ConnectHandler runs the authentication handshake. On success the client
// gets its identity bound and enters the registry; on failure the caller
// terminates the transport (signalled by the returned unauthenticated code).
type ConnectHandler struct{}

func NewConnectHandler() collab.Handler { return &ConnectHandler{} }

func (h *ConnectHandler) Event() string { return collab.EventConnect }

func (h *ConnectHandler) Handle(ctx *collab.Context, env *collab.Envelope, c *collab.Client) error {
	s := ctx.S
	if c.Authenticated() {
		// duplicate connect; harmless
		return nil
	}

	token := ""
	if env.Data != nil {
		if p, err := decode.Payload[connectPayload](env.Data); err == nil {
			token = p.Token
		}
	}
	if token == "" {
		logger.Warnf("[connect] connection without token conn=%s", c.ConnID)
		s.EmitError(c, errs.ErrUnauthenticated)
		return errs.ErrUnauthenticated
	}

	actx, cancel := s.AuthContext()
	defer cancel()
	id, err := s.Authn().Authenticate(actx, token)
	if err != nil {
		logger.Warnf("[connect] invalid credential conn=%s: %v", c.ConnID, err)
		s.EmitError(c, errs.ErrUnauthenticated)
		return errs.ErrUnauthenticated
	}

	c.BindIdentity(id.UserID, id.Username, id.AvatarURL)
	s.Registry().Register(c)

	s.SendTo(c, collab.EventConnectionConfirmed, collab.ConnectionConfirmed{
		UserID:    id.UserID,
		Username:  id.Username,
		ConnID:    c.ConnID,
		Timestamp: c.ConnectedAt.Format(time.RFC3339Nano),
	})
	logger.Infof("[connect] user %s connected conn=%s", id.Username, c.ConnID)
	return nil
}
