package handlers

import (
	"Alvin/logger"
	"Alvin/service/collab"
	"Alvin/tools/decode"
	"Alvin/tools/errs"
)

// JoinHandler puts a connection into a project room after the authorization
// collaborator approves, then announces the join.
type JoinHandler struct{}

func NewJoinHandler() collab.Handler { return &JoinHandler{} }

func (h *JoinHandler) Event() string { return collab.EventJoinProject }

func (h *JoinHandler) Handle(ctx *collab.Context, env *collab.Envelope, c *collab.Client) error {
	s := ctx.S
	p, err := decode.Payload[projectPayload](env.Data)
	if err != nil || p.ProjectID == "" {
		s.EmitError(c, errs.ErrMissingParameter.WithDetail("project_id"))
		return nil
	}

	room := collab.ProjectRoom(p.ProjectID)

	// the access check wraps the external collaborator under a bounded
	// context; any error or timeout counts as a denial
	allow := func() bool {
		actx, cancel := s.AuthContext()
		defer cancel()
		ok, aerr := s.Authz().HasProjectAccess(actx, c.UserID, p.ProjectID)
		if aerr != nil {
			logger.Warnf("[join] access check failed user=%s project=%s: %v", c.UserID, p.ProjectID, aerr)
			return false
		}
		return ok
	}

	occupants, jerr := s.Directory().Join(room, c.ConnID, allow)
	if jerr != nil {
		s.EmitError(c, errs.ErrAccessDenied)
		return nil
	}

	s.Presence().AnnounceJoin(room, c, occupants)
	s.MirrorJoin(room, c.ConnID, c.UserID)
	logger.Infof("[join] user %s joined project %s conn=%s", c.Username, p.ProjectID, c.ConnID)
	return nil
}
