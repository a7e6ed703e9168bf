package handlers

import (
	"time"

	"Alvin/logger"
	"Alvin/service/collab"
	"Alvin/tools/decode"
	"Alvin/tools/errs"
)

// LeaveHandler removes a connection from a project room. Leaving a room the
// connection never joined is a no-op.
type LeaveHandler struct{}

func NewLeaveHandler() collab.Handler { return &LeaveHandler{} }

func (h *LeaveHandler) Event() string { return collab.EventLeaveProject }

func (h *LeaveHandler) Handle(ctx *collab.Context, env *collab.Envelope, c *collab.Client) error {
	s := ctx.S
	p, err := decode.Payload[projectPayload](env.Data)
	if err != nil || p.ProjectID == "" {
		s.EmitError(c, errs.ErrMissingParameter.WithDetail("project_id"))
		return nil
	}

	room := collab.ProjectRoom(p.ProjectID)
	s.Directory().Leave(room, c.ConnID)

	// the user may no longer have any connection in the room; their typing
	// entry must not outlive the membership
	if e, had := s.Typing().PurgeUser(room, c.UserID); had {
		s.Relay().RelayAll(room, collab.EventTypingStatus, collab.TypingNotice{
			UserID:    e.UserID,
			Username:  e.Username,
			IsTyping:  false,
			SceneID:   e.SceneID,
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		})
	}

	s.Presence().AnnounceLeave(room, c.UserID, c.Username)
	s.MirrorLeave(room, c.ConnID)
	logger.Infof("[leave] user %s left project %s conn=%s", c.Username, p.ProjectID, c.ConnID)
	return nil
}
