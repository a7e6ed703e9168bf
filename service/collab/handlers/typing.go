package handlers

import (
	"Alvin/service/collab"
	"Alvin/tools/decode"
	"Alvin/tools/errs"
)

// TypingStatusHandler upserts or clears the sender's typing entry and tells
// the rest of the room.
type TypingStatusHandler struct{}

func NewTypingStatusHandler() collab.Handler { return &TypingStatusHandler{} }

func (h *TypingStatusHandler) Event() string { return collab.EventTypingStatus }

func (h *TypingStatusHandler) Handle(ctx *collab.Context, env *collab.Envelope, c *collab.Client) error {
	s := ctx.S
	p, err := decode.Payload[typingPayload](env.Data)
	if err != nil || p.ProjectID == "" {
		s.EmitError(c, errs.ErrMissingParameter.WithDetail("project_id"))
		return nil
	}

	room := collab.ProjectRoom(p.ProjectID)
	// typing state exists only for rooms the connection occupies; anything
	// else is a no-op so a disconnect can never leave an orphaned entry
	if !s.Directory().Contains(room, c.ConnID) {
		return nil
	}
	if p.IsTyping {
		s.Typing().Set(room, c.UserID, c.Username, p.SceneID)
	} else {
		s.Typing().Clear(room, c.UserID)
	}

	s.Relay().Relay(room, c.ConnID, collab.EventTypingStatus, collab.TypingNotice{
		UserID:    c.UserID,
		Username:  c.Username,
		IsTyping:  p.IsTyping,
		SceneID:   p.SceneID,
		Timestamp: stamp(),
	})
	return nil
}
