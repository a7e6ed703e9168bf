package handlers

import (
	"time"

	"Alvin/service/collab"
	"Alvin/tools/decode"
	"Alvin/tools/errs"
)

// RoomStatusHandler answers get_room_status with the requester-only
// presence and typing snapshot.
type RoomStatusHandler struct{}

func NewRoomStatusHandler() collab.Handler { return &RoomStatusHandler{} }

func (h *RoomStatusHandler) Event() string { return collab.EventGetRoomStatus }

func (h *RoomStatusHandler) Handle(ctx *collab.Context, env *collab.Envelope, c *collab.Client) error {
	s := ctx.S
	p, err := decode.Payload[projectPayload](env.Data)
	if err != nil || p.ProjectID == "" {
		s.EmitError(c, errs.ErrMissingParameter.WithDetail("project_id"))
		return nil
	}

	room := collab.ProjectRoom(p.ProjectID)

	entries := s.Typing().Snapshot(room)
	typing := make([]collab.TypingNotice, 0, len(entries))
	for _, e := range entries {
		typing = append(typing, collab.TypingNotice{
			UserID:    e.UserID,
			Username:  e.Username,
			IsTyping:  true,
			SceneID:   e.SceneID,
			Timestamp: e.UpdatedAt.UTC().Format(time.RFC3339Nano),
		})
	}

	s.SendTo(c, collab.EventRoomStatus, collab.RoomStatus{
		Room:        string(room),
		Users:       s.Presence().RoomUsers(room),
		TypingUsers: typing,
		Timestamp:   stamp(),
	})
	return nil
}
