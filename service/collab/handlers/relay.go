package handlers

import (
	"time"

	"Alvin/service/collab"
	"Alvin/tools/decode"
	"Alvin/tools/errs"
)

// The three relay handlers forward domain events verbatim to the sender's
// co-occupants. Payload contents are not interpreted here.

type SceneUpdatedHandler struct{}

func NewSceneUpdatedHandler() collab.Handler { return &SceneUpdatedHandler{} }

func (h *SceneUpdatedHandler) Event() string { return collab.EventSceneUpdated }

func (h *SceneUpdatedHandler) Handle(ctx *collab.Context, env *collab.Envelope, c *collab.Client) error {
	s := ctx.S
	p, err := decode.Payload[scenePayload](env.Data)
	if err != nil || p.ProjectID == "" || p.SceneData == nil {
		s.EmitError(c, errs.ErrMissingParameter.WithDetail("project_id, scene_data"))
		return nil
	}

	s.Relay().Relay(collab.ProjectRoom(p.ProjectID), c.ConnID, collab.EventSceneUpdated, collab.SceneUpdated{
		SceneData: p.SceneData,
		UpdatedBy: collab.UserRef{UserID: c.UserID, Username: c.Username},
		Timestamp: stamp(),
	})
	return nil
}

type CursorPositionHandler struct{}

func NewCursorPositionHandler() collab.Handler { return &CursorPositionHandler{} }

func (h *CursorPositionHandler) Event() string { return collab.EventCursorPos }

func (h *CursorPositionHandler) Handle(ctx *collab.Context, env *collab.Envelope, c *collab.Client) error {
	s := ctx.S
	p, err := decode.Payload[cursorPayload](env.Data)
	if err != nil || p.ProjectID == "" || p.SceneID == "" || p.Position == nil {
		s.EmitError(c, errs.ErrMissingParameter.WithDetail("project_id, scene_id, position"))
		return nil
	}

	s.Relay().Relay(collab.ProjectRoom(p.ProjectID), c.ConnID, collab.EventCursorPos, collab.CursorPosition{
		UserID:    c.UserID,
		Username:  c.Username,
		SceneID:   p.SceneID,
		Position:  p.Position,
		Timestamp: stamp(),
	})
	return nil
}

type CommentAddedHandler struct{}

func NewCommentAddedHandler() collab.Handler { return &CommentAddedHandler{} }

func (h *CommentAddedHandler) Event() string { return collab.EventCommentAdded }

func (h *CommentAddedHandler) Handle(ctx *collab.Context, env *collab.Envelope, c *collab.Client) error {
	s := ctx.S
	p, err := decode.Payload[commentPayload](env.Data)
	if err != nil || p.ProjectID == "" || p.CommentData == nil {
		s.EmitError(c, errs.ErrMissingParameter.WithDetail("project_id, comment_data"))
		return nil
	}

	s.Relay().Relay(collab.ProjectRoom(p.ProjectID), c.ConnID, collab.EventCommentAdded, collab.CommentAdded{
		CommentData: p.CommentData,
		AddedBy:     collab.UserRef{UserID: c.UserID, Username: c.Username},
		Timestamp:   stamp(),
	})
	return nil
}

func stamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
