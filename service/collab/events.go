package collab

import (
	"encoding/json"
	"fmt"
	"time"
)

// RoomID is the broadcast domain for one project. Always build it through
// ProjectRoom so the naming convention lives in exactly one place.
type RoomID string

func ProjectRoom(projectID string) RoomID {
	return RoomID("project_" + projectID)
}

func (r RoomID) String() string { return string(r) }

// Inbound event names.
const (
	EventConnect       = "connect"
	EventJoinProject   = "join_project"
	EventLeaveProject  = "leave_project"
	EventSceneUpdated  = "scene_updated"
	EventTypingStatus  = "typing_status"
	EventCursorPos     = "cursor_position"
	EventCommentAdded  = "comment_added"
	EventGetRoomStatus = "get_room_status"
	EventDisconnect    = "disconnect"
)

// Outbound event names. scene_updated / typing_status / cursor_position /
// comment_added mirror their inbound names.
const (
	EventConnectionConfirmed = "connection_confirmed"
	EventUserJoined          = "user_joined"
	EventUserLeft            = "user_left"
	EventRoomUsers           = "room_users"
	EventRoomStatus          = "room_status"
	EventError               = "error"
)

// Envelope is the frame carried on the websocket in both directions.
type Envelope struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data,omitempty"`
}

func ParseEnvelope(raw []byte) (*Envelope, error) {
	env := &Envelope{}
	if err := json.Unmarshal(raw, env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("envelope without event name")
	}
	return env, nil
}

// MarshalEvent renders an outbound frame. Marshal failures are a programming
// error (all outbound payloads are plain structs), so the result is always
// usable.
func MarshalEvent(event string, data any) []byte {
	b, err := json.Marshal(struct {
		Event string `json:"event"`
		Data  any    `json:"data,omitempty"`
	}{Event: event, Data: data})
	if err != nil {
		b, _ = json.Marshal(Envelope{Event: event})
	}
	return b
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// ---- outbound payloads ----

type UserRef struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type ConnectionConfirmed struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	ConnID    string `json:"conn_id"`
	Timestamp string `json:"timestamp"`
}

// PresenceUser is one row of a room_users / room_status snapshot.
type PresenceUser struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	ConnectedAt string `json:"connected_at"`
}

type UserJoined struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Timestamp string `json:"timestamp"`
}

type UserLeft struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Timestamp string `json:"timestamp"`
}

type RoomUsers struct {
	Room  string         `json:"room"`
	Users []PresenceUser `json:"users"`
}

type TypingNotice struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	IsTyping  bool   `json:"is_typing"`
	SceneID   string `json:"scene_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

type SceneUpdated struct {
	SceneData any     `json:"scene_data"`
	UpdatedBy UserRef `json:"updated_by"`
	Timestamp string  `json:"timestamp"`
}

type CursorPosition struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	SceneID   string `json:"scene_id"`
	Position  any    `json:"position"`
	Timestamp string `json:"timestamp"`
}

type CommentAdded struct {
	CommentData any     `json:"comment_data"`
	AddedBy     UserRef `json:"added_by"`
	Timestamp   string  `json:"timestamp"`
}

type RoomStatus struct {
	Room        string         `json:"room"`
	Users       []PresenceUser `json:"users"`
	TypingUsers []TypingNotice `json:"typing_users"`
	Timestamp   string         `json:"timestamp"`
}

type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
