package collab

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"Alvin/logger"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Client is one live socket. Identity fields are bound exactly once by the
// connect handler before the client is registered; after registration they
// are read-only.
type Client struct {
	ConnID      string
	UserID      string
	Username    string
	AvatarURL   string
	ConnectedAt time.Time

	WS   *websocket.Conn
	Send chan []byte // drained by a single writer goroutine

	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(connID string, ws *websocket.Conn, sendQueueSize int) *Client {
	return &Client{
		ConnID:      connID,
		ConnectedAt: time.Now().UTC(),
		WS:          ws,
		Send:        make(chan []byte, sendQueueSize),
		done:        make(chan struct{}),
	}
}

func (c *Client) Authenticated() bool { return c.UserID != "" }

// BindIdentity copies the authenticated identity onto the client. Must
// happen before the client is placed into the registry.
func (c *Client) BindIdentity(userID, username, avatarURL string) {
	c.UserID = userID
	c.Username = username
	c.AvatarURL = avatarURL
}

func (c *Client) presenceUser() PresenceUser {
	return PresenceUser{
		UserID:      c.UserID,
		Username:    c.Username,
		AvatarURL:   c.AvatarURL,
		ConnectedAt: c.ConnectedAt.Format(time.RFC3339Nano),
	}
}

// Enqueue places a frame on the outbound queue without blocking. A full
// queue means the client is too slow to keep up; the frame is dropped for
// this client only.
func (c *Client) Enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- payload:
		return true
	default:
		logger.Warnf("[collab] send queue full, drop frame conn=%s user=%s", c.ConnID, c.UserID)
		return false
	}
}

// CloseSend stops the writer goroutine. Safe to call more than once.
func (c *Client) CloseSend() {
	c.closeOnce.Do(func() { close(c.done) })
}

// writePump is the only goroutine allowed to write to the socket. It drains
// the send queue and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.WS.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.WS.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case payload := <-c.Send:
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WS.WriteMessage(websocket.TextMessage, payload); err != nil {
				// transport gone; reader loop will notice and run cleanup
				logger.Debug("[collab] write failed: " + err.Error())
				return
			}
		case <-ticker.C:
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WS.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
