package collab

import (
	"context"
	"time"

	"Alvin/logger"
	"Alvin/tools/errs"
)

// Identity is what the authentication collaborator resolves a credential to.
type Identity struct {
	UserID    string
	Username  string
	AvatarURL string
}

// Authenticator turns a client-supplied credential into a verified identity.
// Implemented outside this package (token verification + user store).
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (*Identity, error)
}

// Authorizer answers "may this user enter this project's room".
type Authorizer interface {
	HasProjectAccess(ctx context.Context, userID, projectID string) (bool, error)
}

// PresenceMirror reflects membership changes into an external store for
// observability. Strictly write-only from the gateway's point of view:
// in-process state stays authoritative and fan-out never reads it back.
type PresenceMirror interface {
	MirrorJoin(ctx context.Context, room, connID, userID string) error
	MirrorLeave(ctx context.Context, room, connID string) error
	MirrorPurge(ctx context.Context, connID string) error
}

type Conf struct {
	AuthTimeout   time.Duration // bound on Authenticate / HasProjectAccess; timeout == deny
	UnauthTTL     time.Duration // grace period before an unauthenticated socket is dropped
	TypingTTL     time.Duration
	SendQueueSize int
	FanoutWorkers int
	FanoutQueue   int
}

func (c *Conf) norm() {
	if c.AuthTimeout <= 0 {
		c.AuthTimeout = 3 * time.Second
	}
	if c.UnauthTTL <= 0 {
		c.UnauthTTL = 30 * time.Second
	}
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = 256
	}
	if c.FanoutWorkers <= 0 {
		c.FanoutWorkers = 4
	}
	if c.FanoutQueue <= 0 {
		c.FanoutQueue = 1024
	}
}

// Server owns the three registries and the broadcast machinery. Handlers
// reach everything through it.
type Server struct {
	conf Conf

	registry  *ConnRegistry
	directory *RoomDirectory
	typing    *TypingTracker
	presence  *PresenceBroadcaster
	relay     *EventRelay
	fanout    *Fanout
	disp      *Dispatcher

	auth   Authenticator
	access Authorizer
	mirror PresenceMirror // optional, may be nil
}

func NewServer(conf Conf, auth Authenticator, access Authorizer, mirror PresenceMirror) *Server {
	conf.norm()

	s := &Server{
		conf:      conf,
		registry:  NewConnRegistry(),
		directory: NewRoomDirectory(),
		fanout:    NewFanout(conf.FanoutWorkers, conf.FanoutQueue),
		disp:      NewDispatcher(),
		auth:      auth,
		access:    access,
		mirror:    mirror,
	}
	s.presence = NewPresenceBroadcaster(s.registry, s.directory, s.fanout)
	s.relay = NewEventRelay(s.registry, s.directory, s.fanout)

	// a typing entry that expires without an explicit stop still clears the
	// indicator for everyone in the room
	s.typing = NewTypingTracker(TypingConf{TTL: conf.TypingTTL}, func(room RoomID, e TypingEntry) {
		s.relay.RelayAll(room, EventTypingStatus, TypingNotice{
			UserID:    e.UserID,
			Username:  e.Username,
			IsTyping:  false,
			SceneID:   e.SceneID,
			Timestamp: nowStamp(),
		})
	})
	return s
}

func (s *Server) Conf() Conf { return s.conf }

func (s *Server) Registry() *ConnRegistry { return s.registry }

func (s *Server) Directory() *RoomDirectory { return s.directory }

func (s *Server) Typing() *TypingTracker { return s.typing }

func (s *Server) Presence() *PresenceBroadcaster { return s.presence }

func (s *Server) Relay() *EventRelay { return s.relay }

func (s *Server) Disp() *Dispatcher { return s.disp }

func (s *Server) Authn() Authenticator { return s.auth }

func (s *Server) Authz() Authorizer { return s.access }

// AuthContext builds the bounded context external collaborator calls run
// under. Timeouts are treated as denial by the callers, never as a stall.
func (s *Server) AuthContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.conf.AuthTimeout)
}

// SendTo delivers one event to a single client (snapshots, acks, errors).
func (s *Server) SendTo(c *Client, event string, data any) {
	c.Enqueue(MarshalEvent(event, data))
}

func (s *Server) EmitError(c *Client, ce *errs.CodeError) {
	s.SendTo(c, EventError, ErrorEvent{Code: ce.Code, Message: ce.Msg})
}

// Disconnect runs the full cleanup cascade for a connection: registry
// unregister, directory purge, typing purge and departure notices per
// affected room, in that order. The purge completes before any user_left is
// emitted, so the departed connection can never be a broadcast target.
// Idempotent: a second call is a no-op.
func (s *Server) Disconnect(c *Client) {
	defer c.CloseSend()

	reg, ok := s.registry.Unregister(c.ConnID)
	rooms := s.directory.PurgeConnection(c.ConnID)
	if !ok {
		return
	}

	for _, room := range rooms {
		if e, had := s.typing.PurgeUser(room, reg.UserID); had {
			s.relay.RelayAll(room, EventTypingStatus, TypingNotice{
				UserID:    e.UserID,
				Username:  e.Username,
				IsTyping:  false,
				SceneID:   e.SceneID,
				Timestamp: nowStamp(),
			})
		}
		s.presence.AnnounceLeave(room, reg.UserID, reg.Username)
	}

	s.MirrorPurge(c.ConnID)
	logger.Infof("[collab] user %s disconnected conn=%s rooms=%d", reg.Username, c.ConnID, len(rooms))
}

// Close stops background machinery. The typing sweeper is stopped and
// drained first so a late expiry broadcast cannot hit closed fanout queues.
func (s *Server) Close() {
	s.typing.Close()
	s.fanout.Close()
}

// ---- mirror plumbing (nil-safe, fire-and-forget) ----

const mirrorTimeout = 2 * time.Second

func (s *Server) MirrorJoin(room RoomID, connID, userID string) {
	if s.mirror == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()
		if err := s.mirror.MirrorJoin(ctx, string(room), connID, userID); err != nil {
			logger.Warnf("[collab] mirror join failed room=%s conn=%s: %v", room, connID, err)
		}
	}()
}

func (s *Server) MirrorLeave(room RoomID, connID string) {
	if s.mirror == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()
		if err := s.mirror.MirrorLeave(ctx, string(room), connID); err != nil {
			logger.Warnf("[collab] mirror leave failed room=%s conn=%s: %v", room, connID, err)
		}
	}()
}

func (s *Server) MirrorPurge(connID string) {
	if s.mirror == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()
		if err := s.mirror.MirrorPurge(ctx, connID); err != nil {
			logger.Warnf("[collab] mirror purge failed conn=%s: %v", connID, err)
		}
	}()
}
