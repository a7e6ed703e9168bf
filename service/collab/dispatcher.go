package collab

import (
	"fmt"

	"Alvin/logger"
)

// Handler processes one inbound event type.
type Handler interface {
	Event() string
	Handle(ctx *Context, env *Envelope, c *Client) error
}

// Context hands the server to handlers without exposing package internals.
type Context struct {
	S *Server
}

type Dispatcher struct {
	handlers map[string]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

func (d *Dispatcher) Register(h Handler) { d.handlers[h.Event()] = h }

func (d *Dispatcher) Get(event string) Handler {
	h, ok := d.handlers[event]
	if !ok {
		logger.Infof("[collab] no handler for event=%s", event)
		return nil
	}
	return h
}

func (d *Dispatcher) Dispatch(ctx *Context, env *Envelope, c *Client) error {
	h, ok := d.handlers[env.Event]
	if !ok {
		return fmt.Errorf("no handler for event=%s", env.Event)
	}
	return h.Handle(ctx, env, c)
}
