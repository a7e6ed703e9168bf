package collab

import (
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"Alvin/logger"
	"Alvin/tools/errs"
	"Alvin/tools/ids"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleWS is the websocket entry point. One goroutine per connection reads
// frames and dispatches them; a writer goroutine drains the send queue. The
// socket starts unauthenticated: until a connect event succeeds only
// connect/disconnect are accepted and the read deadline is the unauth TTL.
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[HandleWS] upgrade websocket error: %v", err)
		return
	}

	connID := ids.GenerateString()
	client := NewClient(connID, ws, s.conf.SendQueueSize)
	go client.writePump()

	_ = ws.SetReadDeadline(time.Now().Add(s.conf.UnauthTTL))
	ws.SetPongHandler(func(string) error {
		if client.Authenticated() {
			return ws.SetReadDeadline(time.Now().Add(pongWait))
		}
		return nil
	})

	// cleanup wins every race with in-flight room operations
	defer s.Disconnect(client)

	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[HandleWS] peer closed conn=%s err=%v", connID, rerr)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[HandleWS] read timeout conn=%s err=%v", connID, rerr)
			} else {
				logger.Infof("[HandleWS] read err conn=%s err=%v", connID, rerr)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		env, perr := ParseEnvelope(data)
		if perr != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Infof("[HandleWS] bad envelope conn=%s err=%v sample=%q", connID, perr, sample)
			s.EmitError(client, errs.ErrMissingParameter.WithDetail("malformed envelope"))
			continue
		}

		switch {
		case env.Event == EventDisconnect:
			// explicit goodbye; the deferred cleanup does the rest
			return

		case env.Event == EventConnect:
			if herr := s.disp.Dispatch(&Context{S: s}, env, client); herr != nil {
				if ce, ok := errs.AsCode(herr); ok && ce.Code == errs.ReasonUnauthenticated {
					// failed handshake terminates the transport
					return
				}
				logger.Infof("[HandleWS] connect handler err conn=%s: %v", connID, herr)
				continue
			}
			// authenticated: switch to the heartbeat deadline
			_ = ws.SetReadDeadline(time.Now().Add(pongWait))

		case !client.Authenticated():
			s.EmitError(client, errs.ErrUnauthenticated)

		default:
			h := s.disp.Get(env.Event)
			if h == nil {
				continue
			}
			if herr := h.Handle(&Context{S: s}, env, client); herr != nil {
				logger.Infof("[HandleWS] handler err event=%s conn=%s: %v", env.Event, connID, herr)
			}
		}
	}
}
