package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second

	// Stream message types
	msgProgress = "progress"
	msgResult   = "result"
	msgError    = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamMessage is one frame of the grid progress stream.
type streamMessage struct {
	Type      string `json:"type"`
	Completed int    `json:"completed,omitempty"`
	Total     int    `json:"total,omitempty"`
	Analysis  any    `json:"analysis,omitempty"`
	Message   string `json:"message,omitempty"`
}

// handleGridStream runs a grid analysis over a WebSocket.
// The client sends one gridRequest; the server answers with progress frames,
// then a single result or error frame, and closes.
func (s *Server) handleGridStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var req gridRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.writeFrame(conn, streamMessage{Type: msgError, Message: "invalid request: " + err.Error()})
		return
	}
	params, seed := req.resolve(s.orch.DefaultSeed())

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Any read after the request means the client went away or misbehaved.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	rec, err := s.orch.RunGridSeeded(ctx, params, seed, func(completed, total int) {
		s.writeFrame(conn, streamMessage{Type: msgProgress, Completed: completed, Total: total})
	})
	if err != nil {
		s.writeFrame(conn, streamMessage{Type: msgError, Message: err.Error()})
		return
	}

	s.writeFrame(conn, streamMessage{Type: msgResult, Analysis: withoutResults(rec)})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
		time.Now().Add(writeWait))
}

// writeFrame sends msg. Progress callbacks are serialised, so writes never overlap.
func (s *Server) writeFrame(conn *websocket.Conn, msg streamMessage) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Debug().Err(err).Str("type", msg.Type).Msg("websocket write failed")
	}
}
