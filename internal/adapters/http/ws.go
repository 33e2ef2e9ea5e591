package httpadapter

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/PabloGalante/canvas-agent/internal/app/conversation"
	"github.com/PabloGalante/canvas-agent/internal/domain"
	"github.com/PabloGalante/canvas-agent/internal/observability"
)

const (
	frameSend      = "send"
	frameSearch    = "search"
	frameVisualize = "visualize"
	frameDone      = "done"
	frameError     = "error"

	writeWait = 10 * time.Second
	maxFrame  = 16 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// clientFrame is a request sent by the browser over the socket.
type clientFrame struct {
	Type      string    `json:"type"`
	Text      string    `json:"text,omitempty"`
	Quote     string    `json:"quote,omitempty"`
	Image     *imageDTO `json:"image,omitempty"`
	Query     string    `json:"query,omitempty"`
	MessageID string    `json:"message_id,omitempty"`
}

// serverFrame is a conversation event, a request outcome or an error.
type serverFrame struct {
	Type      string           `json:"type"`
	SessionID string           `json:"session_id,omitempty"`
	MessageID string           `json:"message_id,omitempty"`
	Message   *messageResponse `json:"message,omitempty"`
	Canvas    *artifactDTO     `json:"canvas,omitempty"`
	State     string           `json:"state,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// wsConn serializes writes; requests run concurrently with the read loop.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) write(f serverFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(f)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	if _, _, err := s.svc.GetSessionTimeline(r.Context(), id, 1); err != nil {
		serviceError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Warn("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(maxFrame)

	ctx := context.WithoutCancel(r.Context())
	log := observability.LoggerFromContext(ctx).With("session_id", id)
	log.Info("websocket connected")

	c := &wsConn{conn: conn}
	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		conn.Close()
		log.Info("websocket closed")
	}()

	for {
		var f clientFrame
		if err := conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read failed", "error", err)
			}
			return
		}

		wg.Add(1)
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			defer wg.Done()
			s.serveFrame(ctx, c, id, f)
		}()
	}
}

func (s *Server) serveFrame(ctx context.Context, c *wsConn, id domain.SessionID, f clientFrame) {
	log := observability.LoggerFromContext(ctx)

	if s.limiter != nil && !s.limiter.Allow() {
		if err := c.write(serverFrame{Type: frameError, SessionID: string(id), Error: errRateLimited}); err != nil {
			log.Debug("websocket write failed", "error", err)
		}
		return
	}

	onEvent := func(e conversation.Event) {
		if err := c.write(toServerFrame(e)); err != nil {
			log.Debug("websocket write failed", "error", err)
		}
	}

	var (
		reply *domain.Message
		err   error
	)

	switch f.Type {
	case frameSend:
		var in conversation.SendMessageInput
		in, err = toSendMessageInput(id, sendMessageRequest{Text: f.Text, Quote: f.Quote, Image: f.Image})
		if err != nil {
			break
		}
		in.OnEvent = onEvent
		var out *conversation.SendMessageOutput
		if out, err = s.svc.SendMessage(ctx, in); err == nil {
			reply = out.Reply
		}

	case frameSearch:
		reply, err = s.svc.Search(ctx, conversation.SearchInput{SessionID: id, Query: f.Query, OnEvent: onEvent})

	case frameVisualize:
		var out *conversation.SendMessageOutput
		out, err = s.svc.Visualize(ctx, conversation.VisualizeInput{
			SessionID: id,
			MessageID: domain.MessageID(f.MessageID),
			OnEvent:   onEvent,
		})
		if err == nil {
			reply = out.Reply
		}

	default:
		err = fmt.Errorf("unknown frame type %q", f.Type)
	}

	frame := serverFrame{Type: frameDone, SessionID: string(id)}
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			log.Error("websocket request failed", "error", err, "frame", f.Type)
		}
		frame = serverFrame{Type: frameError, SessionID: string(id), Error: err.Error()}
	} else {
		m := toMessageResponse(reply)
		frame.Message = &m
		frame.MessageID = string(reply.ID)
	}

	if werr := c.write(frame); werr != nil {
		log.Debug("websocket write failed", "error", werr)
	}
}

func toServerFrame(e conversation.Event) serverFrame {
	f := serverFrame{
		Type:      string(e.Type),
		SessionID: string(e.SessionID),
		MessageID: string(e.MessageID),
		State:     string(e.State),
		Canvas:    toArtifactDTO(e.Canvas),
	}
	if e.Message != nil {
		m := toMessageResponse(e.Message)
		f.Message = &m
		f.MessageID = string(e.Message.ID)
	}
	return f
}
