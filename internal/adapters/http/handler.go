package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/PabloGalante/canvas-agent/internal/adapters/render"
	"github.com/PabloGalante/canvas-agent/internal/app/conversation"
	"github.com/PabloGalante/canvas-agent/internal/domain"
	"github.com/PabloGalante/canvas-agent/internal/observability"
)

type Options struct {
	// RateLimit caps LLM-backed requests per second across all clients.
	// Zero disables the limit.
	RateLimit float64
}

type Server struct {
	svc     *conversation.Service
	preview *render.Previewer
	limiter *rate.Limiter
	router  chi.Router

	// inflight counts WebSocket requests, which outlive http.Server.Shutdown.
	inflight sync.WaitGroup
}

func NewServer(svc *conversation.Service, preview *render.Previewer, opts Options) *Server {
	s := &Server{svc: svc, preview: preview, limiter: newLimiter(opts.RateLimit)}
	limited := withRateLimit(s.limiter)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(withLogging)
	r.Use(middleware.Recoverer)
	r.Use(withCORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Get("/ws", s.handleWebSocket)
			r.With(limited).Post("/messages", s.handleSendMessage)
			r.With(limited).Post("/search", s.handleSearch)

			r.Route("/messages/{messageID}", func(r chi.Router) {
				r.With(limited).Post("/visualize", s.handleVisualize)
				r.Get("/canvas/export", s.handleCanvasExport)
				r.Get("/canvas/preview", s.handleCanvasPreview)
			})
		})
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Wait blocks until in-flight WebSocket requests finish or ctx is done.
func (s *Server) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createSessionRequest struct {
	Title string `json:"title,omitempty"`
}

type createSessionResponse struct {
	Session sessionResponse  `json:"session"`
	Welcome *messageResponse `json:"welcome_message,omitempty"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// imageDTO carries image bytes as base64 in JSON.
type imageDTO struct {
	Data     []byte `json:"data"`
	MimeType string `json:"mime_type"`
}

type artifactDTO struct {
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

type canvasResponse struct {
	Title      string       `json:"title"`
	Artifact   *artifactDTO `json:"artifact,omitempty"`
	Completion string       `json:"completion,omitempty"`
}

type sourceDTO struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type searchResponse struct {
	Query   string      `json:"query"`
	Sources []sourceDTO `json:"sources"`
}

type messageResponse struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Role      string          `json:"role"`
	Kind      string          `json:"kind"`
	Text      string          `json:"text,omitempty"`
	Image     *imageDTO       `json:"image,omitempty"`
	Canvas    *canvasResponse `json:"canvas,omitempty"`
	Search    *searchResponse `json:"search,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type sendMessageRequest struct {
	Text  string    `json:"text"`
	Quote string    `json:"quote,omitempty"`
	Image *imageDTO `json:"image,omitempty"`
}

type sendMessageResponse struct {
	UserMessage *messageResponse `json:"user_message,omitempty"`
	Reply       messageResponse  `json:"reply"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type getSessionResponse struct {
	Session  sessionResponse   `json:"session"`
	Messages []messageResponse `json:"messages"`
	State    string            `json:"state"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	// The body is optional.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid JSON body")
		return
	}

	out, err := s.svc.StartSession(r.Context(), conversation.StartSessionInput{Title: req.Title})
	if err != nil {
		serviceError(w, r, err)
		return
	}

	welcome := toMessageResponse(out.Welcome)
	writeJSON(w, http.StatusCreated, createSessionResponse{
		Session: toSessionResponse(out.Session),
		Welcome: &welcome,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	session, msgs, err := s.svc.GetSessionTimeline(r.Context(), id, 0)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, getSessionResponse{
		Session:  toSessionResponse(session),
		Messages: toMessagesResponse(msgs),
		State:    string(s.svc.State(id)),
	})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	in, err := toSendMessageInput(sessionID(r), req)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	out, err := s.svc.SendMessage(r.Context(), in)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSendMessageResponse(out))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	msg, err := s.svc.Search(r.Context(), conversation.SearchInput{
		SessionID: sessionID(r),
		Query:     req.Query,
	})
	if err != nil {
		serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sendMessageResponse{Reply: toMessageResponse(msg)})
}

func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Visualize(r.Context(), conversation.VisualizeInput{
		SessionID: sessionID(r),
		MessageID: messageID(r),
	})
	if err != nil {
		serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSendMessageResponse(out))
}

func (s *Server) handleCanvasExport(w http.ResponseWriter, r *http.Request) {
	artifact, ok := s.artifact(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", artifact.MediaType()+"; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+artifact.FileName()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(artifact.Content))
}

func (s *Server) handleCanvasPreview(w http.ResponseWriter, r *http.Request) {
	artifact, ok := s.artifact(w, r)
	if !ok {
		return
	}

	page, err := s.preview.Render(*artifact)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	if artifact.Kind == domain.CanvasHTML {
		w.Header().Set("Content-Security-Policy", render.ContentSecurityPolicy)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// artifact loads the finished canvas artifact of the addressed message and
// writes the error response when there is none.
func (s *Server) artifact(w http.ResponseWriter, r *http.Request) (*domain.CanvasArtifact, bool) {
	msg, err := s.svc.GetMessage(r.Context(), sessionID(r), messageID(r))
	if err != nil {
		serviceError(w, r, err)
		return nil, false
	}
	if msg.Kind.IsPlaceholder() {
		writeError(w, http.StatusConflict, "message is still being generated")
		return nil, false
	}
	if msg.Kind != domain.KindCanvasCard || msg.Canvas == nil || msg.Canvas.Artifact == nil {
		writeError(w, http.StatusNotFound, "message has no canvas artifact")
		return nil, false
	}
	return msg.Canvas.Artifact, true
}

// ─────────────────────────────────────────────
// Conversation Helpers
// ─────────────────────────────────────────────

func sessionID(r *http.Request) domain.SessionID {
	return domain.SessionID(chi.URLParam(r, "sessionID"))
}

func messageID(r *http.Request) domain.MessageID {
	return domain.MessageID(chi.URLParam(r, "messageID"))
}

func toSendMessageInput(id domain.SessionID, req sendMessageRequest) (conversation.SendMessageInput, error) {
	in := conversation.SendMessageInput{
		SessionID: id,
		Text:      req.Text,
		Quote:     req.Quote,
	}
	if req.Image != nil {
		if len(req.Image.Data) == 0 {
			return in, errors.New("image data is required")
		}
		if !strings.HasPrefix(req.Image.MimeType, "image/") {
			return in, errors.New("image mime_type must be an image type")
		}
		in.Image = &domain.Image{Data: req.Image.Data, MimeType: req.Image.MimeType}
	}
	return in, nil
}

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:        string(s.ID),
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toArtifactDTO(a *domain.CanvasArtifact) *artifactDTO {
	if a == nil {
		return nil
	}
	return &artifactDTO{Kind: string(a.Kind), Content: a.Content}
}

func toMessageResponse(m *domain.Message) messageResponse {
	resp := messageResponse{
		ID:        string(m.ID),
		SessionID: string(m.SessionID),
		Role:      string(m.Role),
		Kind:      string(m.Kind),
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
	if m.Image != nil {
		resp.Image = &imageDTO{Data: m.Image.Data, MimeType: m.Image.MimeType}
	}
	if m.Canvas != nil {
		resp.Canvas = &canvasResponse{
			Title:      m.Canvas.Title,
			Artifact:   toArtifactDTO(m.Canvas.Artifact),
			Completion: m.Canvas.Completion,
		}
	}
	if m.Search != nil {
		sources := make([]sourceDTO, 0, len(m.Search.Sources))
		for _, src := range m.Search.Sources {
			sources = append(sources, sourceDTO{URI: src.URI, Title: src.Title})
		}
		resp.Search = &searchResponse{Query: m.Search.Query, Sources: sources}
	}
	return resp
}

func toMessagesResponse(msgs []*domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}

func toSendMessageResponse(out *conversation.SendMessageOutput) sendMessageResponse {
	user := toMessageResponse(out.UserMessage)
	return sendMessageResponse{
		UserMessage: &user,
		Reply:       toMessageResponse(out.Reply),
	}
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, conversation.ErrEmptyMessage),
		errors.Is(err, conversation.ErrEmptyQuery),
		errors.Is(err, conversation.ErrNotVisualizable):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, conversation.ErrBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func serviceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}
