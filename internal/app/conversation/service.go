package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/canvas-agent/internal/app/canvas"
	"github.com/PabloGalante/canvas-agent/internal/app/prompts"
	"github.com/PabloGalante/canvas-agent/internal/app/search"
	"github.com/PabloGalante/canvas-agent/internal/domain"
	"github.com/PabloGalante/canvas-agent/internal/observability"
)

var (
	ErrEmptyMessage     = errors.New("text or image is required")
	ErrEmptyQuery       = errors.New("query is required")
	ErrNotVisualizable  = errors.New("only search results can be visualized")
	errUnhandledRouting = errors.New("unhandled routed action")
)

type Router interface {
	Route(ctx context.Context, utterance string) domain.RoutedAction
	AnalyzeImage(ctx context.Context, prompt string, image domain.Image) string
}

type CanvasGenerator interface {
	Generate(ctx context.Context, prompt string, forced canvas.Profile, onFragment canvas.FragmentFunc) (domain.CanvasArtifact, error)
}

type Searcher interface {
	Search(ctx context.Context, query string) (*search.Result, error)
}

type Deps struct {
	Router   Router
	Canvas   CanvasGenerator
	Search   Searcher
	Sessions domain.SessionStore
	Messages domain.MessageStore
	Language prompts.Language
}

// Service owns the conversation state of every session. Each session runs
// at most one request at a time.
type Service struct {
	router       Router
	canvas       CanvasGenerator
	search       Searcher
	sessionStore domain.SessionStore
	messageStore domain.MessageStore
	msgs         prompts.Messages
	now          func() time.Time
	newID        func() string

	machines machines
}

func NewService(d Deps) *Service {
	return &Service{
		router:       d.Router,
		canvas:       d.Canvas,
		search:       d.Search,
		sessionStore: d.Sessions,
		messageStore: d.Messages,
		msgs:         d.Language.Messages,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

type StartSessionInput struct {
	Title string
}

type StartSessionOutput struct {
	Session *domain.Session
	Welcome *domain.Message
}

func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*StartSessionOutput, error) {
	now := s.now()
	log := observability.LoggerFromContext(ctx)

	session := &domain.Session{
		ID:        domain.SessionID(s.newID()),
		Title:     in.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.sessionStore.CreateSession(ctx, session); err != nil {
		log.Error("failed to create session", "error", err)
		return nil, err
	}

	welcome := s.modelText(session.ID, s.msgs.Greeting)
	if err := s.append(ctx, welcome, nil); err != nil {
		log.Error("failed to append welcome message", "error", err)
		return nil, err
	}

	log.Info("session started", "session_id", session.ID)

	return &StartSessionOutput{
		Session: session,
		Welcome: welcome,
	}, nil
}

type SendMessageInput struct {
	SessionID domain.SessionID
	Text      string
	Quote     string // text the user selected as context, optional
	Image     *domain.Image
	OnEvent   EventFunc
}

type SendMessageOutput struct {
	UserMessage *domain.Message
	Reply       *domain.Message
}

// SendMessage handles one user turn. A message with an image is answered by
// image analysis alone; anything else goes through the router.
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" && in.Image == nil {
		return nil, ErrEmptyMessage
	}

	session, err := s.sessionStore.GetSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	// A started turn runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)
	log := observability.LoggerFromContext(ctx).With("session_id", session.ID)

	first := domain.StateAwaitingRoute
	if in.Image != nil {
		first = domain.StateAwaitingText
	}
	mc := s.machines.get(session.ID)
	if err := mc.begin(first); err != nil {
		return nil, err
	}
	defer s.finish(ctx, session, mc, in.OnEvent)
	in.OnEvent.emit(Event{Type: EventStateChanged, SessionID: session.ID, State: first})

	prompt := text
	if quote := strings.TrimSpace(in.Quote); quote != "" {
		prompt = s.msgs.Quote(quote, text)
	}

	userMsg := &domain.Message{
		ID:        domain.MessageID(s.newID()),
		SessionID: session.ID,
		Role:      domain.RoleUser,
		Kind:      domain.KindText,
		Text:      prompt,
		Image:     in.Image,
		CreatedAt: s.now(),
	}
	if err := s.append(ctx, userMsg, in.OnEvent); err != nil {
		log.Error("failed to append user message", "error", err)
		return nil, err
	}

	out := &SendMessageOutput{UserMessage: userMsg}

	if in.Image != nil {
		log.Info("analyzing image", "mime_type", in.Image.MimeType, "bytes", len(in.Image.Data))
		reply := s.modelText(session.ID, s.router.AnalyzeImage(ctx, prompt, *in.Image))
		if err := s.append(ctx, reply, in.OnEvent); err != nil {
			return nil, err
		}
		out.Reply = reply
		return out, nil
	}

	action := s.router.Route(ctx, prompt)
	reply, err := s.dispatch(ctx, session.ID, mc, action, in.OnEvent)
	if err != nil {
		log.Error("dispatch failed", "error", err)
		return nil, err
	}
	out.Reply = reply

	log.Info("send message completed", "reply_kind", reply.Kind)
	return out, nil
}

func (s *Service) dispatch(
	ctx context.Context,
	sessionID domain.SessionID,
	mc *machine,
	action domain.RoutedAction,
	onEvent EventFunc,
) (*domain.Message, error) {
	switch a := action.(type) {
	case domain.TextReply:
		if err := s.transition(mc, sessionID, domain.StateAwaitingText, onEvent); err != nil {
			return nil, err
		}
		reply := s.modelText(sessionID, a.Content)
		if err := s.append(ctx, reply, onEvent); err != nil {
			return nil, err
		}
		return reply, nil

	case domain.CanvasRequest:
		if err := s.transition(mc, sessionID, domain.StateGeneratingCanvas, onEvent); err != nil {
			return nil, err
		}
		return s.runCanvas(ctx, sessionID, a.Prompt, a.Prompt, canvas.ProfileAuto, onEvent)

	case domain.SearchRequest:
		if err := s.transition(mc, sessionID, domain.StateGeneratingSearch, onEvent); err != nil {
			return nil, err
		}
		return s.runSearch(ctx, sessionID, a.Query, onEvent)

	default:
		return nil, fmt.Errorf("%w: %T", errUnhandledRouting, action)
	}
}

type SearchInput struct {
	SessionID domain.SessionID
	Query     string
	OnEvent   EventFunc
}

// Search runs a grounded search directly, without routing.
func (s *Service) Search(ctx context.Context, in SearchInput) (*domain.Message, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	session, err := s.sessionStore.GetSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	mc := s.machines.get(session.ID)
	if err := mc.begin(domain.StateGeneratingSearch); err != nil {
		return nil, err
	}
	defer s.finish(ctx, session, mc, in.OnEvent)
	in.OnEvent.emit(Event{Type: EventStateChanged, SessionID: session.ID, State: domain.StateGeneratingSearch})

	return s.runSearch(ctx, session.ID, query, in.OnEvent)
}

type VisualizeInput struct {
	SessionID domain.SessionID
	MessageID domain.MessageID
	OnEvent   EventFunc
}

// Visualize turns a search result into an HTML dashboard on the canvas.
func (s *Service) Visualize(ctx context.Context, in VisualizeInput) (*SendMessageOutput, error) {
	session, err := s.sessionStore.GetSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	source, err := s.messageStore.GetMessage(ctx, session.ID, in.MessageID)
	if err != nil {
		return nil, err
	}
	if source.Kind != domain.KindSearchResult || strings.TrimSpace(source.Text) == "" {
		return nil, ErrNotVisualizable
	}

	ctx = context.WithoutCancel(ctx)
	mc := s.machines.get(session.ID)
	if err := mc.begin(domain.StateGeneratingCanvas); err != nil {
		return nil, err
	}
	defer s.finish(ctx, session, mc, in.OnEvent)
	in.OnEvent.emit(Event{Type: EventStateChanged, SessionID: session.ID, State: domain.StateGeneratingCanvas})

	userMsg := &domain.Message{
		ID:        domain.MessageID(s.newID()),
		SessionID: session.ID,
		Role:      domain.RoleUser,
		Kind:      domain.KindText,
		Text:      s.msgs.VisualizeRequest,
		CreatedAt: s.now(),
	}
	if err := s.append(ctx, userMsg, in.OnEvent); err != nil {
		return nil, err
	}

	reply, err := s.runCanvas(ctx, session.ID, s.msgs.VisualizeTitle, s.msgs.VisualizePrompt(source.Text),
		canvas.ProfileVisualization, in.OnEvent)
	if err != nil {
		return nil, err
	}

	return &SendMessageOutput{UserMessage: userMsg, Reply: reply}, nil
}

// runCanvas inserts a canvas-drafting placeholder and replaces it with the
// finished card, or with a failure text when generation fails.
func (s *Service) runCanvas(
	ctx context.Context,
	sessionID domain.SessionID,
	title, prompt string,
	profile canvas.Profile,
	onEvent EventFunc,
) (*domain.Message, error) {
	placeholder := &domain.Message{
		ID:        domain.MessageID(s.newID()),
		SessionID: sessionID,
		Role:      domain.RoleModel,
		Kind:      domain.KindCanvasDrafting,
		Canvas:    &domain.CanvasPayload{Title: title},
		CreatedAt: s.now(),
	}
	if err := s.append(ctx, placeholder, onEvent); err != nil {
		return nil, err
	}

	artifact, genErr := s.canvas.Generate(ctx, prompt, profile, func(snapshot domain.CanvasArtifact) {
		onEvent.emit(Event{
			Type:      EventCanvasFragment,
			SessionID: sessionID,
			MessageID: placeholder.ID,
			Canvas:    &snapshot,
		})
	})

	var final *domain.Message
	if genErr != nil {
		observability.LoggerFromContext(ctx).Error("canvas generation failed", "error", genErr, "message_id", placeholder.ID)
		final = s.failed(placeholder, s.msgs.CanvasFailed)
	} else {
		final = &domain.Message{
			ID:        placeholder.ID,
			SessionID: sessionID,
			Role:      domain.RoleModel,
			Kind:      domain.KindCanvasCard,
			CreatedAt: placeholder.CreatedAt,
			Canvas: &domain.CanvasPayload{
				Title:      title,
				Artifact:   &artifact,
				Completion: s.msgs.CanvasDone(artifact.Kind == domain.CanvasHTML),
			},
		}
	}

	if err := s.replace(ctx, final, onEvent); err != nil {
		return nil, err
	}
	return final, nil
}

// runSearch inserts a search-thinking placeholder and replaces it with the
// result, or with a failure text when the search fails.
func (s *Service) runSearch(ctx context.Context, sessionID domain.SessionID, query string, onEvent EventFunc) (*domain.Message, error) {
	placeholder := &domain.Message{
		ID:        domain.MessageID(s.newID()),
		SessionID: sessionID,
		Role:      domain.RoleModel,
		Kind:      domain.KindSearchThinking,
		Search:    &domain.SearchPayload{Query: query},
		CreatedAt: s.now(),
	}
	if err := s.append(ctx, placeholder, onEvent); err != nil {
		return nil, err
	}

	res, searchErr := s.search.Search(ctx, query)

	var final *domain.Message
	if searchErr != nil {
		observability.LoggerFromContext(ctx).Error("search failed", "error", searchErr, "message_id", placeholder.ID)
		final = s.failed(placeholder, s.msgs.SearchFailed)
	} else {
		final = &domain.Message{
			ID:        placeholder.ID,
			SessionID: sessionID,
			Role:      domain.RoleModel,
			Kind:      domain.KindSearchResult,
			Text:      res.Content,
			CreatedAt: placeholder.CreatedAt,
			Search:    &domain.SearchPayload{Query: query, Sources: res.Sources},
		}
	}

	if err := s.replace(ctx, final, onEvent); err != nil {
		return nil, err
	}
	return final, nil
}

func (s *Service) GetSessionTimeline(
	ctx context.Context,
	sessionID domain.SessionID,
	limit int,
) (*domain.Session, []*domain.Message, error) {

	log := observability.LoggerFromContext(ctx).With(
		"session_id", sessionID,
		"limit", limit,
	)

	session, err := s.sessionStore.GetSession(ctx, sessionID)
	if err != nil {
		log.Error("failed to get session", "error", err)
		return nil, nil, err
	}

	msgs, err := s.messageStore.GetMessagesBySession(ctx, sessionID, limit)
	if err != nil {
		log.Error("failed to get messages", "error", err)
		return nil, nil, err
	}

	log.Info("fetched session timeline", "message_count", len(msgs))

	return session, msgs, nil
}

func (s *Service) GetMessage(ctx context.Context, sessionID domain.SessionID, id domain.MessageID) (*domain.Message, error) {
	return s.messageStore.GetMessage(ctx, sessionID, id)
}

// State reports the current request state of a session.
func (s *Service) State(sessionID domain.SessionID) domain.ConversationState {
	return s.machines.get(sessionID).current()
}

// --- internal helpers --- //

func (s *Service) modelText(sessionID domain.SessionID, text string) *domain.Message {
	return &domain.Message{
		ID:        domain.MessageID(s.newID()),
		SessionID: sessionID,
		Role:      domain.RoleModel,
		Kind:      domain.KindText,
		Text:      text,
		CreatedAt: s.now(),
	}
}

// failed turns a placeholder into a plain text message with the same id.
func (s *Service) failed(placeholder *domain.Message, text string) *domain.Message {
	return &domain.Message{
		ID:        placeholder.ID,
		SessionID: placeholder.SessionID,
		Role:      domain.RoleModel,
		Kind:      domain.KindText,
		Text:      text,
		CreatedAt: placeholder.CreatedAt,
	}
}

func (s *Service) append(ctx context.Context, msg *domain.Message, onEvent EventFunc) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	if err := s.messageStore.AppendMessage(ctx, msg); err != nil {
		return err
	}
	onEvent.emit(Event{Type: EventMessageAppended, SessionID: msg.SessionID, Message: msg})
	return nil
}

func (s *Service) replace(ctx context.Context, msg *domain.Message, onEvent EventFunc) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("replace message: %w", err)
	}
	if err := s.messageStore.ReplaceMessage(ctx, msg); err != nil {
		return err
	}
	onEvent.emit(Event{Type: EventMessageReplaced, SessionID: msg.SessionID, Message: msg})
	return nil
}

func (s *Service) transition(mc *machine, sessionID domain.SessionID, next domain.ConversationState, onEvent EventFunc) error {
	if err := mc.advance(next); err != nil {
		return err
	}
	onEvent.emit(Event{Type: EventStateChanged, SessionID: sessionID, State: next})
	return nil
}

// finish returns the session to idle and records the activity.
func (s *Service) finish(ctx context.Context, session *domain.Session, mc *machine, onEvent EventFunc) {
	mc.reset()
	onEvent.emit(Event{Type: EventStateChanged, SessionID: session.ID, State: domain.StateIdle})

	updated := *session
	updated.UpdatedAt = s.now()
	if err := s.sessionStore.UpdateSession(ctx, &updated); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to update session", "error", err, "session_id", session.ID)
	}
}
