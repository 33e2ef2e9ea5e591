package conversation_test

import (
	"context"
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/canvas-agent/internal/adapters/llm"
	"github.com/PabloGalante/canvas-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/canvas-agent/internal/app/canvas"
	"github.com/PabloGalante/canvas-agent/internal/app/conversation"
	"github.com/PabloGalante/canvas-agent/internal/app/prompts"
	"github.com/PabloGalante/canvas-agent/internal/app/routing"
	"github.com/PabloGalante/canvas-agent/internal/app/search"
	"github.com/PabloGalante/canvas-agent/internal/domain"
)

var en = prompts.ForCode("en")

func newService(t *testing.T, mock *llm.MockLLM) (*conversation.Service, domain.SessionID) {
	t.Helper()

	svc := conversation.NewService(conversation.Deps{
		Router:   routing.NewRouter(mock, "router-model", en),
		Canvas:   canvas.NewGenerator(mock, canvas.Config{Model: "canvas-model", ClassifierModel: "router-model"}, en),
		Search:   search.NewService(mock, "search-model", en),
		Sessions: memory.NewSessionStore(),
		Messages: memory.NewMessageStore(),
		Language: en,
	})

	out, err := svc.StartSession(context.Background(), conversation.StartSessionInput{Title: "test"})
	require.NoError(t, err)
	return svc, out.Session.ID
}

type recorder struct {
	events []conversation.Event
}

func (r *recorder) on(e conversation.Event) { r.events = append(r.events, e) }

func (r *recorder) ofType(typ conversation.EventType) []conversation.Event {
	var out []conversation.Event
	for _, e := range r.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func timeline(t *testing.T, svc *conversation.Service, id domain.SessionID) []*domain.Message {
	t.Helper()
	_, msgs, err := svc.GetSessionTimeline(context.Background(), id, 0)
	require.NoError(t, err)
	return msgs
}

func TestStartSessionAppendsGreeting(t *testing.T) {
	svc, id := newService(t, llm.NewMockLLM())

	msgs := timeline(t, svc, id)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.RoleModel, msgs[0].Role)
	assert.Equal(t, en.Messages.Greeting, msgs[0].Text)
	assert.Equal(t, domain.StateIdle, svc.State(id))
}

func TestSendMessageTextReply(t *testing.T) {
	mock := llm.NewMockLLM()
	svc, id := newService(t, mock)
	rec := &recorder{}

	out, err := svc.SendMessage(context.Background(), conversation.SendMessageInput{
		SessionID: id,
		Text:      "  hello  ",
		OnEvent:   rec.on,
	})
	require.NoError(t, err)

	assert.Equal(t, "hello", out.UserMessage.Text)
	assert.Equal(t, domain.KindText, out.Reply.Kind)
	assert.Equal(t, `You said "hello".`, out.Reply.Text)
	assert.Len(t, timeline(t, svc, id), 3)

	var states []domain.ConversationState
	for _, e := range rec.ofType(conversation.EventStateChanged) {
		states = append(states, e.State)
	}
	assert.Equal(t, []domain.ConversationState{
		domain.StateAwaitingRoute, domain.StateAwaitingText, domain.StateIdle,
	}, states)
	assert.Equal(t, domain.StateIdle, svc.State(id))
}

func TestSendMessageRejectsEmpty(t *testing.T) {
	svc, id := newService(t, llm.NewMockLLM())

	_, err := svc.SendMessage(context.Background(), conversation.SendMessageInput{SessionID: id, Text: "   "})
	assert.ErrorIs(t, err, conversation.ErrEmptyMessage)
	assert.Len(t, timeline(t, svc, id), 1)
}

func TestSendMessageUnknownSession(t *testing.T) {
	svc, _ := newService(t, llm.NewMockLLM())

	_, err := svc.SendMessage(context.Background(), conversation.SendMessageInput{SessionID: "missing", Text: "hi"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSendMessageAppliesQuote(t *testing.T) {
	mock := llm.NewMockLLM()
	svc, id := newService(t, mock)

	out, err := svc.SendMessage(context.Background(), conversation.SendMessageInput{
		SessionID: id,
		Text:      "what does it mean?",
		Quote:     "the excerpt",
	})
	require.NoError(t, err)

	want := en.Messages.Quote("the excerpt", "what does it mean?")
	assert.Equal(t, want, out.UserMessage.Text)
	require.Len(t, mock.Calls(), 1)
	assert.Equal(t, want, mock.Calls()[0].Text)
}

func TestSendMessageCanvasReplacesPlaceholder(t *testing.T) {
	mock := llm.NewMockLLM()
	svc, id := newService(t, mock)
	rec := &recorder{}

	out, err := svc.SendMessage(context.Background(), conversation.SendMessageInput{
		SessionID: id,
		Text:      "create a chart of sales",
		OnEvent:   rec.on,
	})
	require.NoError(t, err)

	appended := rec.ofType(conversation.EventMessageAppended)
	require.Len(t, appended, 2)
	placeholder := appended[1].Message
	assert.Equal(t, domain.KindCanvasDrafting, placeholder.Kind)

	reply := out.Reply
	assert.Equal(t, placeholder.ID, reply.ID)
	assert.Equal(t, domain.KindCanvasCard, reply.Kind)
	require.NotNil(t, reply.Canvas.Artifact)
	assert.Equal(t, domain.CanvasHTML, reply.Canvas.Artifact.Kind)
	assert.True(t, strings.HasPrefix(reply.Canvas.Artifact.Content, "<!DOCTYPE html>"))
	assert.Equal(t, en.Messages.CanvasDoneHTML, reply.Canvas.Completion)

	fragments := rec.ofType(conversation.EventCanvasFragment)
	require.NotEmpty(t, fragments)
	for _, f := range fragments {
		assert.Equal(t, placeholder.ID, f.MessageID)
	}
	assert.Equal(t, *reply.Canvas.Artifact, *fragments[len(fragments)-1].Canvas)

	replaced := rec.ofType(conversation.EventMessageReplaced)
	require.Len(t, replaced, 1)
	assert.Equal(t, reply.ID, replaced[0].Message.ID)

	msgs := timeline(t, svc, id)
	require.Len(t, msgs, 3)
	assert.Equal(t, domain.KindCanvasCard, msgs[2].Kind)
	for _, m := range msgs {
		assert.False(t, m.Kind.IsPlaceholder())
	}
}

func TestSendMessageCanvasFailureBecomesText(t *testing.T) {
	mock := llm.NewMockLLM()
	mock.StreamFunc = func(context.Context, domain.LLMRequest) iter.Seq2[string, error] {
		return llm.StreamFailing(errors.New("stream broke"), "# partial")
	}
	svc, id := newService(t, mock)

	out, err := svc.SendMessage(context.Background(), conversation.SendMessageInput{
		SessionID: id,
		Text:      "create a document about tides",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.KindText, out.Reply.Kind)
	assert.Equal(t, en.Messages.CanvasFailed, out.Reply.Text)
	assert.Nil(t, out.Reply.Canvas)

	msgs := timeline(t, svc, id)
	require.Len(t, msgs, 3)
	assert.Equal(t, out.Reply.ID, msgs[2].ID)
	assert.Equal(t, domain.StateIdle, svc.State(id))
}

func TestSendMessageSearchRoute(t *testing.T) {
	mock := llm.NewMockLLM()
	svc, id := newService(t, mock)

	out, err := svc.SendMessage(context.Background(), conversation.SendMessageInput{
		SessionID: id,
		Text:      "latest news on rockets",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.KindSearchResult, out.Reply.Kind)
	require.NotNil(t, out.Reply.Search)
	assert.Equal(t, "latest news on rockets", out.Reply.Search.Query)
	assert.Equal(t, []domain.GroundingSource{{URI: "https://example.com", Title: "Example"}}, out.Reply.Search.Sources)
}

func TestSendMessageImageMakesOneCall(t *testing.T) {
	mock := llm.NewMockLLM()
	svc, id := newService(t, mock)

	out, err := svc.SendMessage(context.Background(), conversation.SendMessageInput{
		SessionID: id,
		Image:     &domain.Image{Data: []byte{0x89, 0x50}, MimeType: "image/png"},
	})
	require.NoError(t, err)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.NotNil(t, calls[0].Image)
	assert.Empty(t, calls[0].Tools)
	assert.Equal(t, en.Messages.ImageDefaultPrompt, calls[0].Text)
	assert.Equal(t, domain.KindText, out.Reply.Kind)
	assert.NotNil(t, out.UserMessage.Image)
}

func TestSearchFailureBecomesText(t *testing.T) {
	mock := llm.NewMockLLM()
	mock.GenerateFunc = func(context.Context, domain.LLMRequest) (*domain.LLMResponse, error) {
		return nil, errors.New("quota exceeded")
	}
	svc, id := newService(t, mock)
	rec := &recorder{}

	msg, err := svc.Search(context.Background(), conversation.SearchInput{
		SessionID: id,
		Query:     "tides",
		OnEvent:   rec.on,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.KindText, msg.Kind)
	assert.Equal(t, en.Messages.SearchFailed, msg.Text)

	appended := rec.ofType(conversation.EventMessageAppended)
	require.Len(t, appended, 1)
	assert.Equal(t, domain.KindSearchThinking, appended[0].Message.Kind)
	assert.Equal(t, appended[0].Message.ID, msg.ID)
	assert.Len(t, timeline(t, svc, id), 2)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	svc, id := newService(t, llm.NewMockLLM())

	_, err := svc.Search(context.Background(), conversation.SearchInput{SessionID: id, Query: " "})
	assert.ErrorIs(t, err, conversation.ErrEmptyQuery)
}

func TestVisualizeSearchResult(t *testing.T) {
	mock := llm.NewMockLLM()
	svc, id := newService(t, mock)
	ctx := context.Background()

	result, err := svc.Search(ctx, conversation.SearchInput{SessionID: id, Query: "rocket launches"})
	require.NoError(t, err)
	require.Equal(t, domain.KindSearchResult, result.Kind)

	out, err := svc.Visualize(ctx, conversation.VisualizeInput{SessionID: id, MessageID: result.ID})
	require.NoError(t, err)

	assert.Equal(t, en.Messages.VisualizeRequest, out.UserMessage.Text)
	assert.Equal(t, domain.KindCanvasCard, out.Reply.Kind)
	assert.Equal(t, en.Messages.VisualizeTitle, out.Reply.Canvas.Title)
	assert.Equal(t, domain.CanvasHTML, out.Reply.Canvas.Artifact.Kind)

	// search + one stream; the forced profile skips the classifier
	calls := mock.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1].Text, result.Text)
}

func TestVisualizeRejectsOtherKinds(t *testing.T) {
	svc, id := newService(t, llm.NewMockLLM())
	ctx := context.Background()

	greeting := timeline(t, svc, id)[0]
	_, err := svc.Visualize(ctx, conversation.VisualizeInput{SessionID: id, MessageID: greeting.ID})
	assert.ErrorIs(t, err, conversation.ErrNotVisualizable)

	_, err = svc.Visualize(ctx, conversation.VisualizeInput{SessionID: id, MessageID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSecondRequestOnBusySession(t *testing.T) {
	mock := llm.NewMockLLM()
	started := make(chan struct{})
	release := make(chan struct{})
	mock.GenerateFunc = func(context.Context, domain.LLMRequest) (*domain.LLMResponse, error) {
		close(started)
		<-release
		return &domain.LLMResponse{Text: "done"}, nil
	}
	svc, id := newService(t, mock)
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() {
		_, err := svc.SendMessage(ctx, conversation.SendMessageInput{SessionID: id, Text: "first"})
		errc <- err
	}()

	<-started
	assert.Equal(t, domain.StateAwaitingRoute, svc.State(id))

	_, err := svc.SendMessage(ctx, conversation.SendMessageInput{SessionID: id, Text: "second"})
	assert.ErrorIs(t, err, conversation.ErrBusy)
	_, err = svc.Search(ctx, conversation.SearchInput{SessionID: id, Query: "second"})
	assert.ErrorIs(t, err, conversation.ErrBusy)

	close(release)
	require.NoError(t, <-errc)
	assert.Equal(t, domain.StateIdle, svc.State(id))

	// user "first" and model "done" only; the rejected request left nothing
	assert.Len(t, timeline(t, svc, id), 3)
}

// Run with -race: turns update the session while readers fetch it.
func TestConcurrentTurnsAndTimelineReads(t *testing.T) {
	svc, id := newService(t, llm.NewMockLLM())
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			_, err := svc.SendMessage(ctx, conversation.SendMessageInput{SessionID: id, Text: "hello"})
			assert.NoError(t, err)
		}
	}()

	for {
		select {
		case <-done:
			session, msgs, err := svc.GetSessionTimeline(ctx, id, 0)
			require.NoError(t, err)
			assert.False(t, session.UpdatedAt.Before(session.CreatedAt))
			assert.Len(t, msgs, 41)
			return
		default:
			session, _, err := svc.GetSessionTimeline(ctx, id, 0)
			require.NoError(t, err)
			_ = session.UpdatedAt
		}
	}
}
