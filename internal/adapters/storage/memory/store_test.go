package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/canvas-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/canvas-agent/internal/domain"
)

func msg(id string, kind domain.MessageKind) *domain.Message {
	return &domain.Message{ID: domain.MessageID(id), SessionID: "s1", Role: domain.RoleModel, Kind: kind}
}

func TestMessageStoreAppendReplaceKeepsOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMessageStore()

	require.NoError(t, store.AppendMessage(ctx, msg("a", domain.KindText)))
	require.NoError(t, store.AppendMessage(ctx, msg("b", domain.KindSearchThinking)))
	require.NoError(t, store.AppendMessage(ctx, msg("c", domain.KindText)))
	require.Error(t, store.AppendMessage(ctx, msg("b", domain.KindText)), "duplicate id")

	require.NoError(t, store.ReplaceMessage(ctx, msg("b", domain.KindSearchResult)))

	all, err := store.GetMessagesBySession(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, domain.MessageID("b"), all[1].ID)
	assert.Equal(t, domain.KindSearchResult, all[1].Kind)

	last, err := store.GetMessagesBySession(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, domain.MessageID("b"), last[0].ID)
}

func TestMessageStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMessageStore()

	err := store.ReplaceMessage(ctx, msg("missing", domain.KindText))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.GetMessage(ctx, "s1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	sess := &domain.Session{ID: "s1", Title: "t"}

	require.NoError(t, store.CreateSession(ctx, sess))
	require.Error(t, store.CreateSession(ctx, sess))

	got, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "t", got.Title)

	_, err = store.GetSession(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.UpdateSession(ctx, &domain.Session{ID: "nope"}), domain.ErrNotFound)
}

func TestSessionStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	sess := &domain.Session{ID: "s1", Title: "t"}
	require.NoError(t, store.CreateSession(ctx, sess))

	sess.Title = "changed by caller"
	got, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "t", got.Title)

	got.Title = "changed by reader"
	again, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "t", again.Title)
}
