package chat

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluehawk13/cost-ai-navigator/internal/store"
)

type scriptedAgent struct {
	reply string
	err   error
}

func (a *scriptedAgent) Send(_ context.Context, _, _, _ string) (string, error) {
	return a.reply, a.err
}

func newTestService(t *testing.T, agent AgentClient) (*Service, store.Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "chat.db")
	st, err := store.NewLibSQLStore("file:" + dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return New(st, agent, nil), st
}

func TestSend_FirstMessageSetsTitle(t *testing.T) {
	svc, st := newTestService(t, &scriptedAgent{reply: "Here is your cost analysis."})
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "New Chat", sess.Title)

	reply, err := svc.Send(ctx, "user-1", sess.ID, "Analyze my AI costs")
	require.NoError(t, err)
	assert.Equal(t, store.SenderAssistant, reply.Sender)
	assert.Equal(t, "Here is your cost analysis.", reply.Content)

	got, err := st.GetSession(ctx, "user-1", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Analyze my AI costs", got.Title)
}

func TestSend_LongFirstMessageTruncatedTo50Runes(t *testing.T) {
	svc, st := newTestService(t, &scriptedAgent{reply: "ok"})
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)

	long := strings.Repeat("é", 80)
	_, err = svc.Send(ctx, "user-1", sess.ID, long)
	require.NoError(t, err)

	got, err := st.GetSession(ctx, "user-1", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 50), got.Title)
}

func TestSend_SecondMessageKeepsTitle(t *testing.T) {
	svc, st := newTestService(t, &scriptedAgent{reply: "ok"})
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)

	_, err = svc.Send(ctx, "user-1", sess.ID, "First question")
	require.NoError(t, err)
	_, err = svc.Send(ctx, "user-1", sess.ID, "Second question")
	require.NoError(t, err)

	got, err := st.GetSession(ctx, "user-1", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "First question", got.Title)
}

func TestSend_PersistsBothSides(t *testing.T) {
	svc, _ := newTestService(t, &scriptedAgent{reply: "answer"})
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	_, err = svc.Send(ctx, "user-1", sess.ID, "question")
	require.NoError(t, err)

	msgs, err := svc.History(ctx, "user-1", sess.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, store.SenderUser, msgs[0].Sender)
	assert.Equal(t, "question", msgs[0].Content)
	assert.Equal(t, store.SenderAssistant, msgs[1].Sender)
	assert.Equal(t, "answer", msgs[1].Content)
}

func TestSend_AgentFailureKeepsUserMessage(t *testing.T) {
	svc, _ := newTestService(t, &scriptedAgent{err: errors.New("unreachable")})
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	_, err = svc.Send(ctx, "user-1", sess.ID, "question")
	require.Error(t, err)

	msgs, err := svc.History(ctx, "user-1", sess.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, store.SenderUser, msgs[0].Sender)
}

func TestSend_UnknownSessionRejected(t *testing.T) {
	svc, _ := newTestService(t, &scriptedAgent{reply: "ok"})
	_, err := svc.Send(context.Background(), "user-1", "no-such-session", "hi")
	require.Error(t, err)
}

func TestSend_EmptyContentRejected(t *testing.T) {
	svc, _ := newTestService(t, &scriptedAgent{reply: "ok"})
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	_, err = svc.Send(ctx, "user-1", sess.ID, "")
	require.Error(t, err)
}

func TestHistory_OwnerScoped(t *testing.T) {
	svc, _ := newTestService(t, &scriptedAgent{reply: "ok"})
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)

	_, err = svc.History(ctx, "user-2", sess.ID)
	require.Error(t, err)
}
