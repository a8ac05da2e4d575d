package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"gamehall/internal/auth"
	"gamehall/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memStore struct {
	mu   sync.Mutex
	msgs []store.ChatMessage
	err  error
}

func (m *memStore) SaveMessage(_ context.Context, msg *store.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	msg.ID = strings.Repeat("x", len(m.msgs)+1)
	m.msgs = append(m.msgs, *msg)
	return nil
}

func (m *memStore) RecentMessages(_ context.Context, limit int) ([]store.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.msgs) > limit {
		return append([]store.ChatMessage(nil), m.msgs[len(m.msgs)-limit:]...), nil
	}
	return append([]store.ChatMessage(nil), m.msgs...), nil
}

var player = auth.Identity{UID: "u1", Email: "a@example.com"}

func TestPostValidates(t *testing.T) {
	h := NewHub(&memStore{}, 10)
	ctx := context.Background()

	_, err := h.Post(ctx, auth.Identity{}, "hi")
	assert.ErrorIs(t, err, ErrNotSignedIn)
	_, err = h.Post(ctx, player, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = h.Post(ctx, player, strings.Repeat("a", MaxMessageLength+1))
	assert.ErrorIs(t, err, ErrMessageTooLong)

	msg, err := h.Post(ctx, player, "  "+strings.Repeat("ñ", MaxMessageLength)+" ")
	require.NoError(t, err)
	assert.Equal(t, "u1", msg.UID)
	assert.Equal(t, MaxMessageLength, len([]rune(msg.Text)))
}

func TestSubscribeAndCancel(t *testing.T) {
	h := NewHub(&memStore{}, 10)
	ctx := context.Background()

	var got []string
	cancel := h.Subscribe(func(m store.ChatMessage) { got = append(got, m.Text) })
	assert.Equal(t, 1, h.Subscribers())

	_, err := h.Post(ctx, player, "one")
	require.NoError(t, err)
	cancel()
	cancel()
	assert.Equal(t, 0, h.Subscribers())

	_, err = h.Post(ctx, player, "two")
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, got)
}

func TestStoreFailureIsNotBroadcast(t *testing.T) {
	boom := errors.New("disk full")
	h := NewHub(&memStore{err: boom}, 10)
	called := false
	defer h.Subscribe(func(store.ChatMessage) { called = true })()

	_, err := h.Post(context.Background(), player, "hello")
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func TestHistoryLimit(t *testing.T) {
	h := NewHub(&memStore{}, 2)
	ctx := context.Background()
	for _, text := range []string{"a", "b", "c"} {
		_, err := h.Post(ctx, player, text)
		require.NoError(t, err)
	}
	hist, err := h.History(ctx)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "b", hist[0].Text)
	assert.Equal(t, "c", hist[1].Text)
}

func TestChannelDeliversAndCloses(t *testing.T) {
	h := NewHub(&memStore{}, 10)
	ch, cancel := h.Channel(1)

	var wg sync.WaitGroup
	var received []string
	wg.Add(1)
	go func() {
		defer wg.Done()
		for m := range ch {
			received = append(received, m.Text)
		}
	}()

	_, err := h.Post(context.Background(), player, "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, h.Subscribers())

	cancel()
	cancel()
	wg.Wait()

	assert.Equal(t, []string{"hello"}, received)
	assert.Equal(t, 0, h.Subscribers())
}
