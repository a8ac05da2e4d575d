// Package chat keeps a persisted chat room and fans new messages out to live
// subscribers.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"gamehall/internal/auth"
	"gamehall/internal/store"
)

// MaxMessageLength is the longest accepted message, in characters.
const MaxMessageLength = 500

var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message is too long (max 500 characters)")
	ErrNotSignedIn    = errors.New("sign in to chat")
)

// Store is the persistence the hub needs.
type Store interface {
	SaveMessage(ctx context.Context, m *store.ChatMessage) error
	RecentMessages(ctx context.Context, limit int) ([]store.ChatMessage, error)
}

// Hub stores posted messages and notifies subscribers. Subscribers are called
// synchronously from Post and must not block.
type Hub struct {
	store        Store
	historyLimit int

	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]func(store.ChatMessage)
}

// NewHub returns a hub that serves at most historyLimit messages of history.
func NewHub(s Store, historyLimit int) *Hub {
	if historyLimit <= 0 {
		historyLimit = 200
	}
	return &Hub{store: s, historyLimit: historyLimit, subs: make(map[uint64]func(store.ChatMessage))}
}

// Post validates, stores and broadcasts a message from id.
func (h *Hub) Post(ctx context.Context, id auth.Identity, text string) (store.ChatMessage, error) {
	if id.UID == "" {
		return store.ChatMessage{}, ErrNotSignedIn
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return store.ChatMessage{}, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return store.ChatMessage{}, ErrMessageTooLong
	}

	msg := store.ChatMessage{UID: id.UID, Email: id.Email, Text: text}
	if err := h.store.SaveMessage(ctx, &msg); err != nil {
		return store.ChatMessage{}, err
	}

	h.mu.RLock()
	subs := make([]func(store.ChatMessage), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.RUnlock()

	for _, fn := range subs {
		fn(msg)
	}
	return msg, nil
}

// History returns the latest messages, oldest first.
func (h *Hub) History(ctx context.Context) ([]store.ChatMessage, error) {
	return h.store.RecentMessages(ctx, h.historyLimit)
}

// Subscribe registers fn for every new message. The returned cancel function
// unsubscribes and is safe to call more than once.
func (h *Hub) Subscribe(fn func(store.ChatMessage)) (cancel func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Channel adapts Subscribe to a buffered channel. Messages are dropped, with a
// warning, when the consumer falls behind by more than buffer messages.
func (h *Hub) Channel(buffer int) (<-chan store.ChatMessage, func()) {
	ch := make(chan store.ChatMessage, buffer)
	var mu sync.Mutex
	closed := false
	cancel := h.Subscribe(func(m store.ChatMessage) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- m:
		default:
			zap.S().Warnf("chat subscriber is behind, dropping message %s", m.ID)
		}
	})
	return ch, func() {
		cancel()
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			closed = true
			close(ch)
		}
	}
}
