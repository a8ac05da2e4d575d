package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"gamehall/internal/auth"
)

func validSurvey() map[string]any {
	return map[string]any{
		"name":         "Ana María",
		"age":          30,
		"phone":        "1155550000",
		"satisfaction": "high",
		"played":       map[string]bool{"hangman": true, "trivia": true},
		"favoriteGame": "hangman",
		"comment":      "Great games",
	}
}

func TestSurveyLifecycle(t *testing.T) {
	_, router, _ := setupTestApp(t, testConfig(t), nil)
	player := newClient(t, router, tokenFor(t, auth.Identity{UID: "u1", Email: "a@example.com"}))
	admin := newClient(t, router, tokenFor(t, auth.Identity{UID: "root", Admin: true}))

	expectStatus(t, newClient(t, router, "").do(http.MethodPost, RouteAPI+RouteSurveys, validSurvey()), http.StatusUnauthorized)

	w := player.do(http.MethodPost, RouteAPI+RouteSurveys, validSurvey())
	expectStatus(t, w, http.StatusCreated)
	saved := decode(t, w)
	if saved["playedSummary"] != "Hangman, Trivia" || saved["uid"] != "u1" || saved["id"] == "" {
		t.Fatalf("unexpected saved survey: %v", saved)
	}

	expectStatus(t, player.do(http.MethodGet, RouteAPI+RouteSurveys, nil), http.StatusForbidden)
	expectStatus(t, player.do(http.MethodDelete, RouteAPI+RouteSurveys, nil), http.StatusForbidden)

	w = admin.do(http.MethodGet, RouteAPI+RouteSurveys, nil)
	expectStatus(t, w, http.StatusOK)
	if list := decode(t, w)["surveys"].([]any); len(list) != 1 {
		t.Fatalf("surveys = %v", list)
	}

	w = admin.do(http.MethodDelete, RouteAPI+RouteSurveys, nil)
	expectStatus(t, w, http.StatusOK)
	if body := decode(t, w); body["deleted"] != float64(1) {
		t.Fatalf("delete body = %v", body)
	}
}

func TestSurveyValidation(t *testing.T) {
	_, router, _ := setupTestApp(t, testConfig(t), nil)
	c := newClient(t, router, tokenFor(t, auth.Identity{UID: "u1"}))

	tests := []struct {
		name  string
		field string
		value any
	}{
		{"short name", "name", "Al"},
		{"name with digits", "name", "R2D2 Unit"},
		{"too young", "age", 17},
		{"too old", "age", 100},
		{"phone letters", "phone", "12a"},
		{"phone too long", "phone", "12345678901"},
		{"signed phone", "phone", "-123"},
		{"no satisfaction", "satisfaction", ""},
		{"nothing played", "played", map[string]bool{}},
		{"no favorite", "favoriteGame", ""},
		{"long suggestion", "suggestion", strings.Repeat("x", 256)},
		{"short comment", "comment", "meh"},
		{"long comment", "comment", strings.Repeat("y", 256)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validSurvey()
			body[tt.field] = tt.value
			w := c.do(http.MethodPost, RouteAPI+RouteSurveys, body)
			expectStatus(t, w, http.StatusBadRequest)
			fields, ok := decode(t, w)["fields"].(map[string]any)
			if !ok || fields[tt.field] == nil {
				t.Errorf("expected a %s error, got %s", tt.field, w.Body.String())
			}
		})
	}
}

func TestChatMessagesREST(t *testing.T) {
	_, router, _ := setupTestApp(t, testConfig(t), nil)
	anon := newClient(t, router, "")
	user := newClient(t, router, tokenFor(t, auth.Identity{UID: "u1", Email: "a@example.com"}))

	expectStatus(t, anon.do(http.MethodPost, RouteAPI+RouteChat, ChatRequest{Text: "hi"}), http.StatusUnauthorized)
	expectStatus(t, user.do(http.MethodPost, RouteAPI+RouteChat, ChatRequest{Text: "   "}), http.StatusBadRequest)
	expectStatus(t, user.do(http.MethodPost, RouteAPI+RouteChat, ChatRequest{Text: strings.Repeat("z", 501)}), http.StatusBadRequest)

	w := user.do(http.MethodPost, RouteAPI+RouteChat, ChatRequest{Text: " hello "})
	expectStatus(t, w, http.StatusCreated)
	if msg := decode(t, w); msg["text"] != "hello" || msg["uid"] != "u1" {
		t.Fatalf("unexpected message: %v", msg)
	}

	w = anon.do(http.MethodGet, RouteAPI+RouteChat, nil)
	expectStatus(t, w, http.StatusOK)
	if msgs := decode(t, w)["messages"].([]any); len(msgs) != 1 {
		t.Fatalf("messages = %v", msgs)
	}
}

func dialChat(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + RouteAPI + RouteChatStream
	if token != "" {
		url += "?access_token=" + token
	}
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) chatFrame {
	t.Helper()
	var f chatFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func TestChatStream(t *testing.T) {
	app, router, _ := setupTestApp(t, testConfig(t), nil)
	srv := httptest.NewServer(router)
	// Registered first so it runs after the websocket connections close.
	t.Cleanup(srv.Close)

	user := newClient(t, router, tokenFor(t, auth.Identity{UID: "u1"}))
	expectStatus(t, user.do(http.MethodPost, RouteAPI+RouteChat, ChatRequest{Text: "earlier"}), http.StatusCreated)

	watcher := dialChat(t, srv, "")
	if f := readFrame(t, watcher); f.Type != "history" || len(f.Messages) != 1 || f.Messages[0].Text != "earlier" {
		t.Fatalf("unexpected history frame: %+v", f)
	}

	if err := watcher.WriteJSON(ChatRequest{Text: "let me in"}); err != nil {
		t.Fatal(err)
	}
	if f := readFrame(t, watcher); f.Type != "error" {
		t.Fatalf("anonymous post should be refused, got %+v", f)
	}

	speaker := dialChat(t, srv, tokenFor(t, auth.Identity{UID: "u2"}))
	readFrame(t, speaker)
	if err := speaker.WriteJSON(ChatRequest{Text: "live"}); err != nil {
		t.Fatal(err)
	}
	for _, conn := range []*websocket.Conn{speaker, watcher} {
		f := readFrame(t, conn)
		if f.Type != "message" || f.Message == nil || f.Message.Text != "live" || f.Message.UID != "u2" {
			t.Fatalf("unexpected live frame: %+v", f)
		}
	}

	if app.Chat.Subscribers() != 2 {
		t.Errorf("subscribers = %d, want 2", app.Chat.Subscribers())
	}
}
