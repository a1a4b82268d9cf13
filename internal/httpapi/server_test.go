package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/membridge/membridge/internal/config"
	"github.com/membridge/membridge/internal/lang"
)

type stubDialogue struct {
	mu       sync.Mutex
	messages []string
	welcomes []string
}

func (d *stubDialogue) HandleMessage(_ context.Context, userID, text string) (string, lang.Locale) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, userID+":"+text)
	return "reply to " + text, lang.Detect(text)
}

func (d *stubDialogue) Welcome(_ context.Context, userID, hint, text string) (string, lang.Locale) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.welcomes = append(d.welcomes, userID+":"+hint)
	return "welcome", lang.Normalize(hint)
}

type stubSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *stubSender) SendMessage(_ context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, fmt.Sprintf("%d:%s", chatID, text))
	return nil
}

func newTestServer(t *testing.T) (*Server, *stubDialogue, *stubSender) {
	t.Helper()
	dialogue := &stubDialogue{}
	sender := &stubSender{}
	srv := New(config.Config{}, dialogue, sender)
	return srv, dialogue, sender
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", res.StatusCode)
	}
}

func TestWebhookRoutesMessageAndSendsReply(t *testing.T) {
	srv, dialogue, sender := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	update := `{"update_id":1,"message":{"message_id":5,"from":{"id":77,"language_code":"en"},"chat":{"id":77},"text":"Hello"}}`
	res, err := http.Post(ts.URL+"/webhook", "application/json", bytes.NewReader([]byte(update)))
	if err != nil {
		t.Fatalf("webhook request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("webhook status = %d, want 200", res.StatusCode)
	}

	dialogue.mu.Lock()
	defer dialogue.mu.Unlock()
	if len(dialogue.messages) != 1 || dialogue.messages[0] != "77:Hello" {
		t.Fatalf("dialogue messages = %v, want [77:Hello]", dialogue.messages)
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.sent) != 1 || sender.sent[0] != "77:reply to Hello" {
		t.Fatalf("sent = %v, want the controller reply", sender.sent)
	}
}

func TestWebhookRoutesStartToWelcome(t *testing.T) {
	srv, dialogue, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	update := `{"update_id":2,"message":{"message_id":6,"from":{"id":88,"language_code":"ru"},"chat":{"id":88},"text":"/start"}}`
	res, err := http.Post(ts.URL+"/webhook", "application/json", bytes.NewReader([]byte(update)))
	if err != nil {
		t.Fatalf("webhook request error = %v", err)
	}
	res.Body.Close()

	dialogue.mu.Lock()
	defer dialogue.mu.Unlock()
	if len(dialogue.welcomes) != 1 || dialogue.welcomes[0] != "88:ru" {
		t.Fatalf("welcomes = %v, want [88:ru]", dialogue.welcomes)
	}
	if len(dialogue.messages) != 0 {
		t.Fatalf("messages = %v, want none for /start", dialogue.messages)
	}
}

func TestWebhookRejectsNonJSON(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	res, err := http.Post(ts.URL+"/webhook", "text/plain", bytes.NewReader([]byte("hi")))
	if err != nil {
		t.Fatalf("webhook request error = %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("webhook status = %d, want 400", res.StatusCode)
	}
}

func TestChatWSRoundTrip(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/chat/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("ws dial error = %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"user_id": "dev", "text": "Привет"}); err != nil {
		t.Fatalf("ws write error = %v", err)
	}

	var frame struct {
		Reply  string `json:"reply"`
		Locale string `json:"locale"`
	}
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("ws read error = %v", err)
	}
	if frame.Reply != "reply to Привет" {
		t.Fatalf("reply = %q, want echo from stub", frame.Reply)
	}
	if frame.Locale != "ru" {
		t.Fatalf("locale = %q, want ru", frame.Locale)
	}
}

func TestIsCommand(t *testing.T) {
	cases := []struct {
		text string
		name string
		want bool
	}{
		{"/start", "start", true},
		{"/start@MemoryBridgeBot", "start", true},
		{"/started", "start", false},
		{"hello /start", "start", false},
		{"/help me", "help", true},
	}
	for _, tc := range cases {
		if got := isCommand(tc.text, tc.name); got != tc.want {
			t.Fatalf("isCommand(%q, %q) = %v, want %v", tc.text, tc.name, got, tc.want)
		}
	}
}
