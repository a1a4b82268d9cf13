package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSendMessagePostsMarkdownPayload(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "secret-token")
	if err := c.SendMessage(context.Background(), 42, "hello"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	if gotPath != "/botsecret-token/sendMessage" {
		t.Fatalf("path = %q, want bot method path", gotPath)
	}
	if gotBody["chat_id"].(float64) != 42 {
		t.Fatalf("chat_id = %v, want 42", gotBody["chat_id"])
	}
	if gotBody["parse_mode"] != "Markdown" {
		t.Fatalf("parse_mode = %v, want Markdown", gotBody["parse_mode"])
	}
}

func TestGetUpdatesDecodesResult(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":[
			{"update_id":7,"message":{"message_id":1,"from":{"id":99,"language_code":"ru"},"chat":{"id":99},"text":"Привет"}}
		]}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "t")
	updates, err := c.GetUpdates(context.Background(), 0, time.Second)
	if err != nil {
		t.Fatalf("GetUpdates() error = %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(updates))
	}
	msg := updates[0].Message
	if msg == nil || msg.Text != "Привет" || msg.From.LanguageCode != "ru" {
		t.Fatalf("unexpected update payload: %+v", updates[0])
	}
}

func TestCallSurfacesAPIFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"ok":false,"description":"Unauthorized"}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "bad")
	if err := c.SendMessage(context.Background(), 1, "x"); err == nil {
		t.Fatalf("SendMessage() expected error for ok=false response")
	}
}
