package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/membridge/membridge/internal/config"
	"github.com/membridge/membridge/internal/lang"
	"github.com/membridge/membridge/internal/observability"
	"github.com/membridge/membridge/internal/telegram"
)

// Dialogue is the slice of the controller the transport layers need.
type Dialogue interface {
	HandleMessage(ctx context.Context, userID, text string) (string, lang.Locale)
	Welcome(ctx context.Context, userID, localeHint, text string) (string, lang.Locale)
}

// Sender delivers replies back through the messaging transport.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type Server struct {
	cfg      config.Config
	dialogue Dialogue
	sender   Sender
	upgrader websocket.Upgrader
}

func New(cfg config.Config, dialogue Dialogue, sender Sender) *Server {
	return &Server{
		cfg:      cfg,
		dialogue: dialogue,
		sender:   sender,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Same-origin only unless explicitly opened up: other sites
				// must not be able to drive a chat session in the browser.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Memory Bridge is running!"))
	})
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/webhook", s.handleWebhook)
	r.Get("/v1/chat/ws", s.handleChatWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// handleWebhook accepts one Telegram update per request (push delivery).
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		respondError(w, http.StatusBadRequest, "invalid_request", "expected application/json")
		return
	}

	var upd telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	s.ProcessUpdate(r.Context(), upd)
	w.WriteHeader(http.StatusOK)
}

// ProcessUpdate routes one transport update through the dialogue controller
// and sends the reply. Shared by the webhook handler and the poller.
func (s *Server) ProcessUpdate(ctx context.Context, upd telegram.Update) {
	msg := upd.Message
	if msg == nil || strings.TrimSpace(msg.Text) == "" {
		return
	}

	userID := strconv.FormatInt(msg.Chat.ID, 10)
	hint := ""
	if msg.From != nil {
		userID = strconv.FormatInt(msg.From.ID, 10)
		hint = msg.From.LanguageCode
	}

	var reply string
	if isCommand(msg.Text, "start") || isCommand(msg.Text, "help") {
		reply, _ = s.dialogue.Welcome(ctx, userID, hint, msg.Text)
	} else {
		reply, _ = s.dialogue.HandleMessage(ctx, userID, msg.Text)
	}

	if s.sender == nil {
		return
	}
	if err := s.sender.SendMessage(ctx, msg.Chat.ID, reply); err != nil {
		log.Printf("[httpapi] send reply to chat %d failed: %v", msg.Chat.ID, err)
	}
}

func isCommand(text, name string) bool {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/"+name) {
		return false
	}
	rest := text[len(name)+1:]
	return rest == "" || strings.HasPrefix(rest, " ") || strings.HasPrefix(rest, "@")
}

type chatFrame struct {
	UserID string `json:"user_id,omitempty"`
	Text   string `json:"text"`
}

type replyFrame struct {
	Reply  string      `json:"reply"`
	Locale lang.Locale `json:"locale"`
}

// handleChatWS is a developer transport: a websocket speaking
// {user_id?, text} in and {reply, locale} out, so the core can be exercised
// without Telegram credentials.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// A connection without an explicit user gets a throwaway identity.
	connUser := uuid.NewString()

	for {
		var frame chatFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[httpapi] chat ws read failed: %v", err)
			}
			return
		}
		if strings.TrimSpace(frame.Text) == "" {
			continue
		}

		userID := strings.TrimSpace(frame.UserID)
		if userID == "" {
			userID = connUser
		}

		reply, locale := s.dialogue.HandleMessage(r.Context(), userID, frame.Text)
		if err := conn.WriteJSON(replyFrame{Reply: reply, Locale: locale}); err != nil {
			log.Printf("[httpapi] chat ws write failed: %v", err)
			return
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
