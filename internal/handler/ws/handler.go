package ws

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"assistantchat/internal/service/assistant"
	chatservice "assistantchat/internal/service/chat"
)

// Handler serves the chat contract over a WebSocket connection: one reply
// frame per inbound chat frame, same semantics as the SSE endpoint.
type Handler struct {
	assistantSvc *assistant.Service
	registry     *chatservice.Registry
	upgrader     websocket.Upgrader
}

// New creates the WebSocket chat handler.
func New(assistantSvc *assistant.Service, registry *chatservice.Registry) *Handler {
	return &Handler{
		assistantSvc: assistantSvc,
		registry:     registry,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the WebSocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundFrame struct {
	Type           string `json:"type"`
	Message        string `json:"message,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
}

type outboundFrame struct {
	Type           string `json:"type"`
	Content        string `json:"content,omitempty"`
	Error          string `json:"error,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	Timestamp      int64  `json:"timestamp"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	log.Printf("[ws] connection %s opened", connID)
	defer log.Printf("[ws] connection %s closed", connID)

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] connection %s read error: %v", connID, err)
			}
			return
		}

		switch frame.Type {
		case "ping":
			h.write(conn, connID, outboundFrame{Type: "pong"})
		case "chat":
			h.write(conn, connID, h.handleChatFrame(r.Context(), frame))
		default:
			h.write(conn, connID, outboundFrame{Type: "error", Error: "unknown frame type: " + frame.Type})
		}
	}
}

func (h *Handler) handleChatFrame(ctx context.Context, frame inboundFrame) outboundFrame {
	if h.assistantSvc == nil {
		return outboundFrame{Type: "error", Error: "assistant service unavailable"}
	}

	message := strings.TrimSpace(frame.Message)
	if message == "" {
		return outboundFrame{Type: "error", Error: "message is required", ConversationID: frame.ConversationID}
	}

	reply, conversationID, err := h.assistantSvc.Ask(ctx, frame.ConversationID, message)
	if err != nil {
		return outboundFrame{Type: "error", Error: err.Error(), ConversationID: conversationID}
	}

	h.registry.Touch(ctx, conversationID)
	return outboundFrame{Type: "reply", Content: reply, ConversationID: conversationID}
}

func (h *Handler) write(conn *websocket.Conn, connID string, frame outboundFrame) {
	frame.Timestamp = time.Now().UnixMilli()
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("[ws] connection %s write error: %v", connID, err)
	}
}
