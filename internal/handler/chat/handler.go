package chat

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"assistantchat/internal/service/assistant"
	chatservice "assistantchat/internal/service/chat"
	"assistantchat/pkg/utils"
)

// Handler exposes the chat relay endpoint. Failures before the event stream
// is committed are plain JSON with an HTTP status; failures after commit are
// streamed as an error event carrying the conversation id.
type Handler struct {
	assistantSvc *assistant.Service
	registry     *chatservice.Registry
}

// New creates the chat handler.
func New(assistantSvc *assistant.Service, registry *chatservice.Registry) *Handler {
	return &Handler{
		assistantSvc: assistantSvc,
		registry:     registry,
	}
}

// RegisterRoutes mounts the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/conversations", h.handleListConversations)
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

// chatEvent is the single server-pushed event per request. Exactly one of
// Content or Error is set.
type chatEvent struct {
	Content        string `json:"content,omitempty"`
	Error          string `json:"error,omitempty"`
	ConversationID string `json:"conversation_id"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if h.assistantSvc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "assistant service unavailable")
		return
	}

	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message := strings.TrimSpace(payload.Message)
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx := r.Context()

	// Resolve the conversation before committing the stream so that creation
	// failures can still use a real HTTP status.
	conversationID := payload.ConversationID
	if conversationID == "" {
		created, err := h.assistantSvc.NewConversation(ctx)
		if err != nil {
			log.Printf("[chat] failed to create conversation: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		conversationID = created
	}

	utils.SetupSSEHeaders(w)

	reply, conversationID, err := h.assistantSvc.Ask(ctx, conversationID, message)
	if err != nil {
		log.Printf("[chat] run failed for conversation=%s: %v", conversationID, err)
		h.sendEvent(w, flusher, chatEvent{Error: err.Error(), ConversationID: conversationID})
		return
	}

	h.registry.Touch(ctx, conversationID)
	h.sendEvent(w, flusher, chatEvent{Content: reply, ConversationID: conversationID})
}

func (h *Handler) handleListConversations(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.registry.List(r.Context()))
}

func (h *Handler) sendEvent(w http.ResponseWriter, flusher http.Flusher, event chatEvent) {
	if err := utils.SendSSEChunk(w, flusher, event); err != nil {
		log.Printf("[chat] failed to push event: %v", err)
	}
}
