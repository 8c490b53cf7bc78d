package chat

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	chatmodel "assistantchat/internal/model/chat"
)

var ErrConversationNotFound = errors.New("conversation not found")

// Registry tracks conversation identifiers this process has seen. It is
// purely observational: ids and turn counters, never message bodies. The
// upstream service owns all conversation state.
type Registry struct {
	mu    sync.RWMutex
	items map[string]chatmodel.Conversation
}

// NewRegistry bootstraps an empty in-memory registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]chatmodel.Conversation)}
}

// Touch records one completed turn on a conversation, registering it first
// when unseen.
func (r *Registry) Touch(_ context.Context, conversationID string) chatmodel.Conversation {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.items[conversationID]
	if !ok {
		conv = chatmodel.Conversation{ID: conversationID, CreatedAt: now}
	}
	conv.Turns++
	conv.LastActiveAt = now
	r.items[conversationID] = conv
	return conv
}

// Get retrieves a tracked conversation by identifier.
func (r *Registry) Get(_ context.Context, conversationID string) (chatmodel.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.items[conversationID]
	if !ok {
		return chatmodel.Conversation{}, ErrConversationNotFound
	}
	return conv, nil
}

// List returns tracked conversations, most recently active first.
func (r *Registry) List(_ context.Context) []chatmodel.Conversation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]chatmodel.Conversation, 0, len(r.items))
	for _, conv := range r.items {
		out = append(out, conv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastActiveAt.Equal(out[j].LastActiveAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].LastActiveAt.After(out[j].LastActiveAt)
	})
	return out
}
