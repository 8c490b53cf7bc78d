package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"assistantchat/internal/config"
	chatmodel "assistantchat/internal/model/chat"
)

const (
	defaultAssistantName         = "Chat Assistant"
	defaultAssistantDescription  = "A helpful chat assistant that can write code and process files"
	defaultAssistantInstructions = `You are a helpful and knowledgeable assistant that excels at:
1. Providing clear and concise responses
2. Writing and explaining code
3. Analyzing and processing files
4. Maintaining context throughout conversations
Always format code blocks properly and explain your reasoning.`
)

// Service orchestrates conversations against the upstream assistant API:
// ensure an assistant exists, create threads, submit user turns, and wait
// for runs to finish.
type Service struct {
	client *Client
	cfg    config.AssistantConfig

	mu          sync.Mutex
	assistantID string
	fileIDs     []string
}

// NewService wires a gateway service from explicit configuration. Zero
// polling values fall back to the config defaults.
func NewService(cfg config.AssistantConfig) *Service {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 120 * time.Second
	}
	return &Service{
		client:      NewClient(cfg),
		cfg:         cfg,
		assistantID: cfg.AssistantID,
	}
}

// EnsureAssistant returns a validated assistant id, creating one upstream
// when none is configured or the configured id no longer exists. The result
// is cached for the process lifetime; operators should persist a freshly
// created id via ASSISTANT_ID for reuse.
func (s *Service) EnsureAssistant(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureAssistantLocked(ctx)
}

func (s *Service) ensureAssistantLocked(ctx context.Context) (string, error) {
	if s.assistantID != "" {
		if _, err := s.client.RetrieveAssistant(ctx, s.assistantID); err == nil {
			return s.assistantID, nil
		} else if !isNotFound(err) {
			return "", err
		}
		log.Printf("[assistant] configured assistant %s not found, creating a new one", s.assistantID)
		s.assistantID = ""
	}

	created, err := s.client.CreateAssistant(ctx, createAssistantRequest{
		Model:        s.cfg.Model,
		Name:         defaultAssistantName,
		Description:  defaultAssistantDescription,
		Instructions: defaultAssistantInstructions,
		Tools:        []tool{{Type: "code_interpreter"}},
		Temperature:  0.7,
	})
	if err != nil {
		return "", err
	}

	log.Printf("[assistant] created assistant %s (set ASSISTANT_ID to reuse it)", created.ID)
	s.assistantID = created.ID
	return s.assistantID, nil
}

// NewConversation creates a fresh upstream conversation context and returns
// its opaque identifier.
func (s *Service) NewConversation(ctx context.Context) (string, error) {
	return s.client.CreateThread(ctx)
}

// Submit appends the user message to the conversation and starts a run.
func (s *Service) Submit(ctx context.Context, conversationID, message string) (string, error) {
	assistantID, err := s.EnsureAssistant(ctx)
	if err != nil {
		return "", err
	}

	if err := s.client.CreateThreadMessage(ctx, conversationID, chatmodel.RoleUser, message); err != nil {
		return "", err
	}

	run, err := s.client.CreateRun(ctx, conversationID, assistantID)
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

// AwaitResult polls the run at the configured interval until it reaches a
// terminal state, then returns the latest assistant message body. The wait is
// bounded: a run still non-terminal at the deadline yields ErrRunTimeout, and
// caller cancellation propagates. The upstream run itself is not cancelled.
func (s *Service) AwaitResult(ctx context.Context, conversationID, runID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		run, err := s.client.RetrieveRun(ctx, conversationID, runID)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return "", fmt.Errorf("%w after %s", ErrRunTimeout, s.cfg.RunTimeout)
			}
			return "", err
		}

		if run.Status.Terminal() {
			if !run.Status.Succeeded() {
				return "", runFailure(run)
			}
			return s.latestReply(ctx, conversationID)
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return "", fmt.Errorf("%w after %s", ErrRunTimeout, s.cfg.RunTimeout)
			}
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// Ask is the full turn: reuse or create the conversation, submit the
// message, and wait for the reply. The returned conversation id must be
// round-tripped unchanged by the caller to continue the same context.
func (s *Service) Ask(ctx context.Context, conversationID, message string) (reply, convID string, err error) {
	if conversationID == "" {
		conversationID, err = s.NewConversation(ctx)
		if err != nil {
			return "", "", err
		}
	}

	runID, err := s.Submit(ctx, conversationID, message)
	if err != nil {
		return "", conversationID, err
	}

	reply, err = s.AwaitResult(ctx, conversationID, runID)
	return reply, conversationID, err
}

// AttachFile uploads a blob for assistant use and attaches it to the active
// assistant configuration, returning the opaque file id.
func (s *Service) AttachFile(ctx context.Context, filename string, r io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	assistantID, err := s.ensureAssistantLocked(ctx)
	if err != nil {
		return "", err
	}

	fileID, err := s.client.UploadFile(ctx, filename, r)
	if err != nil {
		return "", err
	}

	fileIDs := append(append([]string(nil), s.fileIDs...), fileID)
	if err := s.client.UpdateAssistantFiles(ctx, assistantID, fileIDs); err != nil {
		return "", err
	}

	s.fileIDs = fileIDs
	return fileID, nil
}

func (s *Service) latestReply(ctx context.Context, conversationID string) (string, error) {
	msg, err := s.client.LatestMessage(ctx, conversationID)
	if err != nil {
		return "", err
	}
	if msg.Role != chatmodel.RoleAssistant {
		return "", ErrNoAssistantReply
	}
	return msg.Text(), nil
}

func runFailure(run runObject) error {
	failure := &RunError{Status: run.Status}
	if run.LastError != nil {
		failure.Code = run.LastError.Code
		failure.Message = run.LastError.Message
	}
	return failure
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
