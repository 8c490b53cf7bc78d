package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"assistantchat/internal/config"
)

// Client is a minimal REST wrapper over the upstream Assistants API. It
// carries the credential and base URL explicitly; no package-level state.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a client from explicit configuration.
func NewClient(cfg config.AssistantConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// CreateThread provisions a new conversation context upstream.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	var thread threadObject
	if err := c.do(ctx, http.MethodPost, "/threads", struct{}{}, &thread); err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return thread.ID, nil
}

// CreateThreadMessage appends a message to a thread.
func (c *Client) CreateThreadMessage(ctx context.Context, threadID, role, content string) error {
	path := fmt.Sprintf("/threads/%s/messages", url.PathEscape(threadID))
	req := createMessageRequest{Role: role, Content: content}
	if err := c.do(ctx, http.MethodPost, path, req, nil); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// CreateRun asks the upstream service to produce the next assistant message.
func (c *Client) CreateRun(ctx context.Context, threadID, assistantID string) (runObject, error) {
	var run runObject
	path := fmt.Sprintf("/threads/%s/runs", url.PathEscape(threadID))
	if err := c.do(ctx, http.MethodPost, path, createRunRequest{AssistantID: assistantID}, &run); err != nil {
		return runObject{}, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

// RetrieveRun fetches the current state of a run.
func (c *Client) RetrieveRun(ctx context.Context, threadID, runID string) (runObject, error) {
	var run runObject
	path := fmt.Sprintf("/threads/%s/runs/%s", url.PathEscape(threadID), url.PathEscape(runID))
	if err := c.do(ctx, http.MethodGet, path, nil, &run); err != nil {
		return runObject{}, fmt.Errorf("retrieve run: %w", err)
	}
	return run, nil
}

// LatestMessage returns the most recent message in a thread.
func (c *Client) LatestMessage(ctx context.Context, threadID string) (messageObject, error) {
	var list messageList
	path := fmt.Sprintf("/threads/%s/messages?order=desc&limit=1", url.PathEscape(threadID))
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return messageObject{}, fmt.Errorf("list messages: %w", err)
	}
	if len(list.Data) == 0 {
		return messageObject{}, ErrNoAssistantReply
	}
	return list.Data[0], nil
}

// RetrieveAssistant validates that an assistant id exists upstream.
func (c *Client) RetrieveAssistant(ctx context.Context, assistantID string) (assistantObject, error) {
	var out assistantObject
	path := "/assistants/" + url.PathEscape(assistantID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return assistantObject{}, fmt.Errorf("retrieve assistant: %w", err)
	}
	return out, nil
}

// CreateAssistant provisions a new assistant configuration upstream.
func (c *Client) CreateAssistant(ctx context.Context, req createAssistantRequest) (assistantObject, error) {
	var out assistantObject
	if err := c.do(ctx, http.MethodPost, "/assistants", req, &out); err != nil {
		return assistantObject{}, fmt.Errorf("create assistant: %w", err)
	}
	return out, nil
}

// UpdateAssistantFiles replaces the assistant's code interpreter file set.
func (c *Client) UpdateAssistantFiles(ctx context.Context, assistantID string, fileIDs []string) error {
	path := "/assistants/" + url.PathEscape(assistantID)
	req := updateAssistantRequest{
		ToolResources: &toolResources{
			CodeInterpreter: &codeInterpreterResources{FileIDs: fileIDs},
		},
	}
	if err := c.do(ctx, http.MethodPost, path, req, nil); err != nil {
		return fmt.Errorf("update assistant files: %w", err)
	}
	return nil
}

// UploadFile streams a blob to the upstream file store tagged for assistant
// use and returns its opaque id.
func (c *Client) UploadFile(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("purpose", "assistants"); err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &body)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.setAuthHeaders(req)

	var file fileObject
	if err := c.send(req, &file); err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	return file.ID, nil
}

// do issues a JSON request against the upstream API and decodes the response
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuthHeaders(req)

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, respBytes)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")
}

func decodeAPIError(status int, body []byte) error {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return &APIError{
			Status:  status,
			Type:    envelope.Error.Type,
			Code:    envelope.Error.Code,
			Message: envelope.Error.Message,
		}
	}
	return &APIError{Status: status, Message: strings.TrimSpace(string(body))}
}
