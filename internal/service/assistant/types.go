package assistant

import chatmodel "assistantchat/internal/model/chat"

// Wire representations of the upstream Assistants v2 API. Only the fields
// this service reads or writes are modeled.

type assistantObject struct {
	ID            string         `json:"id"`
	Model         string         `json:"model,omitempty"`
	Name          string         `json:"name,omitempty"`
	ToolResources *toolResources `json:"tool_resources,omitempty"`
}

type createAssistantRequest struct {
	Model        string  `json:"model"`
	Name         string  `json:"name,omitempty"`
	Description  string  `json:"description,omitempty"`
	Instructions string  `json:"instructions,omitempty"`
	Tools        []tool  `json:"tools,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
}

type updateAssistantRequest struct {
	ToolResources *toolResources `json:"tool_resources,omitempty"`
}

type tool struct {
	Type string `json:"type"`
}

type toolResources struct {
	CodeInterpreter *codeInterpreterResources `json:"code_interpreter,omitempty"`
}

type codeInterpreterResources struct {
	FileIDs []string `json:"file_ids"`
}

type threadObject struct {
	ID string `json:"id"`
}

type createMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageObject struct {
	ID      string         `json:"id"`
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

// Text returns the concatenated text of the message's content blocks.
func (m messageObject) Text() string {
	var out string
	for _, block := range m.Content {
		if block.Type == "text" && block.Text != nil {
			out += block.Text.Value
		}
	}
	return out
}

type contentBlock struct {
	Type string     `json:"type"`
	Text *textBlock `json:"text,omitempty"`
}

type textBlock struct {
	Value string `json:"value"`
}

type messageList struct {
	Data []messageObject `json:"data"`
}

type createRunRequest struct {
	AssistantID string `json:"assistant_id"`
}

type runObject struct {
	ID        string              `json:"id"`
	ThreadID  string              `json:"thread_id"`
	Status    chatmodel.RunStatus `json:"status"`
	LastError *runLastError       `json:"last_error,omitempty"`
}

type runLastError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type fileObject struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Purpose  string `json:"purpose"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}
