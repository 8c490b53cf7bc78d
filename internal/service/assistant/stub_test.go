package assistant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	chatmodel "assistantchat/internal/model/chat"
)

// stubUpstream fakes the upstream assistant API in-process. Runs walk a
// scripted status sequence, one step per retrieve; once the script is
// exhausted the final status repeats.
type stubUpstream struct {
	mu sync.Mutex

	runScript []chatmodel.RunStatus
	runError  *runLastError
	replyText string

	assistants        map[string]bool
	threads           map[string][]createMessageRequest
	runs              map[string]*stubRun
	fileUpdates       [][]string
	createdAssistants int
	uploads           int

	server *httptest.Server
}

type stubRun struct {
	threadID string
	step     int
	replied  bool
}

func newStubUpstream() *stubUpstream {
	s := &stubUpstream{
		runScript:  []chatmodel.RunStatus{chatmodel.RunQueued, chatmodel.RunInProgress, chatmodel.RunCompleted},
		replyText:  "stubbed assistant reply",
		assistants: make(map[string]bool),
		threads:    make(map[string][]createMessageRequest),
		runs:       make(map[string]*stubRun),
	}

	r := chi.NewRouter()
	r.Post("/assistants", s.handleCreateAssistant)
	r.Get("/assistants/{assistantID}", s.handleRetrieveAssistant)
	r.Post("/assistants/{assistantID}", s.handleUpdateAssistant)
	r.Post("/threads", s.handleCreateThread)
	r.Post("/threads/{threadID}/messages", s.handleCreateMessage)
	r.Get("/threads/{threadID}/messages", s.handleListMessages)
	r.Post("/threads/{threadID}/runs", s.handleCreateRun)
	r.Get("/threads/{threadID}/runs/{runID}", s.handleRetrieveRun)
	r.Post("/files", s.handleUploadFile)

	s.server = httptest.NewServer(r)
	return s
}

func (s *stubUpstream) Close() { s.server.Close() }

func (s *stubUpstream) URL() string { return s.server.URL }

func (s *stubUpstream) messages(threadID string) []createMessageRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]createMessageRequest(nil), s.threads[threadID]...)
}

func (s *stubUpstream) handleCreateAssistant(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := "asst_" + uuid.NewString()
	s.assistants[id] = true
	s.createdAssistants++
	writeStubJSON(w, http.StatusOK, assistantObject{ID: id})
}

func (s *stubUpstream) handleRetrieveAssistant(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := chi.URLParam(r, "assistantID")
	if !s.assistants[id] {
		writeStubError(w, http.StatusNotFound, "No assistant found with id '"+id+"'.")
		return
	}
	writeStubJSON(w, http.StatusOK, assistantObject{ID: id})
}

func (s *stubUpstream) handleUpdateAssistant(w http.ResponseWriter, r *http.Request) {
	var req updateAssistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStubError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := chi.URLParam(r, "assistantID")
	if !s.assistants[id] {
		writeStubError(w, http.StatusNotFound, "No assistant found with id '"+id+"'.")
		return
	}
	if req.ToolResources != nil && req.ToolResources.CodeInterpreter != nil {
		s.fileUpdates = append(s.fileUpdates, req.ToolResources.CodeInterpreter.FileIDs)
	}
	writeStubJSON(w, http.StatusOK, assistantObject{ID: id})
}

func (s *stubUpstream) handleCreateThread(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := "thread_" + uuid.NewString()
	s.threads[id] = nil
	writeStubJSON(w, http.StatusOK, threadObject{ID: id})
}

func (s *stubUpstream) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	var req createMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStubError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	threadID := chi.URLParam(r, "threadID")
	if _, ok := s.threads[threadID]; !ok {
		writeStubError(w, http.StatusNotFound, "No thread found with id '"+threadID+"'.")
		return
	}
	s.threads[threadID] = append(s.threads[threadID], req)
	writeStubJSON(w, http.StatusOK, messageObject{ID: "msg_" + uuid.NewString(), Role: req.Role})
}

func (s *stubUpstream) handleListMessages(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	threadID := chi.URLParam(r, "threadID")
	msgs := s.threads[threadID]

	list := messageList{}
	for i := len(msgs) - 1; i >= 0; i-- {
		list.Data = append(list.Data, messageObject{
			ID:      "msg_" + uuid.NewString(),
			Role:    msgs[i].Role,
			Content: []contentBlock{{Type: "text", Text: &textBlock{Value: msgs[i].Content}}},
		})
	}
	writeStubJSON(w, http.StatusOK, list)
}

func (s *stubUpstream) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	threadID := chi.URLParam(r, "threadID")
	if _, ok := s.threads[threadID]; !ok {
		writeStubError(w, http.StatusNotFound, "No thread found with id '"+threadID+"'.")
		return
	}

	id := "run_" + uuid.NewString()
	s.runs[id] = &stubRun{threadID: threadID}
	writeStubJSON(w, http.StatusOK, runObject{ID: id, ThreadID: threadID, Status: s.runScript[0]})
}

func (s *stubUpstream) handleRetrieveRun(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID := chi.URLParam(r, "runID")
	run, ok := s.runs[runID]
	if !ok {
		writeStubError(w, http.StatusNotFound, "No run found with id '"+runID+"'.")
		return
	}

	status := s.runScript[run.step]
	if run.step < len(s.runScript)-1 {
		run.step++
	}

	out := runObject{ID: runID, ThreadID: run.threadID, Status: status}
	if status == chatmodel.RunCompleted && !run.replied {
		s.threads[run.threadID] = append(s.threads[run.threadID], createMessageRequest{
			Role:    chatmodel.RoleAssistant,
			Content: s.replyText,
		})
		run.replied = true
	}
	if !status.Succeeded() && status.Terminal() {
		out.LastError = s.runError
	}
	writeStubJSON(w, http.StatusOK, out)
}

func (s *stubUpstream) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeStubError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	if r.FormValue("purpose") != "assistants" {
		writeStubError(w, http.StatusBadRequest, "unexpected purpose")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeStubError(w, http.StatusBadRequest, "missing file part")
		return
	}
	file.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	writeStubJSON(w, http.StatusOK, fileObject{ID: "file-" + uuid.NewString(), Filename: header.Filename, Purpose: "assistants"})
}

func writeStubJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeStubError(w http.ResponseWriter, status int, message string) {
	var envelope errorEnvelope
	envelope.Error.Message = message
	envelope.Error.Type = "invalid_request_error"
	writeStubJSON(w, status, envelope)
}
