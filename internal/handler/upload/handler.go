package upload

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"assistantchat/internal/config"
	"assistantchat/internal/service/assistant"
	"assistantchat/pkg/utils"
)

// Handler relays uploaded files to the upstream assistant service.
type Handler struct {
	assistantSvc *assistant.Service
	maxBytes     int64
}

// New creates the file relay handler.
func New(assistantSvc *assistant.Service, cfg config.UploadConfig) *Handler {
	return &Handler{
		assistantSvc: assistantSvc,
		maxBytes:     cfg.MaxBytes,
	}
}

// RegisterRoutes mounts the upload route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/upload", h.handleUpload)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if h.assistantSvc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "assistant service unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondError(w, http.StatusRequestEntityTooLarge, "file exceeds upload limit")
			return
		}
		utils.RespondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	fileID, err := h.assistantSvc.AttachFile(r.Context(), header.Filename, file)
	if err != nil {
		log.Printf("[upload] relay failed for %s: %v", header.Filename, err)
		utils.RespondError(w, http.StatusBadGateway, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"file_id": fileID})
}
