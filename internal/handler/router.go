package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"assistantchat/internal/config"
	chathandler "assistantchat/internal/handler/chat"
	uploadhandler "assistantchat/internal/handler/upload"
	wshandler "assistantchat/internal/handler/ws"
	middlewarePkg "assistantchat/internal/middleware"
	"assistantchat/internal/service/assistant"
	chatservice "assistantchat/internal/service/chat"
	"assistantchat/web"
)

// NewRouter wires HTTP routes to core services. assistantSvc may be nil when
// the upstream credential is missing; affected routes answer 503.
func NewRouter(assistantSvc *assistant.Service, registry *chatservice.Registry, uploadCfg config.UploadConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chathandler.New(assistantSvc, registry)
	uploadHandler := uploadhandler.New(assistantSvc, uploadCfg)
	wsHandler := wshandler.New(assistantSvc, registry)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		uploadHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/*", http.FileServer(http.FS(web.Assets)))

	return r
}
