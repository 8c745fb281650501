package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/superparty/callcenter/internal/events"
	chatHandler "github.com/superparty/callcenter/internal/handler/chat"
	eventsHandler "github.com/superparty/callcenter/internal/handler/events"
	voiceHandler "github.com/superparty/callcenter/internal/handler/voice"
	middlewarePkg "github.com/superparty/callcenter/internal/middleware"
	"github.com/superparty/callcenter/internal/service/dispatcher"
	"github.com/superparty/callcenter/pkg/utils"
)

// NewRouter wires the webhook endpoints and the live event feed.
func NewRouter(dispatcherSvc *dispatcher.Service, bus *events.Bus, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	voiceHandler.New(dispatcherSvc, log).RegisterRoutes(r)
	chatHandler.New(dispatcherSvc, log).RegisterRoutes(r)
	eventsHandler.New(bus, log).RegisterRoutes(r)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
