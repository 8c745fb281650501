// Package voice exposes the telephony webhook endpoints. Every response
// is a directive document the provider executes against the live call.
package voice

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/superparty/callcenter/internal/model/call"
	"github.com/superparty/callcenter/internal/service/dispatcher"
	"github.com/superparty/callcenter/internal/transport"
	"github.com/superparty/callcenter/pkg/utils"
)

// Handler serves the voice webhooks.
type Handler struct {
	dispatcher *dispatcher.Service
	log        zerolog.Logger
}

// New creates the voice webhook handler.
func New(d *dispatcher.Service, log zerolog.Logger) *Handler {
	return &Handler{
		dispatcher: d,
		log:        log.With().Str("component", "voice-handler").Logger(),
	}
}

// RegisterRoutes mounts the voice endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/voice/incoming", h.handleIncoming)
	r.Post("/voice/menu", h.handleMenu)
	r.Post("/voice/status", h.handleStatus)
}

func (h *Handler) handleIncoming(w http.ResponseWriter, r *http.Request) {
	ev := dispatcher.VoiceEvent{
		CallID: r.PostFormValue("CallSid"),
		From:   r.PostFormValue("From"),
		To:     r.PostFormValue("To"),
	}
	h.log.Info().Str("call", ev.CallID).Str("from", ev.From).Msg("incoming call")

	h.respondDirective(w, h.dispatcher.HandleVoiceInbound(r.Context(), ev))
}

func (h *Handler) handleMenu(w http.ResponseWriter, r *http.Request) {
	ev := dispatcher.VoiceEvent{
		CallID: r.PostFormValue("CallSid"),
		From:   r.PostFormValue("From"),
		Digits: r.PostFormValue("Digits"),
	}
	h.log.Info().Str("call", ev.CallID).Str("digits", ev.Digits).Msg("menu selection")

	h.respondDirective(w, h.dispatcher.HandleVoiceMenu(r.Context(), ev))
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	duration, _ := strconv.Atoi(r.PostFormValue("CallDuration"))
	ev := dispatcher.StatusEvent{
		CallID:          r.PostFormValue("CallSid"),
		Status:          call.Status(r.PostFormValue("CallStatus")),
		DurationSeconds: duration,
	}

	if err := h.dispatcher.HandleVoiceStatus(r.Context(), ev); err != nil {
		h.log.Error().Err(err).Str("call", ev.CallID).Msg("status update failed")
		utils.RespondError(w, http.StatusInternalServerError, "status update failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondDirective(w http.ResponseWriter, directive transport.Response) {
	body, err := directive.Render()
	if err != nil {
		h.log.Error().Err(err).Msg("directive render failed")
		utils.RespondError(w, http.StatusInternalServerError, "directive render failed")
		return
	}
	utils.RespondXML(w, http.StatusOK, body)
}
