// Package chat exposes the messaging webhook endpoints.
package chat

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/superparty/callcenter/internal/service/dispatcher"
	"github.com/superparty/callcenter/internal/transport"
	"github.com/superparty/callcenter/pkg/utils"
)

// Handler serves the chat webhooks.
type Handler struct {
	dispatcher *dispatcher.Service
	log        zerolog.Logger
}

// New creates the chat webhook handler.
func New(d *dispatcher.Service, log zerolog.Logger) *Handler {
	return &Handler{
		dispatcher: d,
		log:        log.With().Str("component", "chat-handler").Logger(),
	}
}

// RegisterRoutes mounts the chat endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/whatsapp/incoming", h.handleIncoming)
	r.Post("/whatsapp/status", h.handleStatus)
}

func (h *Handler) handleIncoming(w http.ResponseWriter, r *http.Request) {
	ev := dispatcher.ChatEvent{
		MessageSID:  r.PostFormValue("MessageSid"),
		From:        r.PostFormValue("From"),
		Body:        r.PostFormValue("Body"),
		ProfileName: r.PostFormValue("ProfileName"),
	}
	if ev.From == "" || ev.Body == "" {
		utils.RespondError(w, http.StatusBadRequest, "From and Body are required")
		return
	}
	h.log.Info().Str("from", ev.From).Msg("incoming chat message")

	if err := h.dispatcher.HandleChatInbound(r.Context(), ev); err != nil {
		h.log.Error().Err(err).Str("from", ev.From).Msg("chat dispatch failed")
		status := http.StatusInternalServerError
		if errors.Is(err, transport.ErrSendFailed) {
			status = http.StatusBadGateway
		}
		utils.RespondError(w, status, "chat dispatch failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	messageSID := r.PostFormValue("MessageSid")
	status := r.PostFormValue("MessageStatus")
	if messageSID == "" {
		utils.RespondError(w, http.StatusBadRequest, "MessageSid is required")
		return
	}

	if err := h.dispatcher.HandleChatStatus(r.Context(), messageSID, status); err != nil {
		h.log.Error().Err(err).Str("message", messageSID).Msg("delivery status update failed")
		utils.RespondError(w, http.StatusInternalServerError, "status update failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
