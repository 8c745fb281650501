// Package dispatcher orchestrates inbound transport events end to end:
// voice events through the IVR controller, chat events through conversation
// resolution and intent classification, with durable records in the ledger.
package dispatcher

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/superparty/callcenter/internal/callflow"
	"github.com/superparty/callcenter/internal/events"
	"github.com/superparty/callcenter/internal/ledger"
	"github.com/superparty/callcenter/internal/model/call"
	"github.com/superparty/callcenter/internal/model/conversation"
	"github.com/superparty/callcenter/internal/service/classifier"
	"github.com/superparty/callcenter/internal/service/resolver"
	"github.com/superparty/callcenter/internal/transport"
)

// VoiceEvent is an inbound voice webhook payload.
type VoiceEvent struct {
	CallID string
	From   string
	To     string
	Digits string
}

// StatusEvent reports a lifecycle update for a call.
type StatusEvent struct {
	CallID          string
	Status          call.Status
	DurationSeconds int
}

// ChatEvent is an inbound chat webhook payload.
type ChatEvent struct {
	MessageSID  string
	From        string
	Body        string
	ProfileName string
}

// Service coordinates the per-event pipeline. Each Handle* call is one
// independent request-scoped invocation; failures never leak across events.
type Service struct {
	ledger     *ledger.Client
	resolver   *resolver.Service
	classifier *classifier.Service
	controller *callflow.Controller
	messenger  transport.Messenger
	bus        *events.Bus
	log        zerolog.Logger
}

// New wires the dispatcher with its collaborators.
func New(
	client *ledger.Client,
	res *resolver.Service,
	cls *classifier.Service,
	ctrl *callflow.Controller,
	messenger transport.Messenger,
	bus *events.Bus,
	log zerolog.Logger,
) *Service {
	return &Service{
		ledger:     client,
		resolver:   res,
		classifier: cls,
		controller: ctrl,
		messenger:  messenger,
		bus:        bus,
		log:        log.With().Str("component", "dispatcher").Logger(),
	}
}

// HandleVoiceInbound records the call attempt and returns the greeting
// directive. The call log append is best effort: a ledger outage must not
// keep the caller from hearing the menu.
func (s *Service) HandleVoiceInbound(ctx context.Context, ev VoiceEvent) transport.Response {
	session := call.Session{
		CallID:    ev.CallID,
		From:      ev.From,
		To:        ev.To,
		Menu:      call.StateGreeting,
		Status:    call.StatusRinging,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.ledger.AppendCall(ctx, session); err != nil {
		s.log.Warn().Err(err).Str("call", ev.CallID).Msg("call log append failed")
	}

	s.bus.Publish(events.TypeCallIncoming, map[string]string{"call": ev.CallID, "from": ev.From})
	return s.controller.Greeting()
}

// HandleVoiceMenu resolves the caller's digit to a route, records the
// Greeting→Routed transition and returns the transfer directive.
func (s *Service) HandleVoiceMenu(ctx context.Context, ev VoiceEvent) transport.Response {
	route, directive := s.controller.Route(ev.Digits)

	if err := s.recordRouted(ctx, ev.CallID); err != nil {
		s.log.Warn().Err(err).Str("call", ev.CallID).Msg("route record failed")
	}

	s.bus.Publish(events.TypeCallRouted, map[string]string{
		"call":   ev.CallID,
		"digit":  ev.Digits,
		"target": route.Target,
	})
	return directive
}

func (s *Service) recordRouted(ctx context.Context, callID string) error {
	row, found, err := s.ledger.FindCall(ctx, callID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("call %s not in ledger", callID)
	}
	if row.Session.Menu == call.StateGreeting {
		row.Session.Menu = call.StateRouted
	}
	return s.ledger.UpdateCall(ctx, row)
}

// HandleVoiceStatus folds a lifecycle status event into the call session.
// There is no caller-facing response to protect; a store failure surfaces
// so the transport can retry the callback.
func (s *Service) HandleVoiceStatus(ctx context.Context, ev StatusEvent) error {
	row, found, err := s.ledger.FindCall(ctx, ev.CallID)
	if err != nil {
		return fmt.Errorf("voice status for %s: %w", ev.CallID, err)
	}
	if !found {
		s.log.Warn().Str("call", ev.CallID).Msg("status for unknown call, dropped")
		return nil
	}

	callflow.ApplyStatus(&row.Session, ev.Status, ev.DurationSeconds)
	if err := s.ledger.UpdateCall(ctx, row); err != nil {
		return fmt.Errorf("voice status for %s: %w", ev.CallID, err)
	}

	s.bus.Publish(events.TypeCallStatus, map[string]string{
		"call":     ev.CallID,
		"status":   string(ev.Status),
		"duration": strconv.Itoa(ev.DurationSeconds),
	})
	return nil
}

// HandleChatInbound runs the chat pipeline in order: record the inbound
// message, resolve the conversation, classify, send the reply, then record
// the outbound message and the classification. An early ledger failure
// aborts the rest of this event; a send failure surfaces with the inbound
// message and classification left in place.
func (s *Service) HandleChatInbound(ctx context.Context, ev ChatEvent) error {
	inbound := conversation.Message{
		ID:        ev.MessageSID,
		Timestamp: time.Now().UTC(),
		Direction: conversation.DirectionInbound,
		Channel:   conversation.ChannelChat,
		Body:      ev.Body,
	}
	if inbound.ID == "" {
		inbound.ID = uuid.NewString()
	}
	if err := s.ledger.AppendMessage(ctx, inbound); err != nil {
		return fmt.Errorf("record inbound message %s: %w", inbound.ID, err)
	}
	s.bus.Publish(events.TypeChatInbound, map[string]string{"customer": ev.From, "message": inbound.ID})

	conversationID, err := s.resolver.Resolve(ctx, ev.From, ev.ProfileName)
	if err != nil {
		return err
	}

	result := s.classifier.Classify(ctx, ev.Body, s.customerContext(ctx, ev.From))
	result.MessageID = inbound.ID

	// Persist the classification before the send so a rejected send still
	// leaves a complete record of what we decided.
	if err := s.ledger.AppendClassification(ctx, uuid.NewString(), result); err != nil {
		s.log.Warn().Err(err).Str("message", inbound.ID).Msg("classification record failed")
	}

	sid, err := s.messenger.Send(ctx, ev.From, result.Reply)
	if err != nil {
		return fmt.Errorf("reply to %s: %w", ev.From, err)
	}

	outbound := conversation.Message{
		ID:             sid,
		ConversationID: conversationID,
		Timestamp:      time.Now().UTC(),
		Direction:      conversation.DirectionOutbound,
		Channel:        conversation.ChannelChat,
		Body:           result.Reply,
	}
	if outbound.ID == "" {
		outbound.ID = uuid.NewString()
	}
	if err := s.ledger.AppendMessage(ctx, outbound); err != nil {
		s.log.Warn().Err(err).Str("message", outbound.ID).Msg("outbound message record failed")
	}

	s.bus.Publish(events.TypeChatReplied, map[string]string{
		"customer":     ev.From,
		"conversation": conversationID,
		"intent":       string(result.Label),
	})
	return nil
}

// HandleChatStatus backfills delivery status on the matching message.
func (s *Service) HandleChatStatus(ctx context.Context, messageSID, status string) error {
	if err := s.ledger.UpdateMessageStatus(ctx, messageSID, status); err != nil {
		return fmt.Errorf("chat status for %s: %w", messageSID, err)
	}
	s.bus.Publish(events.TypeChatStatus, map[string]string{"message": messageSID, "status": status})
	return nil
}

// customerContext summarizes the customer profile for the classifier
// prompt. Profile lookup is best effort: an unreachable ledger reads as a
// new customer, matching how an agent would proceed without history.
func (s *Service) customerContext(ctx context.Context, customerID string) string {
	profile, found, err := s.ledger.CustomerProfile(ctx, customerID)
	if err != nil {
		s.log.Warn().Err(err).Str("customer", customerID).Msg("profile lookup failed")
		return classifier.CustomerContext(ledger.Profile{}, false)
	}
	return classifier.CustomerContext(profile, found)
}
