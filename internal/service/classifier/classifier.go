// Package classifier turns inbound chat messages into an intent label and
// a customer-facing reply, backed by an LLM with a deterministic fallback.
package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/superparty/callcenter/internal/ledger"
	"github.com/superparty/callcenter/internal/model/intent"
)

// FallbackReply is sent whenever the classifier service cannot produce a
// reply. The customer always hears back.
const FallbackReply = "Mulțumesc pentru mesaj! Un coleg vă va răspunde în curând."

// RuleConfidence is attached to rule-derived labels. It reflects "this
// label was pattern-matched", not model certainty.
const RuleConfidence = 0.85

const systemPrompt = "Ești asistentul SuperParty pentru evenimente copii. " +
	"Răspunde direct, prietenos, profesional, în română, și oferă următorii pași."

const userPrompt = "Context client:\n{context}\n\nMesaj nou: \"{query}\""

// Config tunes the classifier chain.
type Config struct {
	Model   string
	Timeout time.Duration
}

// Service classifies message intent through an LLM chain. Any failure of
// the chain, including a missing model, degrades to the fixed fallback
// result; Classify never returns an error.
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
	cfg   Config
	log   zerolog.Logger
}

// New compiles the prompt/model chain. chatModel may be nil when LLM
// credentials are absent; the service then always answers with the
// fallback reply.
func New(ctx context.Context, chatModel model.BaseChatModel, cfg Config, log zerolog.Logger) (*Service, error) {
	svc := &Service{
		cfg: cfg,
		log: log.With().Str("component", "classifier").Logger(),
	}
	if chatModel == nil {
		return svc, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile classifier chain: %w", err)
	}
	svc.chain = runnable
	return svc, nil
}

// CustomerContext summarizes prior interaction for the prompt, mirroring
// what a human agent would want to know before replying.
func CustomerContext(profile ledger.Profile, known bool) string {
	if !known {
		return "Client nou."
	}
	return fmt.Sprintf("Client cunoscut: %s, %d rezervări anterioare.", profile.Name, profile.PriorBookings)
}

// Classify produces an intent label, reply text and confidence for the
// message. The label is derived from the original customer message via the
// keyword rules, never from the model's reply. Classification is not
// idempotent and callers must not retry it for correctness.
func (s *Service) Classify(ctx context.Context, messageText, customerContext string) intent.Result {
	result := intent.Result{
		Model:     s.cfg.Model,
		Timestamp: time.Now().UTC(),
	}

	reply, err := s.generate(ctx, messageText, customerContext)
	if err != nil {
		s.log.Warn().Err(err).Msg("classification failed, using fallback")
		result.Label = intent.Fallback
		result.Confidence = 0
		result.Reply = FallbackReply
		result.Success = false
		return result
	}

	result.Label = DeriveLabel(messageText)
	result.Confidence = RuleConfidence
	result.Reply = reply
	result.Success = true
	return result
}

func (s *Service) generate(ctx context.Context, messageText, customerContext string) (string, error) {
	if s.chain == nil {
		return "", fmt.Errorf("no chat model configured")
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	msg, err := s.chain.Invoke(ctx, map[string]any{
		"context": customerContext,
		"query":   messageText,
	})
	if err != nil {
		return "", fmt.Errorf("invoke classifier chain: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("empty classifier response")
	}
	return msg.Content, nil
}
