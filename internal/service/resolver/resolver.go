// Package resolver maps customer identifiers onto logical conversations,
// guaranteeing at most one active conversation per customer.
package resolver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/superparty/callcenter/internal/ledger"
	"github.com/superparty/callcenter/internal/model/conversation"
)

// Service finds or creates the single active conversation for a customer.
//
// The backing store offers no transactions, so the check-then-append in
// Resolve is serialized through an in-process lock keyed by customer
// identifier. That closes the duplicate-conversation race for a single
// engine instance; multi-instance deployments additionally run Reconcile,
// which is idempotent and safe to repeat.
type Service struct {
	ledger *ledger.Client
	log    zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New builds a resolver on top of the ledger client.
func New(client *ledger.Client, log zerolog.Logger) *Service {
	return &Service{
		ledger: client,
		log:    log.With().Str("component", "resolver").Logger(),
		locks:  make(map[string]*sync.Mutex),
	}
}

// Resolve returns the identifier of the customer's active conversation,
// creating one on first contact. A ledger failure surfaces as an error
// wrapping ledger.ErrStoreUnavailable; no identifier is ever fabricated.
func (s *Service) Resolve(ctx context.Context, customerID, displayName string) (string, error) {
	lock := s.customerLock(customerID)
	lock.Lock()
	defer lock.Unlock()

	rows, err := s.ledger.ConversationsByCustomer(ctx, customerID)
	if err != nil {
		return "", fmt.Errorf("resolve conversation for %s: %w", customerID, err)
	}

	if row, ok := firstActive(rows); ok {
		s.touch(ctx, row)
		return row.Conversation.ID, nil
	}

	now := time.Now().UTC()
	conv := conversation.Conversation{
		ID:           uuid.NewString(),
		CustomerID:   customerID,
		DisplayName:  displayName,
		Status:       conversation.StatusActive,
		CreatedAt:    now,
		LastActivity: now,
		MessageCount: 1,
	}
	if err := s.ledger.AppendConversation(ctx, conv); err != nil {
		return "", fmt.Errorf("create conversation for %s: %w", customerID, err)
	}

	s.log.Info().Str("customer", customerID).Str("conversation", conv.ID).Msg("opened conversation")
	return conv.ID, nil
}

// Reconcile closes duplicate active conversations for the customer, keeping
// the earliest-created row as canonical. Running it repeatedly, or against a
// customer with no duplicates, is a no-op.
func (s *Service) Reconcile(ctx context.Context, customerID string) error {
	lock := s.customerLock(customerID)
	lock.Lock()
	defer lock.Unlock()

	rows, err := s.ledger.ConversationsByCustomer(ctx, customerID)
	if err != nil {
		return fmt.Errorf("reconcile conversations for %s: %w", customerID, err)
	}

	seen := false
	for _, row := range rows {
		if row.Conversation.Status != conversation.StatusActive {
			continue
		}
		if !seen {
			seen = true
			continue
		}
		row.Conversation.Status = conversation.StatusClosed
		if err := s.ledger.UpdateConversation(ctx, row); err != nil {
			return fmt.Errorf("close duplicate conversation %s: %w", row.Conversation.ID, err)
		}
		s.log.Warn().
			Str("customer", customerID).
			Str("conversation", row.Conversation.ID).
			Msg("closed duplicate active conversation")
	}
	return nil
}

// touch bumps activity bookkeeping on the canonical row. Best effort: a
// failed touch must not fail resolution.
func (s *Service) touch(ctx context.Context, row ledger.ConversationRow) {
	row.Conversation.LastActivity = time.Now().UTC()
	row.Conversation.MessageCount++
	if err := s.ledger.UpdateConversation(ctx, row); err != nil {
		s.log.Warn().Err(err).Str("conversation", row.Conversation.ID).Msg("touch failed")
	}
}

func (s *Service) customerLock(customerID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[customerID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[customerID] = lock
	}
	return lock
}

func firstActive(rows []ledger.ConversationRow) (ledger.ConversationRow, bool) {
	for _, row := range rows {
		if row.Conversation.Status == conversation.StatusActive {
			return row, true
		}
	}
	return ledger.ConversationRow{}, false
}
