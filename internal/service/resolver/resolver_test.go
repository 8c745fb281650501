package resolver_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superparty/callcenter/internal/ledger"
	"github.com/superparty/callcenter/internal/model/conversation"
	"github.com/superparty/callcenter/internal/service/resolver"
)

type downStore struct{}

func (downStore) Append(context.Context, string, ledger.Row) error {
	return fmt.Errorf("%w: connection refused", ledger.ErrStoreUnavailable)
}

func (downStore) Query(context.Context, string) ([]ledger.Row, error) {
	return nil, fmt.Errorf("%w: connection refused", ledger.ErrStoreUnavailable)
}

func (downStore) Update(context.Context, string, int, ledger.Row) error {
	return fmt.Errorf("%w: connection refused", ledger.ErrStoreUnavailable)
}

func newResolver() (*resolver.Service, *ledger.Client) {
	client := ledger.NewClient(ledger.NewMemoryStore())
	return resolver.New(client, zerolog.Nop()), client
}

func activeConversations(t *testing.T, client *ledger.Client, customerID string) []ledger.ConversationRow {
	t.Helper()
	rows, err := client.ConversationsByCustomer(context.Background(), customerID)
	require.NoError(t, err)
	var active []ledger.ConversationRow
	for _, row := range rows {
		if row.Conversation.Status == conversation.StatusActive {
			active = append(active, row)
		}
	}
	return active
}

func TestResolveCreatesOnFirstContact(t *testing.T) {
	svc, client := newResolver()

	id, err := svc.Resolve(context.Background(), "+40711", "Ana")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	active := activeConversations(t, client, "+40711")
	require.Len(t, active, 1)
	assert.Equal(t, id, active[0].Conversation.ID)
	assert.Equal(t, "Ana", active[0].Conversation.DisplayName)
}

func TestResolveIsIdempotent(t *testing.T) {
	svc, client := newResolver()
	ctx := context.Background()

	first, err := svc.Resolve(ctx, "+40711", "Ana")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := svc.Resolve(ctx, "+40711", "Ana")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	require.Len(t, activeConversations(t, client, "+40711"), 1)
}

func TestResolveBumpsActivityOnRepeatContact(t *testing.T) {
	svc, client := newResolver()
	ctx := context.Background()

	_, err := svc.Resolve(ctx, "+40711", "Ana")
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, "+40711", "Ana")
	require.NoError(t, err)

	active := activeConversations(t, client, "+40711")
	require.Len(t, active, 1)
	assert.Equal(t, 2, active[0].Conversation.MessageCount)
}

func TestConcurrentResolveConvergesOnOneConversation(t *testing.T) {
	svc, client := newResolver()
	ctx := context.Background()

	const workers = 16
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := svc.Resolve(ctx, "+40733", "")
			if err != nil {
				t.Errorf("resolve: %v", err)
				return
			}
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	require.Len(t, activeConversations(t, client, "+40733"), 1)
}

func TestResolvePrefersEarliestActiveRow(t *testing.T) {
	svc, client := newResolver()
	ctx := context.Background()
	now := time.Now().UTC()

	// Simulate a duplicate left behind by a concurrent writer elsewhere.
	for _, id := range []string{"c-early", "c-late"} {
		require.NoError(t, client.AppendConversation(ctx, conversation.Conversation{
			ID: id, CustomerID: "+40744", Status: conversation.StatusActive,
			CreatedAt: now, LastActivity: now, MessageCount: 1,
		}))
	}

	id, err := svc.Resolve(ctx, "+40744", "")
	require.NoError(t, err)
	assert.Equal(t, "c-early", id)
}

func TestReconcileClosesDuplicates(t *testing.T) {
	svc, client := newResolver()
	ctx := context.Background()
	now := time.Now().UTC()

	for _, id := range []string{"c-early", "c-late", "c-later"} {
		require.NoError(t, client.AppendConversation(ctx, conversation.Conversation{
			ID: id, CustomerID: "+40755", Status: conversation.StatusActive,
			CreatedAt: now, LastActivity: now, MessageCount: 1,
		}))
	}

	require.NoError(t, svc.Reconcile(ctx, "+40755"))
	require.NoError(t, svc.Reconcile(ctx, "+40755")) // idempotent

	active := activeConversations(t, client, "+40755")
	require.Len(t, active, 1)
	assert.Equal(t, "c-early", active[0].Conversation.ID)
}

func TestResolveSurfacesStoreOutage(t *testing.T) {
	svc := resolver.New(ledger.NewClient(downStore{}), zerolog.Nop())

	_, err := svc.Resolve(context.Background(), "+40711", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrStoreUnavailable))
}
