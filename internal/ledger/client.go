package ledger

import (
	"context"
	"fmt"
	"strconv"

	"github.com/superparty/callcenter/internal/model/call"
	"github.com/superparty/callcenter/internal/model/conversation"
	"github.com/superparty/callcenter/internal/model/intent"
)

// Client exposes the ledger tables through entity types. It carries no
// business logic: find-or-create, reconciliation and retry decisions live
// in the services on top of it.
type Client struct {
	store Store
}

// NewClient wraps a raw tabular store.
func NewClient(store Store) *Client {
	return &Client{store: store}
}

// ConversationRow pairs a conversation with its position in the table so
// callers can overwrite it in place.
type ConversationRow struct {
	Index int
	conversation.Conversation
}

// CallRow pairs a call session with its table position.
type CallRow struct {
	Index int
	call.Session
}

// Profile is the read-only customer record maintained outside this engine.
type Profile struct {
	Phone         string
	Name          string
	PriorBookings int
}

// AppendConversation adds a new conversation row.
func (c *Client) AppendConversation(ctx context.Context, conv conversation.Conversation) error {
	return c.store.Append(ctx, TableConversations, marshalConversation(conv))
}

// ConversationsByCustomer returns every conversation row for the customer,
// in table order (earliest created first).
func (c *Client) ConversationsByCustomer(ctx context.Context, customerID string) ([]ConversationRow, error) {
	rows, err := c.store.Query(ctx, TableConversations)
	if err != nil {
		return nil, err
	}
	var out []ConversationRow
	for i, row := range rows {
		conv, err := unmarshalConversation(row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrStoreUnavailable, i, err)
		}
		if conv.CustomerID == customerID {
			out = append(out, ConversationRow{Index: i, Conversation: conv})
		}
	}
	return out, nil
}

// UpdateConversation overwrites a previously queried conversation row.
func (c *Client) UpdateConversation(ctx context.Context, row ConversationRow) error {
	return c.store.Update(ctx, TableConversations, row.Index, marshalConversation(row.Conversation))
}

// AppendMessage adds a message row.
func (c *Client) AppendMessage(ctx context.Context, m conversation.Message) error {
	return c.store.Append(ctx, TableMessages, marshalMessage(m))
}

// UpdateMessageStatus backfills the delivery status of the message with the
// given identifier. Unknown identifiers are ignored: status callbacks can
// outrun the append that records the message.
func (c *Client) UpdateMessageStatus(ctx context.Context, messageID, status string) error {
	rows, err := c.store.Query(ctx, TableMessages)
	if err != nil {
		return err
	}
	for i, row := range rows {
		m, err := unmarshalMessage(row)
		if err != nil {
			return fmt.Errorf("%w: row %d: %v", ErrStoreUnavailable, i, err)
		}
		if m.ID == messageID {
			m.DeliveryStatus = status
			return c.store.Update(ctx, TableMessages, i, marshalMessage(m))
		}
	}
	return nil
}

// AppendClassification stores one classification attempt under a fresh row id.
func (c *Client) AppendClassification(ctx context.Context, id string, r intent.Result) error {
	return c.store.Append(ctx, TableClassifications, marshalClassification(r, id))
}

// AppendCall adds a call session row.
func (c *Client) AppendCall(ctx context.Context, s call.Session) error {
	return c.store.Append(ctx, TableCalls, marshalCall(s))
}

// FindCall returns the session row for a call identifier, if recorded.
func (c *Client) FindCall(ctx context.Context, callID string) (CallRow, bool, error) {
	rows, err := c.store.Query(ctx, TableCalls)
	if err != nil {
		return CallRow{}, false, err
	}
	for i, row := range rows {
		s, err := unmarshalCall(row)
		if err != nil {
			return CallRow{}, false, fmt.Errorf("%w: row %d: %v", ErrStoreUnavailable, i, err)
		}
		if s.CallID == callID {
			return CallRow{Index: i, Session: s}, true, nil
		}
	}
	return CallRow{}, false, nil
}

// UpdateCall overwrites a previously queried call row.
func (c *Client) UpdateCall(ctx context.Context, row CallRow) error {
	return c.store.Update(ctx, TableCalls, row.Index, marshalCall(row.Session))
}

// CustomerProfile looks up the read-only customer record by phone number.
func (c *Client) CustomerProfile(ctx context.Context, phone string) (Profile, bool, error) {
	rows, err := c.store.Query(ctx, TableCustomers)
	if err != nil {
		return Profile{}, false, err
	}
	for _, row := range rows {
		if len(row) == 0 || row[0] != phone {
			continue
		}
		p := Profile{Phone: row[0]}
		if len(row) > 1 {
			p.Name = row[1]
		}
		if len(row) > 5 {
			if n, err := strconv.Atoi(row[5]); err == nil {
				p.PriorBookings = n
			}
		}
		return p, true, nil
	}
	return Profile{}, false, nil
}
