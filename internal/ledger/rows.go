package ledger

import (
	"fmt"
	"strconv"
	"time"

	"github.com/superparty/callcenter/internal/model/call"
	"github.com/superparty/callcenter/internal/model/conversation"
	"github.com/superparty/callcenter/internal/model/intent"
)

// Column layouts per table. Rows travel as positional string slices; this
// file is the only place that knows which column means what.
//
//	CONVERSATII:  id, customer, name, status, createdAt, lastActivity, messageCount
//	MESSAGES:     id, conversationId, timestamp, direction, channel, body, deliveryStatus
//	AI_RESPONSES: id, messageId, label, confidence, reply, model, timestamp, success
//	CALL_LOGS:    callId, from, to, menu, status, duration, createdAt
//	CLIENTS:      phone, name, ..., priorBookings (read-only here)

const timeLayout = time.RFC3339

func marshalConversation(c conversation.Conversation) Row {
	return Row{
		c.ID,
		c.CustomerID,
		c.DisplayName,
		string(c.Status),
		c.CreatedAt.UTC().Format(timeLayout),
		c.LastActivity.UTC().Format(timeLayout),
		strconv.Itoa(c.MessageCount),
	}
}

func unmarshalConversation(row Row) (conversation.Conversation, error) {
	if len(row) < 7 {
		return conversation.Conversation{}, fmt.Errorf("conversation row has %d columns, want 7", len(row))
	}
	createdAt, err := parseTime(row[4])
	if err != nil {
		return conversation.Conversation{}, fmt.Errorf("conversation createdAt: %w", err)
	}
	lastActivity, err := parseTime(row[5])
	if err != nil {
		return conversation.Conversation{}, fmt.Errorf("conversation lastActivity: %w", err)
	}
	count, err := parseCount(row[6])
	if err != nil {
		return conversation.Conversation{}, fmt.Errorf("conversation messageCount: %w", err)
	}
	return conversation.Conversation{
		ID:           row[0],
		CustomerID:   row[1],
		DisplayName:  row[2],
		Status:       conversation.Status(row[3]),
		CreatedAt:    createdAt,
		LastActivity: lastActivity,
		MessageCount: count,
	}, nil
}

func marshalMessage(m conversation.Message) Row {
	return Row{
		m.ID,
		m.ConversationID,
		m.Timestamp.UTC().Format(timeLayout),
		string(m.Direction),
		string(m.Channel),
		m.Body,
		m.DeliveryStatus,
	}
}

func unmarshalMessage(row Row) (conversation.Message, error) {
	if len(row) < 7 {
		return conversation.Message{}, fmt.Errorf("message row has %d columns, want 7", len(row))
	}
	ts, err := parseTime(row[2])
	if err != nil {
		return conversation.Message{}, fmt.Errorf("message timestamp: %w", err)
	}
	return conversation.Message{
		ID:             row[0],
		ConversationID: row[1],
		Timestamp:      ts,
		Direction:      conversation.Direction(row[3]),
		Channel:        conversation.Channel(row[4]),
		Body:           row[5],
		DeliveryStatus: row[6],
	}, nil
}

func marshalClassification(r intent.Result, id string) Row {
	return Row{
		id,
		r.MessageID,
		string(r.Label),
		strconv.FormatFloat(r.Confidence, 'f', -1, 64),
		r.Reply,
		r.Model,
		r.Timestamp.UTC().Format(timeLayout),
		strconv.FormatBool(r.Success),
	}
}

func marshalCall(s call.Session) Row {
	return Row{
		s.CallID,
		s.From,
		s.To,
		string(s.Menu),
		string(s.Status),
		strconv.Itoa(s.DurationSeconds),
		s.CreatedAt.UTC().Format(timeLayout),
	}
}

func unmarshalCall(row Row) (call.Session, error) {
	if len(row) < 7 {
		return call.Session{}, fmt.Errorf("call row has %d columns, want 7", len(row))
	}
	duration, err := parseCount(row[5])
	if err != nil {
		return call.Session{}, fmt.Errorf("call duration: %w", err)
	}
	createdAt, err := parseTime(row[6])
	if err != nil {
		return call.Session{}, fmt.Errorf("call createdAt: %w", err)
	}
	return call.Session{
		CallID:          row[0],
		From:            row[1],
		To:              row[2],
		Menu:            call.MenuState(row[3]),
		Status:          call.Status(row[4]),
		DurationSeconds: duration,
		CreatedAt:       createdAt,
	}, nil
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, value)
}

func parseCount(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}
