package classifier_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superparty/callcenter/internal/ledger"
	"github.com/superparty/callcenter/internal/model/intent"
	"github.com/superparty/callcenter/internal/service/classifier"
)

type fakeModel struct {
	reply string
	err   error
}

func (f fakeModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f fakeModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func newClassifier(t *testing.T, m model.BaseChatModel) *classifier.Service {
	t.Helper()
	svc, err := classifier.New(context.Background(), m, classifier.Config{Model: "test-model"}, zerolog.Nop())
	require.NoError(t, err)
	return svc
}

func TestClassifyReturnsModelReplyAndRuleLabel(t *testing.T) {
	svc := newClassifier(t, fakeModel{reply: "Sigur! Pachetul de bază este 900 lei."})

	result := svc.Classify(context.Background(), "Cât costă o petrecere?", "Client nou.")

	assert.True(t, result.Success)
	assert.Equal(t, intent.Pret, result.Label)
	assert.Equal(t, classifier.RuleConfidence, result.Confidence)
	assert.Equal(t, "Sigur! Pachetul de bază este 900 lei.", result.Reply)
	assert.Equal(t, "test-model", result.Model)
}

func TestClassifyLabelComesFromCustomerMessageNotReply(t *testing.T) {
	// The model rambles about prices; the customer asked for a booking.
	svc := newClassifier(t, fakeModel{reply: "Prețul depinde de pachet, de la 900 lei."})

	result := svc.Classify(context.Background(), "vreau o rezervare", "Client nou.")

	assert.Equal(t, intent.Rezervare, result.Label)
}

func TestClassifyFallsBackWhenModelFails(t *testing.T) {
	svc := newClassifier(t, fakeModel{err: errors.New("quota exceeded")})

	result := svc.Classify(context.Background(), "vreau o rezervare", "Client nou.")

	assert.False(t, result.Success)
	assert.Equal(t, intent.Fallback, result.Label)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, classifier.FallbackReply, result.Reply)
}

func TestClassifyFallsBackWithoutModel(t *testing.T) {
	svc := newClassifier(t, nil)

	result := svc.Classify(context.Background(), "buna ziua", "Client nou.")

	assert.False(t, result.Success)
	assert.Equal(t, intent.Fallback, result.Label)
	assert.Equal(t, classifier.FallbackReply, result.Reply)
}

func TestClassifyFallsBackOnEmptyReply(t *testing.T) {
	svc := newClassifier(t, fakeModel{reply: "   "})

	result := svc.Classify(context.Background(), "vreau o rezervare", "Client nou.")

	assert.False(t, result.Success)
	assert.Equal(t, intent.Fallback, result.Label)
}

func TestCustomerContext(t *testing.T) {
	assert.Equal(t, "Client nou.", classifier.CustomerContext(ledger.Profile{}, false))
	assert.Equal(t,
		"Client cunoscut: Ana Pop, 4 rezervări anterioare.",
		classifier.CustomerContext(ledger.Profile{Name: "Ana Pop", PriorBookings: 4}, true),
	)
}
