package voice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/superparty/callcenter/internal/callflow"
	"github.com/superparty/callcenter/internal/events"
	"github.com/superparty/callcenter/internal/ledger"
	"github.com/superparty/callcenter/internal/service/classifier"
	"github.com/superparty/callcenter/internal/service/dispatcher"
	"github.com/superparty/callcenter/internal/service/resolver"
	"github.com/superparty/callcenter/internal/transport"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	client := ledger.NewClient(ledger.NewMemoryStore())
	res := resolver.New(client, zerolog.Nop())
	cls, err := classifier.New(context.Background(), nil, classifier.Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("classifier: %v", err)
	}
	ctrl := callflow.New(callflow.Targets{
		Rezervari: "+40700000001",
		Info:      "+40700000002",
		Agent:     "+40700000003",
	}, "/voice/menu")
	svc := dispatcher.New(client, res, cls, ctrl, transport.DryRunMessenger{Log: zerolog.Nop()}, events.NewBus(), zerolog.Nop())

	r := chi.NewRouter()
	New(svc, zerolog.Nop()).RegisterRoutes(r)
	return r
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestIncomingCallReturnsGreetingDirective(t *testing.T) {
	r := setupRouter(t)

	resp := postForm(r, "/voice/incoming", url.Values{
		"CallSid": {"CA1"}, "From": {"+40711"}, "To": {"+40200"},
	})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/xml") {
		t.Fatalf("content type = %q", ct)
	}
	body := resp.Body.String()
	if !strings.Contains(body, "<Gather") || !strings.Contains(body, "SuperParty") {
		t.Fatalf("unexpected directive: %s", body)
	}
}

func TestMenuSelectionReturnsTransferDirective(t *testing.T) {
	r := setupRouter(t)
	postForm(r, "/voice/incoming", url.Values{"CallSid": {"CA1"}, "From": {"+40711"}})

	resp := postForm(r, "/voice/menu", url.Values{"CallSid": {"CA1"}, "Digits": {"1"}})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, "<Dial>+40700000001</Dial>") {
		t.Fatalf("unexpected directive: %s", body)
	}
}

func TestStatusCallbackRespondsNoContent(t *testing.T) {
	r := setupRouter(t)
	postForm(r, "/voice/incoming", url.Values{"CallSid": {"CA1"}, "From": {"+40711"}})

	resp := postForm(r, "/voice/status", url.Values{
		"CallSid": {"CA1"}, "CallStatus": {"completed"}, "CallDuration": {"90"},
	})

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}
