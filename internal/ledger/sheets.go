package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// SheetsConfig locates one spreadsheet document behind the values API.
type SheetsConfig struct {
	BaseURL       string
	SpreadsheetID string
	Token         string
	Timeout       time.Duration
}

// SheetsStore talks to the spreadsheet-style values API over HTTP. Every
// failure, transport or decode, is reported as ErrStoreUnavailable so the
// services above can apply their swallow-or-surface policy uniformly.
type SheetsStore struct {
	cfg    SheetsConfig
	client *http.Client
}

// NewSheetsStore builds a store client with a bounded request timeout.
func NewSheetsStore(cfg SheetsConfig) *SheetsStore {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SheetsStore{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type valuesPayload struct {
	Values [][]string `json:"values"`
}

// Append implements Store.
func (s *SheetsStore) Append(ctx context.Context, table string, row Row) error {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s:append",
		s.cfg.BaseURL, s.cfg.SpreadsheetID, url.PathEscape(table))

	body, err := json.Marshal(valuesPayload{Values: [][]string{row}})
	if err != nil {
		return fmt.Errorf("%w: encode append: %v", ErrStoreUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.prepare(req)

	return s.do(req, nil)
}

// Query implements Store.
func (s *SheetsStore) Query(ctx context.Context, table string) ([]Row, error) {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s",
		s.cfg.BaseURL, s.cfg.SpreadsheetID, url.PathEscape(table))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.prepare(req)

	var payload valuesPayload
	if err := s.do(req, &payload); err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(payload.Values))
	for _, value := range payload.Values {
		rows = append(rows, Row(value))
	}
	return rows, nil
}

// Update implements Store.
func (s *SheetsStore) Update(ctx context.Context, table string, index int, row Row) error {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s/%d",
		s.cfg.BaseURL, s.cfg.SpreadsheetID, url.PathEscape(table), index)

	body, err := json.Marshal(valuesPayload{Values: [][]string{row}})
	if err != nil {
		return fmt.Errorf("%w: encode update: %v", ErrStoreUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.prepare(req)

	return s.do(req, nil)
}

func (s *SheetsStore) prepare(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}
}

func (s *SheetsStore) do(req *http.Request, out any) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s returned %d", ErrStoreUnavailable, req.URL.Path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrStoreUnavailable, err)
	}
	return nil
}
