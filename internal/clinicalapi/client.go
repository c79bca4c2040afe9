package clinicalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rkimidis/acucare-pathways-sub001/internal/config"
	"github.com/rkimidis/acucare-pathways-sub001/internal/triage/domain"
)

// Client talks to the clinical API, the system of record for cases, users,
// and duty rosters. Every call forwards the caller's bearer credential.
type Client interface {
	FetchQueue(ctx context.Context, credential string, query url.Values) (*QueueResponse, error)
	CurrentRoster(ctx context.Context, credential string) (*domain.DutyRosterWindow, error)
	ClaimCase(ctx context.Context, credential, caseID string) error
	UnassignCase(ctx context.Context, credential, caseID string) error
	ReassignCase(ctx context.Context, credential, caseID, targetUserID, reason string) error
}

// QueueResponse is the remote queue endpoint's payload.
type QueueResponse struct {
	Items         []domain.TriageCaseSummary `json:"items"`
	Total         int                        `json:"total"`
	RedCount      int                        `json:"red_count"`
	AmberCount    int                        `json:"amber_count"`
	GreenCount    int                        `json:"green_count"`
	BlueCount     int                        `json:"blue_count"`
	BreachedCount int                        `json:"breached_count"`
}

// Counts converts the flat payload fields into the aggregate counts model.
func (r *QueueResponse) Counts() domain.QueueAggregateCounts {
	return domain.QueueAggregateCounts{
		Total:         r.Total,
		RedCount:      r.RedCount,
		AmberCount:    r.AmberCount,
		GreenCount:    r.GreenCount,
		BlueCount:     r.BlueCount,
		BreachedCount: r.BreachedCount,
	}
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

// NewClient builds the HTTP client from service configuration.
func NewClient(cfg config.Config) Client {
	timeout := cfg.ClinicalAPITimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &httpClient{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.ClinicalAPIBaseURL), "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *httpClient) FetchQueue(ctx context.Context, credential string, query url.Values) (*QueueResponse, error) {
	endpoint := c.baseURL + "/queue"
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var out QueueResponse
	if err := c.do(ctx, http.MethodGet, endpoint, credential, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) CurrentRoster(ctx context.Context, credential string) (*domain.DutyRosterWindow, error) {
	var out domain.DutyRosterWindow
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/duty-roster/current", credential, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) ClaimCase(ctx context.Context, credential, caseID string) error {
	return c.do(ctx, http.MethodPost, c.caseURL(caseID, "claim"), credential, nil, nil)
}

func (c *httpClient) UnassignCase(ctx context.Context, credential, caseID string) error {
	return c.do(ctx, http.MethodPost, c.caseURL(caseID, "unassign"), credential, nil, nil)
}

func (c *httpClient) ReassignCase(ctx context.Context, credential, caseID, targetUserID, reason string) error {
	body := map[string]string{
		"user_id": targetUserID,
		"reason":  reason,
	}
	return c.do(ctx, http.MethodPost, c.caseURL(caseID, "reassign"), credential, body, nil)
}

func (c *httpClient) caseURL(caseID, action string) string {
	return fmt.Sprintf("%s/triage-cases/%s/%s", c.baseURL, url.PathEscape(caseID), action)
}

func (c *httpClient) do(ctx context.Context, method, endpoint, credential string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp)}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func readErrorMessage(resp *http.Response) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return http.StatusText(resp.StatusCode)
}
