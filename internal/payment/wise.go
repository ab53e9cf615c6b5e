package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// WiseClient talks to the Wise transfer API with one user's API token.
type WiseClient struct {
	http *resty.Client

	mu        sync.Mutex
	profileID string
}

// NewWiseFactory returns a Factory creating Wise clients against baseURL.
func NewWiseFactory(baseURL string, timeout time.Duration) Factory {
	return func(apiKey string) Gateway {
		return NewWiseClient(baseURL, apiKey, timeout)
	}
}

// NewWiseClient creates a client authenticating with apiKey.
func NewWiseClient(baseURL, apiKey string, timeout time.Duration) *WiseClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	return &WiseClient{http: c}
}

// StatusError is a non-2xx provider response.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("wise %s: status %d: %s", e.Op, e.Status, e.Body)
}

type wiseProfile struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type wiseID struct {
	ID json.RawMessage `json:"id"`
}

// idString accepts both numeric and string identifiers.
func (w wiseID) idString() string {
	var s string
	if err := json.Unmarshal(w.ID, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(w.ID, &n); err == nil {
		return n.String()
	}
	return ""
}

func (c *WiseClient) do(ctx context.Context, op, method, path string, body, result any) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("wise %s: %w", op, err)
	}
	if resp.IsError() {
		return nil, &StatusError{Op: op, Status: resp.StatusCode(), Body: resp.String()}
	}
	return resp, nil
}

// ProfileID returns the personal profile of the token owner, falling back to
// the first profile. The lookup happens once per client.
func (c *WiseClient) ProfileID(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profileID != "" {
		return c.profileID, nil
	}

	var profiles []wiseProfile
	if _, err := c.do(ctx, "list profiles", resty.MethodGet, "/v1/profiles", nil, &profiles); err != nil {
		return "", err
	}
	if len(profiles) == 0 {
		return "", fmt.Errorf("wise list profiles: no profile for token")
	}
	chosen := profiles[0]
	for _, p := range profiles {
		if p.Type == "personal" {
			chosen = p
			break
		}
	}
	c.profileID = strconv.FormatInt(chosen.ID, 10)
	return c.profileID, nil
}

// CreateQuote fixes the exchange for amount source units.
func (c *WiseClient) CreateQuote(ctx context.Context, sourceCurrency, targetCurrency string, amount int64) (string, error) {
	profile, err := c.ProfileID(ctx)
	if err != nil {
		return "", err
	}
	body := map[string]any{
		"sourceCurrency": sourceCurrency,
		"targetCurrency": targetCurrency,
		"sourceAmount":   amount,
		"targetAmount":   nil,
		"payOut":         "BALANCE",
	}
	var out wiseID
	if _, err := c.do(ctx, "create quote", resty.MethodPost, "/v3/profiles/"+profile+"/quotes", body, &out); err != nil {
		return "", err
	}
	return requireID("create quote", out)
}

// CreateRecipient registers an IBAN account to pay into.
func (c *WiseClient) CreateRecipient(ctx context.Context, fullName, iban, currency string) (string, error) {
	profile, err := c.ProfileID(ctx)
	if err != nil {
		return "", err
	}
	body := map[string]any{
		"currency":          currency,
		"type":              "iban",
		"profile":           profile,
		"accountHolderName": fullName,
		"legalType":         "PRIVATE",
		"details":           map[string]string{"iban": iban},
	}
	var out wiseID
	if _, err := c.do(ctx, "create recipient", resty.MethodPost, "/v1/accounts", body, &out); err != nil {
		return "", err
	}
	return requireID("create recipient", out)
}

// CreateTransfer binds a quote to a recipient.
func (c *WiseClient) CreateTransfer(ctx context.Context, recipientID, quoteID, customerTransactionID string) (string, error) {
	target, err := strconv.ParseInt(recipientID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("wise create transfer: recipient id %q: %w", recipientID, err)
	}
	body := map[string]any{
		"targetAccount":         target,
		"quoteUuid":             quoteID,
		"customerTransactionId": customerTransactionID,
		"details":               map[string]string{},
	}
	var out wiseID
	if _, err := c.do(ctx, "create transfer", resty.MethodPost, "/v1/transfers", body, &out); err != nil {
		return "", err
	}
	return requireID("create transfer", out)
}

// FundTransfer pays the transfer from the profile balance and returns the raw response.
func (c *WiseClient) FundTransfer(ctx context.Context, transferID string) ([]byte, error) {
	profile, err := c.ProfileID(ctx)
	if err != nil {
		return nil, err
	}
	path := "/v3/profiles/" + profile + "/transfers/" + transferID + "/payments"
	resp, err := c.do(ctx, "fund transfer", resty.MethodPost, path, map[string]string{"type": "BALANCE"}, nil)
	if err != nil {
		return nil, err
	}
	var status struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body(), &status); err == nil && status.Status == "REJECTED" {
		return nil, fmt.Errorf("wise fund transfer: rejected: %s", resp.String())
	}
	return resp.Body(), nil
}

func requireID(op string, out wiseID) (string, error) {
	id := out.idString()
	if id == "" {
		return "", fmt.Errorf("wise %s: response without id", op)
	}
	return id, nil
}
