package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-bike-bookings/app/entity"
)

const (
	defaultBaseURL = "https://tx.yodl.me"
	defaultPerPage = 100
	maxPerPage     = 200
)

var ErrUnexpectedStatus = errors.New("unexpected indexer response status")

type Config struct {
	BaseURL     string
	HTTPTimeout time.Duration
}

// Query filters the payment feed. Receiver is required; Sender narrows it to one payer.
type Query struct {
	PerPage  int
	Sender   string
	Receiver string
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) ListPayments(ctx context.Context, query Query) ([]entity.PaymentRecord, error) {
	receiver := strings.TrimSpace(query.Receiver)
	if receiver == "" {
		return nil, errors.New("indexer query requires a receiver")
	}

	perPage := query.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	values := url.Values{}
	values.Set("receiver", receiver)
	values.Set("perPage", strconv.Itoa(perPage))
	if sender := strings.TrimSpace(query.Sender); sender != "" {
		values.Set("sender", sender)
	}

	status, body, err := c.get(ctx, "/api/v1/payments?"+values.Encode())
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("%w: list payments status=%d body=%s", ErrUnexpectedStatus, status, truncate(body, 512))
	}

	var payload struct {
		Payments []entity.PaymentRecord `json:"payments"`
		Error    string                 `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.Error) != "" {
		return nil, fmt.Errorf("indexer error: %s", payload.Error)
	}
	if payload.Payments == nil {
		return []entity.PaymentRecord{}, nil
	}

	return payload.Payments, nil
}

// GetPayment looks up a single payment. A payment the indexer does not know yet
// returns nil without error.
func (c *Client) GetPayment(ctx context.Context, txHash string, chainID int64) (*entity.PaymentRecord, error) {
	txHash = strings.TrimSpace(txHash)
	if txHash == "" {
		return nil, errors.New("tx hash is required")
	}

	path := "/api/v1/payments/" + url.PathEscape(txHash)
	if chainID > 0 {
		path += "?chainId=" + strconv.FormatInt(chainID, 10)
	}

	status, body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status >= 400 {
		return nil, fmt.Errorf("%w: get payment status=%d body=%s", ErrUnexpectedStatus, status, truncate(body, 512))
	}

	var payload struct {
		Payment *entity.PaymentRecord `json:"payment"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	return payload.Payment, nil
}

func (c *Client) get(ctx context.Context, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, body, nil
}

func truncate(body []byte, max int) string {
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max])
}
