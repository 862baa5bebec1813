package probe

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/factory"
)

const defaultTimeout = 3 * time.Second

// Client asks the Zuitzerland intranet whether the caller is on the trusted
// network. Being on it makes a booking eligible for the discount price.
type Client struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	logger  logrus.FieldLogger
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSpace(baseURL),
		timeout: timeout,
		client:  &http.Client{},
		logger:  factory.NewModuleLogger("reachability-probe"),
	}
}

// IsTrustedNetwork never fails: an unset URL, an error, a timeout or any
// unexpected answer all count as "not on the trusted network".
func (c *Client) IsTrustedNetwork(ctx context.Context) bool {
	if c.baseURL == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		c.logger.WithError(err).Warn("Reachability probe request could not be built")
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).Debug("Reachability probe failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var payload struct {
		Zuitzerland bool `json:"zuitzerland"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.WithError(err).Debug("Reachability probe returned an unreadable body")
		return false
	}

	return payload.Zuitzerland
}
