package credentials

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Token is a short-lived authentication secret for one connection attempt.
type Token string

// Endpoint describes the store the token is requested for.
type Endpoint struct {
	Region string
	Host   string
	Port   string
	User   string
}

// Provider exchanges a store endpoint descriptor for an ephemeral token.
// Tokens are single-use per connection attempt and expire on the provider's
// schedule; nothing in this service caches them.
type Provider interface {
	Token(ctx context.Context, ep Endpoint) (Token, error)
}

var ErrEmptyToken = errors.New("credential provider returned an empty token")

// VendorClient fetches tokens from an HTTP token-vending endpoint, the local
// stand-in for a cloud IAM signer.
type VendorClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewVendorClient(baseURL string, timeout time.Duration, l *zap.Logger) *VendorClient {
	return &VendorClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  l,
	}
}

func (c *VendorClient) Token(ctx context.Context, ep Endpoint) (Token, error) {
	q := url.Values{}
	q.Set("region", ep.Region)
	q.Set("hostname", ep.Host)
	q.Set("port", ep.Port)
	q.Set("username", ep.User)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/token?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Token request failed", zap.String("host", ep.Host), zap.Error(err))
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Token vendor rejected request",
			zap.String("host", ep.Host),
			zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("token vendor returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	token := Token(strings.TrimSpace(string(body)))
	if token == "" {
		return "", ErrEmptyToken
	}
	c.logger.Debug("Obtained token", zap.String("host", ep.Host), zap.String("user", ep.User))
	return token, nil
}

// Static always returns the same token. Used for local development where the
// store accepts password auth.
type Static struct {
	token Token
}

func NewStatic(token string) *Static {
	return &Static{token: Token(token)}
}

func (s *Static) Token(ctx context.Context, ep Endpoint) (Token, error) {
	if s.token == "" {
		return "", ErrEmptyToken
	}
	return s.token, nil
}
