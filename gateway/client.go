// Package gateway implements the payment-gateway HTTP client the
// verification flow talks to: configuration fetch with a TTL cache, the
// 3-D Secure lookup call, and the JWT-authentication exchange.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	domainerrors "trident/pkg/domain-errors"
	"trident/threedsecure"
)

const defaultTimeout = 30 * time.Second

// Client calls the payment gateway. It implements threedsecure.Gateway.
type Client struct {
	authorization *Authorization
	baseURL       string
	timeout       time.Duration
	httpClient    *http.Client
	logger        *slog.Logger

	// Configuration cache. The mutex doubles as a per-instance single-flight
	// guard: concurrent callers wait for the one in-flight fetch instead of
	// stampeding the endpoint. No module-level state is involved.
	configMu      sync.Mutex
	configTTL     time.Duration
	cachedConfig  *threedsecure.Configuration
	configFetched time.Time
}

// Ensure Client implements the verification flow's gateway port.
var _ threedsecure.Gateway = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets the logger for the client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithBaseURL overrides the API base URL derived from the authorization.
// Used against local gateways and simulators.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithConfigTTL overrides how long a fetched configuration is served from
// cache. Default is five minutes.
func WithConfigTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.configTTL = ttl
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// NewClient parses the merchant authorization and builds a gateway client.
func NewClient(authorization string, opts ...Option) (*Client, error) {
	auth, err := ParseAuthorization(authorization)
	if err != nil {
		return nil, err
	}

	c := &Client{
		authorization: auth,
		timeout:       defaultTimeout,
		configTTL:     5 * time.Minute,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.baseURL == "" {
		// Derive the API base from the configuration endpoint.
		if i := strings.Index(auth.ConfigURL, "/merchants/"); i > 0 {
			c.baseURL = auth.ConfigURL[:i]
		}
	}
	return c, nil
}

// Configuration fetches the merchant configuration, serving it from the
// instance cache while the TTL holds.
func (c *Client) Configuration(ctx context.Context) (*threedsecure.Configuration, error) {
	c.configMu.Lock()
	defer c.configMu.Unlock()

	if c.cachedConfig != nil && time.Since(c.configFetched) < c.configTTL {
		return c.cachedConfig, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.authorization.ConfigURL, nil)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal,
			"failed to create configuration request")
	}
	c.setHeaders(req)

	var cfg threedsecure.Configuration
	if err := c.do(req, &cfg); err != nil {
		return nil, err
	}
	if c.authorization.AssetsURL != "" {
		cfg.AssetsURL = c.authorization.AssetsURL
	}

	c.cachedConfig = &cfg
	c.configFetched = time.Now()
	c.logger.Debug("gateway configuration refreshed",
		"environment", cfg.Environment, "enabled", cfg.Enabled)
	return c.cachedConfig, nil
}

// Lookup posts the 3-D Secure lookup for the given payment method nonce.
func (c *Client) Lookup(ctx context.Context, nonce string, body threedsecure.LookupRequestBody) (*threedsecure.LookupResult, error) {
	path := fmt.Sprintf("/v1/payment_methods/%s/three_d_secure/lookup", nonce)
	var result threedsecure.LookupResult
	if err := c.post(ctx, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// authenticateRequest is the wire body of the JWT-authentication exchange.
type authenticateRequest struct {
	JWT                string `json:"jwt"`
	PaymentMethodNonce string `json:"payment_method_nonce"`
}

// AuthenticateJWT exchanges a completed-challenge JWT for the authenticated
// nonce.
func (c *Client) AuthenticateJWT(ctx context.Context, nonce, challengeJWT string) (*threedsecure.AuthenticationResponse, error) {
	path := fmt.Sprintf("/v1/payment_methods/%s/three_d_secure/authenticate_from_jwt", nonce)
	var result threedsecure.AuthenticationResponse
	if err := c.post(ctx, path, authenticateRequest{JWT: challengeJWT, PaymentMethodNonce: nonce}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal,
			"failed to marshal request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal,
			"failed to create request")
	}
	c.setHeaders(req)
	return c.do(req, out)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	switch c.authorization.Kind {
	case KindTokenizationKey:
		req.Header.Set("Client-Key", c.authorization.Bearer)
	default:
		req.Header.Set("Authorization", "Bearer "+c.authorization.Bearer)
	}
}

// do executes the request and classifies failures: network problems are
// transport errors, auth rejections are configuration errors, and anything
// the gateway answered with a body is a gateway error carrying the gateway's
// own message.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if req.Context().Err() == context.DeadlineExceeded {
			return domainerrors.Wrap(err, domainerrors.CodeTransport, "gateway request timed out")
		}
		return domainerrors.Wrap(err, domainerrors.CodeTransport, "gateway request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeTransport, "failed to read gateway response")
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		// Parse below.
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domainerrors.New(domainerrors.CodeConfiguration,
			"gateway rejected the merchant authorization")
	default:
		return domainerrors.New(domainerrors.CodeGateway,
			fmt.Sprintf("gateway returned status %d: %s", resp.StatusCode, gatewayMessage(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeGateway,
			"gateway response is not valid JSON")
	}
	return nil
}

// gatewayMessage pulls error.message out of an error body, falling back to a
// trimmed raw body.
func gatewayMessage(body []byte) string {
	var envelope struct {
		Error *threedsecure.GatewayError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
