// Package engine provides a headless implementation of the authentication
// engine contract: it performs device fingerprinting against the vendor's
// collector endpoint and drives the challenge exchange over HTTP. The
// verification flow only depends on the threedsecure.AuthenticationEngine
// interface, so hosts with a native vendor SDK can substitute their own
// adapter.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"trident/internal/device"
	domainerrors "trident/pkg/domain-errors"
	"trident/threedsecure"
)

const defaultTimeout = 30 * time.Second

var environmentEndpoints = map[string]string{
	"development": "http://localhost:3000/engine",
	"sandbox":     "https://engine.sandbox.gateway.trident.dev",
	"production":  "https://engine.gateway.trident.dev",
}

// HTTPEngine implements threedsecure.AuthenticationEngine over the vendor's
// HTTP surface.
type HTTPEngine struct {
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	collector  *device.Collector

	endpoint string // explicit override; otherwise derived per environment

	mu         sync.Mutex
	configured bool
	apiBase    string
	ui         threedsecure.UICustomization
}

var _ threedsecure.AuthenticationEngine = (*HTTPEngine)(nil)

// Option configures the HTTPEngine.
type Option func(*HTTPEngine)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(e *HTTPEngine) {
		e.httpClient = client
	}
}

// WithLogger sets the logger for the engine.
func WithLogger(l *slog.Logger) Option {
	return func(e *HTTPEngine) {
		e.logger = l
	}
}

// WithEndpoint overrides the vendor endpoint regardless of environment.
func WithEndpoint(endpoint string) Option {
	return func(e *HTTPEngine) {
		e.endpoint = endpoint
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(e *HTTPEngine) {
		e.timeout = timeout
	}
}

// New builds an engine adapter. userAgent seeds the device metadata sent to
// the collector.
func New(userAgent string, opts ...Option) *HTTPEngine {
	e := &HTTPEngine{
		timeout:   defaultTimeout,
		logger:    slog.Default(),
		collector: device.NewCollector(userAgent),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.httpClient == nil {
		e.httpClient = &http.Client{Timeout: e.timeout}
	}
	return e
}

// Configure prepares the engine for the gateway environment. Must run before
// Setup or ContinueChallenge.
func (e *HTTPEngine) Configure(_ context.Context, cfg threedsecure.Configuration, ui threedsecure.UICustomization) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	apiBase := e.endpoint
	if apiBase == "" {
		apiBase = environmentEndpoints[cfg.Environment]
	}
	if apiBase == "" {
		return domainerrors.New(domainerrors.CodeConfiguration,
			fmt.Sprintf("no engine endpoint known for environment %q", cfg.Environment))
	}

	e.apiBase = apiBase
	e.ui = ui
	e.configured = true
	return nil
}

// setupRequest is the wire body of the collector init call.
type setupRequest struct {
	JWT    string          `json:"jwt"`
	Device device.Metadata `json:"device"`
}

type setupResponse struct {
	DFReferenceID string `json:"df_reference_id"`
}

// Setup validates the configuration JWT and starts device fingerprinting.
// Returns the df_reference_id the lookup body correlates on.
func (e *HTTPEngine) Setup(ctx context.Context, authenticationJWT string) (string, error) {
	apiBase, err := e.requireConfigured()
	if err != nil {
		return "", err
	}
	if err := checkAuthenticationJWT(authenticationJWT); err != nil {
		return "", err
	}

	var resp setupResponse
	if err := e.post(ctx, apiBase+"/v1/session/init", setupRequest{
		JWT:    authenticationJWT,
		Device: e.collector.Collect(),
	}, &resp); err != nil {
		return "", err
	}
	if resp.DFReferenceID == "" {
		return "", domainerrors.New(domainerrors.CodeEngine,
			"engine init returned no device fingerprint reference id")
	}

	e.logger.Debug("device fingerprinting started", "df_reference_id", resp.DFReferenceID)
	return resp.DFReferenceID, nil
}

// challengeRequest is the wire body of the challenge continuation call.
type challengeRequest struct {
	TransactionID string `json:"transaction_id"`
	Payload       string `json:"payload"`
}

type challengeResponse struct {
	ActionCode  string `json:"action_code"`
	JWT         string `json:"jwt"`
	Description string `json:"description"`
}

// ContinueChallenge drives the challenge exchange and reports through
// receive. The receiver is always invoked, with an ERROR action code when the
// exchange itself fails, matching the vendor callback contract.
func (e *HTTPEngine) ContinueChallenge(ctx context.Context, transactionID, payload string, receive threedsecure.ChallengeReceiver) error {
	apiBase, err := e.requireConfigured()
	if err != nil {
		return err
	}

	var resp challengeResponse
	if err := e.post(ctx, apiBase+"/v1/challenge", challengeRequest{
		TransactionID: transactionID,
		Payload:       payload,
	}, &resp); err != nil {
		e.logger.Warn("challenge exchange failed", "transaction_id", transactionID, "error", err)
		receive(threedsecure.ActionError, "", err.Error())
		return nil
	}

	receive(threedsecure.ActionCodeOf(resp.ActionCode), resp.JWT, resp.Description)
	return nil
}

func (e *HTTPEngine) requireConfigured() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.configured {
		return "", domainerrors.New(domainerrors.CodeEngine,
			"engine has not been configured")
	}
	return e.apiBase, nil
}

func (e *HTTPEngine) post(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal,
			"failed to marshal engine request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal,
			"failed to create engine request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeEngine, "engine request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeEngine, "failed to read engine response")
	}
	if resp.StatusCode != http.StatusOK {
		return domainerrors.New(domainerrors.CodeEngine,
			fmt.Sprintf("engine returned status %d", resp.StatusCode))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeEngine,
			"engine response is not valid JSON")
	}
	return nil
}

// checkAuthenticationJWT refuses expired configuration JWTs before any
// network call. The signature is the vendor's to verify.
func checkAuthenticationJWT(raw string) error {
	if raw == "" {
		return domainerrors.New(domainerrors.CodeEngine,
			"configuration carried no authentication JWT")
	}
	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeEngine,
			"authentication JWT is malformed")
	}
	exp, err := token.Claims.GetExpirationTime()
	if err == nil && exp != nil && exp.Before(time.Now()) {
		return domainerrors.New(domainerrors.CodeEngine,
			"authentication JWT is expired")
	}
	return nil
}
