// Package threedsecure implements the 3-D Secure verification flow for card
// payments: gateway lookup, optional cardholder challenge (in-process engine
// UI or external-browser redirect), and the final JWT exchange that produces
// a liability-shift-bearing payment nonce.
package threedsecure

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	domainerrors "trident/pkg/domain-errors"
	"trident/threedsecure/metrics"
	"trident/threedsecure/tracer"
)

// Client orchestrates one verification attempt at a time:
//
//	Idle -> SettingUp -> LookingUp -> AwaitingChallenge -> Authenticating -> Completed
//
// with Failed reachable from every non-terminal state and Canceled reachable
// only from AwaitingChallenge. A Client is single-flight: a second Verify
// while one attempt is in flight is rejected with CodeBusy, and no attempt
// state outlives its call.
type Client struct {
	gateway         Gateway
	engine          AuthenticationEngine
	browser         BrowserSwitch
	authenticator   *ResultAuthenticator
	analytics       AnalyticsRecorder
	metrics         *metrics.Metrics
	tracer          tracer.Tracer
	logger          *slog.Logger
	returnURLScheme string

	busy atomic.Bool
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets the logger for the client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMetrics sets the metrics collector for the client.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracer sets the tracer for the client.
func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// WithAnalytics sets the analytics recorder for the client.
func WithAnalytics(a AnalyticsRecorder) Option {
	return func(c *Client) {
		c.analytics = a
	}
}

// New creates a verification client. Panics if a required collaborator is
// nil - fail fast at startup.
func New(gateway Gateway, engine AuthenticationEngine, browser BrowserSwitch, returnURLScheme string, opts ...Option) *Client {
	if gateway == nil {
		panic("threedsecure.New: gateway is required")
	}
	if engine == nil {
		panic("threedsecure.New: authentication engine is required")
	}
	if browser == nil {
		panic("threedsecure.New: browser switch is required")
	}

	c := &Client{
		gateway:         gateway,
		engine:          engine,
		browser:         browser,
		analytics:       noopAnalytics{},
		tracer:          tracer.Noop(),
		logger:          slog.Default(),
		returnURLScheme: returnURLScheme,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.authenticator = NewResultAuthenticator(gateway, c.logger)
	return c
}

// Verify runs one verification attempt to its terminal result, or to a
// started browser challenge (StatusBrowserChallenge) that the host
// application finishes later through Resume. The result is delivered exactly
// once; duplicate callbacks from the authentication engine are absorbed.
func (c *Client) Verify(ctx context.Context, req VerificationRequest) (*VerificationResult, error) {
	// Validation failures precede the attempt: no events, no network calls.
	if err := req.validate(); err != nil {
		return nil, err
	}
	if !c.busy.CompareAndSwap(false, true) {
		return nil, domainerrors.New(domainerrors.CodeBusy,
			"a verification attempt is already in flight on this client")
	}
	defer c.busy.Store(false)

	attemptID := uuid.NewString()
	record := c.recorderFor(attemptID)

	ctx, span := c.tracer.Start(ctx, "threedsecure.verify",
		tracer.String("attempt_id", attemptID))

	if c.metrics != nil {
		c.metrics.IncrementAttempts()
	}
	record(eventInitialized)

	result, err := c.run(ctx, req, attemptID, record)
	if result == nil || result.Status != StatusBrowserChallenge {
		// Terminal exit: every attempt that emitted the initialized event
		// gets exactly one completed event. A browser hand-off is not
		// terminal; Resume closes that attempt.
		record(eventCompleted)
		c.observeOutcome(result, err)
	}
	span.End(err)
	return result, err
}

// Resume finishes a version 1 attempt after the browser round trip. pending
// is the state the host application persisted at hand-off; returnQuery is the
// query payload the redirect target appended to the callback URL. The hosting
// process may differ from the one that started the attempt.
func (c *Client) Resume(ctx context.Context, pending PendingVerification, returnQuery url.Values) (*VerificationResult, error) {
	if pending.Nonce == "" {
		return nil, validationErr("pending verification state is missing the payment method nonce")
	}
	if !c.busy.CompareAndSwap(false, true) {
		return nil, domainerrors.New(domainerrors.CodeBusy,
			"a verification attempt is already in flight on this client")
	}
	defer c.busy.Store(false)

	record := c.recorderFor(pending.AttemptID)
	ctx, span := c.tracer.Start(ctx, "threedsecure.resume",
		tracer.String("attempt_id", pending.AttemptID),
		tracer.String("transaction_id", pending.TransactionID))

	result, err := c.finishBrowserReturn(ctx, pending, returnQuery, record)
	record(eventCompleted)
	c.observeOutcome(result, err)
	span.End(err)
	return result, err
}

// run drives the state machine from SettingUp to a terminal state or a
// browser hand-off.
func (c *Client) run(ctx context.Context, req VerificationRequest, attemptID string, record func(string)) (*VerificationResult, error) {
	// SettingUp
	cfg, err := c.gateway.Configuration(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeConfiguration,
			"could not fetch gateway configuration")
	}
	if !cfg.Enabled {
		return nil, configurationErr("merchant account is not enabled for 3-D Secure")
	}

	dfReferenceID := c.setupEngine(ctx, *cfg, req, record)

	// LookingUp
	body := BuildLookupBody(req, dfReferenceID)
	lookupStart := time.Now()
	lookup, err := c.gateway.Lookup(ctx, req.Nonce, body)
	if c.metrics != nil {
		c.metrics.ObserveLookup(lookupStart)
	}
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeTransport,
			"lookup request failed")
	}
	if lookup.Error != nil {
		return nil, domainerrors.New(domainerrors.CodeGateway, lookup.Error.Message)
	}

	if !lookup.Lookup.ChallengeRequired() {
		// No challenge needed: complete directly from the lookup's own
		// authentication summary.
		record(eventChallengePresented(false))
		nonce := lookup.PaymentMethod
		result := &VerificationResult{Status: StatusLookupOnly, Nonce: &nonce}
		recordLiability(record, result)
		return result, nil
	}

	// AwaitingChallenge
	record(eventChallengePresented(true))
	record(eventVersion(lookup.Lookup.Version))
	version := protocolVersionOf(lookup.Lookup.Version, c.logger)
	if c.metrics != nil {
		c.metrics.IncrementChallengePresented(version.String())
	}

	presenter := NewChallengePresenter(c.engine, c.browser, c.returnURLScheme, cfg.AssetsURL, c.logger)
	if version == VersionOne {
		return c.startBrowserChallenge(ctx, req, presenter, lookup, attemptID)
	}
	return c.runInProcessChallenge(ctx, presenter, lookup, attemptID, record)
}

// setupEngine configures the engine and starts device fingerprinting. Setup
// failure never aborts the flow: it is recorded as an analytics event and the
// lookup body simply omits the df_reference_id.
func (c *Client) setupEngine(ctx context.Context, cfg Configuration, req VerificationRequest, record func(string)) string {
	if err := c.engine.Configure(ctx, cfg, req.UICustomization); err != nil {
		c.logger.Warn("authentication engine configuration failed, continuing without fingerprint",
			"error", err)
		record(eventSetupFailed)
		return ""
	}
	dfReferenceID, err := c.engine.Setup(ctx, cfg.AuthenticationJWT)
	if err != nil {
		c.logger.Warn("authentication engine setup failed, continuing without fingerprint",
			"error", err)
		record(eventSetupFailed)
		return ""
	}
	record(eventSetupCompleted)
	return dfReferenceID
}

// runInProcessChallenge delegates a version 2 challenge to the engine's
// challenge UI and waits for its receiver. The receiver may be invoked more
// than once by the vendor; a once-guard keyed on the attempt makes delivery
// at most once.
func (c *Client) runInProcessChallenge(ctx context.Context, presenter *ChallengePresenter, lookup *LookupResult, attemptID string, record func(string)) (*VerificationResult, error) {
	type challengeResult struct {
		code        ActionCode
		jwt         string
		description string
	}

	done := make(chan challengeResult, 1)
	var once sync.Once
	receive := func(code ActionCode, jwt, description string) {
		delivered := false
		once.Do(func() {
			done <- challengeResult{code: code, jwt: jwt, description: description}
			delivered = true
		})
		if !delivered {
			c.logger.Warn("duplicate challenge callback ignored",
				"attempt_id", attemptID, "action_code", string(code))
		}
	}

	if err := presenter.PresentInProcess(ctx, lookup.Lookup, receive); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeEngine,
			"could not present challenge")
	}

	select {
	case res := <-done:
		record(eventActionCode(res.code))
		// Authenticating
		authStart := time.Now()
		result, err := c.authenticator.Authenticate(ctx, lookup, res.jwt, res.code, res.description, record)
		if c.metrics != nil && res.code.Outcome().exchangeRequired() {
			c.metrics.ObserveAuthenticate(authStart)
		}
		return result, err
	case <-ctx.Done():
		return nil, domainerrors.Wrap(ctx.Err(), domainerrors.CodeTransport,
			"verification aborted while awaiting challenge")
	}
}

// startBrowserChallenge runs the version 1 fallback: build the hosted
// redirect URL, hand off to the external browser, and return the serializable
// pending state the host application must persist until Resume.
func (c *Client) startBrowserChallenge(ctx context.Context, req VerificationRequest, presenter *ChallengePresenter, lookup *LookupResult, attemptID string) (*VerificationResult, error) {
	redirectURL, err := presenter.PresentBrowser(ctx, lookup.Lookup, req.UICustomization)
	if err != nil {
		return nil, err
	}

	pending := PendingVerification{
		AttemptID:     attemptID,
		Nonce:         req.Nonce,
		Amount:        req.Amount,
		TransactionID: lookup.Lookup.TransactionID,
		Version:       lookup.Lookup.Version,
		LookupNonce:   lookup.PaymentMethod,
	}
	return &VerificationResult{
		Status: StatusBrowserChallenge,
		BrowserChallenge: &BrowserChallenge{
			RedirectURL: redirectURL,
			Pending:     pending,
		},
	}, nil
}

// finishBrowserReturn classifies the payload the redirect target appended to
// the callback URL. An absent payload means the user came back without
// completing the challenge, which counts as non-explicit cancelation.
func (c *Client) finishBrowserReturn(ctx context.Context, pending PendingVerification, returnQuery url.Values, record func(string)) (*VerificationResult, error) {
	ret, err := parseBrowserReturn(returnQuery)
	if err != nil {
		return nil, err
	}
	if ret.AuthResponse == nil {
		return nil, &UserCanceledError{ExplicitCancelation: false}
	}

	resp := ret.AuthResponse
	if resp.Error != nil {
		record(eventUpgradeFailedPriorNonce)
		c.logger.Info("browser authentication returned embedded error, falling back to lookup nonce",
			"message", resp.Error.Message)
		fallback := pending.LookupNonce
		result := &VerificationResult{
			Status:         StatusAuthenticatedWithFallback,
			Nonce:          &fallback,
			FallbackReason: resp.Error.Message,
		}
		recordLiability(record, result)
		return result, nil
	}
	if resp.PaymentMethod == nil {
		return nil, domainerrors.New(domainerrors.CodeGateway,
			"browser return carried neither a payment method nor an error")
	}

	result := &VerificationResult{
		Status: StatusAuthenticated,
		Nonce:  resp.PaymentMethod,
	}
	recordLiability(record, result)
	return result, nil
}

func (c *Client) recorderFor(attemptID string) func(string) {
	return func(event string) {
		c.analytics.Record(attemptID, event)
	}
}

func (c *Client) observeOutcome(result *VerificationResult, err error) {
	if c.metrics == nil {
		return
	}
	switch {
	case err == nil:
		c.metrics.IncrementOutcome(string(result.Status))
	case IsUserCanceled(err):
		c.metrics.IncrementOutcome("canceled")
	default:
		c.metrics.IncrementOutcome("failed")
	}
}
