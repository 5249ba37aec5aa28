package threedsecure

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Gateway,AuthenticationEngine,BrowserSwitch,AnalyticsRecorder

import "context"

// Gateway is the payment-gateway surface the verification flow depends on.
// The production implementation lives in trident/gateway.
type Gateway interface {
	// Configuration returns the merchant configuration, cached with a TTL by
	// the implementation.
	Configuration(ctx context.Context) (*Configuration, error)

	// Lookup posts the lookup body for the given payment method nonce and
	// returns the parsed result.
	Lookup(ctx context.Context, nonce string, body LookupRequestBody) (*LookupResult, error)

	// AuthenticateJWT exchanges a completed-challenge JWT for the final
	// authenticated nonce.
	AuthenticateJWT(ctx context.Context, nonce, challengeJWT string) (*AuthenticationResponse, error)
}

// ChallengeReceiver is invoked by the authentication engine when the
// in-process challenge UI finishes. The engine contract allows duplicate
// invocations; the flow guards against them.
type ChallengeReceiver func(code ActionCode, challengeJWT string, description string)

// AuthenticationEngine is the four-operation capability boundary around the
// third-party on-device authentication SDK. The engine owns no business
// logic; it performs device fingerprinting and drives the challenge UI.
type AuthenticationEngine interface {
	// Configure prepares the engine for the environment described by the
	// gateway configuration plus the merchant's UI customization.
	Configure(ctx context.Context, cfg Configuration, ui UICustomization) error

	// Setup starts device fingerprinting with the configuration JWT and
	// returns the df_reference_id. A Setup error never aborts the
	// verification flow; the lookup simply omits the reference id.
	Setup(ctx context.Context, authenticationJWT string) (string, error)

	// ContinueChallenge drives the in-process challenge UI for a version 2
	// lookup and reports the result through receive. Implementations may
	// call receive more than once; callers must tolerate that.
	ContinueChallenge(ctx context.Context, transactionID, payload string, receive ChallengeReceiver) error
}

// BrowserSwitch is the facility that hands a version 1 challenge to an
// external browser and later yields the callback query payload to the host
// application.
type BrowserSwitch interface {
	// Assert verifies that the host application can receive the callback for
	// the given URL scheme. It must fail fast, before any redirect starts.
	Assert(returnURLScheme string) error

	// Start opens the redirect URL in the external browser.
	Start(ctx context.Context, redirectURL string) error
}

// AnalyticsRecorder accepts flow events. Relative order of events recorded
// for one attempt must be preserved by implementations; delivery may be
// asynchronous.
type AnalyticsRecorder interface {
	Record(attemptID, event string)
}

// noopAnalytics is the default recorder when none is configured.
type noopAnalytics struct{}

func (noopAnalytics) Record(string, string) {}
