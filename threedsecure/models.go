package threedsecure

import (
	"log/slog"
	"strings"

	domainerrors "trident/pkg/domain-errors"
)

// ProtocolVersion identifies the major 3-D Secure protocol version a lookup
// resolved to.
type ProtocolVersion int

const (
	// VersionOne is the legacy browser-redirect protocol.
	VersionOne ProtocolVersion = 1
	// VersionTwo is the in-process challenge protocol and the default.
	VersionTwo ProtocolVersion = 2
)

func (v ProtocolVersion) String() string {
	if v == VersionOne {
		return "1"
	}
	return "2"
}

// protocolVersionOf maps a gateway version string ("2.1.0", "1.0.2", ...) to
// a supported major version by exact prefix match. Unrecognized versions fall
// back to version 1 for backward compatibility with the hosted redirect page;
// the fallback is logged because it usually signals a gateway rollout ahead
// of this client.
func protocolVersionOf(raw string, logger *slog.Logger) ProtocolVersion {
	switch {
	case strings.HasPrefix(raw, "2."):
		return VersionTwo
	case strings.HasPrefix(raw, "1."):
		return VersionOne
	default:
		if logger != nil {
			logger.Warn("unrecognized 3ds protocol version, assuming version 1",
				"version", raw)
		}
		return VersionOne
	}
}

// BillingAddress carries the cardholder contact fields forwarded to the
// gateway lookup. All fields are optional.
type BillingAddress struct {
	GivenName       string `json:"givenName,omitempty" yaml:"given_name"`
	Surname         string `json:"surname,omitempty" yaml:"surname"`
	StreetAddress   string `json:"streetAddress,omitempty" yaml:"street_address"`
	ExtendedAddress string `json:"extendedAddress,omitempty" yaml:"extended_address"`
	Line3           string `json:"line3,omitempty" yaml:"line3"`
	Locality        string `json:"locality,omitempty" yaml:"locality"`
	Region          string `json:"region,omitempty" yaml:"region"`
	PostalCode      string `json:"postalCode,omitempty" yaml:"postal_code"`
	CountryCode     string `json:"countryCodeAlpha2,omitempty" yaml:"country_code"`
	PhoneNumber     string `json:"phoneNumber,omitempty" yaml:"phone_number"`
}

// UICustomization carries the merchant-supplied labels for the hosted
// version 1 redirect page.
type UICustomization struct {
	RedirectButtonText  string `json:"redirectButtonText,omitempty" yaml:"redirect_button_text"`
	RedirectDescription string `json:"redirectDescription,omitempty" yaml:"redirect_description"`
}

func (u UICustomization) empty() bool {
	return u.RedirectButtonText == "" && u.RedirectDescription == ""
}

// VerificationRequest describes one card verification attempt. It is owned by
// the caller and read-only to the client once Verify is invoked.
type VerificationRequest struct {
	// Nonce is the opaque reference to the tokenized card. Required.
	Nonce string `json:"nonce" yaml:"nonce"`
	// Amount is the transaction amount as a decimal string. Required.
	Amount string `json:"amount" yaml:"amount"`

	// RequestedVersion selects the protocol preference. Zero value means
	// version 2.
	RequestedVersion ProtocolVersion `json:"requestedVersion,omitempty" yaml:"requested_version"`

	AccountType       string          `json:"accountType,omitempty" yaml:"account_type"`
	Email             string          `json:"email,omitempty" yaml:"email"`
	MobilePhoneNumber string          `json:"mobilePhoneNumber,omitempty" yaml:"mobile_phone_number"`
	ShippingMethod    string          `json:"shippingMethod,omitempty" yaml:"shipping_method"`
	AccountID         string          `json:"accountId,omitempty" yaml:"account_id"`
	BillingAddress    *BillingAddress `json:"billingAddress,omitempty" yaml:"billing_address"`

	ChallengeRequested bool  `json:"challengeRequested,omitempty" yaml:"challenge_requested"`
	DataOnlyRequested  bool  `json:"dataOnlyRequested,omitempty" yaml:"data_only_requested"`
	ExemptionRequested bool  `json:"exemptionRequested,omitempty" yaml:"exemption_requested"`
	CardAddChallenge   *bool `json:"cardAddChallenge,omitempty" yaml:"card_add_challenge"`

	UICustomization UICustomization `json:"uiCustomization,omitempty" yaml:"ui_customization"`
}

// version resolves the effective protocol preference.
func (r VerificationRequest) version() ProtocolVersion {
	if r.RequestedVersion == VersionOne {
		return VersionOne
	}
	return VersionTwo
}

// validate enforces the fail-fast invariant: nonce and amount must both be
// present before any network call is attempted.
func (r VerificationRequest) validate() error {
	if r.Nonce == "" {
		return domainerrors.New(domainerrors.CodeValidation,
			"a payment method nonce is required for verification")
	}
	if r.Amount == "" {
		return domainerrors.New(domainerrors.CodeValidation,
			"an amount is required for verification")
	}
	return nil
}

// AuthenticationSummary is the liability-shift outcome the gateway attaches
// to a card nonce. Flags are surfaced as-is, with no client-side
// reinterpretation.
type AuthenticationSummary struct {
	LiabilityShifted       bool `json:"liabilityShifted"`
	LiabilityShiftPossible bool `json:"liabilityShiftPossible"`
}

// CardDetails is the displayable subset of the verified card.
type CardDetails struct {
	CardType string `json:"cardType,omitempty"`
	LastTwo  string `json:"lastTwo,omitempty"`
}

// CardNonce is a tokenized card reference as returned by the gateway,
// together with its authentication summary.
type CardNonce struct {
	Nonce            string                `json:"nonce"`
	Description      string                `json:"description,omitempty"`
	Details          CardDetails           `json:"details"`
	ThreeDSecureInfo AuthenticationSummary `json:"threeDSecureInfo"`
}

// ChallengeParameters carries the access-control-server coordinates from a
// lookup. An empty AcsURL means no user challenge is required.
type ChallengeParameters struct {
	AcsURL        string `json:"acsUrl"`
	Md            string `json:"md"`
	TermURL       string `json:"termUrl"`
	PaReq         string `json:"pareq"`
	TransactionID string `json:"transactionId"`
	Version       string `json:"threeDSecureVersion"`
}

// ChallengeRequired reports whether the lookup demands a user-facing
// challenge.
func (c ChallengeParameters) ChallengeRequired() bool {
	return c.AcsURL != ""
}

// GatewayError is a domain error embedded in an otherwise successful gateway
// body.
type GatewayError struct {
	Message string `json:"message"`
}

// LookupResult is the gateway response to the lookup call. It is transient
// and single-use: the client threads it through the state machine and drops
// it when the attempt terminates.
type LookupResult struct {
	PaymentMethod CardNonce           `json:"paymentMethod"`
	Lookup        ChallengeParameters `json:"lookup"`
	Error         *GatewayError       `json:"error,omitempty"`
}

// AuthenticationResponse is the gateway envelope for the JWT-authentication
// exchange. Exactly one of PaymentMethod or Error carries meaning.
type AuthenticationResponse struct {
	PaymentMethod *CardNonce    `json:"paymentMethod,omitempty"`
	Error         *GatewayError `json:"error,omitempty"`
}

// Configuration is the subset of the gateway configuration the verification
// flow consumes.
type Configuration struct {
	Environment       string `json:"environment"`
	AssetsURL         string `json:"assetsUrl"`
	Enabled           bool   `json:"threeDSecureEnabled"`
	AuthenticationJWT string `json:"cardinalAuthenticationJWT"`
	AnalyticsURL      string `json:"analyticsUrl,omitempty"`
}

// VerificationStatus classifies a VerificationResult.
type VerificationStatus string

const (
	// StatusAuthenticated is a fully authenticated nonce; liability-shift
	// flags come from the gateway unmodified.
	StatusAuthenticated VerificationStatus = "authenticated"

	// StatusAuthenticatedWithFallback means the gateway accepted the
	// challenge JWT but reported an authentication error; the pre-challenge
	// lookup nonce is returned as a usable, non-liability-shifted fallback.
	// Callers must not treat this as a liability-shifted success.
	StatusAuthenticatedWithFallback VerificationStatus = "authenticated_with_fallback"

	// StatusLookupOnly means no challenge was required and the lookup's own
	// authentication summary stands.
	StatusLookupOnly VerificationStatus = "lookup_only"

	// StatusBrowserChallenge means a version 1 browser switch was started;
	// the attempt finishes in a later Resume call.
	StatusBrowserChallenge VerificationStatus = "browser_challenge"
)

// BrowserChallenge describes a started version 1 browser hand-off.
type BrowserChallenge struct {
	RedirectURL string              `json:"redirectUrl"`
	Pending     PendingVerification `json:"pending"`
}

// VerificationResult is the single value delivered to the caller for an
// attempt. It is constructed at most once and immutable thereafter.
type VerificationResult struct {
	Status VerificationStatus `json:"status"`

	// Nonce is the authenticated (or fallback) card nonce. Nil only when
	// Status is StatusBrowserChallenge.
	Nonce *CardNonce `json:"nonce,omitempty"`

	// FallbackReason carries the gateway's embedded error message when
	// Status is StatusAuthenticatedWithFallback.
	FallbackReason string `json:"fallbackReason,omitempty"`

	// BrowserChallenge is set only when Status is StatusBrowserChallenge.
	BrowserChallenge *BrowserChallenge `json:"browserChallenge,omitempty"`
}

// LiabilityShifted reports the gateway's liability-shift flag, false when the
// attempt has not produced a nonce yet.
func (r *VerificationResult) LiabilityShifted() bool {
	return r.Nonce != nil && r.Nonce.ThreeDSecureInfo.LiabilityShifted
}

// LiabilityShiftPossible reports the gateway's liability-shift-possible flag.
func (r *VerificationResult) LiabilityShiftPossible() bool {
	return r.Nonce != nil && r.Nonce.ThreeDSecureInfo.LiabilityShiftPossible
}
