package threedsecure

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	domainerrors "trident/pkg/domain-errors"
)

const (
	// redirectAssetsVersion is the version segment of the server-hosted
	// redirect pages. It must match what the assets host serves.
	redirectAssetsVersion = "0.2.0"

	// callbackHost is the fixed x-callback-url path the hosted redirect page
	// appends its result to, prefixed by the merchant's return scheme.
	callbackHost = "x-callback-url/braintree/threedsecure"
)

// ChallengePresenter decides the challenge modality for a lookup result and
// constructs its parameters: in-process engine challenge for version 2,
// external-browser redirect for version 1.
type ChallengePresenter struct {
	engine          AuthenticationEngine
	browser         BrowserSwitch
	returnURLScheme string
	assetsBaseURL   string
	logger          *slog.Logger
}

// NewChallengePresenter wires a presenter. The assets base URL comes from the
// gateway configuration; the return URL scheme is registered by the host
// application.
func NewChallengePresenter(engine AuthenticationEngine, browser BrowserSwitch, returnURLScheme, assetsBaseURL string, logger *slog.Logger) *ChallengePresenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChallengePresenter{
		engine:          engine,
		browser:         browser,
		returnURLScheme: returnURLScheme,
		assetsBaseURL:   assetsBaseURL,
		logger:          logger,
	}
}

// PresentInProcess forwards a version 2 challenge to the authentication
// engine's challenge UI. The engine reports through receive, possibly more
// than once.
func (p *ChallengePresenter) PresentInProcess(ctx context.Context, lookup ChallengeParameters, receive ChallengeReceiver) error {
	if lookup.TransactionID == "" || lookup.PaReq == "" {
		return domainerrors.New(domainerrors.CodeGateway,
			"lookup challenge data is malformed: missing transaction id or payload")
	}
	return p.engine.ContinueChallenge(ctx, lookup.TransactionID, lookup.PaReq, receive)
}

// PresentBrowser starts the version 1 external-browser fallback. It fails
// fast with a configuration error when the host application has no receiver
// registered for the return scheme, before any redirect is attempted.
func (p *ChallengePresenter) PresentBrowser(ctx context.Context, lookup ChallengeParameters, ui UICustomization) (string, error) {
	if err := p.browser.Assert(p.returnURLScheme); err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeConfiguration,
			fmt.Sprintf("browser switch is not configured for scheme %q", p.returnURLScheme))
	}

	redirectURL := p.BuildRedirectURL(lookup, ui)
	if err := p.browser.Start(ctx, redirectURL); err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeConfiguration,
			"browser switch failed to start")
	}

	p.logger.Info("started browser challenge",
		"transaction_id", lookup.TransactionID)
	return redirectURL, nil
}

// BuildRedirectURL constructs the hosted-redirect URL for a version 1
// challenge. The nested escaping is part of the contract with the hosted
// pages: the callback URL is escaped once when embedded into the return URL's
// query, and the whole return URL is escaped again when embedded into the
// outer redirect URL. Changing the escaping order breaks the round trip.
func (p *ChallengePresenter) BuildRedirectURL(lookup ChallengeParameters, ui UICustomization) string {
	callback := p.callbackURL(ui)

	// The redirect page's own query string is escaped as a whole after the
	// callback inside it has already been escaped once.
	returnQuery := percentEncode("redirect_url=" + percentEncode(callback))
	returnURL := fmt.Sprintf("%s/mobile/three-d-secure-redirect/%s/redirect.html?%s",
		p.assetsBaseURL, redirectAssetsVersion, returnQuery)

	return fmt.Sprintf("%s/mobile/three-d-secure-redirect/%s/index.html?AcsUrl=%s&PaReq=%s&MD=%s&TermUrl=%s&ReturnUrl=%s",
		p.assetsBaseURL, redirectAssetsVersion,
		percentEncode(lookup.AcsURL),
		percentEncode(lookup.PaReq),
		percentEncode(lookup.Md),
		percentEncode(lookup.TermURL),
		percentEncode(returnURL))
}

// callbackURL builds the merchant-scheme callback the redirect page returns
// to, with optional hosted-page label customization. The trailing separator
// stays even when no customization is present; the redirect page appends its
// own parameters after it.
func (p *ChallengePresenter) callbackURL(ui UICustomization) string {
	var params strings.Builder
	if ui.RedirectButtonText != "" {
		fmt.Fprintf(&params, "b=%s&", percentEncode(ui.RedirectButtonText))
	}
	if ui.RedirectDescription != "" {
		fmt.Fprintf(&params, "d=%s&", percentEncode(ui.RedirectDescription))
	}
	return fmt.Sprintf("%s://%s?%s", p.returnURLScheme, callbackHost, params.String())
}

// percentEncode escapes everything outside the RFC 3986 unreserved set,
// using %20 for spaces rather than '+'. The hosted redirect pages decode with
// strict percent semantics, so url.QueryEscape's form encoding is not
// interchangeable here.
func percentEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '-' || c == '.' || c == '_' || c == '~':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}
