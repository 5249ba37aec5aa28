// Package browserswitch hands a verification off to an external browser and
// parses the callback the redirect target returns the host application to.
package browserswitch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	domainerrors "trident/pkg/domain-errors"
	"trident/threedsecure"
)

// Opener launches a URL in the external browser. Hosts supply their own
// (xdg-open, an Android intent bridge, a test capture).
type Opener func(ctx context.Context, rawURL string) error

// Switcher implements threedsecure.BrowserSwitch over a set of callback
// schemes the host application has registered.
type Switcher struct {
	opener  Opener
	schemes map[string]struct{}
	logger  *slog.Logger
}

var _ threedsecure.BrowserSwitch = (*Switcher)(nil)

// Option configures the Switcher.
type Option func(*Switcher)

// WithLogger sets the logger for the switcher.
func WithLogger(l *slog.Logger) Option {
	return func(s *Switcher) {
		s.logger = l
	}
}

// New builds a switcher. registeredSchemes are the callback URL schemes the
// host application can receive; Assert rejects anything else.
func New(opener Opener, registeredSchemes []string, opts ...Option) *Switcher {
	if opener == nil {
		panic("browserswitch.New: opener is required")
	}
	s := &Switcher{
		opener:  opener,
		schemes: make(map[string]struct{}, len(registeredSchemes)),
		logger:  slog.Default(),
	}
	for _, scheme := range registeredSchemes {
		s.schemes[scheme] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assert verifies a receiver is registered for the scheme. Called before any
// redirect starts so misconfiguration fails fast and non-retriably.
func (s *Switcher) Assert(returnURLScheme string) error {
	if _, ok := s.schemes[returnURLScheme]; !ok {
		return domainerrors.New(domainerrors.CodeConfiguration,
			fmt.Sprintf("no browser switch receiver is registered for scheme %q; register the scheme in the host application", returnURLScheme))
	}
	return nil
}

// Start opens the redirect URL in the external browser.
func (s *Switcher) Start(ctx context.Context, redirectURL string) error {
	s.logger.Info("opening external browser for challenge")
	return s.opener(ctx, redirectURL)
}

// ParseReturn extracts the query payload from the callback URL the browser
// resumed the host application with. The values feed Client.Resume.
func ParseReturn(callbackURL string) (url.Values, error) {
	parsed, err := url.Parse(callbackURL)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeValidation,
			"browser callback URL is malformed")
	}
	return parsed.Query(), nil
}
