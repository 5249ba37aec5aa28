package threedsecure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	domainerrors "trident/pkg/domain-errors"
)

type ResultAuthenticatorSuite struct {
	suite.Suite
	gateway       *fakeGateway
	authenticator *ResultAuthenticator
	lookup        *LookupResult
	events        []string
}

func TestResultAuthenticatorSuite(t *testing.T) {
	suite.Run(t, new(ResultAuthenticatorSuite))
}

func (s *ResultAuthenticatorSuite) SetupTest() {
	s.gateway = &fakeGateway{}
	s.authenticator = NewResultAuthenticator(s.gateway,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.lookup = &LookupResult{
		PaymentMethod: CardNonce{
			Nonce:            "lookup-nonce",
			ThreeDSecureInfo: AuthenticationSummary{LiabilityShiftPossible: true},
		},
	}
	s.events = nil
}

func (s *ResultAuthenticatorSuite) record(event string) {
	s.events = append(s.events, event)
}

func (s *ResultAuthenticatorSuite) authenticate(code ActionCode, jwt, description string) (*VerificationResult, error) {
	return s.authenticator.Authenticate(context.Background(), s.lookup, jwt, code, description, s.record)
}

func (s *ResultAuthenticatorSuite) TestCancelClassification() {
	s.Run("cancel is always user cancelation, never an engine error", func() {
		result, err := s.authenticate(ActionCancel, "", "")

		s.Nil(result)
		s.Require().Error(err)
		var canceled *UserCanceledError
		s.Require().ErrorAs(err, &canceled)
		s.True(canceled.ExplicitCancelation)
		s.False(domainerrors.HasCode(err, domainerrors.CodeEngine))
		s.Zero(s.gateway.authenticateCalls)
	})
}

func (s *ResultAuthenticatorSuite) TestTimeout() {
	s.Run("surfaces the vendor description verbatim", func() {
		_, err := s.authenticate(ActionTimeout, "", "challenge window elapsed after 300s")

		s.Require().Error(err)
		s.True(domainerrors.HasCode(err, domainerrors.CodeEngine))
		s.Contains(err.Error(), "challenge window elapsed after 300s")
		s.Zero(s.gateway.authenticateCalls)
	})

	s.Run("falls back to a generic message when the vendor gives none", func() {
		_, err := s.authenticate(ActionTimeout, "", "")

		s.Require().Error(err)
		s.Contains(err.Error(), "challenge timed out")
	})
}

func (s *ResultAuthenticatorSuite) TestFailureShortCircuits() {
	for _, code := range []ActionCode{ActionFailure, ActionError, ActionUnknown} {
		_, err := s.authenticate(code, "", "")

		s.Require().Error(err)
		s.True(domainerrors.HasCode(err, domainerrors.CodeEngine))
	}
	s.Zero(s.gateway.authenticateCalls)
}

func (s *ResultAuthenticatorSuite) TestSuccessfulExchange() {
	s.gateway.authenticateResp = &AuthenticationResponse{
		PaymentMethod: &CardNonce{
			Nonce:            "final-nonce",
			ThreeDSecureInfo: AuthenticationSummary{LiabilityShifted: true, LiabilityShiftPossible: true},
		},
	}

	result, err := s.authenticate(ActionSuccess, "challenge.jwt", "")

	s.Require().NoError(err)
	s.Equal(StatusAuthenticated, result.Status)
	s.Equal("final-nonce", result.Nonce.Nonce)
	s.True(result.LiabilityShifted())
	s.Equal("lookup-nonce", s.gateway.lastNonce)
	s.Equal("challenge.jwt", s.gateway.lastChallengeJWT)
	s.Equal([]string{"liability-shifted.true", "liability-shift-possible.true"}, s.events)
}

func (s *ResultAuthenticatorSuite) TestNoActionStillExchanges() {
	s.gateway.authenticateResp = &AuthenticationResponse{
		PaymentMethod: &CardNonce{Nonce: "final-nonce"},
	}

	result, err := s.authenticate(ActionNoAction, "challenge.jwt", "")

	s.Require().NoError(err)
	s.Equal(StatusAuthenticated, result.Status)
	s.Equal(1, s.gateway.authenticateCalls)
}

func (s *ResultAuthenticatorSuite) TestTransportFailure() {
	s.gateway.authenticateErr = errors.New("connection reset")

	_, err := s.authenticate(ActionSuccess, "challenge.jwt", "")

	s.Require().Error(err)
	s.True(domainerrors.HasCode(err, domainerrors.CodeTransport))
	s.Equal([]string{"upgrade-errored"}, s.events)
}

func (s *ResultAuthenticatorSuite) TestEmbeddedErrorFallsBackToLookupNonce() {
	s.gateway.authenticateResp = &AuthenticationResponse{
		Error: &GatewayError{Message: "authentication failed at the issuer"},
	}

	result, err := s.authenticate(ActionSuccess, "challenge.jwt", "")

	s.Require().NoError(err)
	s.Equal(StatusAuthenticatedWithFallback, result.Status)
	s.Equal("lookup-nonce", result.Nonce.Nonce)
	s.Equal("authentication failed at the issuer", result.FallbackReason)
	s.False(result.LiabilityShifted())
	s.Equal([]string{
		"upgrade-failed-with-prior-nonce",
		"liability-shifted.false",
		"liability-shift-possible.true",
	}, s.events)
}

func (s *ResultAuthenticatorSuite) TestEmptyEnvelope() {
	s.gateway.authenticateResp = &AuthenticationResponse{}

	_, err := s.authenticate(ActionSuccess, "challenge.jwt", "")

	s.Require().Error(err)
	s.True(domainerrors.HasCode(err, domainerrors.CodeGateway))
}

type fakeGateway struct {
	config    *Configuration
	configErr error

	lookupResult *LookupResult
	lookupErr    error

	authenticateResp  *AuthenticationResponse
	authenticateErr   error
	authenticateCalls int
	lastNonce         string
	lastChallengeJWT  string
}

func (f *fakeGateway) Configuration(context.Context) (*Configuration, error) {
	return f.config, f.configErr
}

func (f *fakeGateway) Lookup(context.Context, string, LookupRequestBody) (*LookupResult, error) {
	return f.lookupResult, f.lookupErr
}

func (f *fakeGateway) AuthenticateJWT(_ context.Context, nonce, challengeJWT string) (*AuthenticationResponse, error) {
	f.authenticateCalls++
	f.lastNonce = nonce
	f.lastChallengeJWT = challengeJWT
	return f.authenticateResp, f.authenticateErr
}
