package engine

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	domainerrors "trident/pkg/domain-errors"
	"trident/threedsecure"
)

type HTTPEngineSuite struct {
	suite.Suite
	server *httptest.Server
	engine *HTTPEngine

	// Swappable per-test handlers behind fixed routes.
	setupHandler     http.HandlerFunc
	challengeHandler http.HandlerFunc
}

func TestHTTPEngineSuite(t *testing.T) {
	suite.Run(t, new(HTTPEngineSuite))
}

func (s *HTTPEngineSuite) SetupTest() {
	s.setupHandler = nil
	s.challengeHandler = nil

	router := chi.NewRouter()
	router.Post("/v1/session/init", func(w http.ResponseWriter, r *http.Request) {
		s.Require().NotNil(s.setupHandler, "unexpected session init call")
		s.setupHandler(w, r)
	})
	router.Post("/v1/challenge", func(w http.ResponseWriter, r *http.Request) {
		s.Require().NotNil(s.challengeHandler, "unexpected challenge call")
		s.challengeHandler(w, r)
	})
	s.server = httptest.NewServer(router)

	s.engine = New("Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0",
		WithEndpoint(s.server.URL),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func (s *HTTPEngineSuite) TearDownTest() {
	s.server.Close()
}

func (s *HTTPEngineSuite) configure() {
	s.Require().NoError(s.engine.Configure(context.Background(), threedsecure.Configuration{
		Environment: "sandbox",
	}, threedsecure.UICustomization{}))
}

func (s *HTTPEngineSuite) signedJWT(expiresIn time.Duration) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(expiresIn).Unix(),
	})
	signed, err := token.SignedString([]byte("test-key"))
	s.Require().NoError(err)
	return signed
}

func (s *HTTPEngineSuite) TestConfigureRejectsUnknownEnvironment() {
	bare := New("")
	err := bare.Configure(context.Background(), threedsecure.Configuration{
		Environment: "staging",
	}, threedsecure.UICustomization{})

	s.True(domainerrors.HasCode(err, domainerrors.CodeConfiguration))
}

func (s *HTTPEngineSuite) TestConfigurePinnedEndpointCoversAnyEnvironment() {
	s.Require().NoError(s.engine.Configure(context.Background(), threedsecure.Configuration{
		Environment: "staging",
	}, threedsecure.UICustomization{}))
}

func (s *HTTPEngineSuite) TestSetupRefusesToRunUnconfigured() {
	_, err := s.engine.Setup(context.Background(), s.signedJWT(time.Hour))

	s.True(domainerrors.HasCode(err, domainerrors.CodeEngine))
}

func (s *HTTPEngineSuite) TestSetupRejectsExpiredJWTBeforeAnyNetworkCall() {
	s.configure()

	_, err := s.engine.Setup(context.Background(), s.signedJWT(-time.Hour))

	s.True(domainerrors.HasCode(err, domainerrors.CodeEngine))
}

func (s *HTTPEngineSuite) TestSetupRejectsEmptyJWT() {
	s.configure()

	_, err := s.engine.Setup(context.Background(), "")

	s.True(domainerrors.HasCode(err, domainerrors.CodeEngine))
}

func (s *HTTPEngineSuite) TestSetupReturnsFingerprintReferenceID() {
	s.configure()
	authJWT := s.signedJWT(time.Hour)
	s.setupHandler = func(w http.ResponseWriter, r *http.Request) {
		var req setupRequest
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&req))
		s.Equal(authJWT, req.JWT)
		s.Equal("firefox", req.Device.Browser)
		s.Require().NoError(json.NewEncoder(w).Encode(setupResponse{DFReferenceID: "0_df-1"}))
	}

	dfReferenceID, err := s.engine.Setup(context.Background(), authJWT)

	s.Require().NoError(err)
	s.Equal("0_df-1", dfReferenceID)
}

func (s *HTTPEngineSuite) TestSetupTreatsEmptyReferenceIDAsFailure() {
	s.configure()
	s.setupHandler = func(w http.ResponseWriter, r *http.Request) {
		s.Require().NoError(json.NewEncoder(w).Encode(setupResponse{}))
	}

	_, err := s.engine.Setup(context.Background(), s.signedJWT(time.Hour))

	s.True(domainerrors.HasCode(err, domainerrors.CodeEngine))
}

func (s *HTTPEngineSuite) TestContinueChallengeForwardsVendorResult() {
	s.configure()
	s.challengeHandler = func(w http.ResponseWriter, r *http.Request) {
		var req challengeRequest
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&req))
		s.Equal("txn-1", req.TransactionID)
		s.Equal("pa.req", req.Payload)
		s.Require().NoError(json.NewEncoder(w).Encode(challengeResponse{
			ActionCode: "SUCCESS",
			JWT:        "challenge.jwt",
		}))
	}

	var gotCode threedsecure.ActionCode
	var gotJWT string
	err := s.engine.ContinueChallenge(context.Background(), "txn-1", "pa.req",
		func(code threedsecure.ActionCode, jwt, _ string) {
			gotCode = code
			gotJWT = jwt
		})

	s.Require().NoError(err)
	s.Equal(threedsecure.ActionSuccess, gotCode)
	s.Equal("challenge.jwt", gotJWT)
}

func (s *HTTPEngineSuite) TestContinueChallengeReportsTransportFailureThroughReceiver() {
	s.configure()
	s.server.Close()

	var gotCode threedsecure.ActionCode
	var gotDescription string
	err := s.engine.ContinueChallenge(context.Background(), "txn-1", "pa.req",
		func(code threedsecure.ActionCode, _, description string) {
			gotCode = code
			gotDescription = description
		})

	s.Require().NoError(err)
	s.Equal(threedsecure.ActionError, gotCode)
	s.NotEmpty(gotDescription)
}

func (s *HTTPEngineSuite) TestContinueChallengeNormalizesUnrecognizedCodes() {
	s.configure()
	s.challengeHandler = func(w http.ResponseWriter, r *http.Request) {
		s.Require().NoError(json.NewEncoder(w).Encode(challengeResponse{ActionCode: "RETRY"}))
	}

	var gotCode threedsecure.ActionCode
	err := s.engine.ContinueChallenge(context.Background(), "txn-1", "pa.req",
		func(code threedsecure.ActionCode, _, _ string) { gotCode = code })

	s.Require().NoError(err)
	s.Equal(threedsecure.ActionUnknown, gotCode)
}
