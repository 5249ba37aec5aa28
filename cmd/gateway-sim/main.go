// gateway-sim is a local payment-gateway, authentication-engine, and
// analytics endpoint in one process, for developing and exercising the
// verification flow without real gateway credentials.
//
// Scenario selection is data-driven:
//   - amounts ending in ".01" require a version 2 challenge
//   - amounts ending in ".02" require a version 1 (browser) challenge
//   - nonce "lookup-error" makes the lookup fail with a gateway error
//   - nonce "embedded-error" makes the JWT exchange return an embedded error
//   - anything else is frictionless with liability shift
package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"trident/internal/platform/logger"
	"trident/threedsecure"
)

const (
	defaultPort       = "3000"
	defaultSigningKey = "gateway-sim-secret-key"
)

type server struct {
	logger     *slog.Logger
	signingKey []byte
	baseURL    string
}

func main() {
	port := getenv("PORT", defaultPort)
	log := logger.New()

	s := &server{
		logger:     log,
		signingKey: []byte(getenv("SIM_SIGNING_KEY", defaultSigningKey)),
		baseURL:    getenv("SIM_BASE_URL", "http://localhost:"+port),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/merchants/{merchantID}/client_api/v1/configuration", s.handleConfiguration)
	r.Post("/v1/payment_methods/{nonce}/three_d_secure/lookup", s.handleLookup)
	r.Post("/v1/payment_methods/{nonce}/three_d_secure/authenticate_from_jwt", s.handleAuthenticate)
	r.Post("/engine/v1/session/init", s.handleEngineInit)
	r.Post("/engine/v1/challenge", s.handleEngineChallenge)
	r.Post("/analytics", s.handleAnalytics)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	log.Info("gateway-sim listening", "port", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func (s *server) handleConfiguration(w http.ResponseWriter, r *http.Request) {
	authJWT, err := s.mintJWT(jwt.MapClaims{
		"iss": "gateway-sim",
		"sub": chi.URLParam(r, "merchantID"),
		"exp": time.Now().Add(15 * time.Minute).Unix(),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not mint authentication jwt")
		return
	}
	writeJSON(w, http.StatusOK, threedsecure.Configuration{
		Environment:       "development",
		AssetsURL:         s.baseURL,
		Enabled:           true,
		AuthenticationJWT: authJWT,
		AnalyticsURL:      s.baseURL + "/analytics",
	})
}

func (s *server) handleLookup(w http.ResponseWriter, r *http.Request) {
	nonce := chi.URLParam(r, "nonce")

	var body threedsecure.LookupRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "lookup body is not valid JSON")
		return
	}
	if nonce == "lookup-error" {
		writeJSON(w, http.StatusOK, threedsecure.LookupResult{
			Error: &threedsecure.GatewayError{Message: "simulated lookup failure"},
		})
		return
	}

	result := threedsecure.LookupResult{
		PaymentMethod: threedsecure.CardNonce{
			Nonce:   uuid.NewString(),
			Details: threedsecure.CardDetails{CardType: "Visa", LastTwo: "11"},
			ThreeDSecureInfo: threedsecure.AuthenticationSummary{
				LiabilityShifted:       true,
				LiabilityShiftPossible: true,
			},
		},
	}

	switch {
	case strings.HasSuffix(body.Amount, ".01"):
		result.PaymentMethod.ThreeDSecureInfo = threedsecure.AuthenticationSummary{LiabilityShiftPossible: true}
		result.Lookup = threedsecure.ChallengeParameters{
			AcsURL:        s.baseURL + "/acs",
			PaReq:         "sim-pareq-" + uuid.NewString(),
			Md:            "sim-md",
			TermURL:       s.baseURL + "/term",
			TransactionID: uuid.NewString(),
			Version:       "2.1.0",
		}
	case strings.HasSuffix(body.Amount, ".02"):
		result.PaymentMethod.ThreeDSecureInfo = threedsecure.AuthenticationSummary{LiabilityShiftPossible: true}
		result.Lookup = threedsecure.ChallengeParameters{
			AcsURL:        s.baseURL + "/acs",
			PaReq:         "sim-pareq-" + uuid.NewString(),
			Md:            "sim-md",
			TermURL:       s.baseURL + "/term",
			TransactionID: uuid.NewString(),
			Version:       "1.0.2",
		}
	}

	s.logger.Info("lookup served", "nonce", nonce, "amount", body.Amount,
		"df_reference_id", body.DFReferenceID,
		"challenge", result.Lookup.ChallengeRequired())
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	nonce := chi.URLParam(r, "nonce")

	var body struct {
		JWT string `json:"jwt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.JWT == "" {
		writeError(w, http.StatusUnprocessableEntity, "authenticate body is missing the jwt")
		return
	}
	if _, err := jwt.Parse(body.JWT, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	}); err != nil {
		writeJSON(w, http.StatusOK, threedsecure.AuthenticationResponse{
			Error: &threedsecure.GatewayError{Message: "challenge jwt could not be verified"},
		})
		return
	}

	if nonce == "embedded-error" {
		writeJSON(w, http.StatusOK, threedsecure.AuthenticationResponse{
			Error: &threedsecure.GatewayError{Message: "simulated authentication failure"},
		})
		return
	}

	writeJSON(w, http.StatusOK, threedsecure.AuthenticationResponse{
		PaymentMethod: &threedsecure.CardNonce{
			Nonce:   uuid.NewString(),
			Details: threedsecure.CardDetails{CardType: "Visa", LastTwo: "11"},
			ThreeDSecureInfo: threedsecure.AuthenticationSummary{
				LiabilityShifted:       true,
				LiabilityShiftPossible: true,
			},
		},
	})
}

func (s *server) handleEngineInit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		JWT string `json:"jwt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.JWT == "" {
		writeError(w, http.StatusUnprocessableEntity, "init body is missing the jwt")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"df_reference_id": "0_" + uuid.NewString(),
	})
}

func (s *server) handleEngineChallenge(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TransactionID string `json:"transaction_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.TransactionID == "" {
		writeJSON(w, http.StatusOK, map[string]string{
			"action_code": "ERROR",
			"description": "challenge request was malformed",
		})
		return
	}

	challengeJWT, err := s.mintJWT(jwt.MapClaims{
		"iss": "gateway-sim",
		"sub": body.TransactionID,
		"exp": time.Now().Add(5 * time.Minute).Unix(),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not mint challenge jwt")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"action_code": "SUCCESS",
		"jwt":         challengeJWT,
	})
}

func (s *server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Events []json.RawMessage `json:"events"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "analytics body is not valid JSON")
		return
	}
	s.logger.Info("analytics batch accepted", "events", len(body.Events))
	w.WriteHeader(http.StatusAccepted)
}

func (s *server) mintJWT(claims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"message": message},
	})
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
