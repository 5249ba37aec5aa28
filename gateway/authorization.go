package gateway

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainerrors "trident/pkg/domain-errors"
)

// AuthorizationKind distinguishes the two merchant credential formats.
type AuthorizationKind string

const (
	// KindTokenizationKey is the static "{environment}_{key}_{merchant}"
	// credential shipped inside the application.
	KindTokenizationKey AuthorizationKind = "tokenization_key"
	// KindClientToken is a server-minted base64 blob carrying a short-lived
	// authorization fingerprint.
	KindClientToken AuthorizationKind = "client_token"
)

// Authorization is a parsed merchant credential plus the endpoints derived
// from it.
type Authorization struct {
	Kind        AuthorizationKind
	Environment string

	// Bearer is the value sent on the Authorization header: the raw
	// tokenization key or the client token's authorization fingerprint.
	Bearer string

	// ConfigURL is the configuration endpoint for this credential.
	ConfigURL string

	// AssetsURL overrides the configuration's assets URL when the client
	// token pins one. Empty otherwise.
	AssetsURL string
}

// clientToken is the decoded JSON inside a base64 client token.
type clientToken struct {
	Version                  int    `json:"version"`
	AuthorizationFingerprint string `json:"authorizationFingerprint"`
	ConfigURL                string `json:"configUrl"`
	AssetsURL                string `json:"assetsUrl"`
	Environment              string `json:"environment"`
}

var environmentHosts = map[string]string{
	"development": "http://localhost:3000",
	"sandbox":     "https://api.sandbox.gateway.trident.dev",
	"production":  "https://api.gateway.trident.dev",
}

// ParseAuthorization accepts either a tokenization key or a base64 client
// token. Unparseable credentials are configuration errors: nothing about
// them is retriable.
func ParseAuthorization(raw string) (*Authorization, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, domainerrors.New(domainerrors.CodeConfiguration,
			"an authorization is required")
	}

	if host, merchantID, ok := splitTokenizationKey(raw); ok {
		env := strings.SplitN(raw, "_", 2)[0]
		return &Authorization{
			Kind:        KindTokenizationKey,
			Environment: env,
			Bearer:      raw,
			ConfigURL:   fmt.Sprintf("%s/merchants/%s/client_api/v1/configuration", host, merchantID),
		}, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeConfiguration,
			"authorization is neither a tokenization key nor a client token")
	}
	var token clientToken
	if err := json.Unmarshal(decoded, &token); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeConfiguration,
			"client token is not valid JSON")
	}
	if token.AuthorizationFingerprint == "" || token.ConfigURL == "" {
		return nil, domainerrors.New(domainerrors.CodeConfiguration,
			"client token is missing its authorization fingerprint or config URL")
	}
	if err := checkFingerprintExpiry(token.AuthorizationFingerprint); err != nil {
		return nil, err
	}

	return &Authorization{
		Kind:        KindClientToken,
		Environment: token.Environment,
		Bearer:      token.AuthorizationFingerprint,
		ConfigURL:   token.ConfigURL,
		AssetsURL:   token.AssetsURL,
	}, nil
}

// splitTokenizationKey recognizes "{environment}_{key}_{merchant}" for the
// known environments and returns the API host plus merchant id.
func splitTokenizationKey(raw string) (host, merchantID string, ok bool) {
	parts := strings.SplitN(raw, "_", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	host, known := environmentHosts[parts[0]]
	if !known {
		return "", "", false
	}
	return host, parts[2], true
}

// checkFingerprintExpiry parses the fingerprint JWT without verifying its
// signature (the gateway verifies; the client only refuses to start doomed
// flows with an expired token).
func checkFingerprintExpiry(fingerprint string) error {
	token, _, err := jwt.NewParser().ParseUnverified(fingerprint, jwt.MapClaims{})
	if err != nil {
		// Legacy fingerprints are not JWTs; let the gateway judge those.
		return nil
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if exp.Before(time.Now()) {
		return domainerrors.New(domainerrors.CodeConfiguration,
			"client token authorization fingerprint is expired")
	}
	return nil
}
