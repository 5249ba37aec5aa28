package threedsecure

import (
	"encoding/json"
	"net/url"

	domainerrors "trident/pkg/domain-errors"
)

// PendingVerification is the serializable mid-flow state for a version 1
// browser hand-off. The hosting process may be recreated while the browser is
// open, so this is an explicit value the host application persists and
// replays into Resume, never captured closure state.
type PendingVerification struct {
	AttemptID     string    `json:"attemptId"`
	Nonce         string    `json:"nonce"`
	Amount        string    `json:"amount"`
	TransactionID string    `json:"transactionId"`
	Version       string    `json:"threeDSecureVersion"`
	LookupNonce   CardNonce `json:"lookupNonce"`
}

// Marshal serializes the pending state for the host application to persist.
func (p PendingVerification) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalPendingVerification restores pending state persisted by the host
// application.
func UnmarshalPendingVerification(data []byte) (PendingVerification, error) {
	var p PendingVerification
	if err := json.Unmarshal(data, &p); err != nil {
		return PendingVerification{}, domainerrors.Wrap(err,
			domainerrors.CodeValidation, "pending verification state is malformed")
	}
	if p.Nonce == "" {
		return PendingVerification{}, domainerrors.New(domainerrors.CodeValidation,
			"pending verification state is missing the payment method nonce")
	}
	return p, nil
}

// browserReturn is the payload the hosted redirect page appends to the
// callback URL.
type browserReturn struct {
	// AuthResponse is the gateway authentication envelope, JSON-encoded into
	// the auth_response query parameter.
	AuthResponse *AuthenticationResponse
}

// parseBrowserReturn extracts the authentication envelope from the callback
// query string. An absent auth_response parameter means the user returned
// without completing the challenge (no-action-taken).
func parseBrowserReturn(query url.Values) (browserReturn, error) {
	raw := query.Get("auth_response")
	if raw == "" {
		return browserReturn{}, nil
	}
	var resp AuthenticationResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return browserReturn{}, domainerrors.Wrap(err, domainerrors.CodeGateway,
			"browser return carried a malformed auth_response payload")
	}
	return browserReturn{AuthResponse: &resp}, nil
}
