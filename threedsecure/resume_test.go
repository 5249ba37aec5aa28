package threedsecure

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "trident/pkg/domain-errors"
)

func TestPendingVerificationRoundTrip(t *testing.T) {
	pending := PendingVerification{
		AttemptID:     "attempt-1",
		Nonce:         "nonce-1",
		Amount:        "10.00",
		TransactionID: "txn-1",
		Version:       "1.0.2",
		LookupNonce: CardNonce{
			Nonce:            "lookup-nonce-1",
			ThreeDSecureInfo: AuthenticationSummary{LiabilityShiftPossible: true},
		},
	}

	data, err := pending.Marshal()
	require.NoError(t, err)

	restored, err := UnmarshalPendingVerification(data)
	require.NoError(t, err)
	assert.Equal(t, pending, restored)
}

func TestUnmarshalPendingVerification(t *testing.T) {
	t.Run("rejects malformed state", func(t *testing.T) {
		_, err := UnmarshalPendingVerification([]byte("{not json"))
		assert.True(t, domainerrors.HasCode(err, domainerrors.CodeValidation))
	})

	t.Run("rejects state without a nonce", func(t *testing.T) {
		_, err := UnmarshalPendingVerification([]byte(`{"amount":"10.00"}`))
		assert.True(t, domainerrors.HasCode(err, domainerrors.CodeValidation))
	})
}

func TestParseBrowserReturn(t *testing.T) {
	t.Run("absent payload means the user came back empty-handed", func(t *testing.T) {
		ret, err := parseBrowserReturn(url.Values{})
		require.NoError(t, err)
		assert.Nil(t, ret.AuthResponse)
	})

	t.Run("parses the gateway authentication envelope", func(t *testing.T) {
		query := url.Values{}
		query.Set("auth_response", `{"paymentMethod":{"nonce":"final-nonce","threeDSecureInfo":{"liabilityShifted":true,"liabilityShiftPossible":true}}}`)

		ret, err := parseBrowserReturn(query)
		require.NoError(t, err)
		require.NotNil(t, ret.AuthResponse)
		require.NotNil(t, ret.AuthResponse.PaymentMethod)
		assert.Equal(t, "final-nonce", ret.AuthResponse.PaymentMethod.Nonce)
		assert.True(t, ret.AuthResponse.PaymentMethod.ThreeDSecureInfo.LiabilityShifted)
	})

	t.Run("rejects a malformed envelope", func(t *testing.T) {
		query := url.Values{}
		query.Set("auth_response", "{broken")

		_, err := parseBrowserReturn(query)
		assert.True(t, domainerrors.HasCode(err, domainerrors.CodeGateway))
	})
}
