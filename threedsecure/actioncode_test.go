package threedsecure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionCodeOf(t *testing.T) {
	t.Run("recognizes every documented vendor code", func(t *testing.T) {
		for _, raw := range []string{"SUCCESS", "NOACTION", "FAILURE", "ERROR", "CANCEL", "TIMEOUT"} {
			assert.Equal(t, ActionCode(raw), ActionCodeOf(raw))
		}
	})

	t.Run("maps anything else to unknown", func(t *testing.T) {
		assert.Equal(t, ActionUnknown, ActionCodeOf("RETRY"))
		assert.Equal(t, ActionUnknown, ActionCodeOf("success"))
		assert.Equal(t, ActionUnknown, ActionCodeOf(""))
	})
}

func TestActionCodeOutcome(t *testing.T) {
	cases := []struct {
		code ActionCode
		want ChallengeOutcome
	}{
		{ActionSuccess, OutcomeCompleted},
		{ActionNoAction, OutcomeNoAction},
		{ActionCancel, OutcomeCanceled},
		{ActionTimeout, OutcomeTimedOut},
		{ActionFailure, OutcomeFailed},
		{ActionError, OutcomeFailed},
		{ActionUnknown, OutcomeFailed},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.code.Outcome())
		})
	}
}

func TestExchangeRequired(t *testing.T) {
	assert.True(t, OutcomeCompleted.exchangeRequired())
	assert.True(t, OutcomeNoAction.exchangeRequired())
	assert.False(t, OutcomeCanceled.exchangeRequired())
	assert.False(t, OutcomeFailed.exchangeRequired())
	assert.False(t, OutcomeTimedOut.exchangeRequired())
}

func TestActionCodeEventName(t *testing.T) {
	assert.Equal(t, "action-code.success", eventActionCode(ActionSuccess))
	assert.Equal(t, "action-code.no-action", eventActionCode(ActionNoAction))
	assert.Equal(t, "action-code.unknown", eventActionCode(ActionUnknown))
}
