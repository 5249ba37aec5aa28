package threedsecure

import "fmt"

// Analytics event names for the verification flow. One event is recorded per
// state transition; the relative order within an attempt is part of the
// contract (see the flow tests).
const (
	eventInitialized    = "initialized"
	eventSetupCompleted = "setup-completed"
	eventSetupFailed    = "setup-failed"

	// eventUpgradeFailedPriorNonce marks the case where the gateway accepted
	// the challenge JWT but embedded an authentication error, and the lookup
	// nonce was returned as a fallback.
	eventUpgradeFailedPriorNonce = "upgrade-failed-with-prior-nonce"
	// eventUpgradeErrored marks a transport failure on the JWT exchange.
	eventUpgradeErrored = "upgrade-errored"

	// eventCompleted terminates every attempt that emitted eventInitialized,
	// success or failure, exactly once.
	eventCompleted = "verification-flow.completed"
)

func eventChallengePresented(presented bool) string {
	return fmt.Sprintf("challenge-presented.%t", presented)
}

func eventVersion(raw string) string {
	return fmt.Sprintf("3ds-version.%s", raw)
}

func eventActionCode(code ActionCode) string {
	return fmt.Sprintf("action-code.%s", code.eventName())
}

func eventLiabilityShifted(shifted bool) string {
	return fmt.Sprintf("liability-shifted.%t", shifted)
}

func eventLiabilityShiftPossible(possible bool) string {
	return fmt.Sprintf("liability-shift-possible.%t", possible)
}

// eventName lowercases the vendor action code for the analytics vocabulary.
func (a ActionCode) eventName() string {
	switch a {
	case ActionSuccess:
		return "success"
	case ActionNoAction:
		return "no-action"
	case ActionFailure:
		return "failure"
	case ActionError:
		return "error"
	case ActionCancel:
		return "cancel"
	case ActionTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}
