package threedsecure

// ActionCode is the closed set of validation action codes the authentication
// engine's receiver can report. The set mirrors the vendor's documented codes
// exactly; anything outside it is mapped through ActionCodeOf to
// ActionUnknown rather than silently ignored.
type ActionCode string

const (
	ActionSuccess  ActionCode = "SUCCESS"
	ActionNoAction ActionCode = "NOACTION"
	ActionFailure  ActionCode = "FAILURE"
	ActionError    ActionCode = "ERROR"
	ActionCancel   ActionCode = "CANCEL"
	ActionTimeout  ActionCode = "TIMEOUT"

	// ActionUnknown marks a vendor code this client does not recognize.
	ActionUnknown ActionCode = "UNKNOWN"
)

// ActionCodeOf normalizes a raw vendor string to a known ActionCode.
func ActionCodeOf(raw string) ActionCode {
	switch ActionCode(raw) {
	case ActionSuccess, ActionNoAction, ActionFailure, ActionError,
		ActionCancel, ActionTimeout:
		return ActionCode(raw)
	default:
		return ActionUnknown
	}
}

// ChallengeOutcome is the terminal classification of the challenge phase.
type ChallengeOutcome int

const (
	// OutcomeCompleted means the challenge produced an authentication JWT.
	OutcomeCompleted ChallengeOutcome = iota
	// OutcomeNoAction means the engine decided no cardholder action was
	// needed; the JWT exchange still runs.
	OutcomeNoAction
	// OutcomeCanceled means the cardholder explicitly backed out.
	OutcomeCanceled
	// OutcomeFailed means the engine reported a failure or error.
	OutcomeFailed
	// OutcomeTimedOut means the engine reported a challenge timeout.
	OutcomeTimedOut
)

// Outcome gives the total mapping from vendor action codes to challenge
// outcomes. Every ActionCode constant has an arm here; the default arm only
// catches ActionUnknown and malformed values, which are treated as engine
// failures.
func (a ActionCode) Outcome() ChallengeOutcome {
	switch a {
	case ActionSuccess:
		return OutcomeCompleted
	case ActionNoAction:
		return OutcomeNoAction
	case ActionCancel:
		return OutcomeCanceled
	case ActionTimeout:
		return OutcomeTimedOut
	case ActionFailure, ActionError:
		return OutcomeFailed
	default:
		return OutcomeFailed
	}
}

// exchangeRequired reports whether the outcome proceeds to the gateway JWT
// exchange.
func (o ChallengeOutcome) exchangeRequired() bool {
	return o == OutcomeCompleted || o == OutcomeNoAction
}
