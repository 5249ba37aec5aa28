package threedsecure

import (
	"context"
	"log/slog"

	domainerrors "trident/pkg/domain-errors"
)

// ResultAuthenticator exchanges a completed challenge for a final
// authenticated nonce and classifies gateway-reported per-nonce errors.
type ResultAuthenticator struct {
	gateway Gateway
	logger  *slog.Logger
}

// NewResultAuthenticator wires an authenticator against the gateway.
func NewResultAuthenticator(gateway Gateway, logger *slog.Logger) *ResultAuthenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultAuthenticator{gateway: gateway, logger: logger}
}

// Authenticate converts a challenge outcome into the attempt's terminal
// result. record receives per-attempt analytics events in order; the caller
// emits the terminal completed event right after every exit, success or
// failure, so each attempt has a matched start/end pair.
//
// Success action codes trigger the gateway JWT exchange. If the gateway
// accepts the JWT but embeds an authentication error, the pre-challenge
// lookup nonce is returned as a marked fallback rather than a failure.
// Failure action codes short-circuit without calling the gateway.
func (a *ResultAuthenticator) Authenticate(ctx context.Context, lookup *LookupResult, challengeJWT string, code ActionCode, description string, record func(string)) (result *VerificationResult, err error) {
	outcome := code.Outcome()
	switch outcome {
	case OutcomeCanceled:
		return nil, &UserCanceledError{ExplicitCancelation: true}
	case OutcomeTimedOut:
		// The vendor's timeout description is surfaced verbatim.
		if description == "" {
			description = "challenge timed out"
		}
		return nil, engineErr(description)
	case OutcomeFailed:
		return nil, engineErr("challenge was not completed")
	}

	resp, err := a.gateway.AuthenticateJWT(ctx, lookup.PaymentMethod.Nonce, challengeJWT)
	if err != nil {
		record(eventUpgradeErrored)
		return nil, domainerrors.Wrap(err, domainerrors.CodeTransport,
			"authentication request failed")
	}

	if resp.Error != nil {
		// The gateway accepted the JWT but authentication failed. The lookup
		// nonce is still usable, without liability shift; callers see the
		// distinct status so this cannot pass for a shifted success.
		record(eventUpgradeFailedPriorNonce)
		a.logger.Info("authentication returned embedded error, falling back to lookup nonce",
			"message", resp.Error.Message)
		fallback := lookup.PaymentMethod
		result = &VerificationResult{
			Status:         StatusAuthenticatedWithFallback,
			Nonce:          &fallback,
			FallbackReason: resp.Error.Message,
		}
		recordLiability(record, result)
		return result, nil
	}

	if resp.PaymentMethod == nil {
		return nil, domainerrors.New(domainerrors.CodeGateway,
			"authentication response carried neither a payment method nor an error")
	}

	result = &VerificationResult{
		Status: StatusAuthenticated,
		Nonce:  resp.PaymentMethod,
	}
	recordLiability(record, result)
	return result, nil
}

// recordLiability surfaces the gateway's liability flags as-is; there is no
// client-side reinterpretation.
func recordLiability(record func(string), result *VerificationResult) {
	record(eventLiabilityShifted(result.LiabilityShifted()))
	record(eventLiabilityShiftPossible(result.LiabilityShiftPossible()))
}
