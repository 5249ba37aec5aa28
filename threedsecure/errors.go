package threedsecure

import (
	"errors"
	"fmt"

	domainerrors "trident/pkg/domain-errors"
)

// UserCanceledError reports that the cardholder abandoned the challenge. It
// is distinct from engine or transport failures so callers can give
// abandonment different UX treatment.
type UserCanceledError struct {
	// ExplicitCancelation is true when the vendor reported an explicit
	// cancel action (the user pressed cancel), as opposed to
	// environment-initiated abandonment such as a dismissed browser return.
	ExplicitCancelation bool
}

func (e *UserCanceledError) Error() string {
	return "user canceled 3ds authentication"
}

// Is lets errors.Is match any UserCanceledError and the shared
// CodeUserCanceled domain code.
func (e *UserCanceledError) Is(target error) bool {
	if _, ok := target.(*UserCanceledError); ok {
		return true
	}
	return domainerrors.HasCode(target, domainerrors.CodeUserCanceled)
}

// IsUserCanceled reports whether err represents cardholder abandonment,
// explicit or not.
func IsUserCanceled(err error) bool {
	var canceled *UserCanceledError
	return errors.As(err, &canceled)
}

func validationErr(msg string) error {
	return domainerrors.New(domainerrors.CodeValidation, msg)
}

func configurationErr(msg string) error {
	return domainerrors.New(domainerrors.CodeConfiguration, msg)
}

func engineErr(description string) error {
	return domainerrors.New(domainerrors.CodeEngine,
		fmt.Sprintf("authentication engine failure: %s", description))
}
