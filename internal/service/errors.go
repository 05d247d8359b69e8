package service

import (
	"errors"
	"fmt"

	"github.com/nexaguru/nexaguru/internal/models"
)

var (
	ErrEmptyCredentials   = errors.New("email and password are required")
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrInvalidAmount = errors.New("amount must be a positive integer")

	ErrEmptyPrompt         = errors.New("prompt cannot be empty")
	ErrUnsupportedMode     = errors.New("unsupported generation mode")
	ErrInvalidAspectRatio  = errors.New("unsupported aspect ratio")
	ErrGenerationBusy      = errors.New("a generation is already in progress for this account")
	ErrInsufficientCredits = errors.New("insufficient credits")

	ErrInvalidGiftCode = errors.New("invalid or expired code")
	ErrGiftRedeemed    = errors.New("gift code already redeemed on this account")

	ErrPlanNotFound    = errors.New("plan not found")
	ErrPaymentNotFound = errors.New("payment not found")
)

// ErrProviderFailure groups every failure raised by the generation backend.
var ErrProviderFailure = errors.New("generation provider failure")

// ProviderFailureError wraps the backend error so callers can both match the
// group and unwrap the specific provider sentinel.
type ProviderFailureError struct {
	Err error
}

func (e *ProviderFailureError) Error() string { return e.Err.Error() }

func (e *ProviderFailureError) Unwrap() error { return e.Err }

func (e *ProviderFailureError) Is(target error) bool {
	return target == ErrProviderFailure
}

// InsufficientCreditsError carries the shortfall details the presentation
// layer needs for its upsell message. errors.Is matches it against
// ErrInsufficientCredits.
type InsufficientCreditsError struct {
	Mode    models.Mode
	Cost    int
	Balance int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: %s requires %d, balance is %d", e.Mode, e.Cost, e.Balance)
}

func (e *InsufficientCreditsError) Is(target error) bool {
	return target == ErrInsufficientCredits
}
