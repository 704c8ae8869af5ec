/*
errors.go - Centralized error types for the engine

PURPOSE:
  All error types in one place. Every command either succeeds with a new
  state or fails with one of these errors and leaves the input untouched.
  There is no partial application.

ERROR CATEGORIES:
  1. Invalid command input - non-positive or oversized payments
  2. Stage violations - command not allowed in the current stage
  3. Insufficient funds - payment or pay-everything beyond available cash

USAGE:
  next, err := eng.Pay(state, "visa", amount)
  if errors.Is(err, engine.ErrInsufficientFunds) {
      // show "not enough cash"
  }

SEE ALSO:
  - payment.go: Raises payment validation errors
  - advance.go: Raises stage errors
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidAmount is returned for zero or negative amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrOverpayment is returned when a payment exceeds the outstanding
	// balance by more than Epsilon.
	ErrOverpayment = errors.New("payment exceeds outstanding balance")

	// ErrInsufficientFunds is returned when the player lacks the cash.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidStage is returned when a command is issued in a stage that
	// does not accept it.
	ErrInvalidStage = errors.New("command not allowed in current stage")

	// ErrGameComplete is returned for any command except Reset once every
	// balance is paid.
	ErrGameComplete = errors.New("game already complete")

	// ErrCorruptState is returned by Unmarshal for blobs that decode but do
	// not describe a playable game.
	ErrCorruptState = errors.New("corrupt game state")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidPaymentError describes a rejected payment.
type InvalidPaymentError struct {
	AccountID   AccountID
	Amount      Money
	Outstanding Money
	Reason      error
}

func (e *InvalidPaymentError) Error() string {
	return fmt.Sprintf("invalid payment of %s to %s (outstanding %s): %v",
		e.Amount, e.AccountID, e.Outstanding, e.Reason)
}

func (e *InvalidPaymentError) Unwrap() error { return e.Reason }

// InsufficientFundsError provides details about a cash shortage.
type InsufficientFundsError struct {
	Available Money
	Requested Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available %s, requested %s, shortfall %s",
		e.Available, e.Requested, e.Shortfall())
}

func (e *InsufficientFundsError) Shortfall() Money {
	return e.Requested.Sub(e.Available).ClampZero()
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// StageError names the command and the stage that rejected it.
type StageError struct {
	Command string
	Stage   Stage
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s not allowed in stage %q", e.Command, e.Stage)
}

func (e *StageError) Unwrap() error {
	if e.Stage == StageComplete {
		return ErrGameComplete
	}
	return ErrInvalidStage
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid command input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrOverpayment) ||
		errors.Is(err, ErrCorruptState)
}

// IsConflict returns true if the command is valid but the game state does
// not allow it right now.
func IsConflict(err error) bool {
	return errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrInvalidStage) ||
		errors.Is(err, ErrGameComplete)
}
