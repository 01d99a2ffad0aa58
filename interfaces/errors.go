package interfaces

import (
	"errors"
	"fmt"
)

// Sentinel errors shared between the data layer and the recommendation
// engine. The scanner decides per symbol whether to skip or surface them;
// nothing below it retries.
var (
	// ErrNoOptions means the symbol has no listed options at all.
	ErrNoOptions = errors.New("no options listed for symbol")

	// ErrInsufficientExpirations means no listed expiration reaches the
	// 45-day tenor the slope calculation needs.
	ErrInsufficientExpirations = errors.New("no expiration 45 or more days out")

	// ErrNoPrice means the underlying price could not be retrieved.
	ErrNoPrice = errors.New("underlying price unavailable")

	// ErrNoAtmIV means every expiration's chain was empty on at least one
	// side, so no term-structure point could be formed.
	ErrNoAtmIV = errors.New("no ATM implied vol for any expiration")

	// ErrInsufficientHistory means the price history is too short for the
	// requested rolling window.
	ErrInsufficientHistory = errors.New("insufficient price history")
)

// EvaluationError wraps an unexpected internal fault during a per-symbol
// evaluation, carrying the symbol for the orchestrator's reporting.
type EvaluationError struct {
	Symbol string
	Err    error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation failed for %s: %v", e.Symbol, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
