package syncengine

import "fmt"

// ConversionError wraps a failure translating between a Store tree and a
// Snapshot: malformed persisted state, a bad enum value, a missing
// required field. A tick failing with this aborts its transactions and
// logs; the engine stays Running.
type ConversionError struct{ Err error }

func (e *ConversionError) Error() string { return fmt.Sprintf("conversion error: %s", e.Err) }
func (e *ConversionError) Unwrap() error { return e.Err }

// StoreError wraps a Store-layer failure: a transaction conflict, a
// missing branch head where one was required, a merge failure. Same
// tick-abort treatment as ConversionError.
type StoreError struct{ Err error }

func (e *StoreError) Error() string { return fmt.Sprintf("store error: %s", e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

// InvariantViolation marks a condition the engine's own contract
// guarantees but a specific tick nonetheless violated: an empty-parent or
// too-many-parents transaction, an unexpected branch absence after init.
// Fatal to the tick, not to the engine.
type InvariantViolation struct{ Msg string }

func (e *InvariantViolation) Error() string { return fmt.Sprintf("invariant violation: %s", e.Msg) }

// assertf panics with a ProgrammerInvariant if cond is false. Reserved
// for conditions that can only be false due to a bug in this package
// itself (e.g. "the transaction we just opened is somehow already
// closed"), never for anything a Store or Hub response could trigger.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(&ProgrammerInvariant{Msg: fmt.Sprintf(format, args...)})
	}
}

// ProgrammerInvariant is what assertf panics with. Recovering from one is
// not a supported way to handle it: its existence means this package has
// a bug.
type ProgrammerInvariant struct{ Msg string }

func (e *ProgrammerInvariant) Error() string { return fmt.Sprintf("programmer invariant: %s", e.Msg) }
