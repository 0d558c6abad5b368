package paging

import (
	"context"
	"errors"
	"fmt"
)

// cancelError is a cancellation signal. It matches context.Canceled so every
// flavour of cancellation can be detected with errors.Is.
type cancelError struct {
	msg string
}

func (e *cancelError) Error() string { return e.msg }

func (e *cancelError) Is(target error) bool { return target == context.Canceled }

var (
	// ErrInterrupted cancels a mutation preempted by a newer one.
	ErrInterrupted error = &cancelError{msg: "paging: mutation interrupted"}
	// ErrLoadInFlight rejects an append while another load is registered.
	ErrLoadInFlight error = &cancelError{msg: "paging: load already in flight"}
	// ErrLoadVoid cancels a load whose source returned None.
	ErrLoadVoid error = &cancelError{msg: "paging: load result is void"}
	// ErrCanceled cancels a load through CancelRefresh, CancelAppend or CancelLoad.
	ErrCanceled error = &cancelError{msg: "paging: load canceled"}
)

// ErrReentrant is wrapped by every ReentrancyError.
var ErrReentrant = errors.New("paging: reentrant call")

// IsCanceled reports whether err is a cancellation rather than a failure.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ReentrancyError is returned when a modify block calls back into its own
// controller.
type ReentrancyError struct {
	Op string
}

func (e *ReentrancyError) Error() string {
	return fmt.Sprintf("paging: can not call %s in the modify block", e.Op)
}

func (e *ReentrancyError) Unwrap() error { return ErrReentrant }

// LoadError is a failed load. The same cause is stored in the axis LoadState.
type LoadError struct {
	Kind LoadKind
	Key  any
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("paging: %s key=%v: %v", e.Kind, e.Key, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// canceled classifies err raised while running under ctx.
func canceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || IsCanceled(err)
}

// cancelCause returns the error reported for a cancellation under ctx.
func cancelCause(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	return err
}
