package paging

import (
	"errors"
	"fmt"
)

// Phase classifies a LoadState.
type Phase int

const (
	// PhaseIdle means no load is running on the axis.
	PhaseIdle Phase = iota
	// PhaseLoading means a load is in flight on the axis.
	PhaseLoading
	// PhaseFailed means the last load on the axis failed.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// LoadState describes the progress of one load axis (refresh or append).
// The zero value is Incomplete.
type LoadState struct {
	phase      Phase
	endReached bool
	err        error
}

var (
	// Incomplete is the rest state before the end of pagination.
	Incomplete = LoadState{phase: PhaseIdle}
	// Complete is the rest state once the end of pagination was reached.
	Complete = LoadState{phase: PhaseIdle, endReached: true}
	// Loading marks an in-flight load.
	Loading = LoadState{phase: PhaseLoading}
)

// NotLoading returns the rest state for the given end-of-pagination flag.
func NotLoading(endReached bool) LoadState {
	if endReached {
		return Complete
	}
	return Incomplete
}

// Failed returns the state recorded when a load fails with err.
func Failed(err error) LoadState {
	return LoadState{phase: PhaseFailed, err: err}
}

// Phase reports which variant s holds.
func (s LoadState) Phase() Phase { return s.phase }

// IsLoading reports whether s is Loading.
func (s LoadState) IsLoading() bool { return s.phase == PhaseLoading }

// IsIdle reports whether s is a NotLoading state.
func (s LoadState) IsIdle() bool { return s.phase == PhaseIdle }

// IsFailed reports whether s holds a load failure.
func (s LoadState) IsFailed() bool { return s.phase == PhaseFailed }

// EndReached reports whether s is NotLoading with the end of pagination reached.
func (s LoadState) EndReached() bool { return s.phase == PhaseIdle && s.endReached }

// Err returns the failure cause, or nil unless s is Failed.
func (s LoadState) Err() error { return s.err }

// Equal reports whether s and o hold the same variant and payload.
func (s LoadState) Equal(o LoadState) bool {
	if s.phase != o.phase || s.endReached != o.endReached {
		return false
	}
	if s.err == nil || o.err == nil {
		return s.err == nil && o.err == nil
	}
	return errors.Is(s.err, o.err) && errors.Is(o.err, s.err)
}

func (s LoadState) String() string {
	switch s.phase {
	case PhaseIdle:
		if s.endReached {
			return "NotLoading(complete)"
		}
		return "NotLoading(incomplete)"
	case PhaseLoading:
		return "Loading"
	case PhaseFailed:
		return fmt.Sprintf("Error(%v)", s.err)
	default:
		return s.phase.String()
	}
}
