package paging

import "time"

// Outcome classifies how a load finished.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
	OutcomeCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "canceled"
	}
}

// Observer is notified around every load a Controller performs. Calls are
// made from the loading goroutine and must not block.
type Observer interface {
	LoadStarted(name string, kind LoadKind)
	LoadFinished(name string, kind LoadKind, outcome Outcome, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) LoadStarted(string, LoadKind) {}
func (nopObserver) LoadFinished(string, LoadKind, Outcome, time.Duration) {}
