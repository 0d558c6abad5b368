package paging

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadStateVariants(t *testing.T) {
	boom := errors.New("boom")

	cases := []struct {
		name    string
		state   LoadState
		phase   Phase
		loading bool
		idle    bool
		failed  bool
		end     bool
		err     error
		str     string
	}{
		{name: "zero", state: LoadState{}, phase: PhaseIdle, idle: true, str: "NotLoading(incomplete)"},
		{name: "incomplete", state: NotLoading(false), phase: PhaseIdle, idle: true, str: "NotLoading(incomplete)"},
		{name: "complete", state: NotLoading(true), phase: PhaseIdle, idle: true, end: true, str: "NotLoading(complete)"},
		{name: "loading", state: Loading, phase: PhaseLoading, loading: true, str: "Loading"},
		{name: "failed", state: Failed(boom), phase: PhaseFailed, failed: true, err: boom, str: "Error(boom)"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.phase, tc.state.Phase())
			assert.Equal(t, tc.loading, tc.state.IsLoading())
			assert.Equal(t, tc.idle, tc.state.IsIdle())
			assert.Equal(t, tc.failed, tc.state.IsFailed())
			assert.Equal(t, tc.end, tc.state.EndReached())
			assert.Equal(t, tc.err, tc.state.Err())
			assert.Equal(t, tc.str, tc.state.String())
		})
	}
}

func TestLoadStateEqual(t *testing.T) {
	boom := errors.New("boom")
	wrapped := fmt.Errorf("wrapped: %w", boom)

	assert.True(t, Incomplete.Equal(LoadState{}))
	assert.True(t, Complete.Equal(NotLoading(true)))
	assert.False(t, Complete.Equal(Incomplete))
	assert.False(t, Loading.Equal(Incomplete))
	assert.True(t, Failed(boom).Equal(Failed(boom)))
	assert.False(t, Failed(boom).Equal(Failed(errors.New("boom"))))
	assert.False(t, Failed(boom).Equal(Failed(wrapped)))
	assert.False(t, Failed(boom).Equal(Failed(nil)))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "loading", PhaseLoading.String())
	assert.Equal(t, "failed", PhaseFailed.String())
	assert.Equal(t, "phase(7)", Phase(7).String())
}
