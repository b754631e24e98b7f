package settlement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/susu3304/partypay/internal/ledger"
)

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

type fakeCalculator struct {
	mu    sync.Mutex
	calls int
	gate  chan struct{}
	res   *Result
	err   error
}

func (f *fakeCalculator) Calculate(ctx context.Context, req Request) (*Result, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.res, f.err
}

func completeLedger() ledger.Ledger {
	r := sampleRequest()
	return ledger.Ledger{Participants: r.Participants, Expenses: r.Expenses, Payers: r.Payers}
}

func TestRunRefusesIncompleteLedger(t *testing.T) {
	f := &fakeCalculator{}
	c := NewCalculation(f, nil)

	l := completeLedger()
	l.Payers = nil
	_, err := c.Run(context.Background(), l)
	assert.ErrorIs(t, err, ErrIncompleteLedger)
	assert.Zero(t, f.calls, "no round trip")
	assert.Equal(t, Idle, c.State().Phase)
}

func TestRunSuccessAndFailure(t *testing.T) {
	f := &fakeCalculator{err: errors.New("connection refused")}
	c := NewCalculation(f, nil)

	_, err := c.Run(context.Background(), completeLedger())
	assert.ErrorIs(t, err, ErrCalculationFailed)
	st := c.State()
	assert.Equal(t, Failed, st.Phase)
	assert.Equal(t, GenericErrorKey, st.ErrorKey)
	assert.Nil(t, st.Result, "no partial result")

	// retry is user initiated and repeats the same contract
	f.err = nil
	f.res = &Result{Reasoning: "done"}
	res, err := c.Run(context.Background(), completeLedger())
	require.NoError(t, err)
	assert.Equal(t, "done", res.Reasoning)
	assert.NotNil(t, res.Table)

	st = c.State()
	assert.Equal(t, Succeeded, st.Phase)
	assert.Empty(t, st.ErrorKey)
	assert.Equal(t, 2, f.calls)
}

func TestRunNilResultFails(t *testing.T) {
	c := NewCalculation(&fakeCalculator{}, nil)
	_, err := c.Run(context.Background(), completeLedger())
	assert.ErrorIs(t, err, ErrCalculationFailed)
}

func TestRunSingleFlight(t *testing.T) {
	f := &fakeCalculator{gate: make(chan struct{}), res: &Result{}}
	c := NewCalculation(f, nil)
	c.state = State{Phase: Succeeded, Result: &Result{Reasoning: "old"}}

	done := make(chan error, 1)
	go func() {
		_, err := c.Run(context.Background(), completeLedger())
		done <- err
	}()

	require.Eventually(t, func() bool { return c.State().Busy() }, timeout, tick)
	assert.Nil(t, c.State().Result, "previous result is invalidated when a request begins")

	_, err := c.Run(context.Background(), completeLedger())
	assert.ErrorIs(t, err, ErrInFlight)

	c.Reset()
	assert.True(t, c.State().Busy(), "reset leaves an in-flight request alone")

	close(f.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, Succeeded, c.State().Phase)

	c.Reset()
	assert.Equal(t, Idle, c.State().Phase)
}
