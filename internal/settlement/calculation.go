package settlement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/susu3304/partypay/internal/ledger"
	"github.com/susu3304/partypay/internal/metrics"
)

var (
	// ErrIncompleteLedger is returned without a network round trip when any
	// collection is empty.
	ErrIncompleteLedger = errors.New("participants, expenses and payers are required")
	// ErrInFlight is returned while a previous request is outstanding.
	ErrInFlight = errors.New("calculation already in progress")
	// ErrCalculationFailed wraps every transport, status and decode failure.
	ErrCalculationFailed = errors.New("CalculationFailed")
)

// GenericErrorKey is the catalog key shown for any failed calculation.
const GenericErrorKey = "error"

type Phase int

const (
	Idle Phase = iota
	InFlight
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case InFlight:
		return "in_flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Calculator computes a settlement. *Client is the production implementation.
type Calculator interface {
	Calculate(ctx context.Context, req Request) (*Result, error)
}

// State is a snapshot of a Calculation.
type State struct {
	Phase  Phase
	Result *Result
	// ErrorKey is set in the Failed phase.
	ErrorKey string
}

// Busy reports whether the calculate trigger must be disabled.
func (s State) Busy() bool { return s.Phase == InFlight }

// Calculation is the per-session settlement state machine:
// Idle -> InFlight -> Succeeded | Failed, and back to InFlight on retry.
// At most one request is in flight.
type Calculation struct {
	calc   Calculator
	logger *zap.Logger

	mu    sync.Mutex
	state State
}

func NewCalculation(calc Calculator, logger *zap.Logger) *Calculation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculation{calc: calc, logger: logger}
}

func (c *Calculation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Run submits the ledger and blocks until the outcome is known. The previous
// result is dropped as soon as the request begins.
func (c *Calculation) Run(ctx context.Context, l ledger.Ledger) (*Result, error) {
	if !l.Complete() {
		metrics.CalculationsTotal.WithLabelValues("refused").Inc()
		return nil, ErrIncompleteLedger
	}

	c.mu.Lock()
	if c.state.Phase == InFlight {
		c.mu.Unlock()
		return nil, ErrInFlight
	}
	c.state = State{Phase: InFlight}
	c.mu.Unlock()

	start := time.Now()
	res, err := c.calc.Calculate(ctx, NewRequest(l))
	metrics.CalculationDuration.Observe(time.Since(start).Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil || res == nil {
		if err == nil {
			err = errors.New("empty response")
		}
		c.logger.Warn("settlement calculation failed", zap.Error(err))
		metrics.CalculationsTotal.WithLabelValues("failed").Inc()
		c.state = State{Phase: Failed, ErrorKey: GenericErrorKey}
		return nil, fmt.Errorf("%w: %v", ErrCalculationFailed, err)
	}
	res.Normalize()
	metrics.CalculationsTotal.WithLabelValues("ok").Inc()
	c.state = State{Phase: Succeeded, Result: res}
	return res, nil
}

// Reset drops any result or error. A request in flight is left alone.
func (c *Calculation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase != InFlight {
		c.state = State{}
	}
}
