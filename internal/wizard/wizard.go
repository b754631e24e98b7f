// Package wizard implements the four-step progression of a session:
// participants, expenses, payers, results.
package wizard

import (
	"errors"
	"fmt"
	"sync"
)

type Step int

const (
	StepParticipants Step = iota
	StepExpenses
	StepPayers
	StepResults
)

// TotalSteps is the number of steps; StepResults is terminal.
const TotalSteps = 4

var stepNames = [TotalSteps]string{"participants", "expenses", "payers", "results"}

// String returns the catalog key naming the step.
func (s Step) String() string {
	if s < 0 || int(s) >= TotalSteps {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// Valid reports whether s is inside [0, TotalSteps).
func (s Step) Valid() bool {
	return s >= 0 && int(s) < TotalSteps
}

// Catalog keys of the blocking messages, indexed by the current step.
const (
	MsgAddParticipantsFirst = "addParticipantsFirst"
	MsgAddExpensesFirst     = "addExpensesFirst"
	MsgAddPayersFirst       = "addPayersFirst"
)

var blockedMessages = [...]string{MsgAddParticipantsFirst, MsgAddExpensesFirst, MsgAddPayersFirst}

var ErrNavigationBlocked = errors.New("NavigationBlocked")

// BlockedError is returned by Next when the current step is incomplete.
type BlockedError struct {
	Step       Step
	MessageKey string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNavigationBlocked, e.MessageKey)
}

func (e *BlockedError) Unwrap() error { return ErrNavigationBlocked }

// Ledger is the read side of the ledger the completeness predicates look at.
type Ledger interface {
	ParticipantCount() int
	ExpenseCount() int
	PayerCount() int
}

// Controller tracks the current step of one session.
type Controller struct {
	mu      sync.Mutex
	ledger  Ledger
	current Step
}

func New(l Ledger) *Controller {
	return &Controller{ledger: l}
}

func (c *Controller) Current() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// CanProceed evaluates the completeness predicate of step.
func (c *Controller) CanProceed(step Step) bool {
	switch step {
	case StepParticipants:
		return c.ledger.ParticipantCount() >= 2
	case StepExpenses:
		return c.ledger.ExpenseCount() > 0
	case StepPayers:
		return c.ledger.PayerCount() > 0
	default:
		return true
	}
}

// Next advances one step. An incomplete current step yields a *BlockedError
// and leaves the step unchanged. Next at the terminal step is a no-op.
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.CanProceed(c.current) {
		return &BlockedError{Step: c.current, MessageKey: blockedMessages[c.current]}
	}
	if int(c.current) < TotalSteps-1 {
		c.current++
	}
	return nil
}

// Previous goes back one step. It is never blocked.
func (c *Controller) Previous() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == StepParticipants {
		return false
	}
	c.current--
	return true
}

// GoTo jumps to step when it is at or before the current one, or when the
// current step is complete. Intermediate steps are not checked, so a jump
// from the first step to results only needs two participants.
func (c *Controller) GoTo(step Step) bool {
	if !step.Valid() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if step <= c.current || c.CanProceed(c.current) {
		c.current = step
		return true
	}
	return false
}

// Reset returns to the first step.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = StepParticipants
}
