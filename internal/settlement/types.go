package settlement

import "github.com/susu3304/partypay/internal/ledger"

// Request is the body sent to the calculation service.
type Request struct {
	Participants []string         `json:"participants"`
	Expenses     []ledger.Expense `json:"expenses"`
	Payers       []ledger.Payer   `json:"payers"`
}

// NewRequest builds a request from a ledger snapshot.
func NewRequest(l ledger.Ledger) Request {
	l = l.Clone()
	return Request{Participants: l.Participants, Expenses: l.Expenses, Payers: l.Payers}
}

// Row is one line of the result table. Balance is paid minus share as
// computed by the service: positive is owed money, negative owes money.
type Row struct {
	Name    string  `json:"name"`
	Share   float64 `json:"share"`
	Paid    float64 `json:"paid"`
	Balance float64 `json:"balance"`
	Status  string  `json:"status"`
}

// Transfer is one planned payment.
type Transfer struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// Result is the computed settlement.
type Result struct {
	Table       []Row      `json:"table"`
	Settlements []Transfer `json:"settlements"`
	Reasoning   string     `json:"reasoning"`
}

// Normalize replaces absent sequences with empty ones.
func (r *Result) Normalize() {
	if r.Table == nil {
		r.Table = []Row{}
	}
	if r.Settlements == nil {
		r.Settlements = []Transfer{}
	}
}
