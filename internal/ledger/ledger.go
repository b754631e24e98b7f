// Package ledger keeps the participants, expenses and payer records of one
// wizard session mutually consistent.
//
// The package-level functions are pure: they take a Ledger and return a new
// one, leaving the input untouched. Store applies them to the ledger it owns.
package ledger

import (
	"math"
	"strings"
)

// BalanceTolerance is the largest difference between total paid and total
// expenses that is still reported as balanced (exclusive).
const BalanceTolerance = 0.01

// AddParticipant appends the trimmed name. Blank names and names already
// present leave the ledger unchanged and report false.
func AddParticipant(l Ledger, name string) (Ledger, bool) {
	name = strings.TrimSpace(name)
	if name == "" || l.HasParticipant(name) {
		return l, false
	}
	out := l.Clone()
	out.Participants = append(out.Participants, name)
	return out, true
}

// RemoveParticipant removes name and cascades: the name is pruned from every
// expense's consumers, expenses left without consumers are dropped, and every
// payer record for the name is dropped.
func RemoveParticipant(l Ledger, name string) Ledger {
	out := Ledger{
		Participants: make([]string, 0, len(l.Participants)),
		Expenses:     make([]Expense, 0, len(l.Expenses)),
		Payers:       make([]Payer, 0, len(l.Payers)),
	}
	for _, p := range l.Participants {
		if p != name {
			out.Participants = append(out.Participants, p)
		}
	}
	for _, e := range l.Expenses {
		consumers := make([]string, 0, len(e.Consumers))
		for _, c := range e.Consumers {
			if c != name {
				consumers = append(consumers, c)
			}
		}
		if len(consumers) == 0 {
			continue
		}
		e.Consumers = consumers
		out.Expenses = append(out.Expenses, e)
	}
	for _, p := range l.Payers {
		if p.Name != name {
			out.Payers = append(out.Payers, p)
		}
	}
	return out
}

// AddExpense validates e against the current participants and appends it.
// The item is trimmed and duplicate consumers are collapsed.
func AddExpense(l Ledger, e Expense) (Ledger, error) {
	e.Item = strings.TrimSpace(e.Item)
	if e.Item == "" {
		return l, invalid("item", ErrBlankItem)
	}
	if err := checkAmount(e.Amount); err != nil {
		return l, err
	}
	seen := make(map[string]struct{}, len(e.Consumers))
	consumers := make([]string, 0, len(e.Consumers))
	for _, c := range e.Consumers {
		if _, dup := seen[c]; dup {
			continue
		}
		if !l.HasParticipant(c) {
			return l, invalid("consumers", ErrUnknownParticipant)
		}
		seen[c] = struct{}{}
		consumers = append(consumers, c)
	}
	if len(consumers) == 0 {
		return l, invalid("consumers", ErrNoConsumers)
	}
	e.Consumers = consumers

	out := l.Clone()
	out.Expenses = append(out.Expenses, e)
	return out, nil
}

// RemoveExpense drops the expense at index. Out of range indexes are ignored.
func RemoveExpense(l Ledger, index int) (Ledger, bool) {
	if index < 0 || index >= len(l.Expenses) {
		return l, false
	}
	out := l.Clone()
	out.Expenses = append(out.Expenses[:index], out.Expenses[index+1:]...)
	return out, true
}

// AddPayer appends a payment record for a current participant.
func AddPayer(l Ledger, p Payer) (Ledger, error) {
	if !l.HasParticipant(p.Name) {
		return l, invalid("name", ErrUnknownParticipant)
	}
	if err := checkAmount(p.Amount); err != nil {
		return l, err
	}
	out := l.Clone()
	out.Payers = append(out.Payers, p)
	return out, nil
}

// RemovePayer drops the payer record at index. Out of range indexes are ignored.
func RemovePayer(l Ledger, index int) (Ledger, bool) {
	if index < 0 || index >= len(l.Payers) {
		return l, false
	}
	out := l.Clone()
	out.Payers = append(out.Payers[:index], out.Payers[index+1:]...)
	return out, true
}

// TotalExpenses sums every expense amount.
func TotalExpenses(l Ledger) float64 {
	var sum float64
	for _, e := range l.Expenses {
		sum += e.Amount
	}
	return sum
}

// TotalPaid sums every payer amount.
func TotalPaid(l Ledger) float64 {
	var sum float64
	for _, p := range l.Payers {
		sum += p.Amount
	}
	return sum
}

// IsBalanced reports whether payments cover expenses within BalanceTolerance.
func IsBalanced(l Ledger) bool {
	return Balanced(TotalPaid(l), TotalExpenses(l))
}

// Balanced compares two totals with the fixed tolerance.
func Balanced(paid, owed float64) bool {
	return math.Abs(paid-owed) < BalanceTolerance
}
