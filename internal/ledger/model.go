package ledger

// Expense is a cost split among exactly its consumers.
type Expense struct {
	Item      string   `json:"item"`
	Amount    float64  `json:"amount"`
	Consumers []string `json:"consumers"`
}

// Payer is one payment event. A participant may pay more than once.
type Payer struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Ledger is a snapshot of the three collections of a session.
type Ledger struct {
	Participants []string  `json:"participants"`
	Expenses     []Expense `json:"expenses"`
	Payers       []Payer   `json:"payers"`
}

// Clone returns a deep copy.
func (l Ledger) Clone() Ledger {
	out := Ledger{
		Participants: append([]string{}, l.Participants...),
		Expenses:     make([]Expense, len(l.Expenses)),
		Payers:       append([]Payer{}, l.Payers...),
	}
	for i, e := range l.Expenses {
		e.Consumers = append([]string{}, e.Consumers...)
		out.Expenses[i] = e
	}
	return out
}

// HasParticipant reports whether name is a current participant (exact match).
func (l Ledger) HasParticipant(name string) bool {
	for _, p := range l.Participants {
		if p == name {
			return true
		}
	}
	return false
}

// Complete reports whether every collection is non-empty.
func (l Ledger) Complete() bool {
	return len(l.Participants) > 0 && len(l.Expenses) > 0 && len(l.Payers) > 0
}
