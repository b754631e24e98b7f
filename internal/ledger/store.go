package ledger

import "sync"

// Store owns the ledger of one session. Every mutation is applied as a whole
// under the lock so a partial cascade is never observable.
type Store struct {
	mu     sync.RWMutex
	ledger Ledger
}

func NewStore() *Store {
	return &Store{}
}

// AddParticipant reports whether the name was appended. Blank or duplicate
// names are a no-op.
func (s *Store) AddParticipant(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, added := AddParticipant(s.ledger, name)
	s.ledger = next
	return added
}

// RemoveParticipant reports whether name was a participant.
func (s *Store) RemoveParticipant(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ledger.HasParticipant(name) {
		return false
	}
	s.ledger = RemoveParticipant(s.ledger, name)
	return true
}

func (s *Store) AddExpense(e Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := AddExpense(s.ledger, e)
	if err != nil {
		return err
	}
	s.ledger = next
	return nil
}

func (s *Store) RemoveExpense(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := RemoveExpense(s.ledger, index)
	s.ledger = next
	return ok
}

func (s *Store) AddPayer(p Payer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := AddPayer(s.ledger, p)
	if err != nil {
		return err
	}
	s.ledger = next
	return nil
}

func (s *Store) RemovePayer(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := RemovePayer(s.ledger, index)
	s.ledger = next
	return ok
}

// Snapshot returns a deep copy of the current ledger.
func (s *Store) Snapshot() Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Clone()
}

// Reset drops every record. Used when the session is disposed.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = Ledger{}
}

func (s *Store) TotalExpenses() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TotalExpenses(s.ledger)
}

func (s *Store) TotalPaid() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TotalPaid(s.ledger)
}

func (s *Store) IsBalanced() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return IsBalanced(s.ledger)
}

func (s *Store) ParticipantCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ledger.Participants)
}

func (s *Store) ExpenseCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ledger.Expenses)
}

func (s *Store) PayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ledger.Payers)
}
