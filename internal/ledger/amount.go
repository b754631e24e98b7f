package ledger

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount parses user text input into an amount. Blank, non-numeric,
// non-finite and negative input is refused.
func ParseAmount(text string) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, invalid("amount", ErrInvalidAmount)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, invalid("amount", ErrInvalidAmount)
	}
	if err := checkAmount(v); err != nil {
		return 0, err
	}
	return v, nil
}

func checkAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return invalid("amount", ErrInvalidAmount)
	}
	return nil
}
