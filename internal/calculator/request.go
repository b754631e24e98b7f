// Package calculator is the settlement computation service behind
// POST /api/calculate/.
package calculator

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/susu3304/partypay/internal/settlement"
)

var (
	ErrInvalidRequest = errors.New("invalid calculation request")
	ErrQuotaExceeded  = errors.New("daily request limit reached")
)

const (
	maxItemLength = 200
	maxNameLength = 100
)

// FieldErrors maps a request field path to its problems.
type FieldErrors map[string][]string

func (f FieldErrors) add(field, msg string) { f[field] = append(f[field], msg) }

func (f FieldErrors) Error() string { return fmt.Sprintf("%d invalid fields", len(f)) }

func (f FieldErrors) Unwrap() error { return ErrInvalidRequest }

func integral(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v == math.Trunc(v)
}

// Validate checks req and returns FieldErrors, or nil when it is acceptable.
func Validate(req settlement.Request) error {
	errs := FieldErrors{}
	if len(req.Participants) == 0 {
		errs.add("participants", "This list may not be empty.")
	}
	for i, p := range req.Participants {
		if strings.TrimSpace(p) == "" {
			errs.add(fmt.Sprintf("participants[%d]", i), "This field may not be blank.")
		}
	}
	for i, e := range req.Expenses {
		field := fmt.Sprintf("expenses[%d]", i)
		switch item := strings.TrimSpace(e.Item); {
		case item == "":
			errs.add(field+".item", "This field may not be blank.")
		case utf8.RuneCountInString(item) > maxItemLength:
			errs.add(field+".item", fmt.Sprintf("Ensure this field has no more than %d characters.", maxItemLength))
		}
		if !integral(e.Amount) {
			errs.add(field+".amount", "A valid integer is required.")
		}
		if len(e.Consumers) == 0 {
			errs.add(field+".consumers", "This list may not be empty.")
		}
		for j, c := range e.Consumers {
			if strings.TrimSpace(c) == "" {
				errs.add(fmt.Sprintf("%s.consumers[%d]", field, j), "This field may not be blank.")
			}
		}
	}
	for i, p := range req.Payers {
		field := fmt.Sprintf("payers[%d]", i)
		switch name := strings.TrimSpace(p.Name); {
		case name == "":
			errs.add(field+".name", "This field may not be blank.")
		case utf8.RuneCountInString(name) > maxNameLength:
			errs.add(field+".name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxNameLength))
		}
		if !integral(p.Amount) {
			errs.add(field+".amount", "A valid integer is required.")
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
