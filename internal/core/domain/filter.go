package domain

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// FilterOp is the comparison applied by a Filter.
type FilterOp string

const (
	OpGE FilterOp = "ge"
	OpLE FilterOp = "le"
	OpEQ FilterOp = "eq"
)

// ParseFilterOp accepts the short names and their symbolic forms.
func ParseFilterOp(s string) (FilterOp, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "ge", ">=":
		return OpGE, nil
	case "le", "<=":
		return OpLE, nil
	case "eq", "=", "==":
		return OpEQ, nil
	}
	return "", fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, s)
}

// EqualityMode selects how an OpEQ filter treats matching entities.
type EqualityMode int

const (
	// EqualityHidesMatches hides entities whose attribute equals the value.
	EqualityHidesMatches EqualityMode = iota
	// EqualityKeepsMatches keeps only entities whose attribute equals the value.
	EqualityKeepsMatches
)

// ParseEqualityMode maps config strings onto an EqualityMode.
func ParseEqualityMode(s string) (EqualityMode, error) {
	switch strings.ToLower(s) {
	case "", "hide", "hide_matches":
		return EqualityHidesMatches, nil
	case "keep", "keep_matches":
		return EqualityKeepsMatches, nil
	}
	return 0, fmt.Errorf("%w: unknown equality mode %q", ErrInvalidFilter, s)
}

func (m EqualityMode) String() string {
	if m == EqualityKeepsMatches {
		return "keep_matches"
	}
	return "hide_matches"
}

// Filter is an attribute predicate.
type Filter struct {
	Field string   `json:"field"`
	Op    FilterOp `json:"op"`
	Value any      `json:"value"`
}

// Validate checks the field and operator.
func (f Filter) Validate() error {
	if f.Field == "" {
		return fmt.Errorf("%w: field is required", ErrInvalidFilter)
	}
	switch f.Op {
	case OpGE, OpLE, OpEQ:
		return nil
	}
	return fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, f.Op)
}

// Same reports whether o names the same field, operator and value.
func (f Filter) Same(o Filter) bool {
	return f.Field == o.Field && f.Op == o.Op && compare(f.Value, o.Value) == 0
}

// Passes evaluates the filter against attrs. A missing attribute fails ge and
// le. Under EqualityHidesMatches it passes eq, under EqualityKeepsMatches it
// fails.
func (f Filter) Passes(attrs Attributes, mode EqualityMode) bool {
	v, ok := attrs[f.Field]
	switch f.Op {
	case OpGE:
		return ok && compare(v, f.Value) >= 0
	case OpLE:
		return ok && compare(v, f.Value) <= 0
	case OpEQ:
		equal := ok && compare(v, f.Value) == 0
		if mode == EqualityKeepsMatches {
			return equal
		}
		return !equal
	}
	return true
}

// compare orders a and b numerically when both coerce to numbers, otherwise
// as strings.
func compare(a, b any) int {
	fa, errA := cast.ToFloat64E(a)
	fb, errB := cast.ToFloat64E(b)
	if errA == nil && errB == nil && !blankString(a) && !blankString(b) {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(cast.ToString(a), cast.ToString(b))
}

// cast turns "" into 0; treat it as text instead.
func blankString(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
