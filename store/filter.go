package store

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-profile-cache/internal/storeinfra"
)

// Op is a comparison operator.
type Op string

const (
	OpEq      Op = storeinfra.OpEq
	OpIn      Op = storeinfra.OpIn
	OpGte     Op = storeinfra.OpGte
	OpLte     Op = storeinfra.OpLte
	OpBetween Op = storeinfra.OpBetween
)

// Condition is a single predicate on a field. Value is used by eq, gte and
// lte; Values by in and between.
type Condition struct {
	Field  string
	Op     Op
	Value  any
	Values []any
}

// Filter is a conjunction of conditions.
type Filter []Condition

func Eq(field string, value any) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

func In(field string, values ...any) Condition {
	return Condition{Field: field, Op: OpIn, Values: values}
}

func Gte(field string, value any) Condition {
	return Condition{Field: field, Op: OpGte, Value: value}
}

func Lte(field string, value any) Condition {
	return Condition{Field: field, Op: OpLte, Value: value}
}

// Between matches lo <= field <= hi.
func Between(field string, lo, hi any) Condition {
	return Condition{Field: field, Op: OpBetween, Values: []any{lo, hi}}
}

// And returns a new filter with conds appended.
func (f Filter) And(conds ...Condition) Filter {
	out := make(Filter, 0, len(f)+len(conds))
	out = append(out, f...)
	return append(out, conds...)
}

// String renders the filter in a stable form, used in cache keys and logs.
func (f Filter) String() string {
	parts := make([]string, len(f))
	for i, c := range f {
		switch c.Op {
		case OpIn, OpBetween:
			parts[i] = fmt.Sprintf("%s %s %v", c.Field, c.Op, c.Values)
		default:
			parts[i] = fmt.Sprintf("%s %s %v", c.Field, c.Op, c.Value)
		}
	}
	return strings.Join(parts, " and ")
}

func (f Filter) toInternal() []storeinfra.Condition {
	out := make([]storeinfra.Condition, len(f))
	for i, c := range f {
		values := c.Values
		switch c.Op {
		case OpEq, OpGte, OpLte:
			values = []any{c.Value}
		}
		out[i] = storeinfra.Condition{Field: c.Field, Op: string(c.Op), Values: values}
	}
	return out
}
