package storeinfra

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/goliatone/go-profile-cache/document"
)

var (
	// ErrNotFound is returned when a document addressed by id does not exist.
	ErrNotFound = errors.New("store: document not found")
	// ErrDuplicateID is returned when adding a document whose id is taken.
	ErrDuplicateID = errors.New("store: duplicate document id")
)

// Operators understood by the backends.
const (
	OpEq      = "eq"
	OpIn      = "in"
	OpGte     = "gte"
	OpLte     = "lte"
	OpBetween = "between"
)

// Condition is the backend form of a single filter predicate. Single-valued
// operators read Values[0]; between reads Values[0] and Values[1].
type Condition struct {
	Field  string
	Op     string
	Values []any
}

func (c Condition) validate() error {
	if c.Field == "" {
		return fmt.Errorf("store: condition without field")
	}
	want := 1
	switch c.Op {
	case OpEq, OpGte, OpLte:
	case OpBetween:
		want = 2
	case OpIn:
		return nil
	default:
		return fmt.Errorf("store: unsupported operator %q", c.Op)
	}
	if len(c.Values) != want {
		return fmt.Errorf("store: operator %q on %q expects %d value(s), got %d", c.Op, c.Field, want, len(c.Values))
	}
	return nil
}

func matchAll(doc document.Document, conds []Condition) bool {
	for _, c := range conds {
		if !match(doc, c) {
			return false
		}
	}
	return true
}

func match(doc document.Document, c Condition) bool {
	v, ok := doc.Get(c.Field)
	if !ok {
		return false
	}
	switch c.Op {
	case OpEq:
		cmp, ok := compare(v, c.Values[0])
		return ok && cmp == 0
	case OpIn:
		for _, want := range c.Values {
			if cmp, ok := compare(v, want); ok && cmp == 0 {
				return true
			}
		}
		return false
	case OpGte:
		cmp, ok := compare(v, c.Values[0])
		return ok && cmp >= 0
	case OpLte:
		cmp, ok := compare(v, c.Values[0])
		return ok && cmp <= 0
	case OpBetween:
		lo, okLo := compare(v, c.Values[0])
		hi, okHi := compare(v, c.Values[1])
		return okLo && okHi && lo >= 0 && hi <= 0
	}
	return false
}

// compare orders two scalars of compatible type. Numbers compare numerically
// regardless of their Go type; strings are compared by their string form so
// named string types (colors, kinds) match plain strings.
func compare(a, b any) (int, bool) {
	if x, ok := toFloat(a); ok {
		y, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	}

	if x, ok := a.(time.Time); ok {
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	}

	if x, ok := a.(bool); ok {
		y, ok := b.(bool)
		if !ok || x != y {
			return 1, ok
		}
		return 0, true
	}

	x, okA := toString(a)
	y, okB := toString(b)
	if !okA || !okB {
		return 0, false
	}
	return strings.Compare(x, y), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}
