// Package redact masks secret-bearing values in arbitrary nested structures
// before they leave the process (log entries, dumped configuration).
//
// Values under a key matching one of the configured patterns are masked, as is
// everything nested below such a key. The traversal is iterative and tracks
// visited maps and slices by identity, so arbitrarily deep input and cyclic
// graphs are both handled. Strings holding JSON objects or arrays are parsed in
// place so secrets embedded in serialized payloads are found too.
//
// Redaction never fails: input it cannot interpret is returned unchanged.
package redact

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// MaskLiteral replaces short values entirely and prefixes the tail of long ones.
const MaskLiteral = "*****"

// visibleTail is how many trailing characters of a long value stay readable.
const visibleTail = 4

// DefaultPatterns are the key patterns masked by Default.
var DefaultPatterns = []string{
	"jwt",
	"token",
	"secret",
	"password",
	"private",
	"auth(orization)?",
	"cookie",
	"key",
	"email",
}

// Redactor masks values found under keys matching its patterns.
// It holds no per-call state and is safe for concurrent use.
type Redactor struct {
	patterns []*regexp.Regexp
}

// New compiles patterns as case-insensitive regular expressions.
func New(patterns ...string) (*Redactor, error) {
	r := &Redactor{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("redact: invalid pattern %q: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}
	return r, nil
}

// MustNew is New for patterns known at compile time.
func MustNew(patterns ...string) *Redactor {
	r, err := New(patterns...)
	if err != nil {
		panic(err)
	}
	return r
}

var defaultRedactor = MustNew(DefaultPatterns...)

// Default returns a Redactor using DefaultPatterns.
func Default() *Redactor {
	return defaultRedactor
}

// Matches reports whether key names a secret-bearing value.
func (r *Redactor) Matches(key string) bool {
	key = strings.ToLower(key)
	for _, re := range r.patterns {
		if re.MatchString(key) {
			return true
		}
	}
	return false
}

// Mask hides all but the last four characters of s. Values of five characters
// or fewer are replaced by MaskLiteral alone.
func Mask(s string) string {
	runes := []rune(s)
	if len(runes) <= len(MaskLiteral) {
		return MaskLiteral
	}
	return MaskLiteral + string(runes[len(runes)-visibleTail:])
}

// Redact returns a deep copy of v with every value reachable under a matching
// key masked. v is expected to be JSON shaped: map[string]any, []any and
// scalars. Shared and cyclic references in v are preserved in the copy.
func (r *Redactor) Redact(v any) any {
	if v == nil {
		return nil
	}

	root := cloneGraph(v)
	// visited records the strongest cleanse flag a node was walked with. A
	// node reached first from a plain key is walked again once a secret key
	// reaches it, so each node is walked at most twice.
	visited := make(map[nodeID]bool)
	stack := []slot{{root: true}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		value := cur.get(root)

		if !cur.root {
			if s, ok := value.(string); ok {
				if parsed, ok := parseComposite(s); ok {
					value = parsed
					cur.set(parsed)
				}
			}
		}

		if !isComposite(value) {
			if cur.cleanse && !isZero(value) {
				cur.set(Mask(formatScalar(value)))
			}
			continue
		}

		if id, ok := identity(value); ok {
			if cleansed, seen := visited[id]; seen && (cleansed || !cur.cleanse) {
				continue
			}
			visited[id] = cur.cleanse
		}

		switch node := value.(type) {
		case map[string]any:
			for key := range node {
				stack = append(stack, slot{
					object:  node,
					key:     key,
					cleanse: cur.cleanse || r.Matches(key),
				})
			}
		case []any:
			for i := range node {
				stack = append(stack, slot{
					array:   node,
					index:   i,
					cleanse: cur.cleanse,
				})
			}
		}
	}

	return root
}

// RedactMap is Redact for the common map case.
func (r *Redactor) RedactMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out, _ := r.Redact(m).(map[string]any)
	return out
}

// RedactValue redacts any Go value. Values that are not already JSON shaped are
// normalized through encoding/json first; if that fails v is returned as is.
func (r *Redactor) RedactValue(v any) any {
	switch v.(type) {
	case nil, map[string]any, []any, string, bool, float64, json.Number:
		return r.Redact(v)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return v
	}
	return r.Redact(normalized)
}

// slot addresses one value in the graph: the root, a map entry or a slice element.
type slot struct {
	root    bool
	object  map[string]any
	key     string
	array   []any
	index   int
	cleanse bool
}

func (s slot) get(root any) any {
	switch {
	case s.root:
		return root
	case s.object != nil:
		return s.object[s.key]
	default:
		return s.array[s.index]
	}
}

func (s slot) set(v any) {
	switch {
	case s.root:
		// the root is never rewritten
	case s.object != nil:
		s.object[s.key] = v
	default:
		s.array[s.index] = v
	}
}

func parseComposite(s string) (any, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return nil, false
	}
	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return nil, false
	}
	return parsed, isComposite(parsed)
}

func isComposite(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

func isZero(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return rv.IsZero()
}

func formatScalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case json.Number:
		return t.String()
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}
