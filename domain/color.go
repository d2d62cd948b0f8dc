package domain

import (
	"github.com/goliatone/go-profile-cache/document"
)

// Color is a favorite color a user can pick.
type Color string

const (
	Red    Color = "red"
	Blue   Color = "blue"
	Yellow Color = "yellow"
)

// Colors lists every valid color.
func Colors() []Color {
	return []Color{Red, Blue, Yellow}
}

func (c Color) String() string { return string(c) }

// IsValid reports whether c is one of Colors.
func (c Color) IsValid() bool {
	switch c {
	case Red, Blue, Yellow:
		return true
	}
	return false
}

func colorValues() []any {
	out := make([]any, 0, 3)
	for _, c := range Colors() {
		out = append(out, c)
	}
	return out
}

func colorStrings() []any {
	out := make([]any, 0, 3)
	for _, c := range Colors() {
		out = append(out, string(c))
	}
	return out
}

// ColorTally counts the users sharing a favorite color.
type ColorTally struct {
	Tally int      `json:"tally" msgpack:"tally"`
	IDs   []string `json:"_ids" msgpack:"_ids"`
}

// NewColorTally aggregates users into a tally.
func NewColorTally(users []document.Document) ColorTally {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ColorTally{Tally: len(ids), IDs: ids}
}
