package document

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Clock supplies the timestamps stamped onto documents.
type Clock interface {
	Now() time.Time
}

// IDGenerator supplies ids for documents created without one.
type IDGenerator interface {
	NewID() string
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// IDFunc adapts a function to IDGenerator.
type IDFunc func() string

func (f IDFunc) NewID() string { return f() }

// SystemClock reports wall-clock time in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator generates random (v4) UUID strings.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// Transformer applies the create, update and read lifecycle modes.
// It is safe for concurrent use once constructed.
type Transformer struct {
	clock   Clock
	ids     IDGenerator
	schemas map[Kind]Schema
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(t *Transformer) {
		if c != nil {
			t.clock = c
		}
	}
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(g IDGenerator) Option {
	return func(t *Transformer) {
		if g != nil {
			t.ids = g
		}
	}
}

// WithSchema registers the schema validating documents of kind.
// A nil schema registers the kind with envelope validation only.
func WithSchema(kind Kind, schema Schema) Option {
	return func(t *Transformer) {
		t.schemas[kind] = schema
	}
}

// NewTransformer creates a Transformer using the system clock and UUID ids by default.
func NewTransformer(opts ...Option) *Transformer {
	t := &Transformer{
		clock:   SystemClock{},
		ids:     UUIDGenerator{},
		schemas: make(map[Kind]Schema),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Now exposes the transformer clock so callers stamp related values consistently.
func (t *Transformer) Now() time.Time {
	return t.clock.Now()
}

// Create prepares a new document for persistence.
//
// The id is generated when unset and createdAt is kept when already present,
// which lets replays and migrations carry their original values. updatedAt is
// never earlier than createdAt. When actorID is empty the document is authored
// by itself.
func (t *Transformer) Create(kind Kind, doc Document, actorID string) (Document, error) {
	out := doc.Clone()
	if out.ID == "" {
		out.ID = t.ids.NewID()
	}

	now := t.clock.Now()
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now
	}
	out.UpdatedAt = now
	if out.UpdatedAt.Before(out.CreatedAt) {
		out.UpdatedAt = out.CreatedAt
	}
	out.Kind = kind

	by := actorID
	if by == "" {
		by = out.ID
	}
	out.CreatedBy = by
	out.UpdatedBy = by

	if err := t.validate(out); err != nil {
		return Document{}, err
	}
	return out, nil
}

// Update refreshes updatedAt and re-validates. id and createdAt are left as they are.
func (t *Transformer) Update(doc Document) (Document, error) {
	out := doc.Clone()
	out.UpdatedAt = t.clock.Now()
	if out.UpdatedAt.Before(out.CreatedAt) {
		out.UpdatedAt = out.CreatedAt
	}
	if err := t.validate(out); err != nil {
		return Document{}, err
	}
	return out, nil
}

// Read validates a document loaded from the store without modifying it.
func (t *Transformer) Read(doc Document) (Document, error) {
	if err := t.validate(doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (t *Transformer) validate(doc Document) error {
	err := validation.ValidateStruct(&doc,
		validation.Field(&doc.ID, validation.Required),
		validation.Field(&doc.Kind, validation.Required, validation.By(t.registeredKind)),
		validation.Field(&doc.CreatedAt, validation.Required),
		validation.Field(&doc.UpdatedAt, validation.Required, validation.By(notBefore(doc.CreatedAt))),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid document").
			WithTextCode(TextCodeInvalidDocument)
	}

	schema := t.schemas[doc.Kind]
	if schema == nil {
		return nil
	}
	if err := schema.Validate(doc); err != nil {
		var typed *goerrors.Error
		if goerrors.As(err, &typed) {
			return typed
		}
		return goerrors.FromOzzoValidation(err, "invalid "+doc.Kind.String()+" document").
			WithTextCode(TextCodeInvalidDocument)
	}
	return nil
}

func (t *Transformer) registeredKind(v any) error {
	kind, _ := v.(Kind)
	if _, ok := t.schemas[kind]; !ok {
		return validation.NewError("validation_kind_unknown", "unknown document kind")
	}
	return nil
}

func notBefore(start time.Time) validation.RuleFunc {
	return func(v any) error {
		ts, _ := v.(time.Time)
		if !ts.IsZero() && ts.Before(start) {
			return validation.NewError("validation_updated_before_created", "must not be before createdAt")
		}
		return nil
	}
}
