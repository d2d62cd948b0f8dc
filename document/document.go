package document

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"
)

// Kind discriminates document types sharing a store.
type Kind string

const (
	KindUser Kind = "user"
)

func (k Kind) String() string { return string(k) }

// Reserved JSON names of the envelope fields.
const (
	FieldID        = "_id"
	FieldKind      = "type"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
	FieldCreatedBy = "createdBy"
	FieldUpdatedBy = "updatedBy"
	FieldIsSeed    = "isSeed"
)

// Document is the envelope every persisted record adheres to.
type Document struct {
	ID        string    `json:"_id" msgpack:"_id"`
	Kind      Kind      `json:"type" msgpack:"type"`
	CreatedAt time.Time `json:"createdAt" msgpack:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" msgpack:"updatedAt"`
	CreatedBy string    `json:"createdBy,omitempty" msgpack:"createdBy,omitempty"`
	UpdatedBy string    `json:"updatedBy,omitempty" msgpack:"updatedBy,omitempty"`
	// IsSeed marks documents inserted by seeding rather than by a user action.
	IsSeed bool `json:"isSeed,omitempty" msgpack:"isSeed,omitempty"`

	// Fields holds every non-envelope field, keyed by its JSON name.
	Fields map[string]any `json:"-" msgpack:"fields,omitempty"`
}

// New returns a document of the given kind carrying the provided extra fields.
func New(kind Kind, fields map[string]any) Document {
	return Document{Kind: kind, Fields: maps.Clone(fields)}
}

// Get returns the value stored under a JSON field name, envelope fields included.
func (d Document) Get(field string) (any, bool) {
	switch field {
	case FieldID:
		return d.ID, d.ID != ""
	case FieldKind:
		return string(d.Kind), d.Kind != ""
	case FieldCreatedAt:
		return d.CreatedAt, !d.CreatedAt.IsZero()
	case FieldUpdatedAt:
		return d.UpdatedAt, !d.UpdatedAt.IsZero()
	case FieldCreatedBy:
		return d.CreatedBy, d.CreatedBy != ""
	case FieldUpdatedBy:
		return d.UpdatedBy, d.UpdatedBy != ""
	case FieldIsSeed:
		return d.IsSeed, true
	}
	v, ok := d.Fields[field]
	return v, ok
}

// GetString is Get for string-valued fields.
func (d Document) GetString(field string) (string, bool) {
	v, ok := d.Get(field)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Set stores an extra field. Envelope names are rejected.
func (d *Document) Set(field string, value any) error {
	if IsReserved(field) {
		return fmt.Errorf("document: %q is an envelope field", field)
	}
	if d.Fields == nil {
		d.Fields = make(map[string]any)
	}
	d.Fields[field] = value
	return nil
}

// Clone returns a copy whose extra field map can be modified independently.
func (d Document) Clone() Document {
	out := d
	out.Fields = maps.Clone(d.Fields)
	return out
}

// Strip returns a copy holding only the named extra fields.
func Strip(d Document, allowed ...string) Document {
	out := d
	out.Fields = make(map[string]any, len(allowed))
	for _, name := range allowed {
		if v, ok := d.Fields[name]; ok {
			out.Fields[name] = v
		}
	}
	return out
}

// IsReserved reports whether field is one of the envelope names.
func IsReserved(field string) bool {
	switch field {
	case FieldID, FieldKind, FieldCreatedAt, FieldUpdatedAt, FieldCreatedBy, FieldUpdatedBy, FieldIsSeed:
		return true
	}
	return false
}

// ToMap flattens the document into its JSON-shaped map.
func (d Document) ToMap() map[string]any {
	out := make(map[string]any, len(d.Fields)+7)
	for k, v := range d.Fields {
		out[k] = v
	}
	if d.ID != "" {
		out[FieldID] = d.ID
	}
	if d.Kind != "" {
		out[FieldKind] = string(d.Kind)
	}
	if !d.CreatedAt.IsZero() {
		out[FieldCreatedAt] = d.CreatedAt
	}
	if !d.UpdatedAt.IsZero() {
		out[FieldUpdatedAt] = d.UpdatedAt
	}
	if d.CreatedBy != "" {
		out[FieldCreatedBy] = d.CreatedBy
	}
	if d.UpdatedBy != "" {
		out[FieldUpdatedBy] = d.UpdatedBy
	}
	if d.IsSeed {
		out[FieldIsSeed] = true
	}
	return out
}

// FromMap builds a document from its JSON-shaped map. Unknown keys land in Fields.
func FromMap(m map[string]any) (Document, error) {
	var d Document
	for k, v := range m {
		var err error
		switch k {
		case FieldID:
			d.ID, err = asString(k, v)
		case FieldKind:
			var s string
			s, err = asString(k, v)
			d.Kind = Kind(s)
		case FieldCreatedAt:
			d.CreatedAt, err = asTime(k, v)
		case FieldUpdatedAt:
			d.UpdatedAt, err = asTime(k, v)
		case FieldCreatedBy:
			d.CreatedBy, err = asString(k, v)
		case FieldUpdatedBy:
			d.UpdatedBy, err = asString(k, v)
		case FieldIsSeed:
			b, ok := v.(bool)
			if !ok && v != nil {
				err = fmt.Errorf("document: field %q: expected bool, got %T", k, v)
			}
			d.IsSeed = b
		default:
			if d.Fields == nil {
				d.Fields = make(map[string]any)
			}
			d.Fields[k] = v
		}
		if err != nil {
			return Document{}, err
		}
	}
	return d, nil
}

// MarshalJSON writes the flat JSON form.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.ToMap())
}

// UnmarshalJSON reads the flat JSON form.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out, err := FromMap(raw)
	if err != nil {
		return err
	}
	*d = out
	return nil
}

func asString(field string, v any) (string, error) {
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("document: field %q: expected string, got %T", field, v)
	}
	return s, nil
}

func asTime(field string, v any) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("document: field %q: %w", field, err)
		}
		return parsed, nil
	}
	return time.Time{}, fmt.Errorf("document: field %q: expected timestamp, got %T", field, v)
}
