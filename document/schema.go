package document

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// TextCodeInvalidDocument tags validation errors raised by the Transformer.
const TextCodeInvalidDocument = "INVALID_DOCUMENT"

// Schema validates the kind-specific part of a document.
type Schema interface {
	Validate(doc Document) error
}

// SchemaFunc adapts a function to Schema.
type SchemaFunc func(doc Document) error

func (f SchemaFunc) Validate(doc Document) error { return f(doc) }

// FieldsSchema validates the extra fields of a document with ozzo key rules.
// Keys without rules pass through untouched.
func FieldsSchema(keys ...*validation.KeyRules) Schema {
	rule := validation.Map(keys...).AllowExtraKeys()
	return SchemaFunc(func(doc Document) error {
		fields := doc.Fields
		if fields == nil {
			// ozzo treats a nil map as valid, which would skip required keys
			fields = map[string]any{}
		}
		return rule.Validate(fields)
	})
}
