// Package logging builds the zap loggers used across the service.
//
// Outside development mode every logger is wrapped in a redacting core that
// masks values logged under secret-looking keys (token, password, email and
// so on), including keys nested in structured fields or in a message that is
// itself a JSON document.
package logging
