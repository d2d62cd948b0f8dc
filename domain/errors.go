package domain

import (
	"context"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-profile-cache/store"
)

// Text codes carried by domain errors.
const (
	TextCodeValidation        = "VALIDATION_ERROR"
	TextCodeUserAlreadyExists = "USER_ALREADY_EXISTS"
	TextCodeUserNotFound      = "USER_NOT_FOUND"
	TextCodeGeneric           = "GENERIC_ERROR"
)

// ValidationError reports malformed input. Field errors are taken from
// ozzo-validation errors.
func ValidationError(err error, message string) *goerrors.Error {
	var typed *goerrors.Error
	if goerrors.As(err, &typed) && typed.Category == goerrors.CategoryValidation {
		out := typed.Clone()
		out.Message = message + ": " + typed.Message
		return out.WithCode(http.StatusBadRequest).WithTextCode(TextCodeValidation)
	}
	if err == nil {
		return goerrors.New(message, goerrors.CategoryValidation).
			WithCode(http.StatusBadRequest).
			WithTextCode(TextCodeValidation)
	}
	return goerrors.FromOzzoValidation(err, message).
		WithCode(http.StatusBadRequest).
		WithTextCode(TextCodeValidation)
}

// ConflictError reports that the entity already exists.
func ConflictError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryConflict).
		WithCode(http.StatusConflict).
		WithTextCode(TextCodeUserAlreadyExists)
}

// NotFoundError reports a missing entity.
func NotFoundError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(TextCodeUserNotFound)
}

// UpstreamFailure reports a failed store call. err is kept as the source.
func UpstreamFailure(err error, message string) *goerrors.Error {
	if message == "" {
		message = "generic error"
	}
	out := goerrors.New(message, goerrors.CategoryExternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(TextCodeGeneric)
	out.Source = err
	return out
}

// ToTypedError normalizes err into one of the domain errors. Errors that are
// already typed are returned as they are; anything unknown becomes an
// upstream failure carrying the original message.
func ToTypedError(err error) error {
	if err == nil {
		return nil
	}

	var typed *goerrors.Error
	if goerrors.As(err, &typed) {
		switch typed.Category {
		case goerrors.CategoryValidation:
			if typed.TextCode == TextCodeValidation {
				return typed
			}
			return ValidationError(typed, "invalid input")
		case goerrors.CategoryConflict, goerrors.CategoryNotFound, goerrors.CategoryExternal:
			if typed.Code != 0 && typed.TextCode != "" {
				return typed
			}
		}
	}

	var verrs validation.Errors
	if goerrors.As(err, &verrs) {
		return ValidationError(err, "invalid input")
	}
	if goerrors.Is(err, store.ErrNotFound) {
		return NotFoundError("user not found")
	}
	if goerrors.Is(err, store.ErrDuplicateID) {
		return ConflictError(err.Error())
	}
	if goerrors.Is(err, context.Canceled) || goerrors.Is(err, context.DeadlineExceeded) {
		return UpstreamFailure(err, "request aborted")
	}
	return UpstreamFailure(err, err.Error())
}
