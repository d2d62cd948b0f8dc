package domain

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Users resolves user models through the request loaders.
type Users struct {
	effects *Effects
}

func NewUsers(e *Effects) *Users {
	return &Users{effects: e}
}

// FindByID returns the user with id or a NotFoundError.
func (u *Users) FindByID(ctx context.Context, id string) (User, error) {
	if err := validateID(id); err != nil {
		return User{}, err
	}

	doc, err := u.effects.Loaders.UsersByID.Load(ctx, id)
	if err != nil {
		return User{}, UpstreamFailure(err, "user lookup failed")
	}
	if doc == nil {
		return User{}, NotFoundError("user with id " + id + " not found")
	}

	valid, err := u.effects.Transformer.Read(*doc)
	if err != nil {
		return User{}, UpstreamFailure(err, "stored user is invalid")
	}
	return UserFromDocument(valid), nil
}

func validateID(id string) error {
	err := validation.Errors{
		"id": validation.Validate(id, validation.Required),
	}.Filter()
	if err != nil {
		return ValidationError(err, "invalid id")
	}
	return nil
}
