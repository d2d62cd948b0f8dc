package domain

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/goliatone/go-profile-cache/cache"
)

// Profile implements the profile operations that read or invalidate the
// color tallies.
type Profile struct {
	effects *Effects
}

func NewProfile(e *Effects) *Profile {
	return &Profile{effects: e}
}

// OnboardUser creates a user and drops the cached tally of its color.
func (p *Profile) OnboardUser(ctx context.Context, input OnboardUserInput) (User, error) {
	doc, err := onboard(ctx, p.effects, input)
	if err != nil {
		return User{}, err
	}

	user := UserFromDocument(doc)
	p.effects.invalidateTallies(ctx, user.FavoriteColor)
	p.effects.Loaders.UsersByID.Prime(ctx, doc.ID, &doc)
	p.effects.Loaders.UsersByFavoriteColor.Clear(ctx, string(user.FavoriteColor))
	return user, nil
}

// FindColorTally returns how many users picked color, cached for TallyTTL.
func (p *Profile) FindColorTally(ctx context.Context, color Color) (ColorTally, error) {
	if err := validateColor(color); err != nil {
		return ColorTally{}, err
	}

	e := p.effects
	compute := func(ctx context.Context) (ColorTally, error) {
		users, err := e.Loaders.UsersByFavoriteColor.Load(ctx, string(color))
		if err != nil {
			return ColorTally{}, UpstreamFailure(err, "color tally lookup failed")
		}
		return NewColorTally(users), nil
	}
	if e.Cache == nil {
		return compute(ctx)
	}
	return cache.GetOrCompute(ctx, e.Cache, e.ColorTallyKey(color), e.tallyTTL(), compute)
}

// UpdateFavoriteColor changes the favorite color of user id and drops the
// cached tallies of the previous and the new color.
func (p *Profile) UpdateFavoriteColor(ctx context.Context, id string, color Color, by Actor) (User, error) {
	if err := validateID(id); err != nil {
		return User{}, err
	}
	if err := validateColor(color); err != nil {
		return User{}, err
	}

	e := p.effects
	loaded, err := e.Loaders.UsersByID.Load(ctx, id)
	if err != nil {
		return User{}, UpstreamFailure(err, "user lookup failed")
	}
	if loaded == nil {
		return User{}, NotFoundError("user with id " + id + " not found")
	}
	doc, err := e.Transformer.Read(loaded.Clone())
	if err != nil {
		return User{}, UpstreamFailure(err, "stored user is invalid")
	}

	previous := UserFromDocument(doc).FavoriteColor
	if previous == color {
		return UserFromDocument(doc), nil
	}

	if err := doc.Set(FieldFavoriteColor, string(color)); err != nil {
		return User{}, UpstreamFailure(err, "user update failed")
	}
	if by.ID != "" {
		doc.UpdatedBy = by.ID
	}

	doc, err = e.Transformer.Update(doc)
	if err != nil {
		return User{}, ToTypedError(err)
	}
	if err := e.Store.Update(ctx, doc); err != nil {
		return User{}, ToTypedError(err)
	}

	e.logger().Info("favorite color updated",
		zap.String("userId", id),
		zap.String("from", previous.String()),
		zap.String("to", color.String()),
	)

	e.invalidateTallies(ctx, previous, color)
	e.Loaders.UsersByID.Clear(ctx, id)
	e.Loaders.UsersByID.Prime(ctx, id, &doc)
	e.Loaders.UsersByFavoriteColor.Clear(ctx, string(previous))
	e.Loaders.UsersByFavoriteColor.Clear(ctx, string(color))
	return UserFromDocument(doc), nil
}

func validateColor(color Color) error {
	err := validation.Errors{
		"color": validation.Validate(color, validation.Required, validation.In(colorValues()...)),
	}.Filter()
	if err != nil {
		return ValidationError(err, "invalid color")
	}
	return nil
}
