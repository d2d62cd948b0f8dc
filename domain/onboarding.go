package domain

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/goliatone/go-profile-cache/document"
)

// OnboardUserInput is the input of OnboardUser.
type OnboardUserInput struct {
	Data NewUserInput `json:"data"`
	By   Actor        `json:"by"`
}

func (in OnboardUserInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Data),
	)
}

// Onboarding creates users without touching dependent caches.
type Onboarding struct {
	effects *Effects
}

func NewOnboarding(e *Effects) *Onboarding {
	return &Onboarding{effects: e}
}

// OnboardUser creates a user unless one with the same email exists.
func (o *Onboarding) OnboardUser(ctx context.Context, input OnboardUserInput) (User, error) {
	doc, err := onboard(ctx, o.effects, input)
	if err != nil {
		return User{}, err
	}
	return UserFromDocument(doc), nil
}

// onboard runs validate, existence check, create and persist. Nothing is
// written when validation fails or the user exists.
func onboard(ctx context.Context, e *Effects, input OnboardUserInput) (document.Document, error) {
	input.Data = input.Data.Normalize()
	if err := input.Validate(); err != nil {
		return document.Document{}, ValidationError(err, "invalid onboarding input")
	}

	exists, err := e.userExists(ctx, input.Data.Email)
	if err != nil {
		return document.Document{}, err
	}

	doc, err := NewUser(e.Transformer, input.Data, exists, input.By)
	if err != nil {
		return document.Document{}, err
	}

	if _, err := e.Store.Add(ctx, doc); err != nil {
		return document.Document{}, ToTypedError(err)
	}

	e.logger().Info("user onboarded",
		zap.String("userId", doc.ID),
		zap.String("createdBy", doc.CreatedBy),
	)
	return doc, nil
}
