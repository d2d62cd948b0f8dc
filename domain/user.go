package domain

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/goliatone/go-profile-cache/document"
)

// User fields stored on the document.
const (
	FieldEmail         = "email"
	FieldName          = "name"
	FieldAvatarURL     = "avatarUrl"
	FieldFavoriteColor = "favoriteColor"
)

var userFields = []string{FieldEmail, FieldName, FieldAvatarURL, FieldFavoriteColor}

// User is the service model of a user document.
type User struct {
	ID            string        `json:"_id"`
	Type          document.Kind `json:"type"`
	Email         string        `json:"email"`
	Name          string        `json:"name,omitempty"`
	AvatarURL     string        `json:"avatarUrl"`
	FavoriteColor Color         `json:"favoriteColor"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	CreatedBy     string        `json:"createdBy"`
	UpdatedBy     string        `json:"updatedBy"`
}

// Actor is whoever performs an operation. An empty ID means the subject acts
// on its own behalf.
type Actor struct {
	ID      string `json:"_id,omitempty"`
	IsAdmin bool   `json:"isAdmin"`
}

// NewUserInput holds the user supplied fields of a new user.
type NewUserInput struct {
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	AvatarURL     string `json:"avatarUrl"`
	FavoriteColor Color  `json:"favoriteColor"`
}

// Normalize trims the input and lowercases the email.
func (in NewUserInput) Normalize() NewUserInput {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	in.AvatarURL = strings.TrimSpace(in.AvatarURL)
	in.FavoriteColor = Color(strings.TrimSpace(string(in.FavoriteColor)))
	return in
}

func (in NewUserInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.EmailFormat),
		validation.Field(&in.Name, validation.Length(0, 200)),
		validation.Field(&in.AvatarURL, validation.Required, is.URL),
		validation.Field(&in.FavoriteColor, validation.Required, validation.In(colorValues()...)),
	)
}

// UserSchema validates the user fields of a document.
func UserSchema() document.Schema {
	return document.FieldsSchema(
		validation.Key(FieldEmail, validation.Required, is.EmailFormat),
		validation.Key(FieldName, validation.Length(0, 200)).Optional(),
		validation.Key(FieldAvatarURL, validation.Required, is.URL),
		validation.Key(FieldFavoriteColor, validation.Required, validation.In(colorStrings()...)),
	)
}

// NewUser builds the document of a new user. exists reports whether a user
// with the same email is already stored. The document is authored by the
// actor, or by itself when the actor has no id.
func NewUser(t *document.Transformer, data NewUserInput, exists bool, by Actor) (document.Document, error) {
	data = data.Normalize()
	if err := data.Validate(); err != nil {
		return document.Document{}, ValidationError(err, "invalid user")
	}
	if exists {
		return document.Document{}, ConflictError("user with email " + data.Email + " already exists")
	}

	fields := map[string]any{
		FieldEmail:         data.Email,
		FieldAvatarURL:     data.AvatarURL,
		FieldFavoriteColor: string(data.FavoriteColor),
	}
	if data.Name != "" {
		fields[FieldName] = data.Name
	}

	doc, err := t.Create(document.KindUser, document.New(document.KindUser, fields), by.ID)
	if err != nil {
		return document.Document{}, ToTypedError(err)
	}
	return doc, nil
}

// UserFromDocument maps a stored document to a User. Fields outside the
// user model are dropped.
func UserFromDocument(doc document.Document) User {
	doc = document.Strip(doc, userFields...)
	u := User{
		ID:        doc.ID,
		Type:      doc.Kind,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
		CreatedBy: doc.CreatedBy,
		UpdatedBy: doc.UpdatedBy,
	}
	u.Email, _ = doc.GetString(FieldEmail)
	u.Name, _ = doc.GetString(FieldName)
	u.AvatarURL, _ = doc.GetString(FieldAvatarURL)
	color, _ := doc.GetString(FieldFavoriteColor)
	u.FavoriteColor = Color(color)
	return u
}

// NewTransformer returns a document transformer with the user schema
// registered.
func NewTransformer(opts ...document.Option) *document.Transformer {
	opts = append([]document.Option{document.WithSchema(document.KindUser, UserSchema())}, opts...)
	return document.NewTransformer(opts...)
}
