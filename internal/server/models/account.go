package models

import "time"

// Account is a registered user. PasswordHash and RefreshToken never leave
// the server; handlers only ever see the result of Public.
type Account struct {
	ID            string    `json:"_id" bson:"_id"`
	Username      string    `json:"username" bson:"username"`
	Email         string    `json:"email" bson:"email"`
	FullName      string    `json:"fullName" bson:"full_name"`
	PasswordHash  string    `json:"-" bson:"password_hash"`
	AvatarURL     string    `json:"avatar" bson:"avatar_url"`
	CoverImageURL string    `json:"coverImage" bson:"cover_image_url"`
	RefreshToken  string    `json:"-" bson:"refresh_token"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updated_at"`
}

// Public returns a copy with the secret fields cleared.
func (a *Account) Public() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.PasswordHash = ""
	c.RefreshToken = ""
	return &c
}

// AccountUpdate is a partial update; nil fields are left unchanged.
type AccountUpdate struct {
	FullName      *string
	Email         *string
	AvatarURL     *string
	CoverImageURL *string
	PasswordHash  *string
}

// IsEmpty reports whether the update would change nothing.
func (u AccountUpdate) IsEmpty() bool {
	return u.FullName == nil && u.Email == nil && u.AvatarURL == nil &&
		u.CoverImageURL == nil && u.PasswordHash == nil
}

// Apply merges u into a in place.
func (u AccountUpdate) Apply(a *Account) {
	if u.FullName != nil {
		a.FullName = *u.FullName
	}
	if u.Email != nil {
		a.Email = *u.Email
	}
	if u.AvatarURL != nil {
		a.AvatarURL = *u.AvatarURL
	}
	if u.CoverImageURL != nil {
		a.CoverImageURL = *u.CoverImageURL
	}
	if u.PasswordHash != nil {
		a.PasswordHash = *u.PasswordHash
	}
}
