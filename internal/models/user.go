package models

import (
	"regexp"
	"time"

	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

type SignupRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	RepeatPassword string `json:"repeat_password"`
}

var usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)

func (b SignupRequest) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.Username, v.Required, v.Length(1, 150),
			v.Match(usernameRegex).Error("may contain only letters, digits and @/./+/-/_")),
		v.Field(&b.Email, v.Required, v.Length(0, 254), is.EmailFormat),
		v.Field(&b.Password, v.Required, v.Length(8, 128)),
		v.Field(&b.RepeatPassword, v.Required, v.In(b.Password).Error("Passwords do not match.")),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (b LoginRequest) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.Email, v.Required),
		v.Field(&b.Password, v.Required),
	)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}
