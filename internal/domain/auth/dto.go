package auth

import (
	"github.com/vendora/vendora-api/internal/domain/user"
)

// RegisterRequest creates a viewer account, or a vendor account when an
// onboarding invitation token is supplied.
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	FullName        string `json:"full_name" validate:"required,min=2,max=120"`
	Phone           string `json:"phone" validate:"omitempty,max=32"`
	InvitationToken string `json:"invitation_token" validate:"omitempty,len=64,hexadecimal"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type TokensResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type AuthResponse struct {
	User   user.Public    `json:"user"`
	Tokens TokensResponse `json:"tokens"`
}
