package dto

import "github.com/google/uuid"

// IssueTokenRequest identifies the user a token is minted for. Users are
// managed by the identity service; this only signs the claims.
type IssueTokenRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Email  string    `json:"email" validate:"omitempty,email"`
	RoleID int       `json:"role_id" validate:"required,oneof=1 2 3 4"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
