package dto

import (
	"woodline/internal/domain/auth"
)

// LoginRequest for POST /auth/login.
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts to domain credentials.
func (r LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{Login: r.Login, Password: r.Password}
}

// LoginResponse carries the token and the logged-in user.
type LoginResponse struct {
	Token *auth.Token `json:"token"`
	User  *auth.User  `json:"user"`
}
