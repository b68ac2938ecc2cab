package handler

import "tapcard/internal/auth/models"

// LoginResponse is the wire response for POST /api/auth/login.
type LoginResponse struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	User         models.UserView `json:"user"`
}

// RefreshResponse is the wire response for POST /api/auth/refresh.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// VerifyResponse is the wire response for GET /api/admin/verify.
type VerifyResponse struct {
	Valid bool            `json:"valid"`
	User  models.UserView `json:"user"`
}

// FromLoginResult converts a service result to the wire response.
func FromLoginResult(result *models.LoginResult) LoginResponse {
	return LoginResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         result.User,
	}
}

// FromRefreshResult converts a service result to the wire response.
func FromRefreshResult(result *models.RefreshResult) RefreshResponse {
	return RefreshResponse{AccessToken: result.AccessToken}
}
