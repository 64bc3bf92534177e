package dto

type LoginRequest struct {
	ReviewerID string `json:"reviewer_id"`
}

type AuthMeResponse struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

type AuthTokenResponse struct {
	AccessToken  string         `json:"access_token"`
	ExpiresInSec int64          `json:"expires_in_sec"`
	Me           AuthMeResponse `json:"me"`
}
