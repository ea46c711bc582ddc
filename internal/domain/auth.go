package domain

// ============================================================
// Auth: Request / Response types
// ============================================================

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	NationalID string `json:"nationalId" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// LoginResponse is the body for 200 from POST /v1/auth/login.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
	SessionID   string `json:"sessionId"`
	ClientID    string `json:"clientId"`
	FullName    string `json:"fullName"`
}
