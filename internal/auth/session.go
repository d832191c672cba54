package auth

// SessionData is what the API layer exposes about the signed-in user
type SessionData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}
