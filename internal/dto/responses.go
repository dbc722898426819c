package dto

// StatusResponse acknowledges an operation with no session payload:
// "pending", "sent", or "changed".
type StatusResponse struct {
	Status string `json:"status"`
}

// SessionResponse carries a freshly issued session token with the identity
// it is bound to.
type SessionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	AccessToken string `json:"accessToken"`
}

// LoginResponse is either a session (fields inlined) or a "pending"
// acknowledgment when the account still needs email verification.
type LoginResponse struct {
	Status string `json:"status,omitempty"`
	*SessionResponse
}

// ResetRedirectResponse points the caller at the password-reset UI. The
// advisory window is deliberately shorter than the reset token's signed TTL.
type ResetRedirectResponse struct {
	RedirectURL     string `json:"redirectUrl"`
	ExpireInMinutes int    `json:"expireInMinutes"`
}

// ProfileResponse is the public projection of an account.
type ProfileResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	Verified  bool   `json:"isEmailVerified"`
}
