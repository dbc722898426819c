package dto

// VerifyBy selects the verification secret mechanism at registration,
// login re-issuance, and resend. Empty means OTP.
const (
	VerifyByOTP  = "otp"
	VerifyByLink = "link"
)

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role,omitempty"`
	VerifyBy  string `json:"verifyBy,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	VerifyBy string `json:"verifyBy,omitempty"`
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type VerifyEmailByTokenRequest struct {
	Token string `json:"token"`
}

type ResendVerificationRequest struct {
	Email    string `json:"email"`
	VerifyBy string `json:"verifyBy,omitempty"`
}

type ForgetPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}
