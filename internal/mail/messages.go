package mail

import "fmt"

// OTPMessage is the body for a one-time verification or reset code.
func OTPMessage(code string) (subject, body string) {
	subject = "Your verification code"
	body = fmt.Sprintf(
		"<p>Your one-time verification code is:</p><h2>%s</h2><p>The code expires in 5 minutes.</p>",
		code,
	)
	return subject, body
}

// LinkMessage is the body for an email-verification link.
func LinkMessage(link string) (subject, body string) {
	subject = "Verify your email"
	body = fmt.Sprintf(
		`<p>Please confirm your email address by following the link below.</p><p><a href="%s">Verify email</a></p>`,
		link,
	)
	return subject, body
}
