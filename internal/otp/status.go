package otp

import (
	"fmt"
	"time"
)

// RemainingWait renders the time left until expiry in whole minutes and
// seconds. It reports false when the expiry has already passed.
func RemainingWait(expiry, now time.Time) (string, bool) {
	remaining := expiry.Sub(now)
	if remaining <= 0 {
		return "", false
	}
	sec := int(remaining.Seconds())
	min := sec / 60
	sec %= 60
	if min > 0 {
		return fmt.Sprintf("%d minute(s) and %d second(s)", min, sec), true
	}
	return fmt.Sprintf("%d second(s)", sec), true
}

// StatusMessage is the user-facing line for an account that already holds a
// code, stating how long until a new one may be requested.
func StatusMessage(expiry, now time.Time) string {
	wait, live := RemainingWait(expiry, now)
	if !live {
		return "No active OTP found. You can request a new one."
	}
	return fmt.Sprintf("An OTP has already been sent. Please try again after %s.", wait)
}
