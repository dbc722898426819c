package domain

import "errors"

// Stable failure kinds. Callers classify with errors.Is; the wrapping
// message carries the human-readable detail.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrExpired           = errors.New("expired")
	ErrMismatch          = errors.New("mismatch")
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidState      = errors.New("invalid state")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrDispatch          = errors.New("mail dispatch failed")
)
