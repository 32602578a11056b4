package domain

import "errors"

// Auth errors
var (
	ErrInvalidProvider     = errors.New("invalid auth provider")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrWrongTokenPurpose   = errors.New("wrong token purpose")
	ErrSessionNotFound     = errors.New("session not found or expired")
	ErrUserNotFound        = errors.New("user not found")
)
