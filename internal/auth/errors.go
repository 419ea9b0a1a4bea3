package auth

import "errors"

var (
	ErrUserNotFound      = errors.New("auth: user not found")
	ErrUserAlreadyExists = errors.New("auth: user already exists")
	ErrInvalidToken      = errors.New("auth: invalid or expired session token")
	ErrPermissionDenied  = errors.New("auth: permission denied")
)
