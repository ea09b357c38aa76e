package users

import "errors"

var (
	ErrUserNotFound = errors.New("User not found")
	ErrUserExists   = errors.New("User already exists")
	ErrInvalidUser  = errors.New("invalid user")
)
