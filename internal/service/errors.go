package service

import "errors"

// Error taxonomy surfaced to the web layer. Handlers map these to HTTP
// status codes; raw storage errors stay behind this boundary.
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrBudgetNotFound        = errors.New("budget not found")
	ErrExpenseNotFound       = errors.New("expense not found")
	ErrBudgetHistoryNotFound = errors.New("budget has no active history snapshot")
	ErrUserExists            = errors.New("user already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrCodeSpaceExhausted    = errors.New("linking code space exhausted")
	ErrValidation            = errors.New("validation failed")
)
