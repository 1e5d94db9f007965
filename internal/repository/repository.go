package repository

import "errors"

// Sentinel errors the services translate into their own taxonomy. Raw pgx
// errors never cross the repository boundary for the not-found cases.
var (
	ErrNotFound         = errors.New("entity not found")
	ErrNoActiveSnapshot = errors.New("no active budget history snapshot")
)
