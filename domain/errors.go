package domain

import "errors"

var (
	ErrValidation        = errors.New("validation error")   // 400
	ErrUnauthenticated   = errors.New("not signed in")      // 401
	ErrInvalidPIN        = errors.New("invalid pin")        // 401
	ErrForbidden         = errors.New("forbidden")          // 403
	ErrNotFound          = errors.New("not found")          // 404
	ErrInsufficientStock = errors.New("insufficient stock") // 422
)
