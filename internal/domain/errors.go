package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("permission denied")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("wrong credentials")
	// ErrPayout hides every gateway or credential failure behind one message.
	ErrPayout     = errors.New("payout credential invalid")
	ErrDecryption = errors.New("decryption failed")
)
