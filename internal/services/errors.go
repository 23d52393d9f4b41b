package services

import "errors"

// Error kinds returned by the registry and the draw engine. Callers match
// them with errors.Is; the HTTP layer maps each one to a fixed status code.
var (
	ErrValidation               = errors.New("validation failed")
	ErrNotFound                 = errors.New("not found")
	ErrInsufficientParticipants = errors.New("at least 3 participants are required for the draw")
	ErrAlreadyDrawn             = errors.New("the draw has already been performed")
	ErrDrawFailed               = errors.New("could not produce a valid draw")
	ErrNotDrawn                 = errors.New("the draw has not been performed yet")
)
