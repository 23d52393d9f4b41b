package models

import "time"

// Participant represents a person taking part in the Secret Santa.
type Participant struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DrawResult links a giver to the receiver they drew.
type DrawResult struct {
	GiverID      int    `json:"giverId"`
	GiverName    string `json:"giver"`
	ReceiverID   int    `json:"receiverId"`
	ReceiverName string `json:"receiver"`
}

// Assignment is the view a single participant gets of the draw:
// their own name and the name of the person they are buying for.
type Assignment struct {
	Giver    string `json:"giver"`
	Receiver string `json:"receiver"`
}

// DrawStatus summarises the draw session without revealing any pairing.
type DrawStatus struct {
	Completed         bool       `json:"completed"`
	TotalParticipants int        `json:"totalParticipants"`
	DrawnAt           *time.Time `json:"drawnAt,omitempty"`
}

// Request types

type AddParticipantRequest struct {
	Name string `json:"name"`
}

// Response types

type ParticipantListResponse struct {
	Participants []Participant `json:"participants"`
	TestToken    string        `json:"testToken,omitempty"`
	Instructions string        `json:"instructions,omitempty"`
}

type RemoveParticipantResponse struct {
	Message     string      `json:"message"`
	Participant Participant `json:"participant"`
}

type ImportParticipantsResponse struct {
	Imported     int           `json:"imported"`
	Participants []Participant `json:"participants"`
}

type DrawResponse struct {
	Message           string `json:"message"`
	TotalParticipants int    `json:"totalParticipants"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries a stable machine-checkable code and a human message.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Stable error codes returned in ErrorResponse.Error.
const (
	CodeValidation               = "VALIDATION_ERROR"
	CodeNotFound                 = "NOT_FOUND"
	CodeInsufficientParticipants = "INSUFFICIENT_PARTICIPANTS"
	CodeAlreadyDrawn             = "ALREADY_DRAWN"
	CodeDrawFailed               = "DRAW_FAILED"
	CodeNotDrawn                 = "NOT_DRAWN"
	CodeUnauthorized             = "UNAUTHORIZED"
	CodeInternal                 = "INTERNAL_ERROR"
)
