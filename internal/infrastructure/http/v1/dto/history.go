package dto

import (
	"time"

	"agroshop/internal/infrastructure/storage/postgres"
)

// TransitionResponse is one entry of a document's status trail.
type TransitionResponse struct {
	Action     string    `json:"action"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	ActorID    *string   `json:"actorId,omitempty"`
	ActorEmail string    `json:"actorEmail,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FromTransition converts an audit record to the response DTO.
func FromTransition(rec postgres.TransitionRecord) TransitionResponse {
	return TransitionResponse{
		Action:     rec.Action,
		FromStatus: rec.FromStatus,
		ToStatus:   rec.ToStatus,
		ActorID:    idToString(rec.ActorID),
		ActorEmail: rec.ActorEmail,
		Reason:     rec.Reason,
		CreatedAt:  rec.CreatedAt,
	}
}
