package models

import (
	"encoding/json"
	"time"
)

// RegistrationStatus is the lifecycle state of a registration.
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

// Registration links a registrant to a taller. At most one row exists per
// (usuario_id, taller_id) pair; re-registration resets status to pending.
type Registration struct {
	ID           int64              `json:"id"`
	RegistrantID int64              `json:"usuario_id"`
	TallerID     int64              `json:"taller_id"`
	Status       RegistrationStatus `json:"status"`
	Extra        json.RawMessage    `json:"extra,omitempty"` // origin, registration timestamp
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// RegistrationExtra is the structured metadata stored in Registration.Extra.
type RegistrationExtra struct {
	Origin       string    `json:"origin"`
	RegisteredAt time.Time `json:"registered_at"`
}
