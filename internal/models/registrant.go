package models

import "time"

// Registrant is a person signing up for talleres, uniquely identified by
// normalized (digits-only) phone number.
type Registrant struct {
	ID        int64     `json:"id"`
	Nombre    string    `json:"nombre"`
	Email     string    `json:"email"`
	Telefono  string    `json:"telefono"` // digits only
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
