package models

import "time"

// Taller is a workshop offered on the public catalog.
type Taller struct {
	ID          int64      `json:"id"`
	Nombre      string     `json:"nombre"`
	Slug        string     `json:"slug"`
	Descripcion string     `json:"descripcion"`
	PriceCents  int        `json:"price_cents"`
	Currency    string     `json:"currency"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	Capacity    int        `json:"capacity"`
	ImageURL    string     `json:"image_url,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
