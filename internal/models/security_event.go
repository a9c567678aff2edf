package models

import (
	"time"

	"github.com/google/uuid"
)

// SecurityEventKind classifies recorded security events.
type SecurityEventKind string

const (
	EventRateLimitExceeded SecurityEventKind = "rate_limit_exceeded"
	EventLoginFailed       SecurityEventKind = "login_failed"
	EventInvalidTallerID   SecurityEventKind = "invalid_taller_id"
	EventSuspiciousPhone   SecurityEventKind = "suspicious_phone"
)

// SecurityEvent is an audit record of a suspicious or rejected interaction.
type SecurityEvent struct {
	ID        uuid.UUID         `json:"id"`
	Kind      SecurityEventKind `json:"kind"`
	Detail    string            `json:"detail"`
	ClientIP  string            `json:"client_ip,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
