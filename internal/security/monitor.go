package security

import (
	"context"

	"github.com/ttacon/libphonenumber"
	"go.uber.org/zap"

	"github.com/tallerhub/backend/internal/models"
)

// Monitor records security events to the log and, best-effort, to the store.
// A recording failure never affects the request being observed.
type Monitor struct {
	repo   *Repository
	logger *zap.Logger
	region string // default region for phone plausibility checks, e.g. "CO"
}

// NewMonitor creates a security monitor. repo may be nil (log-only mode).
func NewMonitor(repo *Repository, region string, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if region == "" {
		region = "CO"
	}
	return &Monitor{repo: repo, logger: logger, region: region}
}

// Record logs a security event and persists it when a repository is attached.
func (m *Monitor) Record(ctx context.Context, kind models.SecurityEventKind, detail, clientIP string) {
	m.logger.Warn("security event",
		zap.String("kind", string(kind)),
		zap.String("detail", detail),
		zap.String("client_ip", clientIP),
	)
	if m.repo == nil {
		return
	}
	ev := &models.SecurityEvent{Kind: kind, Detail: detail, ClientIP: clientIP}
	if err := m.repo.Insert(ctx, ev); err != nil {
		m.logger.Error("persist security event failed", zap.Error(err))
	}
}

// CheckPhone records a suspicious_phone event when the normalized number does
// not parse as a plausible phone for the configured region. Observation only;
// registration never rejects on this.
func (m *Monitor) CheckPhone(ctx context.Context, normalized, clientIP string) {
	if normalized == "" {
		return
	}
	num, err := libphonenumber.Parse(normalized, m.region)
	if err != nil || !libphonenumber.IsValidNumber(num) {
		m.Record(ctx, models.EventSuspiciousPhone, "phone failed plausibility check: "+normalized, clientIP)
	}
}
