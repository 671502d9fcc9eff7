package alert

import (
	"context"

	"go.uber.org/zap"
)

// Urgency levels for notifications
const (
	UrgencyLow      = "low"
	UrgencyNormal   = "normal"
	UrgencyCritical = "critical"
)

// Notification action identifiers offered to the user
const (
	ActionViewDetails = "view details"
	ActionTrustSite   = "trust this site"
)

// Notification is one user-facing alert surface
type Notification struct {
	Title          string
	Message        string
	Urgency        string
	RequireDismiss bool // Critical findings stay until explicitly dismissed
	AlertID        string
	Actions        []string
}

// Notifier surfaces notifications to the user. Implementations must not
// block the coordinator.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the structured log. The default sink
// for headless deployments.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the notification at a level matching its urgency
func (n *LogNotifier) Notify(_ context.Context, notif Notification) error {
	fields := []zap.Field{
		zap.String("title", notif.Title),
		zap.String("urgency", notif.Urgency),
		zap.String("alert_id", notif.AlertID),
		zap.Bool("requires_dismissal", notif.RequireDismiss),
	}
	switch notif.Urgency {
	case UrgencyCritical:
		n.logger.Error(notif.Message, fields...)
	case UrgencyLow:
		n.logger.Debug(notif.Message, fields...)
	default:
		n.logger.Warn(notif.Message, fields...)
	}
	return nil
}
