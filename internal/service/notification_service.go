package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/report-portal/internal/events"
)

// NotificationService reacts to report events: it logs them for the audit trail
// and forwards them out of process when a forwarder is configured.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	forwarder  events.EventHandler
}

// NewNotificationService creates the service. forwarder may be nil.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, forwarder events.EventHandler) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		forwarder:  forwarder,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventReportSubmitted, n.handleReportSubmitted)
	n.dispatcher.Subscribe(events.EventReportRejected, n.handleReportRejected)
}

func (n *NotificationService) handleReportSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("ReportSubmitted",
		zap.Int64("report_id", event.ReportID),
		zap.String("district", event.Actor.District),
		zap.String("username", event.Actor.Username),
		zap.Any("payload", event.Payload))
	return n.forward(ctx, event)
}

func (n *NotificationService) handleReportRejected(ctx context.Context, event events.Event) error {
	n.logger.Debug("ReportRejected",
		zap.String("district", event.Actor.District),
		zap.String("username", event.Actor.Username),
		zap.Any("payload", event.Payload))
	return n.forward(ctx, event)
}

func (n *NotificationService) forward(ctx context.Context, event events.Event) error {
	if n.forwarder == nil {
		return nil
	}
	return n.forwarder(ctx, event)
}
