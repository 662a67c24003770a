package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/civiport/report-management/internal/core/events"
)

// NotificationWriter turns report lifecycle events into notification rows.
// It runs on the synchronous bus so a failed write fails the operation that
// triggered it.
type NotificationWriter struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewNotificationWriter(repo RepositoryAPI, logger *slog.Logger) *NotificationWriter {
	return &NotificationWriter{repo: repo, logger: logger}
}

func (w *NotificationWriter) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventReportApproved, w.onReportApproved)
	bus.Subscribe(events.EventReportRejected, w.onReportRejected)
	bus.Subscribe(events.EventReportDelegated, w.onReportDelegated)
	bus.Subscribe(events.EventMessageSent, w.onMessageSent)
}

func (w *NotificationWriter) onReportApproved(ctx context.Context, event events.Event) error {
	reportID := payloadInt64(event, "report_id")
	reporterID := payloadInt64(event, "reporter_id")
	assigneeID := payloadInt64(event, "assignee_id")

	if err := w.repo.CreateNotification(ctx, &Notification{
		UserID:   reporterID,
		ReportID: reportID,
		Kind:     NotificationReportApproved,
		Body:     "Your report was approved and assigned to a staff member",
	}); err != nil {
		return err
	}
	return w.repo.CreateNotification(ctx, &Notification{
		UserID:   assigneeID,
		ReportID: reportID,
		Kind:     NotificationReportAssigned,
		Body:     "A report was assigned to you",
	})
}

func (w *NotificationWriter) onReportRejected(ctx context.Context, event events.Event) error {
	reason, _ := payload(event)["reason"].(string)
	return w.repo.CreateNotification(ctx, &Notification{
		UserID:   payloadInt64(event, "reporter_id"),
		ReportID: payloadInt64(event, "report_id"),
		Kind:     NotificationReportRejected,
		Body:     fmt.Sprintf("Your report was rejected: %s", reason),
	})
}

func (w *NotificationWriter) onReportDelegated(ctx context.Context, event events.Event) error {
	return w.repo.CreateNotification(ctx, &Notification{
		UserID:   payloadInt64(event, "maintainer_id"),
		ReportID: payloadInt64(event, "report_id"),
		Kind:     NotificationReportDelegated,
		Body:     "A report was delegated to your company",
	})
}

func (w *NotificationWriter) onMessageSent(ctx context.Context, event events.Event) error {
	return w.repo.CreateNotification(ctx, &Notification{
		UserID:   payloadInt64(event, "recipient_id"),
		ReportID: payloadInt64(event, "report_id"),
		Kind:     NotificationNewMessage,
		Body:     "You received a new message on a report",
	})
}

func payload(event events.Event) map[string]interface{} {
	data, _ := event.Payload().(map[string]interface{})
	return data
}

func payloadInt64(event events.Event, key string) int64 {
	switch v := payload(event)[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}
