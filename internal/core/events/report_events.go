package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventReportApproved  = "report.approved"
	EventReportRejected  = "report.rejected"
	EventReportDelegated = "report.delegated"
	EventMessageSent     = "report.message_sent"
)

func NewReportApprovedEvent(reportID, reporterID, assigneeID int64) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventReportApproved,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"report_id":   reportID,
			"reporter_id": reporterID,
			"assignee_id": assigneeID,
		},
	}
}

func NewReportRejectedEvent(reportID, reporterID int64, reason string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventReportRejected,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"report_id":   reportID,
			"reporter_id": reporterID,
			"reason":      reason,
		},
	}
}

func NewReportDelegatedEvent(reportID, maintainerID int64) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventReportDelegated,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"report_id":     reportID,
			"maintainer_id": maintainerID,
		},
	}
}

func NewMessageSentEvent(reportID, senderID, recipientID int64) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventMessageSent,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"report_id":    reportID,
			"sender_id":    senderID,
			"recipient_id": recipientID,
		},
	}
}
