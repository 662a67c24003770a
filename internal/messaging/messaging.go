package messaging

import "time"

// MaxMessageLength caps message and internal comment bodies.
const MaxMessageLength = 2000

// Message is a report-scoped exchange between the reporter and the staff
// handling the report.
type Message struct {
	ID        int64     `json:"id"`
	ReportID  int64     `json:"report_id"`
	SenderID  int64     `json:"sender_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// InternalComment is staff-only discussion on a report. Citizens never see
// these.
type InternalComment struct {
	ID        int64     `json:"id"`
	ReportID  int64     `json:"report_id"`
	AuthorID  int64     `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (InternalComment) TableName() string {
	return "internal_comments"
}

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ReportID  int64     `json:"report_id"`
	Kind      string    `json:"kind"`
	Body      string    `json:"body"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

const (
	NotificationReportApproved  = "report_approved"
	NotificationReportRejected  = "report_rejected"
	NotificationReportAssigned  = "report_assigned"
	NotificationReportDelegated = "report_delegated"
	NotificationNewMessage      = "new_message"
)
