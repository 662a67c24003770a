package messaging

import (
	"context"
	"log/slog"

	"github.com/civiport/report-management/internal"
	"github.com/civiport/report-management/internal/auth"
	"github.com/civiport/report-management/internal/core/events"
	"github.com/civiport/report-management/internal/report"
)

// RepositoryAPI is the data access surface for messages, internal comments
// and notifications.
type RepositoryAPI interface {
	CreateMessage(m *Message) error
	ListMessages(reportID int64) ([]*Message, error)
	CreateComment(c *InternalComment) error
	ListComments(reportID int64) ([]*InternalComment, error)
	CreateNotification(ctx context.Context, n *Notification) error
	ListNotificationsForUser(userID int64) ([]*Notification, error)
	GetNotification(id int64) (*Notification, error)
	SetRead(id int64, isRead bool) error
}

// ReportReaderAPI is the slice of the report repository messaging needs to
// check who participates in a report.
type ReportReaderAPI interface {
	GetByID(id int64) (*report.Report, error)
}

type EventPublisherAPI interface {
	PublishSync(ctx context.Context, event events.Event) error
}

type Service struct {
	repo    RepositoryAPI
	reports ReportReaderAPI
	events  EventPublisherAPI
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, reports ReportReaderAPI, eventBus EventPublisherAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		reports: reports,
		events:  eventBus,
		logger:  logger,
	}
}

// SendMessage posts a message on a report. Only the reporter and the
// current assignee may write; the counterparty is notified.
func (s *Service) SendMessage(ctx context.Context, principal *auth.Principal, reportID int64, dto SendMessageDTO) (*Message, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	r, err := s.getReport(reportID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(principal.ID, r) {
		return nil, internal.NewInsufficientRightsError(
			"Only participants of a report can exchange messages",
			internal.ErrCodeNotParticipant)
	}

	m := &Message{
		ReportID: reportID,
		SenderID: principal.ID,
		Body:     dto.Body,
	}
	if err := s.repo.CreateMessage(m); err != nil {
		s.logger.Error("failed to store message", "error", err, "report_id", reportID)
		return nil, err
	}

	if recipientID, ok := counterparty(principal.ID, r); ok {
		if err := s.events.PublishSync(ctx, events.NewMessageSentEvent(reportID, principal.ID, recipientID)); err != nil {
			return nil, err
		}
	}

	s.logger.Info("message sent", "report_id", reportID, "sender_id", principal.ID)
	return m, nil
}

// GetMessages returns a report's conversation oldest first.
func (s *Service) GetMessages(ctx context.Context, principal *auth.Principal, reportID int64) ([]*Message, error) {
	r, err := s.getReport(reportID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(principal.ID, r) {
		return nil, internal.NewInsufficientRightsError(
			"Only participants of a report can read its messages",
			internal.ErrCodeNotParticipant)
	}
	return s.repo.ListMessages(reportID)
}

// AddInternalComment posts staff-only discussion on a report. Role checks
// happen at the routing layer; the report just has to exist.
func (s *Service) AddInternalComment(ctx context.Context, principal *auth.Principal, reportID int64, dto AddInternalCommentDTO) (*InternalComment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.getReport(reportID); err != nil {
		return nil, err
	}

	c := &InternalComment{
		ReportID: reportID,
		AuthorID: principal.ID,
		Body:     dto.Body,
	}
	if err := s.repo.CreateComment(c); err != nil {
		s.logger.Error("failed to store internal comment", "error", err, "report_id", reportID)
		return nil, err
	}
	return c, nil
}

func (s *Service) GetInternalComments(ctx context.Context, principal *auth.Principal, reportID int64) ([]*InternalComment, error) {
	if _, err := s.getReport(reportID); err != nil {
		return nil, err
	}
	return s.repo.ListComments(reportID)
}

// ListMyNotifications returns the caller's notifications, newest first.
func (s *Service) ListMyNotifications(principal *auth.Principal) ([]*Notification, error) {
	return s.repo.ListNotificationsForUser(principal.ID)
}

// MarkNotificationRead flips the read flag either way and is idempotent.
// Only the owner may touch a notification.
func (s *Service) MarkNotificationRead(principal *auth.Principal, id int64, isRead bool) error {
	n, err := s.repo.GetNotification(id)
	if err != nil {
		return err
	}
	if n == nil {
		return internal.ErrNotificationNotFound
	}
	if n.UserID != principal.ID {
		return internal.ErrAccessDenied
	}
	if n.IsRead == isRead {
		return nil
	}
	return s.repo.SetRead(id, isRead)
}

func (s *Service) getReport(id int64) (*report.Report, error) {
	r, err := s.reports.GetByID(id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, internal.ErrReportNotFound
	}
	return r, nil
}

// isParticipant limits the conversation to the reporter and the current
// assignee. A delegated maintainer works the report but does not join the
// citizen-facing channel.
func isParticipant(userID int64, r *report.Report) bool {
	return r.IsReporter(userID) || r.IsAssignee(userID)
}

// counterparty picks who gets notified about a new message: staff messages
// go to the reporter, reporter messages go to the assignee.
func counterparty(senderID int64, r *report.Report) (int64, bool) {
	if !r.IsReporter(senderID) {
		return r.ReporterID, true
	}
	if r.AssigneeID != nil {
		return *r.AssigneeID, true
	}
	return 0, false
}
