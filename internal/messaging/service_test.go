package messaging_test

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/civiport/report-management/internal"
	"github.com/civiport/report-management/internal/auth"
	"github.com/civiport/report-management/internal/core/events"
	"github.com/civiport/report-management/internal/messaging"
	"github.com/civiport/report-management/internal/report"
)

func TestMessaging(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Messaging Suite")
}

type mockMessagingRepository struct {
	messages      []*messaging.Message
	comments      []*messaging.InternalComment
	notifications map[int64]*messaging.Notification
	nextID        int64
}

func newMockMessagingRepository() *mockMessagingRepository {
	return &mockMessagingRepository{
		notifications: make(map[int64]*messaging.Notification),
		nextID:        1,
	}
}

func (m *mockMessagingRepository) CreateMessage(msg *messaging.Message) error {
	msg.ID = m.nextID
	m.nextID++
	msg.CreatedAt = time.Now()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockMessagingRepository) ListMessages(reportID int64) ([]*messaging.Message, error) {
	var result []*messaging.Message
	for _, msg := range m.messages {
		if msg.ReportID == reportID {
			result = append(result, msg)
		}
	}
	return result, nil
}

func (m *mockMessagingRepository) CreateComment(c *messaging.InternalComment) error {
	c.ID = m.nextID
	m.nextID++
	c.CreatedAt = time.Now()
	m.comments = append(m.comments, c)
	return nil
}

func (m *mockMessagingRepository) ListComments(reportID int64) ([]*messaging.InternalComment, error) {
	var result []*messaging.InternalComment
	for _, c := range m.comments {
		if c.ReportID == reportID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockMessagingRepository) CreateNotification(ctx context.Context, n *messaging.Notification) error {
	n.ID = m.nextID
	m.nextID++
	n.CreatedAt = time.Now()
	m.notifications[n.ID] = n
	return nil
}

func (m *mockMessagingRepository) ListNotificationsForUser(userID int64) ([]*messaging.Notification, error) {
	var result []*messaging.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (m *mockMessagingRepository) GetNotification(id int64) (*messaging.Notification, error) {
	n, ok := m.notifications[id]
	if !ok {
		return nil, nil
	}
	return n, nil
}

func (m *mockMessagingRepository) SetRead(id int64, isRead bool) error {
	if n, ok := m.notifications[id]; ok {
		n.IsRead = isRead
	}
	return nil
}

type mockReportReader struct {
	reports map[int64]*report.Report
}

func (m *mockReportReader) GetByID(id int64) (*report.Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, nil
	}
	return r, nil
}

var _ = Describe("MessagingService", func() {
	var (
		service    *messaging.Service
		mockRepo   *mockMessagingRepository
		reader     *mockReportReader
		bus        *events.EventBus
		writer     *messaging.NotificationWriter
		reporter   *auth.Principal
		assignee   *auth.Principal
		outsider   *auth.Principal
		assignedID int64
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		mockRepo = newMockMessagingRepository()
		bus = events.NewEventBus(logger)
		writer = messaging.NewNotificationWriter(mockRepo, logger)
		writer.Register(bus)

		reporter = &auth.Principal{ID: 100, Username: "mario", Roles: []auth.RoleName{auth.RoleCitizen}}
		assignee = &auth.Principal{ID: 300, Username: "sparky", Roles: []auth.RoleName{auth.RoleElectricalStaff}}
		outsider = &auth.Principal{ID: 999, Username: "stranger", Roles: []auth.RoleName{auth.RoleCitizen}}

		assignedID = 1
		assigneeID := assignee.ID
		reader = &mockReportReader{reports: map[int64]*report.Report{
			assignedID: {
				ID:         assignedID,
				ReporterID: reporter.ID,
				AssigneeID: &assigneeID,
				Status:     report.StatusAssigned,
			},
		}}

		service = messaging.NewService(mockRepo, reader, bus, logger)
	})

	Describe("SendMessage", func() {
		It("should store the message and notify the counterparty", func() {
			sent, err := service.SendMessage(context.Background(), reporter, assignedID,
				messaging.SendMessageDTO{Body: "  Any update on this?  "})

			Expect(err).ToNot(HaveOccurred())
			Expect(sent.Body).To(Equal("Any update on this?"))

			notifications, _ := mockRepo.ListNotificationsForUser(assignee.ID)
			Expect(notifications).To(HaveLen(1))
			Expect(notifications[0].Kind).To(Equal(messaging.NotificationNewMessage))
		})

		It("should notify the reporter when staff writes", func() {
			_, err := service.SendMessage(context.Background(), assignee, assignedID,
				messaging.SendMessageDTO{Body: "We are on it"})

			Expect(err).ToNot(HaveOccurred())
			notifications, _ := mockRepo.ListNotificationsForUser(reporter.ID)
			Expect(notifications).To(HaveLen(1))
		})

		It("should reject an empty message", func() {
			_, err := service.SendMessage(context.Background(), reporter, assignedID,
				messaging.SendMessageDTO{Body: "   "})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeMessageEmpty))
		})

		It("should reject a message over the length cap", func() {
			_, err := service.SendMessage(context.Background(), reporter, assignedID,
				messaging.SendMessageDTO{Body: strings.Repeat("a", messaging.MaxMessageLength+1)})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeMessageTooLong))
		})

		It("should accept a message exactly at the cap", func() {
			_, err := service.SendMessage(context.Background(), reporter, assignedID,
				messaging.SendMessageDTO{Body: strings.Repeat("a", messaging.MaxMessageLength)})

			Expect(err).ToNot(HaveOccurred())
		})

		It("should count characters rather than bytes against the cap", func() {
			_, err := service.SendMessage(context.Background(), reporter, assignedID,
				messaging.SendMessageDTO{Body: strings.Repeat("à", messaging.MaxMessageLength)})

			Expect(err).ToNot(HaveOccurred())
		})

		It("should refuse a delegated maintainer", func() {
			maintainerID := int64(500)
			reader.reports[assignedID].MaintainerID = &maintainerID
			maintainer := &auth.Principal{ID: maintainerID, Username: "fixer",
				Roles: []auth.RoleName{auth.RoleExternalMaintainer}}

			_, err := service.SendMessage(context.Background(), maintainer, assignedID,
				messaging.SendMessageDTO{Body: "status update from the crew"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotParticipant))
		})

		It("should refuse non-participants", func() {
			_, err := service.SendMessage(context.Background(), outsider, assignedID,
				messaging.SendMessageDTO{Body: "let me in"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotParticipant))
		})

		It("should fail on an unknown report", func() {
			_, err := service.SendMessage(context.Background(), reporter, 404,
				messaging.SendMessageDTO{Body: "hello?"})

			Expect(err).To(Equal(internal.ErrReportNotFound))
		})
	})

	Describe("GetMessages", func() {
		It("should return the conversation to participants", func() {
			_, err := service.SendMessage(context.Background(), reporter, assignedID,
				messaging.SendMessageDTO{Body: "first"})
			Expect(err).ToNot(HaveOccurred())
			_, err = service.SendMessage(context.Background(), assignee, assignedID,
				messaging.SendMessageDTO{Body: "second"})
			Expect(err).ToNot(HaveOccurred())

			msgs, err := service.GetMessages(context.Background(), reporter, assignedID)

			Expect(err).ToNot(HaveOccurred())
			Expect(msgs).To(HaveLen(2))
			Expect(msgs[0].Body).To(Equal("first"))
		})

		It("should refuse non-participants", func() {
			_, err := service.GetMessages(context.Background(), outsider, assignedID)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotParticipant))
		})

		It("should keep the conversation closed to a delegated maintainer", func() {
			maintainerID := int64(500)
			reader.reports[assignedID].MaintainerID = &maintainerID
			maintainer := &auth.Principal{ID: maintainerID, Username: "fixer",
				Roles: []auth.RoleName{auth.RoleExternalMaintainer}}

			_, err := service.GetMessages(context.Background(), maintainer, assignedID)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotParticipant))
		})
	})

	Describe("Internal comments", func() {
		It("should store and list comments on a report", func() {
			_, err := service.AddInternalComment(context.Background(), assignee, assignedID,
				messaging.AddInternalCommentDTO{Body: "needs a ladder truck"})
			Expect(err).ToNot(HaveOccurred())

			comments, err := service.GetInternalComments(context.Background(), assignee, assignedID)

			Expect(err).ToNot(HaveOccurred())
			Expect(comments).To(HaveLen(1))
			Expect(comments[0].AuthorID).To(Equal(assignee.ID))
		})

		It("should reject an empty comment", func() {
			_, err := service.AddInternalComment(context.Background(), assignee, assignedID,
				messaging.AddInternalCommentDTO{Body: ""})

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Notifications", func() {
		seedNotification := func(userID int64, kind string) int64 {
			n := &messaging.Notification{
				UserID:   userID,
				ReportID: assignedID,
				Kind:     kind,
			}
			Expect(mockRepo.CreateNotification(context.Background(), n)).To(Succeed())
			return n.ID
		}

		It("should mark a notification read idempotently", func() {
			id := seedNotification(reporter.ID, messaging.NotificationReportApproved)

			Expect(service.MarkNotificationRead(reporter, id, true)).To(Succeed())
			Expect(service.MarkNotificationRead(reporter, id, true)).To(Succeed())
			Expect(mockRepo.notifications[id].IsRead).To(BeTrue())
		})

		It("should mark a notification unread again", func() {
			id := seedNotification(reporter.ID, messaging.NotificationReportApproved)

			Expect(service.MarkNotificationRead(reporter, id, true)).To(Succeed())
			Expect(service.MarkNotificationRead(reporter, id, false)).To(Succeed())
			Expect(mockRepo.notifications[id].IsRead).To(BeFalse())
		})

		It("should refuse to touch other users' notifications", func() {
			id := seedNotification(assignee.ID, messaging.NotificationReportAssigned)

			err := service.MarkNotificationRead(reporter, id, true)

			Expect(err).To(Equal(internal.ErrAccessDenied))
		})

		It("should return not found for unknown notifications", func() {
			err := service.MarkNotificationRead(reporter, 12345, true)

			Expect(err).To(Equal(internal.ErrNotificationNotFound))
		})
	})

	Describe("NotificationWriter", func() {
		It("should fan an approval event out to reporter and assignee", func() {
			err := bus.PublishSync(context.Background(),
				events.NewReportApprovedEvent(assignedID, reporter.ID, assignee.ID))

			Expect(err).ToNot(HaveOccurred())

			reporterNotes, _ := mockRepo.ListNotificationsForUser(reporter.ID)
			assigneeNotes, _ := mockRepo.ListNotificationsForUser(assignee.ID)
			Expect(reporterNotes).To(HaveLen(1))
			Expect(assigneeNotes).To(HaveLen(1))
			Expect(reporterNotes[0].Kind).To(Equal(messaging.NotificationReportApproved))
			Expect(assigneeNotes[0].Kind).To(Equal(messaging.NotificationReportAssigned))
		})

		It("should include the reason in rejection notifications", func() {
			err := bus.PublishSync(context.Background(),
				events.NewReportRejectedEvent(assignedID, reporter.ID, "duplicate"))

			Expect(err).ToNot(HaveOccurred())

			notes, _ := mockRepo.ListNotificationsForUser(reporter.ID)
			Expect(notes).To(HaveLen(1))
			Expect(notes[0].Body).To(ContainSubstring("duplicate"))
		})

		It("should notify the maintainer on delegation", func() {
			err := bus.PublishSync(context.Background(),
				events.NewReportDelegatedEvent(assignedID, 500))

			Expect(err).ToNot(HaveOccurred())

			notes, _ := mockRepo.ListNotificationsForUser(500)
			Expect(notes).To(HaveLen(1))
			Expect(notes[0].Kind).To(Equal(messaging.NotificationReportDelegated))
		})
	})
})
