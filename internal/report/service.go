package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/civiport/report-management/internal"
	"github.com/civiport/report-management/internal/auth"
	"github.com/civiport/report-management/internal/catalog"
	"github.com/civiport/report-management/internal/core/events"
)

// ListFilter narrows report listings. ExcludePending is set by the service
// for callers who may never see the approval queue.
type ListFilter struct {
	Status         Status
	Category       catalog.Category
	ExcludePending bool
}

func (f ListFilter) validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return internal.NewValidationError(
			fmt.Sprintf("Unknown report status %s", f.Status),
			internal.ErrCodeInvalidReportStatus)
	}
	if f.Category != "" && !f.Category.Valid() {
		return internal.NewValidationError(
			fmt.Sprintf("Unknown category %s", f.Category),
			internal.ErrCodeInvalidCategory)
	}
	return nil
}

// RepositoryAPI is the data access surface for reports. Status transitions
// are conditional single-statement updates: the returned bool is false when
// the report was no longer in the expected status. InTransaction runs the
// given function inside one database transaction; repository calls made with
// the function's context join it.
type RepositoryAPI interface {
	Create(r *Report, photoKeys []string) error
	GetByID(id int64) (*Report, error)
	ListByStatus(status Status) ([]*Report, error)
	ListAll(filter ListFilter) ([]*Report, error)
	ListForParticipant(userID int64, filter ListFilter) ([]*Report, error)
	ListByReporter(userID int64) ([]*Report, error)
	ListByAssignee(userID int64, status Status) ([]*Report, error)
	TransitionStatus(ctx context.Context, id int64, from, to Status, updates map[string]interface{}) (bool, error)
	SetMaintainer(ctx context.Context, reportID, maintainerID int64) (bool, error)
	CountOpenByAssignee(userID int64) (int64, error)
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventPublisherAPI interface {
	PublishSync(ctx context.Context, event events.Event) error
}

// PhotoURLSignerAPI turns stored object keys into short-lived download URLs.
type PhotoURLSignerAPI interface {
	PresignedURL(ctx context.Context, objectKey string) (string, error)
}

// BoundaryAPI answers whether a coordinate lies inside the municipality.
type BoundaryAPI interface {
	Contains(latitude, longitude float64) bool
}

// DirectorPolicy controls whether Department Directors may drive the
// in-progress and resolved transitions for reports in their department.
type DirectorPolicy struct {
	AllowDirectorTransitions bool
}

type Service struct {
	repo      RepositoryAPI
	resolver  *AssignmentResolver
	directory UserDirectory
	boundary  BoundaryAPI
	policy    DirectorPolicy
	events    EventPublisherAPI
	photos    PhotoURLSignerAPI
	logger    *slog.Logger
}

func NewService(
	repo RepositoryAPI,
	resolver *AssignmentResolver,
	directory UserDirectory,
	boundary BoundaryAPI,
	policy DirectorPolicy,
	eventBus EventPublisherAPI,
	photos PhotoURLSignerAPI,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		resolver:  resolver,
		directory: directory,
		boundary:  boundary,
		policy:    policy,
		events:    eventBus,
		photos:    photos,
		logger:    logger,
	}
}

// CreateReport files a new issue. It always starts in PENDING_APPROVAL and
// must lie inside the municipal boundary with at least one photo attached.
func (s *Service) CreateReport(ctx context.Context, principal *auth.Principal, dto CreateReportDTO) (*Report, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if !s.boundary.Contains(dto.Latitude, dto.Longitude) {
		return nil, internal.NewValidationError(
			"location is outside the municipal boundary",
			internal.ErrCodeOutsideBoundary)
	}

	r := &Report{
		ReporterID:  principal.ID,
		Title:       dto.Title,
		Description: dto.Description,
		Category:    dto.Category,
		Latitude:    dto.Latitude,
		Longitude:   dto.Longitude,
		Status:      StatusPendingApproval,
	}
	if err := s.repo.Create(r, dto.PhotoKeys); err != nil {
		s.logger.Error("failed to create report", "error", err, "reporter_id", principal.ID)
		return nil, err
	}

	s.logger.Info("report created", "report_id", r.ID,
		"category", r.Category, "reporter_id", principal.ID)
	return s.withPhotoURLs(ctx, r), nil
}

func (s *Service) GetReport(ctx context.Context, principal *auth.Principal, id int64) (*Report, error) {
	r, err := s.getReport(id)
	if err != nil {
		return nil, err
	}
	if !s.canView(principal, r) {
		return nil, internal.ErrAccessDenied
	}
	return s.withPhotoURLs(ctx, r), nil
}

// GetAllReports lists what the caller is allowed to see: everything for
// Administrators and the Public Relations Officer, otherwise only reports
// the caller participates in. The approval queue is invisible to everyone
// but the officer, whether implicitly or through an explicit status filter.
func (s *Service) GetAllReports(ctx context.Context, principal *auth.Principal, filter ListFilter) ([]*Report, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}

	isOfficer := principal.IsPublicRelationsOfficer()
	if filter.Status == StatusPendingApproval && !isOfficer {
		return nil, internal.NewInsufficientRightsError(
			"Only the Municipal Public Relations Officer can view pending reports",
			internal.ErrCodeInsufficientRights)
	}
	filter.ExcludePending = !isOfficer

	if isOfficer || principal.IsAdministrator() {
		return s.repo.ListAll(filter)
	}
	return s.repo.ListForParticipant(principal.ID, filter)
}

// GetMyReports lists the caller's own submissions. Pending reports stay out
// of listings for everyone but the officer, their reporter included.
func (s *Service) GetMyReports(ctx context.Context, principal *auth.Principal) ([]*Report, error) {
	return s.repo.ListByReporter(principal.ID)
}

// GetPendingReports is the approval queue, oldest first.
func (s *Service) GetPendingReports(ctx context.Context, principal *auth.Principal) ([]*Report, error) {
	if !principal.IsPublicRelationsOfficer() {
		return nil, internal.NewInsufficientRightsError(
			"Only the Municipal Public Relations Officer can view pending reports",
			internal.ErrCodeInsufficientRights)
	}
	return s.repo.ListByStatus(StatusPendingApproval)
}

// GetMyAssignedReports lists the caller's assignments, newest first. An
// empty statusFilter means all statuses.
func (s *Service) GetMyAssignedReports(ctx context.Context, principal *auth.Principal, statusFilter Status) ([]*Report, error) {
	if statusFilter != "" && !statusFilter.Valid() {
		return nil, internal.NewValidationError(
			fmt.Sprintf("Unknown report status %s", statusFilter),
			internal.ErrCodeInvalidReportStatus)
	}
	return s.repo.ListByAssignee(principal.ID, statusFilter)
}

// ApproveReport moves a pending report into the operational flow: the
// category resolves to a department role, the least-loaded holder of that
// role becomes the assignee, and the report lands in ASSIGNED.
func (s *Service) ApproveReport(ctx context.Context, principal *auth.Principal, id int64) (*Report, error) {
	if !principal.IsPublicRelationsOfficer() {
		return nil, internal.ErrAccessDenied
	}

	r, err := s.getReport(id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusPendingApproval {
		return nil, s.invalidStatus("approve", r.Status)
	}

	departmentRole, err := s.resolver.ResolveDepartmentRole(r.Category)
	if err != nil {
		return nil, err
	}
	assigneeID, err := s.resolver.SelectAssignee(departmentRole)
	if err != nil {
		return nil, err
	}

	err = s.repo.InTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.repo.TransitionStatus(ctx, id, StatusPendingApproval, StatusAssigned, map[string]interface{}{
			"assignee_id":        assigneeID,
			"department_role_id": departmentRole.ID,
		})
		if err != nil {
			return err
		}
		if !ok {
			return s.refreshedInvalidStatus("approve", id)
		}
		return s.events.PublishSync(ctx, events.NewReportApprovedEvent(id, r.ReporterID, assigneeID))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("report approved", "report_id", id,
		"assignee_id", assigneeID, "department", departmentRole.DepartmentName)
	return s.getReport(id)
}

// RejectReport closes a pending report with a mandatory reason.
func (s *Service) RejectReport(ctx context.Context, principal *auth.Principal, id int64, dto RejectReportDTO) (*Report, error) {
	if !principal.IsPublicRelationsOfficer() {
		return nil, internal.ErrAccessDenied
	}

	reason := strings.TrimSpace(dto.Reason)
	if reason == "" {
		return nil, internal.NewValidationError("Rejection reason is required",
			internal.ErrCodeRejectionReasonRequired)
	}

	r, err := s.getReport(id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusPendingApproval {
		return nil, s.invalidStatus("reject", r.Status)
	}

	err = s.repo.InTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.repo.TransitionStatus(ctx, id, StatusPendingApproval, StatusRejected, map[string]interface{}{
			"rejection_reason": reason,
		})
		if err != nil {
			return err
		}
		if !ok {
			return s.refreshedInvalidStatus("reject", id)
		}
		return s.events.PublishSync(ctx, events.NewReportRejectedEvent(id, r.ReporterID, reason))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("report rejected", "report_id", id, "reason", reason)
	return s.getReport(id)
}

// TransitionReport drives the operational edges (ASSIGNED to IN_PROGRESS,
// IN_PROGRESS to RESOLVED). Only the assignee may do this, plus the
// Department Director of the report's department when the policy allows it.
func (s *Service) TransitionReport(ctx context.Context, principal *auth.Principal, id int64, next Status) (*Report, error) {
	r, err := s.getReport(id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.canTransition(principal, r)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, internal.ErrAccessDenied
	}

	if !r.Status.CanTransitionTo(next) || next == StatusRejected || next == StatusAssigned {
		return nil, internal.NewValidationError(
			fmt.Sprintf("Cannot move report from status %s to %s", r.Status, next),
			internal.ErrCodeInvalidReportStatus)
	}

	ok, err := s.repo.TransitionStatus(ctx, id, r.Status, next, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.refreshedInvalidStatus("transition", id)
	}

	s.logger.Info("report transitioned", "report_id", id, "from", r.Status, "to", next)
	return s.getReport(id)
}

// AssignToExternalMaintainer delegates an ASSIGNED report to an External
// Maintainer whose company covers the report's category. Re-delegating to a
// different maintainer is allowed while the report stays ASSIGNED.
func (s *Service) AssignToExternalMaintainer(ctx context.Context, principal *auth.Principal, id int64, dto DelegateReportDTO) (*Report, error) {
	r, err := s.getReport(id)
	if err != nil {
		return nil, err
	}
	if !r.IsAssignee(principal.ID) {
		return nil, internal.ErrAccessDenied
	}
	if r.Status != StatusAssigned {
		return nil, s.invalidStatus("delegate", r.Status)
	}

	maintainer, err := s.directory.GetMaintainer(dto.MaintainerID)
	if err != nil {
		return nil, err
	}
	if maintainer == nil {
		return nil, internal.ErrUserNotFound
	}
	if !maintainer.HasExternalRole {
		return nil, internal.NewValidationError(
			"User is not an External Maintainer",
			internal.ErrCodeWrongRole)
	}
	if maintainer.CompanyCategory != r.Category {
		return nil, internal.NewValidationError(
			fmt.Sprintf("Maintainer's company does not handle %s reports", r.Category),
			internal.ErrCodeCategoryMismatch)
	}

	err = s.repo.InTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.repo.SetMaintainer(ctx, id, maintainer.ID)
		if err != nil {
			return err
		}
		if !ok {
			return s.refreshedInvalidStatus("delegate", id)
		}
		return s.events.PublishSync(ctx, events.NewReportDelegatedEvent(id, maintainer.ID))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("report delegated", "report_id", id, "maintainer_id", maintainer.ID)
	return s.getReport(id)
}

func (s *Service) getReport(id int64) (*Report, error) {
	r, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, internal.ErrReportNotFound
	}
	return r, nil
}

func (s *Service) canView(principal *auth.Principal, r *Report) bool {
	if principal.IsAdministrator() || principal.IsPublicRelationsOfficer() {
		return true
	}
	return r.IsReporter(principal.ID) || r.IsAssignee(principal.ID) || r.IsMaintainer(principal.ID)
}

func (s *Service) canTransition(principal *auth.Principal, r *Report) (bool, error) {
	if r.IsAssignee(principal.ID) {
		return true, nil
	}
	if s.policy.AllowDirectorTransitions &&
		principal.HasRole(auth.RoleDepartmentDirector) &&
		r.DepartmentRoleID != nil {
		return s.isDirectorForReport(principal.ID, r)
	}
	return false, nil
}

func (s *Service) isDirectorForReport(userID int64, r *Report) (bool, error) {
	departmentRole, err := s.resolver.ResolveDepartmentRole(r.Category)
	if err != nil {
		return false, err
	}
	return s.directory.IsDirectorOf(userID, departmentRole.DepartmentID)
}

func (s *Service) invalidStatus(action string, status Status) error {
	return internal.NewValidationError(
		fmt.Sprintf("Cannot %s report with status %s", action, status),
		internal.ErrCodeInvalidReportStatus)
}

// refreshedInvalidStatus re-reads the row after a conditional update
// matched nothing, so the error names the status that actually won.
func (s *Service) refreshedInvalidStatus(action string, id int64) error {
	fresh, err := s.repo.GetByID(id)
	if err != nil || fresh == nil {
		return internal.NewConflictError("Report status changed concurrently",
			internal.ErrCodeInvalidReportStatus)
	}
	return s.invalidStatus(action, fresh.Status)
}

func (s *Service) withPhotoURLs(ctx context.Context, r *Report) *Report {
	if s.photos == nil {
		return r
	}
	for i := range r.Photos {
		url, err := s.photos.PresignedURL(ctx, r.Photos[i].ObjectKey)
		if err != nil {
			s.logger.Warn("failed to presign photo URL", "error", err,
				"report_id", r.ID, "object_key", r.Photos[i].ObjectKey)
			continue
		}
		r.Photos[i].URL = url
	}
	return r
}
