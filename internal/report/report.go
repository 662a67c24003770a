package report

import (
	"time"

	"github.com/civiport/report-management/internal/catalog"
)

// Status is the report lifecycle state. Every report starts in
// PENDING_APPROVAL; the Public Relations Officer gate decides whether it
// enters the operational flow or is rejected.
type Status string

const (
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusAssigned        Status = "ASSIGNED"
	StatusInProgress      Status = "IN_PROGRESS"
	StatusResolved        Status = "RESOLVED"
	StatusRejected        Status = "REJECTED"
)

// legalTransitions is the closed edge set of the lifecycle. REJECTED and
// RESOLVED are terminal.
var legalTransitions = map[Status][]Status{
	StatusPendingApproval: {StatusAssigned, StatusRejected},
	StatusAssigned:        {StatusInProgress},
	StatusInProgress:      {StatusResolved},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPendingApproval, StatusAssigned, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range legalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsOpen reports whether the report still counts against its assignee's
// workload.
func (s Status) IsOpen() bool {
	return s == StatusAssigned || s == StatusInProgress
}

func (s Status) IsTerminal() bool {
	return s == StatusResolved || s == StatusRejected
}

type Photo struct {
	ID        int64     `json:"id"`
	ReportID  int64     `json:"report_id"`
	ObjectKey string    `json:"object_key"`
	URL       string    `json:"url,omitempty" gorm:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (Photo) TableName() string {
	return "report_photos"
}

// Report is an issue raised by a citizen. AssigneeID is set on approval,
// MaintainerID only when the assignee delegates to an external company.
type Report struct {
	ID               int64            `json:"id"`
	ReporterID       int64            `json:"reporter_id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Category         catalog.Category `json:"category"`
	Latitude         float64          `json:"latitude"`
	Longitude        float64          `json:"longitude"`
	Status           Status           `json:"status"`
	AssigneeID       *int64           `json:"assignee_id,omitempty"`
	MaintainerID     *int64           `json:"maintainer_id,omitempty"`
	DepartmentRoleID *int64           `json:"department_role_id,omitempty"`
	RejectionReason  string           `json:"rejection_reason,omitempty"`
	Photos           []Photo          `json:"photos,omitempty" gorm:"-"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (Report) TableName() string {
	return "reports"
}

func (r *Report) IsAssignee(userID int64) bool {
	return r.AssigneeID != nil && *r.AssigneeID == userID
}

func (r *Report) IsMaintainer(userID int64) bool {
	return r.MaintainerID != nil && *r.MaintainerID == userID
}

func (r *Report) IsReporter(userID int64) bool {
	return r.ReporterID == userID
}
