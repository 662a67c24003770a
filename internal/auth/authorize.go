package auth

// Operation is the closed set of role-gated operations. Ownership-gated
// operations (notifications, report messages) are checked against the
// resource in the owning service, not here.
type Operation string

const (
	OpManageCompanies         Operation = "companies:manage"
	OpBrowseCatalog           Operation = "catalog:browse"
	OpManageMunicipalityUsers Operation = "municipality_users:manage"
	OpViewPendingReports      Operation = "reports:view_pending"
	OpApproveReport           Operation = "reports:approve"
	OpRejectReport            Operation = "reports:reject"
	OpWriteInternalComment    Operation = "reports:write_internal_comment"
	OpReadInternalComments    Operation = "reports:read_internal_comments"
)

type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Authorize decides whether a principal holding the given roles may perform
// an operation. It is a pure function over the closed Role and Operation
// vocabularies so that every role check in the system goes through one place.
func Authorize(roles []RoleName, op Operation) Decision {
	if len(roles) == 0 {
		return Deny("Not authenticated")
	}

	has := func(want RoleName) bool {
		for _, r := range roles {
			if r == want {
				return true
			}
		}
		return false
	}

	switch op {
	case OpManageCompanies, OpBrowseCatalog, OpManageMunicipalityUsers:
		if has(RoleAdministrator) {
			return Allow()
		}
		return Deny("Access denied")

	case OpViewPendingReports:
		if has(RolePublicRelationsOfficer) {
			return Allow()
		}
		return Deny("Only the Municipal Public Relations Officer can view pending reports")

	case OpApproveReport, OpRejectReport:
		if has(RolePublicRelationsOfficer) {
			return Allow()
		}
		return Deny("Only the Municipal Public Relations Officer can approve or reject reports")

	case OpWriteInternalComment, OpReadInternalComments:
		// Any municipal or external staff role qualifies; a principal whose
		// only role is Citizen does not.
		for _, r := range roles {
			if r != RoleCitizen {
				return Allow()
			}
		}
		return Deny("Access denied")
	}

	return Deny("Access denied")
}
