package auth

import (
	"context"
)

// RoleName is the closed set of role names the platform knows about. Roles
// are only ever granted as a (department, role) pair; the bare name is what
// the authorization guard reasons over.
type RoleName string

const (
	RoleCitizen                RoleName = "Citizen"
	RoleAdministrator          RoleName = "Administrator"
	RolePublicRelationsOfficer RoleName = "Municipal Public Relations Officer"
	RoleExternalMaintainer     RoleName = "External Maintainer"
	RoleElectricalStaff        RoleName = "Electrical staff member"
	RoleRoadMaintenanceStaff   RoleName = "Road Maintenance staff member"
	RoleSanitationStaff        RoleName = "Sanitation staff member"
	RoleHydraulicStaff         RoleName = "Hydraulic staff member"
	RoleGardeningStaff         RoleName = "Gardening staff member"
	RoleDepartmentDirector     RoleName = "Department Director"
)

// AllRoleNames is used by seed validation and the catalog listing filter.
var AllRoleNames = []RoleName{
	RoleCitizen,
	RoleAdministrator,
	RolePublicRelationsOfficer,
	RoleExternalMaintainer,
	RoleElectricalStaff,
	RoleRoadMaintenanceStaff,
	RoleSanitationStaff,
	RoleHydraulicStaff,
	RoleGardeningStaff,
	RoleDepartmentDirector,
}

// Principal is the authenticated identity every core call receives. The
// session layer builds it; the core never re-derives identity.
type Principal struct {
	ID       int64      `json:"id"`
	Username string     `json:"username"`
	Roles    []RoleName `json:"roles"`
}

func (p *Principal) HasRole(role RoleName) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (p *Principal) HasAnyRole(roles ...RoleName) bool {
	for _, required := range roles {
		if p.HasRole(required) {
			return true
		}
	}
	return false
}

func (p *Principal) IsAdministrator() bool {
	return p.HasRole(RoleAdministrator)
}

func (p *Principal) IsPublicRelationsOfficer() bool {
	return p.HasRole(RolePublicRelationsOfficer)
}

func (p *Principal) IsCitizen() bool {
	return p.HasRole(RoleCitizen)
}

type ctxKey string

const ContextPrincipalKey ctxKey = "principal"

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(ContextPrincipalKey).(*Principal)
	return p, ok
}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ContextPrincipalKey, p)
}
