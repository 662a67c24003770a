package auth_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/civiport/report-management/internal/auth"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

var _ = Describe("Authorize", func() {
	Context("when the caller has no roles", func() {
		It("should deny with a not-authenticated reason", func() {
			decision := auth.Authorize(nil, auth.OpApproveReport)

			Expect(decision.Allowed).To(BeFalse())
			Expect(decision.Reason).To(Equal("Not authenticated"))
		})
	})

	Context("administrator operations", func() {
		It("should allow an Administrator to manage companies", func() {
			decision := auth.Authorize([]auth.RoleName{auth.RoleAdministrator}, auth.OpManageCompanies)
			Expect(decision.Allowed).To(BeTrue())
		})

		It("should allow an Administrator to manage municipality users", func() {
			decision := auth.Authorize([]auth.RoleName{auth.RoleAdministrator}, auth.OpManageMunicipalityUsers)
			Expect(decision.Allowed).To(BeTrue())
		})

		It("should deny everyone else", func() {
			for _, role := range []auth.RoleName{
				auth.RoleCitizen,
				auth.RolePublicRelationsOfficer,
				auth.RoleElectricalStaff,
				auth.RoleDepartmentDirector,
				auth.RoleExternalMaintainer,
			} {
				decision := auth.Authorize([]auth.RoleName{role}, auth.OpManageCompanies)
				Expect(decision.Allowed).To(BeFalse(), "role %s should be denied", role)
				Expect(decision.Reason).To(Equal("Access denied"))
			}
		})
	})

	Context("pending reports queue", func() {
		It("should allow only the Public Relations Officer", func() {
			decision := auth.Authorize([]auth.RoleName{auth.RolePublicRelationsOfficer}, auth.OpViewPendingReports)
			Expect(decision.Allowed).To(BeTrue())
		})

		It("should deny an Administrator with the officer-specific reason", func() {
			decision := auth.Authorize([]auth.RoleName{auth.RoleAdministrator}, auth.OpViewPendingReports)

			Expect(decision.Allowed).To(BeFalse())
			Expect(decision.Reason).To(Equal("Only the Municipal Public Relations Officer can view pending reports"))
		})
	})

	Context("approve and reject", func() {
		It("should allow the Public Relations Officer", func() {
			Expect(auth.Authorize([]auth.RoleName{auth.RolePublicRelationsOfficer}, auth.OpApproveReport).Allowed).To(BeTrue())
			Expect(auth.Authorize([]auth.RoleName{auth.RolePublicRelationsOfficer}, auth.OpRejectReport).Allowed).To(BeTrue())
		})

		It("should deny staff members", func() {
			Expect(auth.Authorize([]auth.RoleName{auth.RoleElectricalStaff}, auth.OpApproveReport).Allowed).To(BeFalse())
		})
	})

	Context("internal comments", func() {
		It("should allow any non-citizen role", func() {
			for _, role := range []auth.RoleName{
				auth.RoleElectricalStaff,
				auth.RoleDepartmentDirector,
				auth.RoleExternalMaintainer,
				auth.RolePublicRelationsOfficer,
			} {
				decision := auth.Authorize([]auth.RoleName{role}, auth.OpWriteInternalComment)
				Expect(decision.Allowed).To(BeTrue(), "role %s should be allowed", role)
			}
		})

		It("should deny a caller whose only role is Citizen", func() {
			decision := auth.Authorize([]auth.RoleName{auth.RoleCitizen}, auth.OpReadInternalComments)
			Expect(decision.Allowed).To(BeFalse())
		})

		It("should allow a citizen who also holds a staff role", func() {
			roles := []auth.RoleName{auth.RoleCitizen, auth.RoleGardeningStaff}
			Expect(auth.Authorize(roles, auth.OpWriteInternalComment).Allowed).To(BeTrue())
		})
	})

	Context("unknown operations", func() {
		It("should deny by default", func() {
			decision := auth.Authorize([]auth.RoleName{auth.RoleAdministrator}, auth.Operation("reports:delete_everything"))
			Expect(decision.Allowed).To(BeFalse())
		})
	})
})

var _ = Describe("Principal", func() {
	It("should answer role membership checks", func() {
		p := &auth.Principal{
			ID:       7,
			Username: "pro",
			Roles:    []auth.RoleName{auth.RolePublicRelationsOfficer},
		}

		Expect(p.IsPublicRelationsOfficer()).To(BeTrue())
		Expect(p.IsAdministrator()).To(BeFalse())
		Expect(p.HasAnyRole(auth.RoleCitizen, auth.RolePublicRelationsOfficer)).To(BeTrue())
	})
})
