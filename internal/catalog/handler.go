package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/civiport/report-management/internal/transport"
	"github.com/civiport/report-management/pkg/logger"
)

type ServiceAPI interface {
	ListMunicipalityDepartments() ([]*Department, error)
	ListRolesForDepartment(departmentID int64) ([]*Role, error)
	ListAllMunicipalityRoleNames() ([]string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     service,
	}
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Service.ListMunicipalityDepartments()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, departments)
}

func (h *Handler) ListDepartmentRoles(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	departmentID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid department ID")
		return
	}

	roles, err := h.Service.ListRolesForDepartment(departmentID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, roles)
}

func (h *Handler) ListRoleNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.Service.ListAllMunicipalityRoleNames()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, names)
}
