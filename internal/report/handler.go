package report

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/civiport/report-management/internal/auth"
	"github.com/civiport/report-management/internal/catalog"
	"github.com/civiport/report-management/internal/transport"
	"github.com/civiport/report-management/pkg/logger"
)

type ServiceAPI interface {
	CreateReport(ctx context.Context, principal *auth.Principal, dto CreateReportDTO) (*Report, error)
	GetReport(ctx context.Context, principal *auth.Principal, id int64) (*Report, error)
	GetAllReports(ctx context.Context, principal *auth.Principal, filter ListFilter) ([]*Report, error)
	GetMyReports(ctx context.Context, principal *auth.Principal) ([]*Report, error)
	GetPendingReports(ctx context.Context, principal *auth.Principal) ([]*Report, error)
	GetMyAssignedReports(ctx context.Context, principal *auth.Principal, statusFilter Status) ([]*Report, error)
	ApproveReport(ctx context.Context, principal *auth.Principal, id int64) (*Report, error)
	RejectReport(ctx context.Context, principal *auth.Principal, id int64, dto RejectReportDTO) (*Report, error)
	TransitionReport(ctx context.Context, principal *auth.Principal, id int64, next Status) (*Report, error)
	AssignToExternalMaintainer(ctx context.Context, principal *auth.Principal, id int64, dto DelegateReportDTO) (*Report, error)
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

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var dto CreateReportDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateReport(r.Context(), principal, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.reportID(w, r)
	if !ok {
		return
	}

	found, err := h.Service.GetReport(r.Context(), principal, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	filter := ListFilter{
		Status:   Status(r.URL.Query().Get("status")),
		Category: catalog.Category(r.URL.Query().Get("category")),
	}
	reports, err := h.Service.GetAllReports(r.Context(), principal, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, reports)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	reports, err := h.Service.GetMyReports(r.Context(), principal)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, reports)
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	reports, err := h.Service.GetPendingReports(r.Context(), principal)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, reports)
}

func (h *Handler) ListAssignedToMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	reports, err := h.Service.GetMyAssignedReports(r.Context(), principal,
		Status(r.URL.Query().Get("status")))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, reports)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.reportID(w, r)
	if !ok {
		return
	}

	approved, err := h.Service.ApproveReport(r.Context(), principal, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, approved)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.reportID(w, r)
	if !ok {
		return
	}

	var dto RejectReportDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rejected, err := h.Service.RejectReport(r.Context(), principal, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rejected)
}

func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.reportID(w, r)
	if !ok {
		return
	}

	var dto TransitionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.TransitionReport(r.Context(), principal, id, dto.Status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) Delegate(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.reportID(w, r)
	if !ok {
		return
	}

	var dto DelegateReportDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	delegated, err := h.Service.AssignToExternalMaintainer(r.Context(), principal, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, delegated)
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*auth.Principal, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	return principal, true
}

func (h *Handler) reportID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid report ID")
		return 0, false
	}
	return id, true
}
