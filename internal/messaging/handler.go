package messaging

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/civiport/report-management/internal/auth"
	"github.com/civiport/report-management/internal/transport"
	"github.com/civiport/report-management/pkg/logger"
)

type ServiceAPI interface {
	SendMessage(ctx context.Context, principal *auth.Principal, reportID int64, dto SendMessageDTO) (*Message, error)
	GetMessages(ctx context.Context, principal *auth.Principal, reportID int64) ([]*Message, error)
	AddInternalComment(ctx context.Context, principal *auth.Principal, reportID int64, dto AddInternalCommentDTO) (*InternalComment, error)
	GetInternalComments(ctx context.Context, principal *auth.Principal, reportID int64) ([]*InternalComment, error)
	ListMyNotifications(principal *auth.Principal) ([]*Notification, error)
	MarkNotificationRead(principal *auth.Principal, id int64, isRead bool) error
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

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	reportID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var dto SendMessageDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sent, err := h.Service.SendMessage(r.Context(), principal, reportID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, sent)
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	reportID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	msgs, err := h.Service.GetMessages(r.Context(), principal, reportID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, msgs)
}

func (h *Handler) AddInternalComment(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	reportID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var dto AddInternalCommentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.Service.AddInternalComment(r.Context(), principal, reportID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, comment)
}

func (h *Handler) ListInternalComments(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	reportID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	comments, err := h.Service.GetInternalComments(r.Context(), principal, reportID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, comments)
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	notifications, err := h.Service.ListMyNotifications(principal)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, notifications)
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	// An absent body marks the notification read; a body may unmark it.
	dto := MarkNotificationReadDTO{IsRead: true}
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil && err != io.EOF {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.MarkNotificationRead(principal, id, dto.IsRead); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*auth.Principal, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	return principal, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid "+param)
		return 0, false
	}
	return id, true
}
