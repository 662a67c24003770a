package storage

import (
	"net/http"

	"github.com/civiport/report-management/internal/transport"
	"github.com/civiport/report-management/pkg/logger"
)

// maxPhotoSize caps a single upload at 10 MiB.
const maxPhotoSize = 10 << 20

// UploadHandler accepts a multipart photo upload and returns the object key
// the client attaches to a report.
type UploadHandler struct {
	*transport.BaseHandler
	store PhotoStore
}

func NewUploadHandler(store PhotoStore) *UploadHandler {
	return &UploadHandler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		store:       store,
	}
}

func (h *UploadHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart body or photo too large")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "photo file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectKey, err := h.store.UploadPhoto(r.Context(), file, header.Size, contentType)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]string{"object_key": objectKey})
}
