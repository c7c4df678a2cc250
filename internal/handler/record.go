package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/medvault/share-server-go/internal/errors"
	"github.com/medvault/share-server-go/internal/middleware"
	"github.com/medvault/share-server-go/internal/model"
	"github.com/medvault/share-server-go/internal/service"
)

type RecordHandler struct {
	recordService *service.RecordService
}

func NewRecordHandler(recordService *service.RecordService) *RecordHandler {
	return &RecordHandler{recordService: recordService}
}

func (h *RecordHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{recordID}", h.Get)
	r.Delete("/{recordID}", h.Delete)

	return r
}

type createRecordRequest struct {
	Title       string  `json:"title"`
	RecordType  string  `json:"recordType"`
	Description *string `json:"description,omitempty"`
	FileName    *string `json:"fileName,omitempty"`
	FileSize    *int64  `json:"fileSize,omitempty"`
	BlobKey     *string `json:"blobKey,omitempty"`
}

// POST /api/records
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req createRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	record, err := h.recordService.Create(r.Context(), user.ID, service.CreateRecordParams{
		Title:       req.Title,
		RecordType:  model.RecordType(req.RecordType),
		Description: req.Description,
		FileName:    req.FileName,
		FileSize:    req.FileSize,
		BlobKey:     req.BlobKey,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// GET /api/records
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	p := ParsePagination(r)

	records, err := h.recordService.List(r.Context(), user.ID, p.Limit, p.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"limit":   p.Limit,
		"offset":  p.Offset,
	})
}

// GET /api/records/{recordID}
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	recordID := chi.URLParam(r, "recordID")
	if recordID == "" {
		writeError(w, apperrors.MissingRequired("record id"))
		return
	}

	record, err := h.recordService.Get(r.Context(), user.ID, recordID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// DELETE /api/records/{recordID}
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	recordID := chi.URLParam(r, "recordID")

	if err := h.recordService.Delete(r.Context(), user.ID, recordID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Record deleted"})
}
