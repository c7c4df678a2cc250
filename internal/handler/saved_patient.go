package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/medvault/share-server-go/internal/errors"
	"github.com/medvault/share-server-go/internal/middleware"
	"github.com/medvault/share-server-go/internal/service"
)

type SavedPatientHandler struct {
	savedPatientService *service.SavedPatientService
}

func NewSavedPatientHandler(savedPatientService *service.SavedPatientService) *SavedPatientHandler {
	return &SavedPatientHandler{savedPatientService: savedPatientService}
}

func (h *SavedPatientHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Save)
	r.Patch("/{savedID}", h.Update)
	r.Delete("/{savedID}", h.Remove)

	return r
}

type savePatientRequest struct {
	PatientID         string  `json:"patientId"`
	ConsultationNotes *string `json:"consultationNotes,omitempty"`
}

// POST /api/saved-patients
func (h *SavedPatientHandler) Save(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req savePatientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.PatientID == "" {
		writeError(w, apperrors.MissingRequired("patientId"))
		return
	}

	saved, err := h.savedPatientService.Save(r.Context(), user.ID, req.PatientID, req.ConsultationNotes)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

// GET /api/saved-patients
func (h *SavedPatientHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	p := ParsePagination(r)

	saved, err := h.savedPatientService.List(r.Context(), user.ID, p.Limit, p.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"savedPatients": saved,
		"limit":         p.Limit,
		"offset":        p.Offset,
	})
}

type updateSavedPatientRequest struct {
	ConsultationNotes    *string    `json:"consultationNotes,omitempty"`
	LastConsultationDate *time.Time `json:"lastConsultationDate,omitempty"`
}

// PATCH /api/saved-patients/{savedID}
func (h *SavedPatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	savedID := chi.URLParam(r, "savedID")

	var req updateSavedPatientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	saved, err := h.savedPatientService.Update(r.Context(), user.ID, savedID, req.ConsultationNotes, req.LastConsultationDate)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

// DELETE /api/saved-patients/{savedID}
func (h *SavedPatientHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	savedID := chi.URLParam(r, "savedID")

	if err := h.savedPatientService.Remove(r.Context(), user.ID, savedID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Saved patient removed"})
}
