package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/medvault/share-server-go/internal/errors"
	"github.com/medvault/share-server-go/internal/middleware"
	"github.com/medvault/share-server-go/internal/model"
	"github.com/medvault/share-server-go/internal/service"
)

type NoteHandler struct {
	noteService *service.NoteService
}

func NewNoteHandler(noteService *service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

func (h *NoteHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{noteID}", h.Get)
	r.Patch("/{noteID}", h.Update)
	r.Delete("/{noteID}", h.Delete)

	return r
}

type createNoteRequest struct {
	PatientID           string `json:"patientId"`
	NoteText            string `json:"noteText"`
	IsAudioTranscript   bool   `json:"isAudioTranscript"`
	IsSharedWithPatient bool   `json:"isSharedWithPatient"`
}

// POST /api/notes
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req createNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.PatientID == "" {
		writeError(w, apperrors.MissingRequired("patientId"))
		return
	}

	note, err := h.noteService.Create(r.Context(), user.ID, model.CreateNoteParams{
		PatientID:           req.PatientID,
		NoteText:            req.NoteText,
		IsAudioTranscript:   req.IsAudioTranscript,
		IsSharedWithPatient: req.IsSharedWithPatient,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, note)
}

// GET /api/notes?patientId=
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	p := ParsePagination(r)

	var patientID *string
	if v := r.URL.Query().Get("patientId"); v != "" {
		patientID = &v
	}

	notes, err := h.noteService.List(r.Context(), user.ID, patientID, p.Limit, p.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"notes":  notes,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// GET /api/notes/{noteID}
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	noteID := chi.URLParam(r, "noteID")

	note, err := h.noteService.Get(r.Context(), user.ID, noteID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

type updateNoteRequest struct {
	NoteText            *string `json:"noteText,omitempty"`
	IsSharedWithPatient *bool   `json:"isSharedWithPatient,omitempty"`
}

// PATCH /api/notes/{noteID}
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	noteID := chi.URLParam(r, "noteID")

	var req updateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	note, err := h.noteService.Update(r.Context(), user.ID, noteID, model.UpdateNoteParams{
		NoteText:            req.NoteText,
		IsSharedWithPatient: req.IsSharedWithPatient,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

// DELETE /api/notes/{noteID}
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	noteID := chi.URLParam(r, "noteID")

	if err := h.noteService.Delete(r.Context(), user.ID, noteID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Note deleted"})
}
