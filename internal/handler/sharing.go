package handler

import (
	"encoding/base64"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/medvault/share-server-go/internal/errors"
	"github.com/medvault/share-server-go/internal/middleware"
	"github.com/medvault/share-server-go/internal/model"
	"github.com/medvault/share-server-go/internal/service"
)

// ShareURLFunc renders the public link for a url-method token
type ShareURLFunc func(tokenID string) string

// SharingHandler is the patient side of sharing: token lifecycle and QR
// rendering. The doctor side lives in RedeemHandler.
type SharingHandler struct {
	sharingService *service.SharingService
	adminService   *service.AdminService
	shareURL       ShareURLFunc
}

func NewSharingHandler(sharingService *service.SharingService, adminService *service.AdminService, shareURL ShareURLFunc) *SharingHandler {
	return &SharingHandler{
		sharingService: sharingService,
		adminService:   adminService,
		shareURL:       shareURL,
	}
}

// Routes covers the token lifecycle. The activity view is mounted
// separately since it shares the /sharing prefix with doctor routes.
func (h *SharingHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{tokenID}", h.Get)
	r.Delete("/{tokenID}", h.Revoke)
	r.Get("/{tokenID}/qr", h.QRCode)
	r.Get("/{tokenID}/logs", h.AccessLogs)

	return r
}

type createShareRequest struct {
	RecordIDs      []string `json:"recordIds"`
	ShareMethod    string   `json:"shareMethod"`
	ExpiryHours    int      `json:"expiryHours,omitempty"`
	MaxAccessCount *int     `json:"maxAccessCount,omitempty"`
}

// POST /api/sharing/tokens
func (h *SharingHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req createShareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.sharingService.Create(r.Context(), user, service.CreateShareParams{
		RecordIDs:      req.RecordIDs,
		ShareMethod:    model.ShareMethod(req.ShareMethod),
		ExpiryHours:    req.ExpiryHours,
		MaxAccessCount: req.MaxAccessCount,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]any{"token": token}
	switch token.ShareMethod {
	case model.ShareMethodURL:
		resp["shareUrl"] = h.shareURL(token.ID)
	case model.ShareMethodQR:
		// Inline the PNG so clients can display the code immediately.
		png, err := h.sharingService.QRCode(r.Context(), user.ID, token.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		resp["qrCode"] = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	}

	writeJSON(w, http.StatusCreated, resp)
}

// GET /api/sharing/tokens
func (h *SharingHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	p := ParsePagination(r)

	tokens, err := h.sharingService.List(r.Context(), user.ID, p.Limit, p.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tokens": tokens,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// GET /api/sharing/tokens/{tokenID}
func (h *SharingHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	tokenID := chi.URLParam(r, "tokenID")

	token, err := h.sharingService.Get(r.Context(), user.ID, tokenID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]any{"token": token}
	if token.ShareMethod == model.ShareMethodURL {
		resp["shareUrl"] = h.shareURL(token.ID)
	}
	writeJSON(w, http.StatusOK, resp)
}

// DELETE /api/sharing/tokens/{tokenID}
func (h *SharingHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	tokenID := chi.URLParam(r, "tokenID")
	if tokenID == "" {
		writeError(w, apperrors.MissingRequired("token id"))
		return
	}

	if err := h.sharingService.Revoke(r.Context(), user.ID, tokenID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Share token revoked"})
}

// GET /api/sharing/tokens/{tokenID}/qr
func (h *SharingHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	tokenID := chi.URLParam(r, "tokenID")

	png, err := h.sharingService.QRCode(r.Context(), user.ID, tokenID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// GET /api/sharing/tokens/{tokenID}/logs
func (h *SharingHandler) AccessLogs(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	tokenID := chi.URLParam(r, "tokenID")

	logs, err := h.sharingService.AccessLogs(r.Context(), user.ID, tokenID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

// GET /api/sharing/activity
func (h *SharingHandler) Activity(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	p := ParsePagination(r)

	logs, err := h.adminService.PatientHistory(r.Context(), user.ID, p.Limit, p.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"logs":   logs,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}
