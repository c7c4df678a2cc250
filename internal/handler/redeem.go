package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medvault/share-server-go/internal/audit"
	apperrors "github.com/medvault/share-server-go/internal/errors"
	"github.com/medvault/share-server-go/internal/middleware"
	"github.com/medvault/share-server-go/internal/model"
	"github.com/medvault/share-server-go/internal/service"
)

// RedeemHandler is the doctor side of sharing: turning tokens back into
// records and reviewing past redemptions
type RedeemHandler struct {
	redemptionService *service.RedemptionService
	adminService      *service.AdminService
	redeemMW          func(http.Handler) http.Handler
}

func NewRedeemHandler(redemptionService *service.RedemptionService, adminService *service.AdminService, redeemMW func(http.Handler) http.Handler) *RedeemHandler {
	return &RedeemHandler{
		redemptionService: redemptionService,
		adminService:      adminService,
		redeemMW:          redeemMW,
	}
}

func (h *RedeemHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(h.redeemMW).Post("/scan", h.Scan)
	r.With(h.redeemMW).Get("/access/{tokenID}", h.Access)
	r.Get("/history", h.History)

	return r
}

type scanRequest struct {
	QRData string `json:"qrData"`
}

// POST /api/sharing/scan
func (h *RedeemHandler) Scan(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.redemptionService.RedeemQR(r.Context(), user, req.QRData, requestMeta(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GET /api/sharing/access/{tokenID}
func (h *RedeemHandler) Access(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	tokenID := chi.URLParam(r, "tokenID")
	if tokenID == "" {
		writeError(w, apperrors.MissingRequired("token id"))
		return
	}

	result, err := h.redemptionService.RedeemURL(r.Context(), user, tokenID, requestMeta(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GET /api/sharing/history
func (h *RedeemHandler) History(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	p := ParsePagination(r)

	logs, err := h.adminService.DoctorHistory(r.Context(), user.ID, p.Limit, p.Offset)
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

func requestMeta(r *http.Request) model.NetMeta {
	return model.NetMeta{
		IPAddress: audit.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}
