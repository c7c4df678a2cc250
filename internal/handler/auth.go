package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/medvault/share-server-go/internal/errors"
	"github.com/medvault/share-server-go/internal/middleware"
	"github.com/medvault/share-server-go/internal/model"
	"github.com/medvault/share-server-go/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	authMW      func(http.Handler) http.Handler
	loginMW     func(http.Handler) http.Handler
}

func NewAuthHandler(authService *service.AuthService, authMW, loginMW func(http.Handler) http.Handler) *AuthHandler {
	return &AuthHandler{authService: authService, authMW: authMW, loginMW: loginMW}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/verify-otp", h.VerifyOTP)
	r.Post("/resend-otp", h.ResendOTP)
	r.With(h.loginMW).Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(h.authMW)
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
	})

	return r
}

type registerRequest struct {
	Email          string  `json:"email"`
	MobileNumber   string  `json:"mobileNumber"`
	FullName       string  `json:"fullName"`
	Password       string  `json:"password"`
	Role           string  `json:"role"`
	DateOfBirth    *string `json:"dateOfBirth,omitempty"`
	Specialization *string `json:"specialization,omitempty"`
	LicenseNumber  *string `json:"licenseNumber,omitempty"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.authService.Register(r.Context(), service.RegisterParams{
		Email:          req.Email,
		MobileNumber:   req.MobileNumber,
		FullName:       req.FullName,
		Password:       req.Password,
		Role:           model.Role(req.Role),
		DateOfBirth:    req.DateOfBirth,
		Specialization: req.Specialization,
		LicenseNumber:  req.LicenseNumber,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Account created. Verify with the code sent to your mobile number.",
		"user":    user,
	})
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.authService.VerifyOTP(r.Context(), req.Email, req.Code); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Account verified"})
}

// POST /api/auth/resend-otp
func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.authService.ResendOTP(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Verification code sent"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	rawToken := middleware.GetRawToken(r.Context())
	if user == nil || rawToken == "" {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	if err := h.authService.Logout(r.Context(), user.ID, rawToken); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}
	writeJSON(w, http.StatusOK, user)
}
