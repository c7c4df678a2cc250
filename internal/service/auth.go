package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medvault/share-server-go/internal/audit"
	"github.com/medvault/share-server-go/internal/config"
	apperrors "github.com/medvault/share-server-go/internal/errors"
	"github.com/medvault/share-server-go/internal/model"
	"github.com/medvault/share-server-go/internal/repository"
	"github.com/medvault/share-server-go/internal/util"
)

// OTPStore holds pending verification codes. The redis-backed implementation
// is the only production one; tests swap in an in-memory fake.
type OTPStore interface {
	Set(ctx context.Context, userID, code string, ttl time.Duration) error
	Get(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}

// RegisterParams carries a signup request
type RegisterParams struct {
	Email          string
	MobileNumber   string
	FullName       string
	Password       string
	Role           model.Role
	DateOfBirth    *string
	Specialization *string
	LicenseNumber  *string
}

// AuthService handles registration, OTP activation and session management
type AuthService struct {
	userRepo repository.UserRepository
	otpStore OTPStore
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, otpStore OTPStore) *AuthService {
	return &AuthService{userRepo: userRepo, otpStore: otpStore}
}

// Register creates an inactive account and dispatches an activation code.
// Patients get a stable public identifier on top of the internal id.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	if !util.IsValidEmail(params.Email) {
		return nil, apperrors.InvalidInput("email", "invalid format")
	}
	if len(params.Password) < 8 {
		return nil, apperrors.InvalidInput("password", "must be at least 8 characters")
	}
	if params.FullName == "" {
		return nil, apperrors.MissingRequired("full_name")
	}
	if params.Role != model.RolePatient && params.Role != model.RoleDoctor {
		return nil, apperrors.InvalidInput("role", "must be patient or doctor")
	}

	existing, err := s.userRepo.FindByEmail(ctx, params.Email)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing != nil {
		return nil, apperrors.AlreadyExists("User")
	}

	hash, err := util.HashPassword(params.Password)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password")
	}

	var patientUUID *string
	if params.Role == model.RolePatient {
		id := uuid.NewString()
		patientUUID = &id
	}

	user, err := s.userRepo.Create(ctx, model.CreateUserParams{
		ID:           uuid.NewString(),
		Email:        params.Email,
		MobileNumber: params.MobileNumber,
		FullName:     params.FullName,
		Role:         params.Role,
		PasswordHash: hash,
		PatientUUID:  patientUUID,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	if err := s.dispatchOTP(ctx, user); err != nil {
		log.Error().Err(err).Str("userId", user.ID).Msg("failed to dispatch activation code")
	}

	audit.Log(ctx, audit.Event{
		Type:    audit.EventUserRegister,
		UserID:  user.ID,
		Details: map[string]interface{}{"role": string(user.Role)},
	})

	return user, nil
}

// ResendOTP issues a fresh activation code, replacing any pending one
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return apperrors.Database(err)
	}
	if user == nil {
		return apperrors.NotFound("User")
	}
	if user.IsActive {
		return apperrors.ValidationError("account is already verified")
	}
	return s.dispatchOTP(ctx, user)
}

// dispatchOTP stores a fresh code and hands it to the delivery channel.
// Delivery is a log line for now; SMS/email integration replaces it.
func (s *AuthService) dispatchOTP(ctx context.Context, user *model.User) error {
	code := util.GenerateOTP(config.OTPLength)
	if err := s.otpStore.Set(ctx, user.ID, code, config.OTPTTL); err != nil {
		return err
	}
	log.Info().
		Str("userId", user.ID).
		Str("mobileNumber", user.MobileNumber).
		Msg("activation code dispatched")
	return nil
}

// VerifyOTP activates an account when the submitted code matches the
// pending one. Verifying an already-active account is a no-op success.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return apperrors.Database(err)
	}
	if user == nil {
		return apperrors.NotFound("User")
	}
	if user.IsActive {
		return nil
	}

	stored, err := s.otpStore.Get(ctx, user.ID)
	if err != nil {
		return apperrors.Database(err)
	}
	if stored == "" {
		return apperrors.OTPExpired()
	}
	if stored != code {
		audit.Log(ctx, audit.Event{
			Type:    audit.EventAuthFailure,
			UserID:  user.ID,
			Details: map[string]interface{}{"reason": "otp mismatch"},
		})
		return apperrors.InvalidOTP()
	}

	if err := s.userRepo.Activate(ctx, user.ID); err != nil {
		return apperrors.Database(err)
	}
	if err := s.otpStore.Delete(ctx, user.ID); err != nil {
		log.Warn().Err(err).Str("userId", user.ID).Msg("failed to clear used activation code")
	}

	audit.Log(ctx, audit.Event{Type: audit.EventUserActivate, UserID: user.ID})
	return nil
}

// Login verifies credentials and opens a bearer session. Only the hash of
// the session token is stored.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, apperrors.Database(err)
	}
	if user == nil || !util.CheckPasswordHash(password, user.PasswordHash) {
		audit.Log(ctx, audit.Event{
			Type:    audit.EventLoginFailure,
			Details: map[string]interface{}{"email": email},
		})
		return "", nil, apperrors.Unauthorized("Invalid email or password")
	}
	if !user.IsActive {
		return "", nil, apperrors.Unauthorized("Account is not verified")
	}

	rawToken, err := util.GenerateToken()
	if err != nil {
		return "", nil, apperrors.Internal("failed to generate session token")
	}

	_, err = s.userRepo.CreateSession(ctx, uuid.NewString(), user.ID,
		util.HashToken(rawToken), time.Now().Add(config.SessionTTL))
	if err != nil {
		return "", nil, apperrors.Database(err)
	}

	audit.Log(ctx, audit.Event{Type: audit.EventLoginSuccess, UserID: user.ID})
	return rawToken, user, nil
}

// Logout closes the session for the given bearer token
func (s *AuthService) Logout(ctx context.Context, userID, rawToken string) error {
	if err := s.userRepo.DeleteSession(ctx, util.HashToken(rawToken)); err != nil {
		return apperrors.Database(err)
	}
	audit.Log(ctx, audit.Event{Type: audit.EventLogout, UserID: userID})
	return nil
}

// Authenticate resolves the user behind a bearer token, or nil for an
// unknown or expired session
func (s *AuthService) Authenticate(ctx context.Context, rawToken string) (*model.User, error) {
	user, err := s.userRepo.FindUserByTokenHash(ctx, util.HashToken(rawToken))
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return user, nil
}
