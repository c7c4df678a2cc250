package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/medvault/share-server-go/internal/errors"
	"github.com/medvault/share-server-go/internal/model"
	"github.com/medvault/share-server-go/internal/util"
)

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a patient with a public identifier", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		otpStore := newMemoryOTPStore()
		svc := NewAuthService(userRepo, otpStore)

		userRepo.On("FindByEmail", ctx, "jane@example.com").Return(nil, nil)
		userRepo.On("Create", ctx, mock.MatchedBy(func(p model.CreateUserParams) bool {
			return p.Email == "jane@example.com" &&
				p.Role == model.RolePatient &&
				p.PatientUUID != nil &&
				p.PasswordHash != "hunter2-long" // never stored in the clear
		})).Return(&model.User{ID: "user-1", Role: model.RolePatient}, nil)

		user, err := svc.Register(ctx, RegisterParams{
			Email:    "jane@example.com",
			FullName: "Jane Doe",
			Password: "hunter2-long",
			Role:     model.RolePatient,
		})

		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
		assert.NotEmpty(t, otpStore.codes["user-1"], "activation code should be pending")
		userRepo.AssertExpectations(t)
	})

	t.Run("doctors get no patient identifier", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		svc := NewAuthService(userRepo, newMemoryOTPStore())

		userRepo.On("FindByEmail", ctx, "dr@example.com").Return(nil, nil)
		userRepo.On("Create", ctx, mock.MatchedBy(func(p model.CreateUserParams) bool {
			return p.PatientUUID == nil
		})).Return(&model.User{ID: "user-2", Role: model.RoleDoctor}, nil)

		_, err := svc.Register(ctx, RegisterParams{
			Email:    "dr@example.com",
			FullName: "Dr. Ahsan",
			Password: "hunter2-long",
			Role:     model.RoleDoctor,
		})

		require.NoError(t, err)
	})

	t.Run("duplicate email", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		svc := NewAuthService(userRepo, newMemoryOTPStore())

		userRepo.On("FindByEmail", ctx, "jane@example.com").
			Return(&model.User{ID: "existing"}, nil)

		_, err := svc.Register(ctx, RegisterParams{
			Email:    "jane@example.com",
			FullName: "Jane Doe",
			Password: "hunter2-long",
			Role:     model.RolePatient,
		})

		assert.Equal(t, apperrors.ErrCodeAlreadyExists, apperrors.GetCode(err))
	})

	t.Run("short password", func(t *testing.T) {
		svc := NewAuthService(new(mockUserRepo), newMemoryOTPStore())

		_, err := svc.Register(ctx, RegisterParams{
			Email:    "jane@example.com",
			FullName: "Jane Doe",
			Password: "short",
			Role:     model.RolePatient,
		})

		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))
	})

	t.Run("admin cannot self-register", func(t *testing.T) {
		svc := NewAuthService(new(mockUserRepo), newMemoryOTPStore())

		_, err := svc.Register(ctx, RegisterParams{
			Email:    "root@example.com",
			FullName: "Root",
			Password: "hunter2-long",
			Role:     model.RoleAdmin,
		})

		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))
	})
}

func TestAuthService_VerifyOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("activates on matching code", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		otpStore := newMemoryOTPStore()
		otpStore.codes["user-1"] = "123456"
		svc := NewAuthService(userRepo, otpStore)

		userRepo.On("FindByEmail", ctx, "jane@example.com").
			Return(&model.User{ID: "user-1", IsActive: false}, nil)
		userRepo.On("Activate", ctx, "user-1").Return(nil)

		err := svc.VerifyOTP(ctx, "jane@example.com", "123456")

		require.NoError(t, err)
		assert.Empty(t, otpStore.codes["user-1"], "code should be consumed")
		userRepo.AssertExpectations(t)
	})

	t.Run("mismatched code", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		otpStore := newMemoryOTPStore()
		otpStore.codes["user-1"] = "123456"
		svc := NewAuthService(userRepo, otpStore)

		userRepo.On("FindByEmail", ctx, "jane@example.com").
			Return(&model.User{ID: "user-1", IsActive: false}, nil)

		err := svc.VerifyOTP(ctx, "jane@example.com", "654321")

		assert.Equal(t, apperrors.ErrCodeInvalidOTP, apperrors.GetCode(err))
		userRepo.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything)
	})

	t.Run("no pending code", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		svc := NewAuthService(userRepo, newMemoryOTPStore())

		userRepo.On("FindByEmail", ctx, "jane@example.com").
			Return(&model.User{ID: "user-1", IsActive: false}, nil)

		err := svc.VerifyOTP(ctx, "jane@example.com", "123456")

		assert.Equal(t, apperrors.ErrCodeOTPExpired, apperrors.GetCode(err))
	})

	t.Run("already active account is a no-op", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		svc := NewAuthService(userRepo, newMemoryOTPStore())

		userRepo.On("FindByEmail", ctx, "jane@example.com").
			Return(&model.User{ID: "user-1", IsActive: true}, nil)

		err := svc.VerifyOTP(ctx, "jane@example.com", "000000")

		require.NoError(t, err)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	activeUser := func(t *testing.T) *model.User {
		t.Helper()
		hash, err := util.HashPassword("correct-password")
		require.NoError(t, err)
		return &model.User{
			ID:           "user-1",
			Email:        "jane@example.com",
			PasswordHash: hash,
			Role:         model.RolePatient,
			IsActive:     true,
		}
	}

	t.Run("opens a session for valid credentials", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		svc := NewAuthService(userRepo, newMemoryOTPStore())
		user := activeUser(t)

		userRepo.On("FindByEmail", ctx, user.Email).Return(user, nil)
		userRepo.On("CreateSession", ctx, mock.Anything, user.ID, mock.Anything, mock.Anything).
			Return(&model.AuthSession{ID: "session-1", UserID: user.ID}, nil)

		rawToken, got, err := svc.Login(ctx, user.Email, "correct-password")

		require.NoError(t, err)
		assert.NotEmpty(t, rawToken)
		assert.Equal(t, user.ID, got.ID)

		// Only the hash of the token reaches storage.
		call := userRepo.Calls[1]
		assert.Equal(t, util.HashToken(rawToken), call.Arguments.String(3))
	})

	t.Run("wrong password", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		svc := NewAuthService(userRepo, newMemoryOTPStore())
		user := activeUser(t)

		userRepo.On("FindByEmail", ctx, user.Email).Return(user, nil)

		_, _, err := svc.Login(ctx, user.Email, "wrong")

		assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.GetCode(err))
	})

	t.Run("unknown email gets the same error as wrong password", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		svc := NewAuthService(userRepo, newMemoryOTPStore())

		userRepo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, nil)

		_, _, err := svc.Login(ctx, "nobody@example.com", "anything")

		assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.GetCode(err))
	})

	t.Run("unverified account", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		svc := NewAuthService(userRepo, newMemoryOTPStore())
		user := activeUser(t)
		user.IsActive = false

		userRepo.On("FindByEmail", ctx, user.Email).Return(user, nil)

		_, _, err := svc.Login(ctx, user.Email, "correct-password")

		assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.GetCode(err))
	})
}
