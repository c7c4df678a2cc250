package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvault/share-server-go/internal/model"
	"github.com/medvault/share-server-go/internal/util"
)

type mockUserRepo struct {
	findUserByTokenHashFunc func(ctx context.Context, tokenHash string) (*model.User, error)
}

func (m *mockUserRepo) FindUserByTokenHash(ctx context.Context, tokenHash string) (*model.User, error) {
	if m.findUserByTokenHashFunc != nil {
		return m.findUserByTokenHashFunc(ctx, tokenHash)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) FindPatientByUUID(ctx context.Context, patientUUID string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) Activate(ctx context.Context, id string) error {
	return nil
}

func (m *mockUserRepo) CountByRole(ctx context.Context, role model.Role) (int, error) {
	return 0, nil
}

func (m *mockUserRepo) CreateSession(ctx context.Context, id, userID, tokenHash string, expiresAt time.Time) (*model.AuthSession, error) {
	return nil, nil
}

func (m *mockUserRepo) DeleteSession(ctx context.Context, tokenHash string) error {
	return nil
}

func (m *mockUserRepo) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	return 0, nil
}

func TestAuthMiddleware(t *testing.T) {
	doctor := &model.User{ID: "user-1", Role: model.RoleDoctor, IsActive: true}

	okHandler := func(captured **model.User) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*captured = GetUser(r.Context())
			w.WriteHeader(http.StatusOK)
		})
	}

	t.Run("resolves bearer token to user", func(t *testing.T) {
		rawToken := "raw-session-token"
		repo := &mockUserRepo{
			findUserByTokenHashFunc: func(ctx context.Context, tokenHash string) (*model.User, error) {
				require.Equal(t, util.HashToken(rawToken), tokenHash)
				return doctor, nil
			},
		}

		var captured *model.User
		mw := NewAuthMiddleware(repo)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+rawToken)
		rec := httptest.NewRecorder()

		mw.Handler(okHandler(&captured)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, captured)
		assert.Equal(t, doctor.ID, captured.ID)
	})

	t.Run("missing token", func(t *testing.T) {
		var captured *model.User
		mw := NewAuthMiddleware(&mockUserRepo{})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		mw.Handler(okHandler(&captured)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, captured)
	})

	t.Run("unknown token", func(t *testing.T) {
		repo := &mockUserRepo{
			findUserByTokenHashFunc: func(ctx context.Context, tokenHash string) (*model.User, error) {
				return nil, nil
			},
		}

		var captured *model.User
		mw := NewAuthMiddleware(repo)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer expired-or-bogus")
		rec := httptest.NewRecorder()

		mw.Handler(okHandler(&captured)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("database error", func(t *testing.T) {
		repo := &mockUserRepo{
			findUserByTokenHashFunc: func(ctx context.Context, tokenHash string) (*model.User, error) {
				return nil, errors.New("connection refused")
			},
		}

		var captured *model.User
		mw := NewAuthMiddleware(repo)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer anything")
		rec := httptest.NewRecorder()

		mw.Handler(okHandler(&captured)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	withUser := func(req *http.Request, user *model.User) *http.Request {
		return req.WithContext(context.WithValue(req.Context(), UserContextKey, user))
	}

	t.Run("allows matching role", func(t *testing.T) {
		req := withUser(httptest.NewRequest(http.MethodGet, "/", nil),
			&model.User{ID: "u", Role: model.RolePatient})
		rec := httptest.NewRecorder()

		RequireRole(model.RolePatient)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects other roles", func(t *testing.T) {
		req := withUser(httptest.NewRequest(http.MethodGet, "/", nil),
			&model.User{ID: "u", Role: model.RoleDoctor})
		rec := httptest.NewRecorder()

		RequireRole(model.RolePatient)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("rejects anonymous requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		RequireRole(model.RolePatient)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
