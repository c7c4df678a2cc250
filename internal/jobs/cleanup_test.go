package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/medvault/share-server-go/internal/model"
)

type mockUserRepo struct {
	mock.Mock
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

func (m *mockUserRepo) FindUserByTokenHash(ctx context.Context, tokenHash string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) DeleteSession(ctx context.Context, tokenHash string) error {
	return nil
}

func (m *mockUserRepo) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestCleanupJob(t *testing.T) {
	t.Run("deletes expired sessions", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("DeleteExpiredSessions", mock.Anything).Return(int64(3), nil)

		job := NewCleanupJob(repo, time.Minute)
		job.cleanup()

		repo.AssertExpectations(t)
	})

	t.Run("survives repository errors", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("DeleteExpiredSessions", mock.Anything).Return(int64(0), errors.New("db down"))

		job := NewCleanupJob(repo, time.Minute)
		job.cleanup()

		repo.AssertExpectations(t)
	})

	t.Run("start and stop", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("DeleteExpiredSessions", mock.Anything).Return(int64(0), nil)

		job := NewCleanupJob(repo, time.Hour)
		job.Start()
		time.Sleep(50 * time.Millisecond)
		job.Stop()

		repo.AssertExpectations(t)
	})
}
