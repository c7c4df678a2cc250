package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"github.com/medvault/share-server-go/internal/database"
	"github.com/medvault/share-server-go/internal/model"
	"github.com/medvault/share-server-go/internal/repository"
)

// fakeTxRunner runs the transaction function directly; mock repositories
// ignore the tx handle anyway.
type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn database.TxFunc) error {
	return fn(nil)
}

// Mock user repository
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) FindPatientByUUID(ctx context.Context, patientUUID string) (*model.User, error) {
	args := m.Called(ctx, patientUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) Activate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockUserRepo) CountByRole(ctx context.Context, role model.Role) (int, error) {
	args := m.Called(ctx, role)
	return args.Int(0), args.Error(1)
}

func (m *mockUserRepo) CreateSession(ctx context.Context, id, userID, tokenHash string, expiresAt time.Time) (*model.AuthSession, error) {
	args := m.Called(ctx, id, userID, tokenHash, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthSession), args.Error(1)
}

func (m *mockUserRepo) FindUserByTokenHash(ctx context.Context, tokenHash string) (*model.User, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) DeleteSession(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *mockUserRepo) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Mock record repository
type mockRecordRepo struct {
	mock.Mock
}

func (m *mockRecordRepo) Create(ctx context.Context, params model.CreateRecordParams) (*model.MedicalRecord, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MedicalRecord), args.Error(1)
}

func (m *mockRecordRepo) FindByID(ctx context.Context, id string) (*model.MedicalRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MedicalRecord), args.Error(1)
}

func (m *mockRecordRepo) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]model.MedicalRecord, error) {
	args := m.Called(ctx, patientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MedicalRecord), args.Error(1)
}

func (m *mockRecordRepo) FindOwnedByPatient(ctx context.Context, ids []string, patientID string) ([]model.MedicalRecord, error) {
	args := m.Called(ctx, ids, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MedicalRecord), args.Error(1)
}

func (m *mockRecordRepo) FindExisting(ctx context.Context, ids []string) ([]model.MedicalRecord, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MedicalRecord), args.Error(1)
}

func (m *mockRecordRepo) SoftDelete(ctx context.Context, id, patientID string) (bool, error) {
	args := m.Called(ctx, id, patientID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRecordRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// Mock share token repository
type mockShareTokenRepo struct {
	mock.Mock
}

func (m *mockShareTokenRepo) Create(ctx context.Context, params model.CreateShareTokenParams) (*model.ShareToken, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareToken), args.Error(1)
}

func (m *mockShareTokenRepo) FindByID(ctx context.Context, id string) (*model.ShareToken, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareToken), args.Error(1)
}

func (m *mockShareTokenRepo) FindByEncryptedToken(ctx context.Context, encryptedToken string) (*model.ShareToken, error) {
	args := m.Called(ctx, encryptedToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareToken), args.Error(1)
}

func (m *mockShareTokenRepo) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]model.ShareToken, error) {
	args := m.Called(ctx, patientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ShareToken), args.Error(1)
}

func (m *mockShareTokenRepo) Revoke(ctx context.Context, id, patientID string) (bool, error) {
	args := m.Called(ctx, id, patientID)
	return args.Bool(0), args.Error(1)
}

func (m *mockShareTokenRepo) IncrementIfValid(ctx context.Context, id string) (*model.ShareToken, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareToken), args.Error(1)
}

func (m *mockShareTokenRepo) Stats(ctx context.Context) (*repository.TokenStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.TokenStats), args.Error(1)
}

func (m *mockShareTokenRepo) WithTx(tx *sqlx.Tx) repository.ShareTokenRepository {
	return m
}

// Mock access log repository
type mockAccessLogRepo struct {
	mock.Mock
}

func (m *mockAccessLogRepo) Create(ctx context.Context, params model.CreateAccessLogParams) (*model.AccessLog, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccessLog), args.Error(1)
}

func (m *mockAccessLogRepo) ListByDoctor(ctx context.Context, doctorID string, limit, offset int) ([]model.AccessLog, error) {
	args := m.Called(ctx, doctorID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AccessLog), args.Error(1)
}

func (m *mockAccessLogRepo) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]model.AccessLog, error) {
	args := m.Called(ctx, patientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AccessLog), args.Error(1)
}

func (m *mockAccessLogRepo) ListByToken(ctx context.Context, tokenID string) ([]model.AccessLog, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AccessLog), args.Error(1)
}

func (m *mockAccessLogRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockAccessLogRepo) WithTx(tx *sqlx.Tx) repository.AccessLogRepository {
	return m
}

// In-memory OTP store
type memoryOTPStore struct {
	codes map[string]string
}

func newMemoryOTPStore() *memoryOTPStore {
	return &memoryOTPStore{codes: make(map[string]string)}
}

func (s *memoryOTPStore) Set(ctx context.Context, userID, code string, ttl time.Duration) error {
	s.codes[userID] = code
	return nil
}

func (s *memoryOTPStore) Get(ctx context.Context, userID string) (string, error) {
	return s.codes[userID], nil
}

func (s *memoryOTPStore) Delete(ctx context.Context, userID string) error {
	delete(s.codes, userID)
	return nil
}
