package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medvault/share-server-go/internal/database"
	"github.com/medvault/share-server-go/internal/model"
)

// UserRepository handles user and auth session data operations
type UserRepository interface {
	Create(ctx context.Context, params model.CreateUserParams) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindPatientByUUID(ctx context.Context, patientUUID string) (*model.User, error)
	Activate(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role model.Role) (int, error)

	CreateSession(ctx context.Context, id, userID, tokenHash string, expiresAt time.Time) (*model.AuthSession, error)
	FindUserByTokenHash(ctx context.Context, tokenHash string) (*model.User, error)
	DeleteSession(ctx context.Context, tokenHash string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

type userRepo struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepo{db: db}
}

// Create inserts a new, inactive user
func (r *userRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		INSERT INTO users (id, email, mobile_number, full_name, role, password_hash, patient_uuid)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *
	`, params.ID, params.Email, params.MobileNumber, params.FullName,
		params.Role, params.PasswordHash, params.PatientUUID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE id = $1
	`, id)
	return HandleNotFound(&user, err)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE email = $1
	`, email)
	return HandleNotFound(&user, err)
}

// FindPatientByUUID resolves a patient by its stable public identifier
func (r *userRepo) FindPatientByUUID(ctx context.Context, patientUUID string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE patient_uuid = $1 AND role = 'patient'
	`, patientUUID)
	return HandleNotFound(&user, err)
}

func (r *userRepo) Activate(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET is_active = true, updated_at = now() WHERE id = $1
	`, id)
	return err
}

func (r *userRepo) CountByRole(ctx context.Context, role model.Role) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM users WHERE role = $1
	`, role)
	return count, err
}

func (r *userRepo) CreateSession(ctx context.Context, id, userID, tokenHash string, expiresAt time.Time) (*model.AuthSession, error) {
	var session model.AuthSession
	err := r.db.GetContext(ctx, &session, `
		INSERT INTO auth_sessions (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, id, userID, tokenHash, expiresAt)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindUserByTokenHash resolves an active user from a live session token
func (r *userRepo) FindUserByTokenHash(ctx context.Context, tokenHash string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT u.* FROM users u
		JOIN auth_sessions s ON s.user_id = u.id
		WHERE s.token_hash = $1 AND s.expires_at > now() AND u.is_active
	`, tokenHash)
	return HandleNotFound(&user, err)
}

func (r *userRepo) DeleteSession(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM auth_sessions WHERE token_hash = $1
	`, tokenHash)
	return err
}

func (r *userRepo) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM auth_sessions WHERE expires_at < now()
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
