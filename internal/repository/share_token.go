package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/medvault/share-server-go/internal/database"
	"github.com/medvault/share-server-go/internal/model"
)

// TokenStats summarizes share token state for reporting
type TokenStats struct {
	Total   int `db:"total" json:"total"`
	Active  int `db:"active" json:"active"`
	Revoked int `db:"revoked" json:"revoked"`
	Expired int `db:"expired" json:"expired"`
}

// ShareTokenRepository handles share token data operations. Tokens are
// never hard-deleted; revocation and expiry leave the row in place for audit.
type ShareTokenRepository interface {
	Create(ctx context.Context, params model.CreateShareTokenParams) (*model.ShareToken, error)
	FindByID(ctx context.Context, id string) (*model.ShareToken, error)
	FindByEncryptedToken(ctx context.Context, encryptedToken string) (*model.ShareToken, error)
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]model.ShareToken, error)
	// Revoke flips is_revoked one-way. revoked_at is set only when the flag
	// actually flips, so re-revoking never moves the timestamp.
	Revoke(ctx context.Context, id, patientID string) (bool, error)
	// IncrementIfValid bumps the access count only while the token is still
	// valid, atomically re-checking revocation, expiry and the count ceiling.
	// Returns nil when the token lost validity (including losing a race for
	// the final permitted access).
	IncrementIfValid(ctx context.Context, id string) (*model.ShareToken, error)
	Stats(ctx context.Context) (*TokenStats, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) ShareTokenRepository
}

type shareTokenRepo struct {
	db database.DBTX
}

// NewShareTokenRepository creates a new share token repository
func NewShareTokenRepository(db *sqlx.DB) ShareTokenRepository {
	return &shareTokenRepo{db: db}
}

func (r *shareTokenRepo) WithTx(tx *sqlx.Tx) ShareTokenRepository {
	return &shareTokenRepo{db: tx}
}

// Create inserts the token and its record relation. The record set is fixed
// here and never changes afterward. Run inside a transaction via WithTx so a
// failed relation insert leaves no orphan token.
func (r *shareTokenRepo) Create(ctx context.Context, params model.CreateShareTokenParams) (*model.ShareToken, error) {
	var token model.ShareToken
	err := r.db.GetContext(ctx, &token, `
		INSERT INTO share_tokens (id, patient_id, encrypted_token, share_method, expires_at, max_access_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, params.ID, params.PatientID, params.EncryptedToken, params.ShareMethod,
		params.ExpiresAt, params.MaxAccessCount)
	if err != nil {
		return nil, err
	}

	for _, recordID := range params.RecordIDs {
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO share_token_records (share_token_id, record_id)
			VALUES ($1, $2)
		`, token.ID, recordID); err != nil {
			return nil, err
		}
	}

	token.RecordIDs = params.RecordIDs
	return &token, nil
}

func (r *shareTokenRepo) FindByID(ctx context.Context, id string) (*model.ShareToken, error) {
	var token model.ShareToken
	err := r.db.GetContext(ctx, &token, `
		SELECT * FROM share_tokens WHERE id = $1
	`, id)
	found, err := HandleNotFound(&token, err)
	if err != nil || found == nil {
		return nil, err
	}
	if err := r.loadRecordIDs(ctx, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *shareTokenRepo) FindByEncryptedToken(ctx context.Context, encryptedToken string) (*model.ShareToken, error) {
	var token model.ShareToken
	err := r.db.GetContext(ctx, &token, `
		SELECT * FROM share_tokens WHERE encrypted_token = $1
	`, encryptedToken)
	found, err := HandleNotFound(&token, err)
	if err != nil || found == nil {
		return nil, err
	}
	if err := r.loadRecordIDs(ctx, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *shareTokenRepo) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]model.ShareToken, error) {
	tokens := []model.ShareToken{}
	err := r.db.SelectContext(ctx, &tokens, `
		SELECT * FROM share_tokens
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	for i := range tokens {
		if err := r.loadRecordIDs(ctx, &tokens[i]); err != nil {
			return nil, err
		}
	}
	return tokens, nil
}

func (r *shareTokenRepo) Revoke(ctx context.Context, id, patientID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE share_tokens
		SET is_revoked = true, revoked_at = now()
		WHERE id = $1 AND patient_id = $2 AND NOT is_revoked
	`, id, patientID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

func (r *shareTokenRepo) IncrementIfValid(ctx context.Context, id string) (*model.ShareToken, error) {
	var token model.ShareToken
	err := r.db.GetContext(ctx, &token, `
		UPDATE share_tokens
		SET current_access_count = current_access_count + 1
		WHERE id = $1
		  AND NOT is_revoked
		  AND expires_at > now()
		  AND (max_access_count IS NULL OR current_access_count < max_access_count)
		RETURNING *
	`, id)
	return HandleNotFound(&token, err)
}

func (r *shareTokenRepo) Stats(ctx context.Context) (*TokenStats, error) {
	var stats TokenStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE NOT is_revoked AND expires_at > now()) AS active,
			COUNT(*) FILTER (WHERE is_revoked) AS revoked,
			COUNT(*) FILTER (WHERE NOT is_revoked AND expires_at <= now()) AS expired
		FROM share_tokens
	`)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *shareTokenRepo) loadRecordIDs(ctx context.Context, token *model.ShareToken) error {
	ids := []string{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT record_id FROM share_token_records WHERE share_token_id = $1
	`, token.ID)
	if err != nil {
		return err
	}
	token.RecordIDs = ids
	return nil
}
