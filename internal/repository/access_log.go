package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/medvault/share-server-go/internal/database"
	"github.com/medvault/share-server-go/internal/model"
)

// AccessLogRepository is insert-only apart from reads: access logs are the
// audit trail of record and are never updated or deleted.
type AccessLogRepository interface {
	Create(ctx context.Context, params model.CreateAccessLogParams) (*model.AccessLog, error)
	ListByDoctor(ctx context.Context, doctorID string, limit, offset int) ([]model.AccessLog, error)
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]model.AccessLog, error)
	ListByToken(ctx context.Context, tokenID string) ([]model.AccessLog, error)
	Count(ctx context.Context) (int, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) AccessLogRepository
}

type accessLogRepo struct {
	db database.DBTX
}

// NewAccessLogRepository creates a new access log repository
func NewAccessLogRepository(db *sqlx.DB) AccessLogRepository {
	return &accessLogRepo{db: db}
}

func (r *accessLogRepo) WithTx(tx *sqlx.Tx) AccessLogRepository {
	return &accessLogRepo{db: tx}
}

func (r *accessLogRepo) Create(ctx context.Context, params model.CreateAccessLogParams) (*model.AccessLog, error) {
	var entry model.AccessLog
	err := r.db.GetContext(ctx, &entry, `
		INSERT INTO access_logs (id, share_token_id, doctor_id, patient_id, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, params.ID, params.ShareTokenID, params.DoctorID, params.PatientID,
		params.IPAddress, params.UserAgent)
	if err != nil {
		return nil, err
	}

	for _, recordID := range params.RecordIDs {
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO access_log_records (access_log_id, record_id)
			VALUES ($1, $2)
		`, entry.ID, recordID); err != nil {
			return nil, err
		}
	}

	entry.RecordIDs = params.RecordIDs
	return &entry, nil
}

func (r *accessLogRepo) ListByDoctor(ctx context.Context, doctorID string, limit, offset int) ([]model.AccessLog, error) {
	logs := []model.AccessLog{}
	err := r.db.SelectContext(ctx, &logs, `
		SELECT * FROM access_logs
		WHERE doctor_id = $1
		ORDER BY accessed_at DESC
		LIMIT $2 OFFSET $3
	`, doctorID, limit, offset)
	if err != nil {
		return nil, err
	}
	return r.loadRecordIDs(ctx, logs)
}

func (r *accessLogRepo) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]model.AccessLog, error) {
	logs := []model.AccessLog{}
	err := r.db.SelectContext(ctx, &logs, `
		SELECT * FROM access_logs
		WHERE patient_id = $1
		ORDER BY accessed_at DESC
		LIMIT $2 OFFSET $3
	`, patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	return r.loadRecordIDs(ctx, logs)
}

func (r *accessLogRepo) ListByToken(ctx context.Context, tokenID string) ([]model.AccessLog, error) {
	logs := []model.AccessLog{}
	err := r.db.SelectContext(ctx, &logs, `
		SELECT * FROM access_logs
		WHERE share_token_id = $1
		ORDER BY accessed_at DESC
	`, tokenID)
	if err != nil {
		return nil, err
	}
	return r.loadRecordIDs(ctx, logs)
}

func (r *accessLogRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM access_logs
	`)
	return count, err
}

func (r *accessLogRepo) loadRecordIDs(ctx context.Context, logs []model.AccessLog) ([]model.AccessLog, error) {
	for i := range logs {
		ids := []string{}
		err := r.db.SelectContext(ctx, &ids, `
			SELECT record_id FROM access_log_records WHERE access_log_id = $1
		`, logs[i].ID)
		if err != nil {
			return nil, err
		}
		logs[i].RecordIDs = ids
	}
	return logs, nil
}
