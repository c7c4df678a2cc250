package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/medvault/share-server-go/internal/database"
	"github.com/medvault/share-server-go/internal/model"
)

// RecordRepository handles medical record metadata operations
type RecordRepository interface {
	Create(ctx context.Context, params model.CreateRecordParams) (*model.MedicalRecord, error)
	FindByID(ctx context.Context, id string) (*model.MedicalRecord, error)
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]model.MedicalRecord, error)
	// FindOwnedByPatient returns the non-deleted records among ids that
	// belong to patientID. Used to validate ownership at share creation.
	FindOwnedByPatient(ctx context.Context, ids []string, patientID string) ([]model.MedicalRecord, error)
	// FindExisting returns the non-deleted records among ids, in no
	// particular order; missing ids are simply absent from the result.
	FindExisting(ctx context.Context, ids []string) ([]model.MedicalRecord, error)
	SoftDelete(ctx context.Context, id, patientID string) (bool, error)
	Count(ctx context.Context) (int, error)
}

type recordRepo struct {
	db database.DBTX
}

// NewRecordRepository creates a new medical record repository
func NewRecordRepository(db *sqlx.DB) RecordRepository {
	return &recordRepo{db: db}
}

func (r *recordRepo) Create(ctx context.Context, params model.CreateRecordParams) (*model.MedicalRecord, error) {
	var record model.MedicalRecord
	err := r.db.GetContext(ctx, &record, `
		INSERT INTO medical_records (id, patient_id, title, record_type, description, file_name, file_size, blob_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING *
	`, params.ID, params.PatientID, params.Title, params.RecordType,
		params.Description, params.FileName, params.FileSize, params.BlobKey)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *recordRepo) FindByID(ctx context.Context, id string) (*model.MedicalRecord, error) {
	var record model.MedicalRecord
	err := r.db.GetContext(ctx, &record, `
		SELECT * FROM medical_records WHERE id = $1 AND NOT is_deleted
	`, id)
	return HandleNotFound(&record, err)
}

func (r *recordRepo) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]model.MedicalRecord, error) {
	records := []model.MedicalRecord{}
	err := r.db.SelectContext(ctx, &records, `
		SELECT * FROM medical_records
		WHERE patient_id = $1 AND NOT is_deleted
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, patientID, limit, offset)
	return records, err
}

func (r *recordRepo) FindOwnedByPatient(ctx context.Context, ids []string, patientID string) ([]model.MedicalRecord, error) {
	records := []model.MedicalRecord{}
	err := r.db.SelectContext(ctx, &records, `
		SELECT * FROM medical_records
		WHERE id = ANY($1) AND patient_id = $2 AND NOT is_deleted
	`, pq.Array(ids), patientID)
	return records, err
}

func (r *recordRepo) FindExisting(ctx context.Context, ids []string) ([]model.MedicalRecord, error) {
	records := []model.MedicalRecord{}
	err := r.db.SelectContext(ctx, &records, `
		SELECT * FROM medical_records
		WHERE id = ANY($1) AND NOT is_deleted
		ORDER BY created_at DESC
	`, pq.Array(ids))
	return records, err
}

// SoftDelete marks a record deleted, keeping the row for audit history
func (r *recordRepo) SoftDelete(ctx context.Context, id, patientID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE medical_records
		SET is_deleted = true, updated_at = now()
		WHERE id = $1 AND patient_id = $2 AND NOT is_deleted
	`, id, patientID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

func (r *recordRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM medical_records WHERE NOT is_deleted
	`)
	return count, err
}
