package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/medvault/share-server-go/internal/database"
	"github.com/medvault/share-server-go/internal/model"
)

// SavedPatientRepository handles doctor bookmark data operations
type SavedPatientRepository interface {
	Create(ctx context.Context, params model.CreateSavedPatientParams) (*model.SavedPatient, error)
	FindByID(ctx context.Context, id, doctorID string) (*model.SavedPatient, error)
	FindByDoctorAndPatient(ctx context.Context, doctorID, patientID string) (*model.SavedPatient, error)
	ListByDoctor(ctx context.Context, doctorID string, limit, offset int) ([]model.SavedPatient, error)
	Update(ctx context.Context, id, doctorID string, params model.UpdateSavedPatientParams) (*model.SavedPatient, error)
	Delete(ctx context.Context, id, doctorID string) (bool, error)
}

type savedPatientRepo struct {
	db database.DBTX
}

// NewSavedPatientRepository creates a new saved patient repository
func NewSavedPatientRepository(db *sqlx.DB) SavedPatientRepository {
	return &savedPatientRepo{db: db}
}

func (r *savedPatientRepo) Create(ctx context.Context, params model.CreateSavedPatientParams) (*model.SavedPatient, error) {
	var sp model.SavedPatient
	err := r.db.GetContext(ctx, &sp, `
		INSERT INTO saved_patients (id, doctor_id, patient_id, consultation_notes)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, params.ID, params.DoctorID, params.PatientID, params.ConsultationNotes)
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func (r *savedPatientRepo) FindByID(ctx context.Context, id, doctorID string) (*model.SavedPatient, error) {
	var sp model.SavedPatient
	err := r.db.GetContext(ctx, &sp, `
		SELECT * FROM saved_patients WHERE id = $1 AND doctor_id = $2
	`, id, doctorID)
	return HandleNotFound(&sp, err)
}

func (r *savedPatientRepo) FindByDoctorAndPatient(ctx context.Context, doctorID, patientID string) (*model.SavedPatient, error) {
	var sp model.SavedPatient
	err := r.db.GetContext(ctx, &sp, `
		SELECT * FROM saved_patients WHERE doctor_id = $1 AND patient_id = $2
	`, doctorID, patientID)
	return HandleNotFound(&sp, err)
}

func (r *savedPatientRepo) ListByDoctor(ctx context.Context, doctorID string, limit, offset int) ([]model.SavedPatient, error) {
	saved := []model.SavedPatient{}
	err := r.db.SelectContext(ctx, &saved, `
		SELECT * FROM saved_patients
		WHERE doctor_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`, doctorID, limit, offset)
	return saved, err
}

func (r *savedPatientRepo) Update(ctx context.Context, id, doctorID string, params model.UpdateSavedPatientParams) (*model.SavedPatient, error) {
	var sp model.SavedPatient
	err := r.db.GetContext(ctx, &sp, `
		UPDATE saved_patients
		SET consultation_notes = COALESCE($3, consultation_notes),
		    last_consultation_date = COALESCE($4, last_consultation_date),
		    updated_at = now()
		WHERE id = $1 AND doctor_id = $2
		RETURNING *
	`, id, doctorID, params.ConsultationNotes, params.LastConsultationDate)
	return HandleNotFound(&sp, err)
}

func (r *savedPatientRepo) Delete(ctx context.Context, id, doctorID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM saved_patients WHERE id = $1 AND doctor_id = $2
	`, id, doctorID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}
