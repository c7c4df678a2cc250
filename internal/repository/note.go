package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/medvault/share-server-go/internal/database"
	"github.com/medvault/share-server-go/internal/model"
)

// NoteRepository handles doctor note data operations
type NoteRepository interface {
	Create(ctx context.Context, params model.CreateNoteParams) (*model.DoctorNote, error)
	FindByID(ctx context.Context, id, doctorID string) (*model.DoctorNote, error)
	ListByDoctor(ctx context.Context, doctorID string, patientID *string, limit, offset int) ([]model.DoctorNote, error)
	Update(ctx context.Context, id, doctorID string, params model.UpdateNoteParams) (*model.DoctorNote, error)
	Delete(ctx context.Context, id, doctorID string) (bool, error)
}

type noteRepo struct {
	db database.DBTX
}

// NewNoteRepository creates a new doctor note repository
func NewNoteRepository(db *sqlx.DB) NoteRepository {
	return &noteRepo{db: db}
}

func (r *noteRepo) Create(ctx context.Context, params model.CreateNoteParams) (*model.DoctorNote, error) {
	var note model.DoctorNote
	err := r.db.GetContext(ctx, &note, `
		INSERT INTO doctor_notes (id, doctor_id, patient_id, note_text, is_audio_transcript, is_shared_with_patient)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, params.ID, params.DoctorID, params.PatientID, params.NoteText,
		params.IsAudioTranscript, params.IsSharedWithPatient)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *noteRepo) FindByID(ctx context.Context, id, doctorID string) (*model.DoctorNote, error) {
	var note model.DoctorNote
	err := r.db.GetContext(ctx, &note, `
		SELECT * FROM doctor_notes WHERE id = $1 AND doctor_id = $2
	`, id, doctorID)
	return HandleNotFound(&note, err)
}

func (r *noteRepo) ListByDoctor(ctx context.Context, doctorID string, patientID *string, limit, offset int) ([]model.DoctorNote, error) {
	notes := []model.DoctorNote{}
	err := r.db.SelectContext(ctx, &notes, `
		SELECT * FROM doctor_notes
		WHERE doctor_id = $1 AND ($2::uuid IS NULL OR patient_id = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, doctorID, patientID, limit, offset)
	return notes, err
}

func (r *noteRepo) Update(ctx context.Context, id, doctorID string, params model.UpdateNoteParams) (*model.DoctorNote, error) {
	var note model.DoctorNote
	err := r.db.GetContext(ctx, &note, `
		UPDATE doctor_notes
		SET note_text = COALESCE($3, note_text),
		    is_shared_with_patient = COALESCE($4, is_shared_with_patient),
		    updated_at = now()
		WHERE id = $1 AND doctor_id = $2
		RETURNING *
	`, id, doctorID, params.NoteText, params.IsSharedWithPatient)
	return HandleNotFound(&note, err)
}

func (r *noteRepo) Delete(ctx context.Context, id, doctorID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM doctor_notes WHERE id = $1 AND doctor_id = $2
	`, id, doctorID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}
