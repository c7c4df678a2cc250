package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medvault/share-server-go/internal/audit"
	apperrors "github.com/medvault/share-server-go/internal/errors"
	"github.com/medvault/share-server-go/internal/model"
	"github.com/medvault/share-server-go/internal/repository"
)

// CreateRecordParams carries a patient's upload request. File content itself
// goes to blob storage out of band; only metadata lives here.
type CreateRecordParams struct {
	Title       string
	RecordType  model.RecordType
	Description *string
	FileName    *string
	FileSize    *int64
	BlobKey     *string
}

// RecordService handles a patient's own medical records. Doctor access goes
// through RedemptionService exclusively.
type RecordService struct {
	recordRepo repository.RecordRepository
}

// NewRecordService creates a new record service
func NewRecordService(recordRepo repository.RecordRepository) *RecordService {
	return &RecordService{recordRepo: recordRepo}
}

func (s *RecordService) Create(ctx context.Context, patientID string, params CreateRecordParams) (*model.MedicalRecord, error) {
	if params.Title == "" {
		return nil, apperrors.MissingRequired("title")
	}
	if !params.RecordType.Valid() {
		return nil, apperrors.InvalidInput("record_type", "unknown record type")
	}

	record, err := s.recordRepo.Create(ctx, model.CreateRecordParams{
		ID:          uuid.NewString(),
		PatientID:   patientID,
		Title:       params.Title,
		RecordType:  params.RecordType,
		Description: params.Description,
		FileName:    params.FileName,
		FileSize:    params.FileSize,
		BlobKey:     params.BlobKey,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().Str("recordId", record.ID).Str("patientId", patientID).Msg("medical record created")
	return record, nil
}

func (s *RecordService) List(ctx context.Context, patientID string, limit, offset int) ([]model.MedicalRecord, error) {
	records, err := s.recordRepo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return records, nil
}

func (s *RecordService) Get(ctx context.Context, patientID, recordID string) (*model.MedicalRecord, error) {
	record, err := s.recordRepo.FindByID(ctx, recordID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if record == nil || record.PatientID != patientID {
		return nil, apperrors.NotFound("Medical record")
	}
	return record, nil
}

// Delete soft-deletes a record. Share tokens that reference it stay valid;
// redemptions just no longer return this record.
func (s *RecordService) Delete(ctx context.Context, patientID, recordID string) error {
	deleted, err := s.recordRepo.SoftDelete(ctx, recordID, patientID)
	if err != nil {
		return apperrors.Database(err)
	}
	if !deleted {
		return apperrors.NotFound("Medical record")
	}

	audit.Log(ctx, audit.Event{
		Type:      audit.EventRecordDelete,
		UserID:    patientID,
		PatientID: patientID,
		Details:   map[string]interface{}{"record_id": recordID},
	})
	return nil
}
