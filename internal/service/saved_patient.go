package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/medvault/share-server-go/internal/errors"
	"github.com/medvault/share-server-go/internal/model"
	"github.com/medvault/share-server-go/internal/repository"
)

// SavedPatientService manages a doctor's patient bookmarks. Saving a patient
// grants no record access; records always flow through redemption.
type SavedPatientService struct {
	savedRepo repository.SavedPatientRepository
	userRepo  repository.UserRepository
}

// NewSavedPatientService creates a new saved patient service
func NewSavedPatientService(savedRepo repository.SavedPatientRepository, userRepo repository.UserRepository) *SavedPatientService {
	return &SavedPatientService{savedRepo: savedRepo, userRepo: userRepo}
}

func (s *SavedPatientService) Save(ctx context.Context, doctorID, patientID string, notes *string) (*model.SavedPatient, error) {
	patient, err := s.userRepo.FindByID(ctx, patientID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if patient == nil || !patient.IsPatient() {
		return nil, apperrors.NotFound("Patient")
	}

	existing, err := s.savedRepo.FindByDoctorAndPatient(ctx, doctorID, patientID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing != nil {
		return nil, apperrors.AlreadyExists("Saved patient")
	}

	saved, err := s.savedRepo.Create(ctx, model.CreateSavedPatientParams{
		ID:                uuid.NewString(),
		DoctorID:          doctorID,
		PatientID:         patientID,
		ConsultationNotes: notes,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return saved, nil
}

func (s *SavedPatientService) List(ctx context.Context, doctorID string, limit, offset int) ([]model.SavedPatient, error) {
	saved, err := s.savedRepo.ListByDoctor(ctx, doctorID, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return saved, nil
}

func (s *SavedPatientService) Update(ctx context.Context, doctorID, id string, notes *string, lastConsultation *time.Time) (*model.SavedPatient, error) {
	updated, err := s.savedRepo.Update(ctx, id, doctorID, model.UpdateSavedPatientParams{
		ConsultationNotes:    notes,
		LastConsultationDate: lastConsultation,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if updated == nil {
		return nil, apperrors.NotFound("Saved patient")
	}
	return updated, nil
}

func (s *SavedPatientService) Remove(ctx context.Context, doctorID, id string) error {
	deleted, err := s.savedRepo.Delete(ctx, id, doctorID)
	if err != nil {
		return apperrors.Database(err)
	}
	if !deleted {
		return apperrors.NotFound("Saved patient")
	}
	return nil
}
