package service

import (
	"context"

	"github.com/google/uuid"

	apperrors "github.com/medvault/share-server-go/internal/errors"
	"github.com/medvault/share-server-go/internal/model"
	"github.com/medvault/share-server-go/internal/repository"
)

// NoteService manages a doctor's consultation notes
type NoteService struct {
	noteRepo repository.NoteRepository
	userRepo repository.UserRepository
}

// NewNoteService creates a new note service
func NewNoteService(noteRepo repository.NoteRepository, userRepo repository.UserRepository) *NoteService {
	return &NoteService{noteRepo: noteRepo, userRepo: userRepo}
}

func (s *NoteService) Create(ctx context.Context, doctorID string, params model.CreateNoteParams) (*model.DoctorNote, error) {
	if params.NoteText == "" {
		return nil, apperrors.MissingRequired("note_text")
	}

	patient, err := s.userRepo.FindByID(ctx, params.PatientID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if patient == nil || !patient.IsPatient() {
		return nil, apperrors.NotFound("Patient")
	}

	params.ID = uuid.NewString()
	params.DoctorID = doctorID
	note, err := s.noteRepo.Create(ctx, params)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return note, nil
}

func (s *NoteService) List(ctx context.Context, doctorID string, patientID *string, limit, offset int) ([]model.DoctorNote, error) {
	notes, err := s.noteRepo.ListByDoctor(ctx, doctorID, patientID, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return notes, nil
}

func (s *NoteService) Get(ctx context.Context, doctorID, id string) (*model.DoctorNote, error) {
	note, err := s.noteRepo.FindByID(ctx, id, doctorID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if note == nil {
		return nil, apperrors.NotFound("Note")
	}
	return note, nil
}

func (s *NoteService) Update(ctx context.Context, doctorID, id string, params model.UpdateNoteParams) (*model.DoctorNote, error) {
	note, err := s.noteRepo.Update(ctx, id, doctorID, params)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if note == nil {
		return nil, apperrors.NotFound("Note")
	}
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, doctorID, id string) error {
	deleted, err := s.noteRepo.Delete(ctx, id, doctorID)
	if err != nil {
		return apperrors.Database(err)
	}
	if !deleted {
		return apperrors.NotFound("Note")
	}
	return nil
}
