package service

import (
	"context"

	apperrors "github.com/medvault/share-server-go/internal/errors"
	"github.com/medvault/share-server-go/internal/model"
	"github.com/medvault/share-server-go/internal/repository"
)

// SystemStats is the admin dashboard summary
type SystemStats struct {
	Patients    int                    `json:"patients"`
	Doctors     int                    `json:"doctors"`
	Records     int                    `json:"records"`
	AccessCount int                    `json:"accessCount"`
	Tokens      *repository.TokenStats `json:"tokens"`
}

// AdminService exposes read-only system reporting and the access history
// views for patients and doctors
type AdminService struct {
	userRepo   repository.UserRepository
	recordRepo repository.RecordRepository
	tokenRepo  repository.ShareTokenRepository
	logRepo    repository.AccessLogRepository
}

// NewAdminService creates a new admin service
func NewAdminService(
	userRepo repository.UserRepository,
	recordRepo repository.RecordRepository,
	tokenRepo repository.ShareTokenRepository,
	logRepo repository.AccessLogRepository,
) *AdminService {
	return &AdminService{
		userRepo:   userRepo,
		recordRepo: recordRepo,
		tokenRepo:  tokenRepo,
		logRepo:    logRepo,
	}
}

func (s *AdminService) Stats(ctx context.Context) (*SystemStats, error) {
	patients, err := s.userRepo.CountByRole(ctx, model.RolePatient)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	doctors, err := s.userRepo.CountByRole(ctx, model.RoleDoctor)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	records, err := s.recordRepo.Count(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	accesses, err := s.logRepo.Count(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	tokens, err := s.tokenRepo.Stats(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	return &SystemStats{
		Patients:    patients,
		Doctors:     doctors,
		Records:     records,
		AccessCount: accesses,
		Tokens:      tokens,
	}, nil
}

// DoctorHistory lists the redemptions a doctor has performed
func (s *AdminService) DoctorHistory(ctx context.Context, doctorID string, limit, offset int) ([]model.AccessLog, error) {
	logs, err := s.logRepo.ListByDoctor(ctx, doctorID, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return logs, nil
}

// PatientHistory lists who accessed a patient's records and when
func (s *AdminService) PatientHistory(ctx context.Context, patientID string, limit, offset int) ([]model.AccessLog, error) {
	logs, err := s.logRepo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return logs, nil
}
