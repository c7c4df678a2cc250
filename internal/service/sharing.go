package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/medvault/share-server-go/internal/audit"
	"github.com/medvault/share-server-go/internal/database"
	apperrors "github.com/medvault/share-server-go/internal/errors"
	"github.com/medvault/share-server-go/internal/model"
	"github.com/medvault/share-server-go/internal/qr"
	"github.com/medvault/share-server-go/internal/repository"
	"github.com/medvault/share-server-go/internal/token"
)

// CreateShareParams carries a patient's request to share records
type CreateShareParams struct {
	RecordIDs      []string
	ShareMethod    model.ShareMethod
	ExpiryHours    int
	MaxAccessCount *int
}

// TxRunner runs a function within a database transaction. *database.DB is
// the production implementation.
type TxRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

// SharingService governs the share token lifecycle: creation, listing,
// revocation and QR rendering. Redemption lives in RedemptionService.
type SharingService struct {
	db            TxRunner
	tokenRepo     repository.ShareTokenRepository
	recordRepo    repository.RecordRepository
	logRepo       repository.AccessLogRepository
	codec         *token.Codec
	defaultExpiry time.Duration
	maxExpiry     time.Duration
}

// NewSharingService creates a new sharing service
func NewSharingService(
	db TxRunner,
	tokenRepo repository.ShareTokenRepository,
	recordRepo repository.RecordRepository,
	logRepo repository.AccessLogRepository,
	codec *token.Codec,
	defaultExpiry, maxExpiry time.Duration,
) *SharingService {
	return &SharingService{
		db:            db,
		tokenRepo:     tokenRepo,
		recordRepo:    recordRepo,
		logRepo:       logRepo,
		codec:         codec,
		defaultExpiry: defaultExpiry,
		maxExpiry:     maxExpiry,
	}
}

// Create validates ownership of every requested record, seals the payload
// and persists the token together with its record relation. Partial
// ownership fails the whole request; nothing is persisted on any failure.
func (s *SharingService) Create(ctx context.Context, patient *model.User, params CreateShareParams) (*model.ShareToken, error) {
	params.RecordIDs = dedupe(params.RecordIDs)
	if len(params.RecordIDs) == 0 {
		return nil, apperrors.MissingRequired("record_ids")
	}
	if params.ShareMethod != model.ShareMethodQR && params.ShareMethod != model.ShareMethodURL {
		return nil, apperrors.InvalidInput("share_method", "must be qr_code or url")
	}
	if params.MaxAccessCount != nil && *params.MaxAccessCount < 1 {
		return nil, apperrors.InvalidInput("max_access_count", "must be at least 1")
	}
	if patient.PatientUUID == nil {
		return nil, apperrors.Internal("patient has no public identifier")
	}

	expiry := s.defaultExpiry
	if params.ExpiryHours != 0 {
		expiry = time.Duration(params.ExpiryHours) * time.Hour
		if expiry < time.Hour || expiry > s.maxExpiry {
			return nil, apperrors.InvalidInput("expiry_hours", "out of allowed range")
		}
	}

	owned, err := s.recordRepo.FindOwnedByPatient(ctx, params.RecordIDs, patient.ID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if len(owned) != len(params.RecordIDs) {
		return nil, apperrors.InvalidRecordOwnership()
	}

	payload := s.codec.Build(*patient.PatientUUID, params.RecordIDs, expiry)
	blob, err := s.codec.Seal(payload)
	if err != nil {
		return nil, err
	}

	var created *model.ShareToken
	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var txErr error
		created, txErr = s.tokenRepo.WithTx(tx).Create(ctx, model.CreateShareTokenParams{
			ID:             uuid.NewString(),
			PatientID:      patient.ID,
			EncryptedToken: blob,
			ShareMethod:    params.ShareMethod,
			ExpiresAt:      payload.ExpiresAt,
			MaxAccessCount: params.MaxAccessCount,
			RecordIDs:      params.RecordIDs,
		})
		return txErr
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	audit.Log(ctx, audit.Event{
		Type:      audit.EventTokenCreate,
		UserID:    patient.ID,
		TokenID:   created.ID,
		PatientID: patient.ID,
		Details: map[string]interface{}{
			"share_method": string(params.ShareMethod),
			"record_count": len(params.RecordIDs),
		},
	})

	log.Info().
		Str("tokenId", created.ID).
		Str("patientId", patient.ID).
		Time("expiresAt", created.ExpiresAt).
		Msg("share token created")

	return created, nil
}

// dedupe drops repeated ids, keeping first-seen order
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// List returns a patient's tokens, newest first
func (s *SharingService) List(ctx context.Context, patientID string, limit, offset int) ([]model.ShareToken, error) {
	tokens, err := s.tokenRepo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return tokens, nil
}

// Get returns one of the patient's tokens
func (s *SharingService) Get(ctx context.Context, patientID, tokenID string) (*model.ShareToken, error) {
	t, err := s.tokenRepo.FindByID(ctx, tokenID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if t == nil || t.PatientID != patientID {
		return nil, apperrors.NotFound("Share token")
	}
	return t, nil
}

// Revoke permanently invalidates a token. Revoking an already-revoked token
// is a no-op success and does not move revoked_at.
func (s *SharingService) Revoke(ctx context.Context, patientID, tokenID string) error {
	t, err := s.Get(ctx, patientID, tokenID)
	if err != nil {
		return err
	}
	if t.IsRevoked {
		return nil
	}

	if _, err := s.tokenRepo.Revoke(ctx, tokenID, patientID); err != nil {
		return apperrors.Database(err)
	}

	audit.Log(ctx, audit.Event{
		Type:      audit.EventTokenRevoke,
		UserID:    patientID,
		TokenID:   tokenID,
		PatientID: patientID,
	})

	log.Info().Str("tokenId", tokenID).Msg("share token revoked")
	return nil
}

// QRCode renders the token's ciphertext as a PNG for out-of-band scanning
func (s *SharingService) QRCode(ctx context.Context, patientID, tokenID string) ([]byte, error) {
	t, err := s.Get(ctx, patientID, tokenID)
	if err != nil {
		return nil, err
	}
	if t.ShareMethod != model.ShareMethodQR {
		return nil, apperrors.InvalidInput("share_method", "token was not created for QR sharing")
	}
	return qr.Encode(t.EncryptedToken)
}

// AccessLogs lists the redemptions of one of the patient's tokens
func (s *SharingService) AccessLogs(ctx context.Context, patientID, tokenID string) ([]model.AccessLog, error) {
	if _, err := s.Get(ctx, patientID, tokenID); err != nil {
		return nil, err
	}
	logs, err := s.logRepo.ListByToken(ctx, tokenID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return logs, nil
}
