package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/medvault/share-server-go/internal/audit"
	apperrors "github.com/medvault/share-server-go/internal/errors"
	"github.com/medvault/share-server-go/internal/model"
	"github.com/medvault/share-server-go/internal/repository"
	"github.com/medvault/share-server-go/internal/token"
	"github.com/medvault/share-server-go/internal/util"
)

// expirySkewTolerance absorbs sub-second rounding between the payload
// timestamp and the stored column. Anything beyond it means the row and the
// ciphertext no longer describe the same token.
const expirySkewTolerance = time.Second

// RedemptionResult is what a doctor receives for a successful redemption
type RedemptionResult struct {
	Patient     model.PublicProfile   `json:"patient"`
	Records     []model.MedicalRecord `json:"records"`
	AccessLogID string                `json:"accessLogId"`
	ExpiresAt   time.Time             `json:"expiresAt"`
}

// RedemptionService turns a sealed share token back into records. Both entry
// points (scanned QR content and a share URL id) converge on the same
// validation and logging path.
type RedemptionService struct {
	db         TxRunner
	tokenRepo  repository.ShareTokenRepository
	recordRepo repository.RecordRepository
	logRepo    repository.AccessLogRepository
	userRepo   repository.UserRepository
	codec      *token.Codec
}

// NewRedemptionService creates a new redemption service
func NewRedemptionService(
	db TxRunner,
	tokenRepo repository.ShareTokenRepository,
	recordRepo repository.RecordRepository,
	logRepo repository.AccessLogRepository,
	userRepo repository.UserRepository,
	codec *token.Codec,
) *RedemptionService {
	return &RedemptionService{
		db:         db,
		tokenRepo:  tokenRepo,
		recordRepo: recordRepo,
		logRepo:    logRepo,
		userRepo:   userRepo,
		codec:      codec,
	}
}

// RedeemQR resolves a token by the raw ciphertext a doctor scanned
func (s *RedemptionService) RedeemQR(ctx context.Context, doctor *model.User, encryptedToken string, meta model.NetMeta) (*RedemptionResult, error) {
	if encryptedToken == "" {
		return nil, apperrors.MissingRequired("qr_data")
	}

	t, err := s.tokenRepo.FindByEncryptedToken(ctx, encryptedToken)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return s.redeem(ctx, doctor, t, meta)
}

// RedeemURL resolves a token by the id embedded in a share link
func (s *RedemptionService) RedeemURL(ctx context.Context, doctor *model.User, tokenID string, meta model.NetMeta) (*RedemptionResult, error) {
	if !util.IsValidUUID(tokenID) {
		return s.redeem(ctx, doctor, nil, meta)
	}
	t, err := s.tokenRepo.FindByID(ctx, tokenID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if t != nil && t.ShareMethod != model.ShareMethodURL {
		t = nil
	}
	return s.redeem(ctx, doctor, t, meta)
}

// redeem runs the shared redemption flow: open the payload, cross-check it
// against the stored row, resolve patient and records, then log the access
// and consume one use in a single transaction so a logged access always
// corresponds to a counted one.
func (s *RedemptionService) redeem(ctx context.Context, doctor *model.User, t *model.ShareToken, meta model.NetMeta) (*RedemptionResult, error) {
	if t == nil || t.IsRevoked {
		// Revoked reads the same as missing so callers learn nothing
		// about tokens they no longer hold.
		s.auditDenied(doctor, t, meta, "token not found or revoked")
		return nil, apperrors.TokenNotFound()
	}

	payload, err := s.codec.Open(t.EncryptedToken)
	if err != nil {
		s.auditDenied(doctor, t, meta, "undecodable payload")
		return nil, err
	}

	if err := s.checkIntegrity(t, payload, meta); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if now.After(payload.ExpiresAt) {
		s.auditDenied(doctor, t, meta, "expired")
		return nil, apperrors.TokenExpired()
	}
	if !t.IsValid(now) {
		s.auditDenied(doctor, t, meta, "not valid")
		return nil, apperrors.TokenInvalid()
	}

	patient, err := s.userRepo.FindPatientByUUID(ctx, payload.PatientUUID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if patient == nil {
		s.auditDenied(doctor, t, meta, "patient no longer exists")
		return nil, apperrors.TokenNotFound()
	}

	// Records deleted since the share was created are dropped silently;
	// an empty result is still a successful redemption.
	records, err := s.recordRepo.FindExisting(ctx, payload.RecordIDs)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	releasedIDs := make([]string, 0, len(records))
	for _, rec := range records {
		releasedIDs = append(releasedIDs, rec.ID)
	}

	var entry *model.AccessLog
	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var txErr error
		entry, txErr = s.logRepo.WithTx(tx).Create(ctx, model.CreateAccessLogParams{
			ID:           uuid.NewString(),
			ShareTokenID: t.ID,
			DoctorID:     doctor.ID,
			PatientID:    patient.ID,
			IPAddress:    optional(meta.IPAddress),
			UserAgent:    optional(meta.UserAgent),
			RecordIDs:    releasedIDs,
		})
		if txErr != nil {
			return txErr
		}

		// The conditional increment re-checks validity under the row
		// lock. Losing the race for the last permitted use rolls the
		// log entry back with it.
		updated, txErr := s.tokenRepo.WithTx(tx).IncrementIfValid(ctx, t.ID)
		if txErr != nil {
			return txErr
		}
		if updated == nil {
			return apperrors.TokenInvalid()
		}
		return nil
	})
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			s.auditDenied(doctor, t, meta, "lost validity during redemption")
			return nil, appErr
		}
		return nil, apperrors.Database(err)
	}

	audit.Log(ctx, audit.Event{
		Type:      audit.EventTokenRedeem,
		UserID:    doctor.ID,
		TokenID:   t.ID,
		PatientID: patient.ID,
		IP:        meta.IPAddress,
		UserAgent: meta.UserAgent,
		Details:   map[string]interface{}{"records_released": len(releasedIDs)},
	})

	log.Info().
		Str("tokenId", t.ID).
		Str("doctorId", doctor.ID).
		Int("records", len(releasedIDs)).
		Msg("share token redeemed")

	return &RedemptionResult{
		Patient:     patient.Public(),
		Records:     records,
		AccessLogID: entry.ID,
		ExpiresAt:   t.ExpiresAt,
	}, nil
}

// checkIntegrity cross-checks the decrypted payload against the stored row.
// The two are written together at creation, so any disagreement means the
// row or the ciphertext was tampered with, and the token is unusable.
func (s *RedemptionService) checkIntegrity(t *model.ShareToken, payload token.Payload, meta model.NetMeta) error {
	skew := t.ExpiresAt.Sub(payload.ExpiresAt)
	if skew < 0 {
		skew = -skew
	}
	if skew > expirySkewTolerance {
		return s.integrityViolation(t, meta, "expiry mismatch between payload and record")
	}
	if !sameIDSet(payload.RecordIDs, t.RecordIDs) {
		return s.integrityViolation(t, meta, "record set mismatch between payload and record")
	}
	return nil
}

func (s *RedemptionService) integrityViolation(t *model.ShareToken, meta model.NetMeta, reason string) error {
	audit.Log(context.Background(), audit.Event{
		Type:      audit.EventIntegrityViolation,
		TokenID:   t.ID,
		PatientID: t.PatientID,
		IP:        meta.IPAddress,
		UserAgent: meta.UserAgent,
		Details:   map[string]interface{}{"reason": reason},
	})
	log.Error().Str("tokenId", t.ID).Str("reason", reason).Msg("share token integrity violation")
	return apperrors.IntegrityViolation(reason)
}

func (s *RedemptionService) auditDenied(doctor *model.User, t *model.ShareToken, meta model.NetMeta, reason string) {
	event := audit.Event{
		Type:      audit.EventRedemptionDenied,
		UserID:    doctor.ID,
		IP:        meta.IPAddress,
		UserAgent: meta.UserAgent,
		Details:   map[string]interface{}{"reason": reason},
	}
	if t != nil {
		event.TokenID = t.ID
		event.PatientID = t.PatientID
	}
	audit.Log(context.Background(), event)
}

func sameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
