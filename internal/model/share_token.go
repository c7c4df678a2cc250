package model

import (
	"time"
)

// ShareToken grants a doctor access to a fixed set of records for a bounded
// time and use window. The encrypted token is the authoritative description
// of what is shared; the share_token_records relation is a denormalized
// mirror kept for queries and must always agree with it.
type ShareToken struct {
	ID                 string      `db:"id" json:"id"`
	PatientID          string      `db:"patient_id" json:"patientId"`
	EncryptedToken     string      `db:"encrypted_token" json:"-"`
	ShareMethod        ShareMethod `db:"share_method" json:"shareMethod"`
	ExpiresAt          time.Time   `db:"expires_at" json:"expiresAt"`
	IsRevoked          bool        `db:"is_revoked" json:"isRevoked"`
	RevokedAt          *time.Time  `db:"revoked_at" json:"revokedAt,omitempty"`
	MaxAccessCount     *int        `db:"max_access_count" json:"maxAccessCount,omitempty"`
	CurrentAccessCount int         `db:"current_access_count" json:"currentAccessCount"`
	CreatedAt          time.Time   `db:"created_at" json:"createdAt"`

	// RecordIDs is loaded from the join table, not a column.
	RecordIDs []string `db:"-" json:"recordIds,omitempty"`
}

type CreateShareTokenParams struct {
	ID             string
	PatientID      string
	EncryptedToken string
	ShareMethod    ShareMethod
	ExpiresAt      time.Time
	MaxAccessCount *int
	RecordIDs      []string
}

// IsValid reports whether the token may still be redeemed at the given time.
// A revoked token is never valid, regardless of expiry or remaining uses.
func (t *ShareToken) IsValid(now time.Time) bool {
	if t.IsRevoked {
		return false
	}
	if now.After(t.ExpiresAt) {
		return false
	}
	if t.MaxAccessCount != nil && t.CurrentAccessCount >= *t.MaxAccessCount {
		return false
	}
	return true
}
