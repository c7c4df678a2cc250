package model

import (
	"time"
)

// AccessLog is the immutable audit record of one redemption. Rows are
// inserted exactly once per successful redemption and never modified.
type AccessLog struct {
	ID           string    `db:"id" json:"id"`
	ShareTokenID string    `db:"share_token_id" json:"shareTokenId"`
	DoctorID     string    `db:"doctor_id" json:"doctorId"`
	PatientID    string    `db:"patient_id" json:"patientId"`
	IPAddress    *string   `db:"ip_address" json:"ipAddress,omitempty"`
	UserAgent    *string   `db:"user_agent" json:"userAgent,omitempty"`
	AccessedAt   time.Time `db:"accessed_at" json:"accessedAt"`

	// RecordIDs holds the records actually released, from the join table.
	RecordIDs []string `db:"-" json:"recordIds,omitempty"`
}

type CreateAccessLogParams struct {
	ID           string
	ShareTokenID string
	DoctorID     string
	PatientID    string
	IPAddress    *string
	UserAgent    *string
	RecordIDs    []string
}

// NetMeta carries best-effort request metadata into an access log
type NetMeta struct {
	IPAddress string
	UserAgent string
}
