package model

import (
	"time"
)

// MedicalRecord is metadata over an opaque stored blob. The blob itself
// lives in an external store keyed by BlobKey.
type MedicalRecord struct {
	ID          string     `db:"id" json:"id"`
	PatientID   string     `db:"patient_id" json:"patientId"`
	Title       string     `db:"title" json:"title"`
	RecordType  RecordType `db:"record_type" json:"recordType"`
	Description *string    `db:"description" json:"description,omitempty"`
	FileName    *string    `db:"file_name" json:"fileName,omitempty"`
	FileSize    *int64     `db:"file_size" json:"fileSize,omitempty"`
	BlobKey     *string    `db:"blob_key" json:"blobKey,omitempty"`
	IsDeleted   bool       `db:"is_deleted" json:"-"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

type CreateRecordParams struct {
	ID          string
	PatientID   string
	Title       string
	RecordType  RecordType
	Description *string
	FileName    *string
	FileSize    *int64
	BlobKey     *string
}
