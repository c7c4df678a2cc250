package model

import (
	"time"
)

// DoctorNote is a consultation note a doctor keeps about a patient
type DoctorNote struct {
	ID                  string    `db:"id" json:"id"`
	DoctorID            string    `db:"doctor_id" json:"doctorId"`
	PatientID           string    `db:"patient_id" json:"patientId"`
	NoteText            string    `db:"note_text" json:"noteText"`
	IsAudioTranscript   bool      `db:"is_audio_transcript" json:"isAudioTranscript"`
	IsSharedWithPatient bool      `db:"is_shared_with_patient" json:"isSharedWithPatient"`
	CreatedAt           time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateNoteParams struct {
	ID                  string
	DoctorID            string
	PatientID           string
	NoteText            string
	IsAudioTranscript   bool
	IsSharedWithPatient bool
}

type UpdateNoteParams struct {
	NoteText            *string
	IsSharedWithPatient *bool
}
