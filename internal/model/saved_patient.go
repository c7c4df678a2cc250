package model

import (
	"time"
)

// SavedPatient is a doctor's bookmark of a patient, with private notes
type SavedPatient struct {
	ID                   string     `db:"id" json:"id"`
	DoctorID             string     `db:"doctor_id" json:"doctorId"`
	PatientID            string     `db:"patient_id" json:"patientId"`
	ConsultationNotes    *string    `db:"consultation_notes" json:"consultationNotes,omitempty"`
	LastConsultationDate *time.Time `db:"last_consultation_date" json:"lastConsultationDate,omitempty"`
	SavedAt              time.Time  `db:"saved_at" json:"savedAt"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updatedAt"`
}

type CreateSavedPatientParams struct {
	ID                string
	DoctorID          string
	PatientID         string
	ConsultationNotes *string
}

type UpdateSavedPatientParams struct {
	ConsultationNotes    *string
	LastConsultationDate *time.Time
}
