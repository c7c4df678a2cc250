package model

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

type ShareMethod string

const (
	ShareMethodQR  ShareMethod = "qr_code"
	ShareMethodURL ShareMethod = "url"
)

type RecordType string

const (
	RecordTypeLabReport    RecordType = "lab_report"
	RecordTypePrescription RecordType = "prescription"
	RecordTypeImaging      RecordType = "imaging"
	RecordTypeDischarge    RecordType = "discharge_summary"
	RecordTypeOther        RecordType = "other"
)

func (t RecordType) Valid() bool {
	switch t {
	case RecordTypeLabReport, RecordTypePrescription, RecordTypeImaging,
		RecordTypeDischarge, RecordTypeOther:
		return true
	}
	return false
}
