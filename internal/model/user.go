package model

import (
	"time"
)

type User struct {
	ID           string `db:"id" json:"id"`
	Email        string `db:"email" json:"email"`
	MobileNumber string `db:"mobile_number" json:"mobileNumber"`
	FullName     string `db:"full_name" json:"fullName"`
	Role         Role   `db:"role" json:"role"`
	PasswordHash string `db:"password_hash" json:"-"`

	// Patient-specific fields. PatientUUID is the stable public identifier
	// embedded in share token payloads, distinct from the internal id.
	PatientUUID       *string `db:"patient_uuid" json:"patientUuid,omitempty"`
	DateOfBirth       *string `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	Gender            *string `db:"gender" json:"gender,omitempty"`
	BloodGroup        *string `db:"blood_group" json:"bloodGroup,omitempty"`
	Allergies         *string `db:"allergies" json:"allergies,omitempty"`
	ChronicConditions *string `db:"chronic_conditions" json:"chronicConditions,omitempty"`

	// Doctor-specific fields
	Specialization *string `db:"specialization" json:"specialization,omitempty"`
	LicenseNumber  *string `db:"license_number" json:"licenseNumber,omitempty"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateUserParams struct {
	ID           string
	Email        string
	MobileNumber string
	FullName     string
	Role         Role
	PasswordHash string
	PatientUUID  *string
}

// PublicProfile is the subset of a user safe to return to other parties,
// e.g. to a doctor redeeming a share token.
type PublicProfile struct {
	ID                string  `json:"id"`
	FullName          string  `json:"fullName"`
	Role              Role    `json:"role"`
	PatientUUID       *string `json:"patientUuid,omitempty"`
	DateOfBirth       *string `json:"dateOfBirth,omitempty"`
	Gender            *string `json:"gender,omitempty"`
	BloodGroup        *string `json:"bloodGroup,omitempty"`
	Allergies         *string `json:"allergies,omitempty"`
	ChronicConditions *string `json:"chronicConditions,omitempty"`
	Specialization    *string `json:"specialization,omitempty"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:                u.ID,
		FullName:          u.FullName,
		Role:              u.Role,
		PatientUUID:       u.PatientUUID,
		DateOfBirth:       u.DateOfBirth,
		Gender:            u.Gender,
		BloodGroup:        u.BloodGroup,
		Allergies:         u.Allergies,
		ChronicConditions: u.ChronicConditions,
		Specialization:    u.Specialization,
	}
}

func (u *User) IsPatient() bool {
	return u.Role == RolePatient
}

func (u *User) IsDoctor() bool {
	return u.Role == RoleDoctor
}

// AuthSession is a server-side record of an issued bearer token
type AuthSession struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	TokenHash string    `db:"token_hash" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
