// Package token builds and seals the payload embedded in a share token.
// The sealed payload, not the database row, is the authoritative record of
// what was shared.
package token

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/medvault/share-server-go/internal/crypto"
	apperrors "github.com/medvault/share-server-go/internal/errors"
)

// Payload is the plaintext structure encrypted inside a share token
type Payload struct {
	PatientUUID string    `json:"patient_uuid"`
	RecordIDs   []string  `json:"record_ids"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type Codec struct {
	cipher *crypto.Cipher
}

func NewCodec(cipher *crypto.Cipher) *Codec {
	return &Codec{cipher: cipher}
}

// Build stamps a payload with UTC creation and expiry timestamps
func (c *Codec) Build(patientUUID string, recordIDs []string, expiry time.Duration) Payload {
	now := time.Now().UTC()
	return Payload{
		PatientUUID: patientUUID,
		RecordIDs:   recordIDs,
		CreatedAt:   now,
		ExpiresAt:   now.Add(expiry),
	}
}

// Seal JSON-encodes the payload and encrypts it
func (c *Codec) Seal(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	blob, err := c.cipher.Encrypt(data)
	if err != nil {
		return "", apperrors.EncryptionFailure(err)
	}
	return blob, nil
}

// Open decrypts and decodes a sealed payload. Any failure, from cipher
// exhaustion to missing fields, surfaces as a malformed token.
func (c *Codec) Open(blob string) (Payload, error) {
	data, err := c.cipher.Decrypt(blob)
	if err != nil {
		return Payload{}, apperrors.MalformedToken(err)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, apperrors.MalformedToken(err)
	}

	if p.PatientUUID == "" || len(p.RecordIDs) == 0 || p.ExpiresAt.IsZero() {
		return Payload{}, apperrors.MalformedToken(fmt.Errorf("payload missing required fields"))
	}

	return p, nil
}
