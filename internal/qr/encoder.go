// Package qr renders encrypted share tokens as scannable PNG images. The
// image carries the ciphertext itself; scanning it reveals nothing without
// a successful redemption.
package qr

import (
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	apperrors "github.com/medvault/share-server-go/internal/errors"
)

// Rendering constants are fixed, not configurable
const (
	// recovery level Low keeps module density low enough for large ciphertexts
	recoveryLevel = qrcode.Low
	imageSize     = 256
)

// Encode renders data as a PNG QR code. Data that cannot fit a single QR
// symbol is reported as a distinct error so callers can reject or chunk.
func Encode(data string) ([]byte, error) {
	png, err := qrcode.Encode(data, recoveryLevel, imageSize)
	if err != nil {
		if strings.Contains(err.Error(), "content too long") {
			return nil, apperrors.QRTooLarge().WithCause(err)
		}
		return nil, apperrors.Internal("QR encoding failed").WithCause(err)
	}
	return png, nil
}
