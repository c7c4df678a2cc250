// Package crypto implements the hybrid cipher protecting share token
// payloads. Small plaintexts are encrypted directly with RSA-OAEP; larger
// ones with a fresh AES-GCM key that is itself RSA-wrapped. When asymmetric
// material is unavailable the cipher degrades to pure symmetric encryption
// keyed by a process-wide secret.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

// RSAPlaintextCeiling is the largest plaintext a 2048-bit RSA key can
// encrypt with OAEP-SHA256 padding.
const RSAPlaintextCeiling = 214

const symmetricKeyBytes = 32

// ErrDecrypt is returned when every decryption strategy has failed.
var ErrDecrypt = errors.New("unable to decrypt with any strategy")

type Config struct {
	// SymmetricSecret keys the process-wide fallback cipher. When empty a
	// random key is generated, so symmetric-only output from a previous
	// process cannot be decrypted.
	SymmetricSecret string

	PrivateKeyPath string
	PublicKeyPath  string

	// GenerateEphemeral allows key-pair generation when no key paths are
	// configured. When false the cipher runs symmetric-only.
	GenerateEphemeral bool
}

type Cipher struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	symKey     []byte
	ephemeral  bool
}

func New(cfg Config) (*Cipher, error) {
	c := &Cipher{}

	if cfg.SymmetricSecret != "" {
		key := sha256.Sum256([]byte(cfg.SymmetricSecret))
		c.symKey = key[:]
	} else {
		c.symKey = make([]byte, symmetricKeyBytes)
		if _, err := rand.Read(c.symKey); err != nil {
			return nil, fmt.Errorf("generate symmetric key: %w", err)
		}
		log.Warn().Msg("no symmetric secret configured: using a random per-process key")
	}

	if cfg.PrivateKeyPath != "" {
		priv, err := loadPrivateKey(cfg.PrivateKeyPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.PrivateKeyPath).Msg("failed to load RSA private key")
		} else {
			c.privateKey = priv
			c.publicKey = &priv.PublicKey
		}
	}
	if c.publicKey == nil && cfg.PublicKeyPath != "" {
		pub, err := loadPublicKey(cfg.PublicKeyPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.PublicKeyPath).Msg("failed to load RSA public key")
		} else {
			c.publicKey = pub
		}
	}

	if c.privateKey == nil && c.publicKey == nil && cfg.GenerateEphemeral {
		priv, err := generateKeyPair()
		if err != nil {
			return nil, fmt.Errorf("generate RSA key pair: %w", err)
		}
		c.privateKey = priv
		c.publicKey = &priv.PublicKey
		c.ephemeral = true
		log.Info().Msg("generated ephemeral RSA key pair")
	}

	return c, nil
}

// Ephemeral reports whether the RSA key pair was generated rather than loaded
func (c *Cipher) Ephemeral() bool {
	return c.ephemeral
}

// Encrypt produces one of three on-wire forms: direct RSA (base64, no colon)
// for plaintexts up to the ceiling, hybrid "b64(wrapped_key):b64(ciphertext)"
// above it, or pure symmetric (base64, no colon) when the asymmetric path is
// unavailable. The single colon is the mode discriminator, which base64
// encoding of both halves keeps unambiguous.
func (c *Cipher) Encrypt(plaintext []byte) (string, error) {
	if c.publicKey != nil {
		if len(plaintext) <= RSAPlaintextCeiling {
			out, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, c.publicKey, plaintext, nil)
			if err == nil {
				return base64.StdEncoding.EncodeToString(out), nil
			}
			log.Warn().Err(err).Msg("direct RSA encryption failed, falling back to symmetric")
		} else {
			blob, err := c.encryptHybrid(plaintext)
			if err == nil {
				return blob, nil
			}
			log.Warn().Err(err).Msg("hybrid encryption failed, falling back to symmetric")
		}
	}

	blob, err := c.encryptSymmetric(plaintext)
	if err != nil {
		return "", fmt.Errorf("symmetric encryption failed: %w", err)
	}
	return blob, nil
}

func (c *Cipher) encryptHybrid(plaintext []byte) (string, error) {
	key := make([]byte, symmetricKeyBytes)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("generate data key: %w", err)
	}

	ciphertext, err := gcmSeal(key, plaintext)
	if err != nil {
		return "", err
	}

	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, c.publicKey, key, nil)
	if err != nil {
		return "", fmt.Errorf("wrap data key: %w", err)
	}

	return base64.StdEncoding.EncodeToString(wrapped) + ":" +
		base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (c *Cipher) encryptSymmetric(plaintext []byte) (string, error) {
	ciphertext, err := gcmSeal(c.symKey, plaintext)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decryptStrategy is one attempt in the ordered fallback chain
type decryptStrategy struct {
	name string
	fn   func(string) ([]byte, error)
}

// Decrypt tries, in order: hybrid parse, direct RSA, symmetric-only. The
// first strategy that succeeds wins; callers cannot tell which one did.
func (c *Cipher) Decrypt(blob string) ([]byte, error) {
	strategies := []decryptStrategy{
		{"hybrid", c.decryptHybrid},
		{"direct_rsa", c.decryptDirect},
		{"symmetric", c.decryptSymmetric},
	}

	for _, s := range strategies {
		plaintext, err := s.fn(blob)
		if err == nil {
			return plaintext, nil
		}
		log.Debug().Err(err).Str("strategy", s.name).Msg("decrypt strategy failed")
	}

	return nil, ErrDecrypt
}

func (c *Cipher) decryptHybrid(blob string) ([]byte, error) {
	idx := strings.Index(blob, ":")
	if idx < 0 {
		return nil, errors.New("no hybrid delimiter")
	}

	// Split on the first colon only; the ciphertext half is opaque base64.
	wrapped, err := base64.StdEncoding.DecodeString(blob[:idx])
	if err != nil {
		return nil, fmt.Errorf("decode wrapped key: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(blob[idx+1:])
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}

	var key []byte
	if c.privateKey != nil {
		key, err = rsa.DecryptOAEP(sha256.New(), rand.Reader, c.privateKey, wrapped, nil)
	} else {
		err = errors.New("no private key")
	}
	if err != nil {
		// A peer that failed to wrap the key may have embedded it raw.
		if len(wrapped) != symmetricKeyBytes {
			return nil, fmt.Errorf("unwrap data key: %w", err)
		}
		key = wrapped
	}

	return gcmOpen(key, ciphertext)
}

func (c *Cipher) decryptDirect(blob string) ([]byte, error) {
	if c.privateKey == nil {
		return nil, errors.New("no private key")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}

	return rsa.DecryptOAEP(sha256.New(), rand.Reader, c.privateKey, ciphertext, nil)
}

func (c *Cipher) decryptSymmetric(blob string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	return gcmOpen(c.symKey, ciphertext)
}

// gcmSeal encrypts with AES-256-GCM, prepending the nonce to the ciphertext
func gcmSeal(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func gcmOpen(key, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
