package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	fieldKeySize   = 32
	fieldNonceSize = 12
	fieldTagSize   = 16
)

var (
	// ErrCipherNotConfigured is returned when no field key was supplied.
	// Callers treat it as a configuration error, never as bad data.
	ErrCipherNotConfigured = errors.New("cryptox: field encryption key not configured")
	// ErrCipherIntegrity means the envelope is malformed or failed
	// authentication.
	ErrCipherIntegrity = errors.New("cryptox: ciphertext integrity check failed")
	// ErrCipherKeyInvalid means the key does not decode to 32 bytes.
	ErrCipherKeyInvalid = errors.New("cryptox: field encryption key must decode to 32 bytes")
)

// FieldCipher encrypts individual profile fields with AES-256-GCM. The
// envelope is "iv:ciphertext:tag" with each part standard base64.
type FieldCipher struct {
	aead cipher.AEAD
}

// ParseFieldKey accepts a 32-byte key in base64 or hex.
func ParseFieldKey(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrCipherNotConfigured
	}
	if key, err := base64.StdEncoding.DecodeString(raw); err == nil && len(key) == fieldKeySize {
		return key, nil
	}
	if key, err := hex.DecodeString(raw); err == nil && len(key) == fieldKeySize {
		return key, nil
	}
	return nil, ErrCipherKeyInvalid
}

// NewFieldCipher builds a cipher from an encoded key. An empty key yields an
// unconfigured cipher whose Encrypt and Decrypt return ErrCipherNotConfigured.
func NewFieldCipher(rawKey string) (*FieldCipher, error) {
	key, err := ParseFieldKey(rawKey)
	if errors.Is(err, ErrCipherNotConfigured) {
		return &FieldCipher{}, nil
	}
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: create cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, fieldNonceSize)
	if err != nil {
		return nil, fmt.Errorf("cryptox: create GCM: %w", err)
	}
	return &FieldCipher{aead: aead}, nil
}

// Configured reports whether c can encrypt. Safe on a nil receiver.
func (c *FieldCipher) Configured() bool {
	return c != nil && c.aead != nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	if !c.Configured() {
		return "", ErrCipherNotConfigured
	}

	nonce := make([]byte, fieldNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("cryptox: generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-fieldTagSize], sealed[len(sealed)-fieldTagSize:]

	return strings.Join([]string{
		base64.StdEncoding.EncodeToString(nonce),
		base64.StdEncoding.EncodeToString(ct),
		base64.StdEncoding.EncodeToString(tag),
	}, ":"), nil
}

// Decrypt opens an envelope produced by Encrypt.
func (c *FieldCipher) Decrypt(envelope string) (string, error) {
	if !c.Configured() {
		return "", ErrCipherNotConfigured
	}

	parts := strings.Split(envelope, ":")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: expected iv:ciphertext:tag", ErrCipherIntegrity)
	}

	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(nonce) != fieldNonceSize {
		return "", fmt.Errorf("%w: iv", ErrCipherIntegrity)
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext", ErrCipherIntegrity)
	}
	tag, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil || len(tag) != fieldTagSize {
		return "", fmt.Errorf("%w: tag", ErrCipherIntegrity)
	}

	plaintext, err := c.aead.Open(nil, nonce, append(ct, tag...), nil)
	if err != nil {
		return "", ErrCipherIntegrity
	}
	return string(plaintext), nil
}

// LooksEncrypted reports whether s has the envelope shape. It does not
// authenticate; Decrypt does.
func LooksEncrypted(s string) bool {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if _, err := base64.StdEncoding.DecodeString(p); err != nil {
			return false
		}
	}
	return parts[0] != "" && parts[2] != ""
}
