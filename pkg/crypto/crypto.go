// Package crypto provides the symmetric encryption primitive used for stored
// credentials. The AES-256-GCM key is derived once from the configured secret
// via PBKDF2, so the plaintext secret is never held past construction.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keyLength       = 32
	keyIterations   = 10000
	keyDerivationSalt = "simple-org-credential-key"
)

// Service encrypts and decrypts opaque credential strings with a
// process-wide derived key. Safe for concurrent use; the key is immutable
// after construction.
type Service struct {
	aead cipher.AEAD
}

// NewService derives the AES key from secret and prepares the cipher.
func NewService(secret string) (*Service, error) {
	if secret == "" {
		return nil, errors.New("crypto secret cannot be empty")
	}
	key := pbkdf2.Key([]byte(secret), []byte(keyDerivationSalt), keyIterations, keyLength, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Service{aead: aead}, nil
}

// Encrypt seals plaintext with a fresh random nonce and returns an opaque
// base64 string.
func (s *Service) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. It fails on a tampered or foreign-keyed value.
func (s *Service) Decrypt(opaque string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(opaque)
	if err != nil {
		return "", err
	}
	if len(sealed) < s.aead.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
