package crypto

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
	"github.com/ericfisherdev/simplekeystore/internal/domain/port/driven"
)

const (
	recordKeyInfo    = "simplekeystore-record-key-v1"
	recordAAD        = "simplekeystore:keystore.encrypted_key"
	ciphertextFormat = byte(1)
)

var errCipherDestroyed = errors.New("cipher key destroyed")

// Compile-time interface satisfaction check.
var _ driven.Cipher = (*Cipher)(nil)

// Cipher encrypts secrets with XChaCha20-Poly1305 under a key derived from the
// master key. The derived key lives in locked memory until Destroy.
//
// Ciphertexts are URL-safe base64 of: format byte || 24-byte nonce || sealed box.
type Cipher struct {
	key *memguard.LockedBuffer
}

// NewCipher derives the record key from masterKey. masterKey must be
// MasterKeySize bytes; it is not retained.
func NewCipher(masterKey []byte) (*Cipher, error) {
	if len(masterKey) != MasterKeySize {
		return nil, fmt.Errorf("%w: master key must be %d bytes, got %d", model.ErrConfiguration, MasterKeySize, len(masterKey))
	}

	derived, err := DeriveHKDFSHA256(masterKey, nil, []byte(recordKeyInfo), chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("%w: derive record key: %v", model.ErrConfiguration, err)
	}

	// NewBufferFromBytes wipes derived.
	return &Cipher{key: memguard.NewBufferFromBytes(derived)}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("%w: plaintext is empty", model.ErrEncryption)
	}
	if !c.alive() {
		return "", fmt.Errorf("%w: %v", model.ErrEncryption, errCipherDestroyed)
	}

	nonce, err := randomBytes(chacha20poly1305.NonceSizeX)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrEncryption, err)
	}

	sealed, err := sealXChaCha20Poly1305(c.key.Bytes(), nonce, []byte(plaintext), []byte(recordAAD))
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrEncryption, err)
	}

	out := make([]byte, 0, 1+len(nonce)+len(sealed))
	out = append(out, ciphertextFormat)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return base64.URLEncoding.EncodeToString(out), nil
}

// Decrypt opens a ciphertext produced by Encrypt.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	if !c.alive() {
		return "", fmt.Errorf("%w: %v", model.ErrDecryption, errCipherDestroyed)
	}

	data, err := base64.URLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: base64 decode: %v", model.ErrDecryption, err)
	}
	if len(data) < 1+chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead {
		return "", fmt.Errorf("%w: ciphertext too short", model.ErrDecryption)
	}
	if data[0] != ciphertextFormat {
		return "", fmt.Errorf("%w: unknown ciphertext format %d", model.ErrDecryption, data[0])
	}

	nonce := data[1 : 1+chacha20poly1305.NonceSizeX]
	sealed := data[1+chacha20poly1305.NonceSizeX:]
	plaintext, err := openXChaCha20Poly1305(c.key.Bytes(), nonce, sealed, []byte(recordAAD))
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrDecryption, err)
	}
	return string(plaintext), nil
}

// Destroy wipes the key. Further calls fail.
func (c *Cipher) Destroy() {
	if c == nil || c.key == nil {
		return
	}
	if c.key.IsAlive() {
		c.key.Destroy()
	}
}

func (c *Cipher) alive() bool {
	return c != nil && c.key != nil && c.key.IsAlive()
}
