package driven

// Cipher is the authenticated encryption used for secrets at rest. Encrypt
// must use a fresh nonce per call, so equal plaintexts yield different
// ciphertexts.
type Cipher interface {
	// Encrypt returns model.ErrEncryption for an empty plaintext.
	Encrypt(plaintext string) (string, error)

	// Decrypt returns model.ErrDecryption for malformed, foreign or tampered input.
	Decrypt(ciphertext string) (string, error)
}
