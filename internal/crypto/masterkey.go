package crypto

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
)

// MasterKeySize is the decoded length of a master key.
const MasterKeySize = 32

// GenerateMasterKey returns a new random master key in its encoded form.
func GenerateMasterKey() (string, error) {
	raw, err := randomBytes(MasterKeySize)
	if err != nil {
		return "", fmt.Errorf("generate master key: %w", err)
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// ParseMasterKey decodes a URL-safe base64 master key, padded or not. This is
// the same shape as Fernet keys, so existing keys keep working.
func ParseMasterKey(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("%w: master key is empty", model.ErrConfiguration)
	}

	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		raw, err = base64.RawURLEncoding.DecodeString(encoded)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: master key is not url-safe base64", model.ErrConfiguration)
	}
	if len(raw) != MasterKeySize {
		return nil, fmt.Errorf("%w: master key must decode to %d bytes, got %d", model.ErrConfiguration, MasterKeySize, len(raw))
	}
	return raw, nil
}
