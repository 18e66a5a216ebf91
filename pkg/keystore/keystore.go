package keystore

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"review-core/pkg/crypto_util"
)

// EncryptedKey is the on-disk format for the notary key. The seed is
// AES-GCM encrypted under an scrypt-derived key.
type EncryptedKey struct {
	Version    int    `json:"version"`
	Salt       string `json:"salt"`       // hex
	Ciphertext string `json:"ciphertext"` // hex, nonce + data
}

const currentVersion = 1

// Encrypt seals a raw seed under the given passphrase.
func Encrypt(seed []byte, passphrase string) (*EncryptedKey, error) {
	if len(seed) == 0 {
		return nil, errors.New("seed must not be empty")
	}

	salt, err := crypto_util.NewSalt()
	if err != nil {
		return nil, err
	}

	key, err := crypto_util.DeriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}

	ciphertext, err := crypto_util.EncryptAESGCM(key, seed)
	if err != nil {
		return nil, err
	}

	return &EncryptedKey{
		Version:    currentVersion,
		Salt:       hex.EncodeToString(salt),
		Ciphertext: hex.EncodeToString(ciphertext),
	}, nil
}

// Decrypt recovers the raw seed. A wrong passphrase surfaces as a GCM
// authentication error.
func Decrypt(ek *EncryptedKey, passphrase string) ([]byte, error) {
	if ek.Version != currentVersion {
		return nil, fmt.Errorf("unsupported keystore version: %d", ek.Version)
	}

	salt, err := hex.DecodeString(ek.Salt)
	if err != nil {
		return nil, fmt.Errorf("bad salt encoding: %w", err)
	}
	ciphertext, err := hex.DecodeString(ek.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("bad ciphertext encoding: %w", err)
	}

	key, err := crypto_util.DeriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}

	return crypto_util.DecryptAESGCM(key, ciphertext)
}

// SaveToFile writes the encrypted key as JSON, owner read/write only.
func SaveToFile(ek *EncryptedKey, path string) error {
	data, err := json.MarshalIndent(ek, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// LoadFromFile reads an encrypted key file.
func LoadFromFile(path string) (*EncryptedKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ek EncryptedKey
	if err := json.Unmarshal(data, &ek); err != nil {
		return nil, fmt.Errorf("malformed keystore file: %w", err)
	}
	return &ek, nil
}
