package crypto_util

import (
	"bytes"
	"testing"
)

func TestAESGCMRoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef") // 32 bytes for AES-256
	plaintext := []byte("a secret message for the AES-GCM round trip")

	ciphertext, err := EncryptAESGCM(key, plaintext)
	if err != nil {
		t.Fatalf("EncryptAESGCM failed: %v", err)
	}

	decrypted, err := DecryptAESGCM(key, ciphertext)
	if err != nil {
		t.Fatalf("DecryptAESGCM failed: %v", err)
	}

	if !bytes.Equal(plaintext, decrypted) {
		t.Errorf("decrypted message does not match plaintext.\ngot:  %s\nwant: %s", decrypted, plaintext)
	}
}

func TestAESGCM_InvalidKey(t *testing.T) {
	key := []byte("shortkey")
	_, err := EncryptAESGCM(key, []byte("test"))
	if err == nil {
		t.Error("expected an error for an invalid key length, got none")
	}
}

func TestAESGCM_TamperedCiphertext(t *testing.T) {
	key := []byte("0123456789abcdef")
	ciphertext, err := EncryptAESGCM(key, []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}

	ciphertext[len(ciphertext)-1] ^= 0xff
	if _, err := DecryptAESGCM(key, ciphertext); err == nil {
		t.Error("expected authentication failure on tampered ciphertext")
	}
}

func TestDeriveKey(t *testing.T) {
	salt, err := NewSalt()
	if err != nil {
		t.Fatal(err)
	}

	k1, err := DeriveKey("correct horse", salt)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	k2, err := DeriveKey("correct horse", salt)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}

	if !bytes.Equal(k1, k2) {
		t.Error("same passphrase and salt must derive the same key")
	}

	k3, _ := DeriveKey("wrong horse", salt)
	if bytes.Equal(k1, k3) {
		t.Error("different passphrases must not derive the same key")
	}
}

func TestDeriveKey_EmptySalt(t *testing.T) {
	if _, err := DeriveKey("pass", nil); err == nil {
		t.Error("expected an error for an empty salt")
	}
}
