package notary

import (
	"context"
	"crypto/ed25519"
	"encoding/binary"
	"encoding/hex"
	"errors"

	"lukechampine.com/blake3"

	"review-core/internal/manifest"
	"review-core/internal/submit"
	"review-core/pkg/keystore"
)

// Notary signs finalized manifests with an ed25519 key held in memory.
// The intent id is the blake3 hash of header and manifest text, so the
// same final manifest under the same header always maps to the same
// intent: resubmitting it is detectable as a duplicate.
type Notary struct {
	key ed25519.PrivateKey
}

// New builds a notary from a 32-byte seed.
func New(seed []byte) (*Notary, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.New("notary seed must be 32 bytes")
	}
	return &Notary{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// Load opens an encrypted keystore file and builds the notary from it.
func Load(path, passphrase string) (*Notary, error) {
	ek, err := keystore.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	seed, err := keystore.Decrypt(ek, passphrase)
	if err != nil {
		return nil, err
	}
	return New(seed)
}

// PublicKey returns the notary's verification key.
func (n *Notary) PublicKey() ed25519.PublicKey {
	return n.key.Public().(ed25519.PublicKey)
}

// Sign implements submit.Signer. The payload is the intent hash followed
// by the signature; verification needs only the public key and the same
// hash construction.
func (n *Notary) Sign(ctx context.Context, m manifest.Manifest, header submit.Header) (*submit.SignedPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash := IntentHash(m, header)
	sig := ed25519.Sign(n.key, hash[:])

	payload := make([]byte, 0, len(hash)+len(sig))
	payload = append(payload, hash[:]...)
	payload = append(payload, sig...)

	return &submit.SignedPayload{
		IntentID: hex.EncodeToString(hash[:]),
		Payload:  payload,
	}, nil
}

// IntentHash derives the intent identity from the header fields and the
// rendered manifest.
func IntentHash(m manifest.Manifest, header submit.Header) [32]byte {
	h := blake3.New(32, nil)

	var hdr [7]byte
	hdr[0] = header.NetworkID
	binary.BigEndian.PutUint32(hdr[1:5], header.Nonce)
	binary.BigEndian.PutUint16(hdr[5:7], header.TipPercentage)
	h.Write(hdr[:])
	h.Write([]byte(m.String()))

	var out [32]byte
	h.Sum(out[:0])
	return out
}
