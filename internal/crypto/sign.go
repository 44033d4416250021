package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/pulsegate/signal-service/internal/models"
)

// NonceSize — random bytes per payload; hex-encoded on the wire
const NonceSize = 16

var ErrBadSignature = errors.New("invalid_signature")

// NewNonce returns a fresh lowercase-hex nonce.
func NewNonce() (string, error) {
	raw := make([]byte, NonceSize)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// SignPayload fills p.Sig with the hex Ed25519 signature over the canonical
// encoding of the remaining fields.
func SignPayload(priv ed25519.PrivateKey, p models.SignalPayload) (models.SignalPayload, error) {
	msg, err := EncodeForSigning(p)
	if err != nil {
		return models.SignalPayload{}, err
	}
	p.Sig = hex.EncodeToString(ed25519.Sign(priv, msg))
	return p, nil
}

// VerifyPayload re-derives the canonical encoding from the decoded payload and
// checks p.Sig against pub.
func VerifyPayload(pub ed25519.PublicKey, p models.SignalPayload) error {
	sig, err := hex.DecodeString(p.Sig)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return ErrBadSignature
	}
	msg, err := EncodeForSigning(p)
	if err != nil {
		return err
	}
	if !ed25519.Verify(pub, msg, sig) {
		return ErrBadSignature
	}
	return nil
}
