package service

import (
	"crypto/ed25519"
	"time"

	"github.com/pulsegate/signal-service/internal/crypto"
	"github.com/pulsegate/signal-service/internal/models"
)

// RealClock — production Clock
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// PayloadSigner — Signer adapter over internal/crypto
type PayloadSigner struct{}

func (PayloadSigner) Sign(privateKey []byte, p models.SignalPayload) (models.SignalPayload, error) {
	return crypto.SignPayload(ed25519.PrivateKey(privateKey), p)
}
