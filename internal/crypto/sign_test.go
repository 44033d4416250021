package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsegate/signal-service/internal/models"
)

func genKey(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub, priv
}

func TestSignVerify(t *testing.T) {
	pub, priv := genKey(t)
	signed, err := SignPayload(priv, samplePayload())
	require.NoError(t, err)
	require.Len(t, signed.Sig, 2*ed25519.SignatureSize)
	assert.NoError(t, VerifyPayload(pub, signed))
}

func TestVerifyWrongKeyFails(t *testing.T) {
	_, priv := genKey(t)
	otherPub, _ := genKey(t)
	signed, err := SignPayload(priv, samplePayload())
	require.NoError(t, err)
	assert.ErrorIs(t, VerifyPayload(otherPub, signed), ErrBadSignature)
}

func TestVerifyFlippedFieldFails(t *testing.T) {
	pub, priv := genKey(t)
	signed, err := SignPayload(priv, samplePayload())
	require.NoError(t, err)

	tests := []struct {
		name string
		mut  func(p *models.SignalPayload)
	}{
		{"reading", func(p *models.SignalPayload) { p.Reading += 1 }},
		{"threshold", func(p *models.SignalPayload) { p.Threshold -= 1 }},
		{"decision", func(p *models.SignalPayload) { p.Decision = !p.Decision }},
		{"subject_key", func(p *models.SignalPayload) { p.SubjectKey = "acct-43" }},
		{"session_id", func(p *models.SignalPayload) { p.SessionID = "other" }},
		{"expires_at", func(p *models.SignalPayload) { p.ExpiresAt += 60 }},
		{"nonce", func(p *models.SignalPayload) { p.Nonce = "ffeeddccbbaa99887766554433221100" }},
		{"version", func(p *models.SignalPayload) { p.V = 2 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := signed
			tc.mut(&p)
			assert.ErrorIs(t, VerifyPayload(pub, p), ErrBadSignature)
		})
	}
}

func TestVerifyGarbageSig(t *testing.T) {
	pub, _ := genKey(t)
	p := samplePayload()
	p.Sig = "zz"
	assert.ErrorIs(t, VerifyPayload(pub, p), ErrBadSignature)
	p.Sig = "abcd"
	assert.ErrorIs(t, VerifyPayload(pub, p), ErrBadSignature)
}

func TestNonceFreshness(t *testing.T) {
	a, err := NewNonce()
	require.NoError(t, err)
	b, err := NewNonce()
	require.NoError(t, err)
	assert.Len(t, a, 2*NonceSize)
	assert.NotEqual(t, a, b)
}

func TestIdenticalReadingsSignDifferently(t *testing.T) {
	_, priv := genKey(t)
	p := samplePayload()
	n1, err := NewNonce()
	require.NoError(t, err)
	n2, err := NewNonce()
	require.NoError(t, err)

	p.Nonce = n1
	s1, err := SignPayload(priv, p)
	require.NoError(t, err)
	p.Nonce = n2
	s2, err := SignPayload(priv, p)
	require.NoError(t, err)
	assert.NotEqual(t, s1.Sig, s2.Sig, "nonce must decorrelate otherwise-identical payloads")
}
