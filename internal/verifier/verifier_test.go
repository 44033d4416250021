package verifier

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsegate/signal-service/internal/crypto"
	"github.com/pulsegate/signal-service/internal/models"
	"github.com/pulsegate/signal-service/internal/transport"
)

type stubFetcher struct {
	payload []byte
	err     error
}

func (f stubFetcher) Fetch(context.Context, string, string) ([]byte, error) {
	return f.payload, f.err
}

func testKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub, priv
}

func testConfig(pub ed25519.PublicKey) Config {
	return Config{
		SubjectKey: "acct-42",
		PublicKey:  hex.EncodeToString(pub),
		Remote:     "origin",
		Namespace:  "pulse",
		RefName:    "refs/pulse/acct-42",
	}
}

func signedPayload(t *testing.T, priv ed25519.PrivateKey, now time.Time, reading, threshold float64, ttl time.Duration) []byte {
	t.Helper()
	nonce, err := crypto.NewNonce()
	require.NoError(t, err)
	p := models.SignalPayload{
		V:          models.SchemaVersion,
		SubjectKey: "acct-42",
		SessionID:  "sess-1",
		Reading:    reading,
		Threshold:  threshold,
		Decision:   reading >= threshold,
		ExpiresAt:  now.Add(ttl).Unix(),
		Nonce:      nonce,
	}
	signed, err := crypto.SignPayload(priv, p)
	require.NoError(t, err)
	raw, err := json.Marshal(signed)
	require.NoError(t, err)
	return raw
}

func fixedNow() time.Time { return time.Unix(1767225600, 0) }

func TestVerifyAllow(t *testing.T) {
	pub, priv := testKeys(t)
	raw := signedPayload(t, priv, fixedNow(), 120, 100, 15*time.Second)
	v := Verifier{Fetcher: stubFetcher{payload: raw}, Now: fixedNow}
	res := v.Verify(context.Background(), testConfig(pub))
	require.True(t, res.Allow, "reason=%s detail=%s", res.Reason, res.Detail)
	assert.Equal(t, ReasonOK, res.Reason)
	assert.Equal(t, "sess-1", res.SessionID)
}

func TestVerifyBelowThreshold(t *testing.T) {
	pub, priv := testKeys(t)
	// reading=72, threshold=100, ttl=15s: signed fine, decision carried false
	raw := signedPayload(t, priv, fixedNow(), 72, 100, 15*time.Second)
	v := Verifier{Fetcher: stubFetcher{payload: raw}, Now: fixedNow}
	res := v.Verify(context.Background(), testConfig(pub))
	assert.False(t, res.Allow)
	assert.Equal(t, ReasonBelowThreshold, res.Reason)
}

func TestVerifyExpired(t *testing.T) {
	pub, priv := testKeys(t)
	// reading=120, threshold=100, fetched 20s after a 15s-TTL issuance
	raw := signedPayload(t, priv, fixedNow(), 120, 100, 15*time.Second)
	later := func() time.Time { return fixedNow().Add(20 * time.Second) }
	v := Verifier{Fetcher: stubFetcher{payload: raw}, Now: later}
	res := v.Verify(context.Background(), testConfig(pub))
	assert.False(t, res.Allow)
	assert.Equal(t, ReasonExpired, res.Reason)
}

func TestVerifyExpiryBoundary(t *testing.T) {
	pub, priv := testKeys(t)
	raw := signedPayload(t, priv, fixedNow(), 120, 100, 15*time.Second)
	// invalid at exactly expires_at
	atExpiry := func() time.Time { return fixedNow().Add(15 * time.Second) }
	v := Verifier{Fetcher: stubFetcher{payload: raw}, Now: atExpiry}
	res := v.Verify(context.Background(), testConfig(pub))
	assert.Equal(t, ReasonExpired, res.Reason)
}

func TestVerifyIdentityMismatch(t *testing.T) {
	pub, priv := testKeys(t)
	raw := signedPayload(t, priv, fixedNow(), 120, 100, 15*time.Second)
	cfg := testConfig(pub)
	cfg.SubjectKey = "acct-99"
	v := Verifier{Fetcher: stubFetcher{payload: raw}, Now: fixedNow}
	res := v.Verify(context.Background(), cfg)
	assert.False(t, res.Allow)
	assert.Equal(t, ReasonIdentityMismatch, res.Reason)
}

func TestVerifyBadSignature(t *testing.T) {
	pub, _ := testKeys(t)
	_, otherPriv := testKeys(t)
	raw := signedPayload(t, otherPriv, fixedNow(), 120, 100, 15*time.Second)
	v := Verifier{Fetcher: stubFetcher{payload: raw}, Now: fixedNow}
	res := v.Verify(context.Background(), testConfig(pub))
	assert.False(t, res.Allow)
	assert.Equal(t, ReasonBadSignature, res.Reason)
}

func TestVerifyTamperedDecision(t *testing.T) {
	pub, priv := testKeys(t)
	raw := signedPayload(t, priv, fixedNow(), 72, 100, 15*time.Second)
	var p models.SignalPayload
	require.NoError(t, json.Unmarshal(raw, &p))
	p.Decision = true
	tampered, err := json.Marshal(p)
	require.NoError(t, err)
	v := Verifier{Fetcher: stubFetcher{payload: tampered}, Now: fixedNow}
	res := v.Verify(context.Background(), testConfig(pub))
	assert.False(t, res.Allow)
	assert.Equal(t, ReasonBadSignature, res.Reason)
}

func TestVerifyMalformed(t *testing.T) {
	pub, _ := testKeys(t)
	v := Verifier{Fetcher: stubFetcher{payload: []byte(`{"v":1`)}, Now: fixedNow}
	res := v.Verify(context.Background(), testConfig(pub))
	assert.False(t, res.Allow)
	assert.Equal(t, ReasonMalformed, res.Reason)
}

func TestVerifyUnknownVersion(t *testing.T) {
	pub, priv := testKeys(t)
	raw := signedPayload(t, priv, fixedNow(), 120, 100, 15*time.Second)
	var p models.SignalPayload
	require.NoError(t, json.Unmarshal(raw, &p))
	p.V = 2
	bumped, err := json.Marshal(p)
	require.NoError(t, err)
	v := Verifier{Fetcher: stubFetcher{payload: bumped}, Now: fixedNow}
	res := v.Verify(context.Background(), testConfig(pub))
	assert.Equal(t, ReasonMalformed, res.Reason)
}

func TestVerifyRefMissing(t *testing.T) {
	pub, _ := testKeys(t)
	v := Verifier{Fetcher: stubFetcher{err: transport.ErrRefMissing}, Now: fixedNow}
	res := v.Verify(context.Background(), testConfig(pub))
	assert.False(t, res.Allow)
	assert.Equal(t, ReasonMissing, res.Reason)
}

func TestVerifyUnreachable(t *testing.T) {
	pub, _ := testKeys(t)
	v := Verifier{Fetcher: stubFetcher{err: errors.New("network down")}, Now: fixedNow}
	res := v.Verify(context.Background(), testConfig(pub))
	assert.False(t, res.Allow)
	assert.Equal(t, ReasonUnreachable, res.Reason, "fetch failure is deny, never last-known-good")
}

func TestVerifyBadConfigKey(t *testing.T) {
	cfg := testConfig(nil)
	cfg.PublicKey = "not-hex"
	v := Verifier{Fetcher: stubFetcher{}, Now: fixedNow}
	res := v.Verify(context.Background(), cfg)
	assert.False(t, res.Allow)
	assert.Equal(t, ReasonConfigMissing, res.Reason)
}
