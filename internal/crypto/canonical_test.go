package crypto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsegate/signal-service/internal/models"
)

func samplePayload() models.SignalPayload {
	return models.SignalPayload{
		V:          models.SchemaVersion,
		SubjectKey: "acct-42",
		SessionID:  "3b9e7d3a-8a2c-4c7e-9b1a-0f6d2e5c8a11",
		Reading:    121.5,
		Threshold:  100,
		Decision:   true,
		ExpiresAt:  1767225615,
		Nonce:      "00112233445566778899aabbccddeeff",
	}
}

func TestEncodeForSigningDeterministic(t *testing.T) {
	p := samplePayload()
	a, err := EncodeForSigning(p)
	require.NoError(t, err)
	b, err := EncodeForSigning(p)
	require.NoError(t, err)
	assert.Equal(t, a, b, "two encodings of the same logical payload must be byte-identical")
}

func TestEncodeForSigningExcludesSig(t *testing.T) {
	p := samplePayload()
	unsigned, err := EncodeForSigning(p)
	require.NoError(t, err)
	p.Sig = "deadbeef"
	signed, err := EncodeForSigning(p)
	require.NoError(t, err)
	assert.Equal(t, unsigned, signed)
	assert.NotContains(t, string(unsigned), "sig")
}

func TestEncodeForSigningSortedCompact(t *testing.T) {
	b, err := EncodeForSigning(samplePayload())
	require.NoError(t, err)
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &m))
	assert.NotContains(t, string(b), " ")
	assert.NotContains(t, string(b), "\n")
	// lexicographic field order
	assert.Regexp(t, `^\{"decision":.*"expires_at":.*"nonce":.*"reading":.*"session_id":.*"subject_key":.*"threshold":.*"v":`, string(b))
}

func TestDecodeRoundTrip(t *testing.T) {
	p := samplePayload()
	p.Sig = "ab"
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestDecodeRejects(t *testing.T) {
	valid := samplePayload()
	valid.Sig = "ab"
	base, err := json.Marshal(valid)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ``},
		{"not json", `{`},
		{"array", `[]`},
		{"missing decision", mutate(t, base, func(m map[string]any) { delete(m, "decision") })},
		{"missing sig", mutate(t, base, func(m map[string]any) { delete(m, "sig") })},
		{"missing nonce", mutate(t, base, func(m map[string]any) { delete(m, "nonce") })},
		{"null reading", mutate(t, base, func(m map[string]any) { m["reading"] = nil })},
		{"string threshold", mutate(t, base, func(m map[string]any) { m["threshold"] = "100" })},
		{"bool expires", mutate(t, base, func(m map[string]any) { m["expires_at"] = true })},
		{"unknown field", mutate(t, base, func(m map[string]any) { m["extra"] = 1 })},
		{"trailing data", string(base) + `{}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.raw))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func mutate(t *testing.T, base []byte, fn func(map[string]any)) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(base, &m))
	fn(m)
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return string(out)
}
