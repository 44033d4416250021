package crypto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gowebpki/jcs"

	"github.com/pulsegate/signal-service/internal/models"
)

// ErrMalformed — payload bytes fail strict decoding
var ErrMalformed = errors.New("malformed_payload")

// EncodeForSigning serializes every payload field except sig into the RFC 8785
// canonical form (keys sorted, compact, deterministic numbers). Signer and
// verifier must produce byte-identical output for the same logical payload;
// this is the load-bearing property of the whole protocol.
func EncodeForSigning(p models.SignalPayload) ([]byte, error) {
	p.Sig = ""
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return jcs.Transform(raw)
}

// strict decode shadow: pointer fields so absent and zero are distinguishable
type wirePayload struct {
	V          *int     `json:"v"`
	SubjectKey *string  `json:"subject_key"`
	SessionID  *string  `json:"session_id"`
	Reading    *float64 `json:"reading"`
	Threshold  *float64 `json:"threshold"`
	Decision   *bool    `json:"decision"`
	ExpiresAt  *int64   `json:"expires_at"`
	Nonce      *string  `json:"nonce"`
	Sig        *string  `json:"sig"`
}

// Decode parses payload bytes, rejecting unknown fields and treating any
// missing, null, or mistyped field as a hard failure — never a default.
func Decode(b []byte) (models.SignalPayload, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var w wirePayload
	if err := dec.Decode(&w); err != nil {
		return models.SignalPayload{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if dec.More() {
		return models.SignalPayload{}, fmt.Errorf("%w: trailing data", ErrMalformed)
	}
	missing := func(name string) (models.SignalPayload, error) {
		return models.SignalPayload{}, fmt.Errorf("%w: missing field %s", ErrMalformed, name)
	}
	switch {
	case w.V == nil:
		return missing("v")
	case w.SubjectKey == nil:
		return missing("subject_key")
	case w.SessionID == nil:
		return missing("session_id")
	case w.Reading == nil:
		return missing("reading")
	case w.Threshold == nil:
		return missing("threshold")
	case w.Decision == nil:
		return missing("decision")
	case w.ExpiresAt == nil:
		return missing("expires_at")
	case w.Nonce == nil:
		return missing("nonce")
	case w.Sig == nil:
		return missing("sig")
	}
	return models.SignalPayload{
		V:          *w.V,
		SubjectKey: *w.SubjectKey,
		SessionID:  *w.SessionID,
		Reading:    *w.Reading,
		Threshold:  *w.Threshold,
		Decision:   *w.Decision,
		ExpiresAt:  *w.ExpiresAt,
		Nonce:      *w.Nonce,
		Sig:        *w.Sig,
	}, nil
}
