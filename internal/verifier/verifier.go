// Package verifier renders the allow/deny decision inside the sandbox.
// Every failure mode maps to deny with a specific reason; there is no
// partial-trust outcome.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pulsegate/signal-service/internal/crypto"
	"github.com/pulsegate/signal-service/internal/models"
	"github.com/pulsegate/signal-service/internal/transport"
)

// Reason is the loggable cause attached to every decision.
type Reason string

const (
	ReasonOK               Reason = "ok"
	ReasonConfigMissing    Reason = "config_missing"
	ReasonUnreachable      Reason = "signal_unreachable"
	ReasonMissing          Reason = "signal_missing"
	ReasonMalformed        Reason = "malformed_payload"
	ReasonIdentityMismatch Reason = "identity_mismatch"
	ReasonExpired          Reason = "signal_expired"
	ReasonBadSignature     Reason = "invalid_signature"
	ReasonBelowThreshold   Reason = "below_threshold"
)

// Result of one verification run. SessionID is populated on allow for
// downstream attribution only; it never feeds the decision.
type Result struct {
	Allow     bool
	Reason    Reason
	Detail    string
	SessionID string
}

func deny(r Reason, detail string) Result {
	return Result{Allow: false, Reason: r, Detail: detail}
}

// Fetcher is the read half of the ref transport.
type Fetcher interface {
	Fetch(ctx context.Context, remote, ref string) ([]byte, error)
}

// Verifier runs the ordered hard-fail pipeline. Now is replaceable in tests;
// nil means time.Now.
type Verifier struct {
	Fetcher Fetcher
	Now     func() time.Time
}

func (v Verifier) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// Verify fetches the subject's current payload and validates structure,
// identity, freshness, signature and decision, in that order. Signature
// verification is never skipped on the allow path: a local config edit must
// not be enough to smuggle a foreign subject's payload through.
func (v Verifier) Verify(ctx context.Context, cfg Config) Result {
	pub, err := cfg.AuthorityKey()
	if err != nil {
		return deny(ReasonConfigMissing, err.Error())
	}

	raw, err := v.Fetcher.Fetch(ctx, cfg.Remote, cfg.RefName)
	if err != nil {
		if errors.Is(err, transport.ErrRefMissing) {
			return deny(ReasonMissing, "no signal has been published for this subject")
		}
		return deny(ReasonUnreachable, err.Error())
	}

	p, err := crypto.Decode(raw)
	if err != nil {
		return deny(ReasonMalformed, err.Error())
	}
	if p.V != models.SchemaVersion {
		return deny(ReasonMalformed, fmt.Sprintf("unknown payload version %d", p.V))
	}

	if p.SubjectKey != cfg.SubjectKey {
		return deny(ReasonIdentityMismatch, "payload speaks for a different subject")
	}

	if !v.now().Before(time.Unix(p.ExpiresAt, 0)) {
		return deny(ReasonExpired, fmt.Sprintf("expired at %d", p.ExpiresAt))
	}

	if err := crypto.VerifyPayload(pub, p); err != nil {
		return deny(ReasonBadSignature, "signature does not verify against the authority key")
	}

	if !p.Decision {
		return deny(ReasonBelowThreshold, fmt.Sprintf("reading %g below threshold %g at issuance", p.Reading, p.Threshold))
	}

	return Result{Allow: true, Reason: ReasonOK, SessionID: p.SessionID}
}
