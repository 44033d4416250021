package service

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/pulsegate/signal-service/internal/crypto"
	"github.com/pulsegate/signal-service/internal/gate"
	"github.com/pulsegate/signal-service/internal/metrics"
	"github.com/pulsegate/signal-service/internal/models"
)

// Options — issuance tuning; zero values are replaced with the defaults below.
type Options struct {
	TokenTTL         time.Duration
	DebounceWindow   time.Duration
	RefNamespace     string
	HysteresisMargin float64
}

func (o Options) withDefaults() Options {
	if o.TokenTTL <= 0 {
		o.TokenTTL = 15 * time.Second
	}
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = 5 * time.Second
	}
	if o.RefNamespace == "" {
		o.RefNamespace = "pulse"
	}
	if o.HysteresisMargin <= 0 {
		o.HysteresisMargin = gate.DefaultMargin
	}
	return o
}

// Service implements the authority-side use cases: enrollment, session
// lifecycle, debounced signal issuance and the forced-deny paths.
type Service struct {
	keys      KeyRepository
	targets   TargetRepository
	sessions  SessionRepository
	clock     Clock
	signer    Signer
	publisher Publisher
	opts      Options
}

func New(keys KeyRepository, targets TargetRepository, sessions SessionRepository, clock Clock, signer Signer, publisher Publisher, opts Options) *Service {
	return &Service{
		keys:      keys,
		targets:   targets,
		sessions:  sessions,
		clock:     clock,
		signer:    signer,
		publisher: publisher,
		opts:      opts.withDefaults(),
	}
}

// RefName derives the transport address for a subject: a fixed namespace
// prefix plus the subject key.
func RefName(namespace, subjectKey string) string {
	return "refs/" + namespace + "/" + subjectKey
}

// EnrollTarget registers a repository for enforcement.
func (s *Service) EnrollTarget(ctx context.Context, cmd EnrollTargetCommand) (TargetRecord, error) {
	t := TargetRecord{
		ID:         uuid.New().String(),
		SubjectKey: cmd.SubjectKey,
		Owner:      cmd.Owner,
		Repo:       cmd.Repo,
		RefName:    RefName(s.opts.RefNamespace, cmd.SubjectKey),
		Credential: cmd.Credential,
		Status:     models.TargetActive,
	}
	if err := s.targets.InsertTarget(ctx, t); err != nil {
		return TargetRecord{}, err
	}
	return t, nil
}

// DeactivateTarget — enrollment removal keeps the row, flips the status
func (s *Service) DeactivateTarget(ctx context.Context, id string) error {
	return s.targets.DeactivateTarget(ctx, id)
}

func (s *Service) GetTarget(ctx context.Context, id string) (TargetRecord, error) {
	return s.targets.GetTarget(ctx, id)
}

// StartSession opens a monitoring session with a threshold snapshot.
func (s *Service) StartSession(ctx context.Context, subjectKey string, threshold float64) (SessionRecord, error) {
	rec := SessionRecord{
		ID:             uuid.New().String(),
		SubjectKey:     subjectKey,
		Threshold:      threshold,
		StartedAt:      s.clock.Now().UTC(),
		IndicatorState: models.IndicatorLocked,
	}
	if err := s.sessions.InsertSession(ctx, rec); err != nil {
		return SessionRecord{}, err
	}
	return rec, nil
}

func (s *Service) GetSession(ctx context.Context, id string) (SessionRecord, error) {
	return s.sessions.GetSession(ctx, id)
}

// IngestReading records one biometric sample, advances the hysteresis
// indicator, and triggers the debounced issuance fan-out. Publish failures
// never surface to the caller: the reading itself must always be accepted.
func (s *Service) IngestReading(ctx context.Context, sessionID string, value float64, recordedAt time.Time) (IngestResult, error) {
	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return IngestResult{}, err
	}
	if sess.EndedAt != nil {
		return IngestResult{}, ErrSessionClosed
	}
	if recordedAt.IsZero() {
		recordedAt = s.clock.Now()
	}

	decision := gate.Decide(value, sess.Threshold)
	h := gate.Hysteresis{State: sess.IndicatorState, Margin: s.opts.HysteresisMargin}

	// The step is applied by the store only if the indicator still holds the
	// state it was computed from; a concurrent reading's transition wins and
	// is reported back instead of being overwritten.
	indicator, err := s.sessions.RecordReading(ctx, sessionID, value, recordedAt.UTC(), decision, sess.IndicatorState, h.Step(value, sess.Threshold))
	if err != nil {
		return IngestResult{}, err
	}

	_ = s.fanOut(ctx, sess.SubjectKey, sessionID, value, sess.Threshold, false)
	return IngestResult{Decision: decision, Indicator: indicator}, nil
}

// CloseSession ends monitoring and publishes one final deny payload so that
// absence of monitoring fails closed instead of merely going quiet. The allow
// flag is dropped only once the deny is actually out; until then the
// supervisor keeps retrying the publish.
func (s *Service) CloseSession(ctx context.Context, id string) (SessionRecord, error) {
	sess, err := s.sessions.CloseSession(ctx, id)
	if err != nil {
		return SessionRecord{}, err
	}
	reading := 0.0
	if sess.LastReading != nil {
		reading = *sess.LastReading
	}
	if err := s.forceDeny(ctx, sess.SubjectKey, sess.ID, reading, sess.Threshold); err != nil {
		log.Printf("close: final deny session=%s: %v", sess.ID, err)
		return sess, nil
	}
	if err := s.sessions.ClearDecision(ctx, sess.ID); err != nil {
		log.Printf("close: clear decision session=%s: %v", sess.ID, err)
	}
	return sess, nil
}

// ListSignerKeys — public key material for verifier enrollment
func (s *Service) ListSignerKeys(ctx context.Context) ([]SignerKey, error) {
	return s.keys.ListSignerKeys(ctx)
}

// fanOut publishes a fresh signal to every active target of the subject.
// With force=false each target goes through the atomic debounce gate; losers
// return without publishing. With force=true the gate is bypassed but the
// window is still stamped. The returned error is the first failure across the
// targets; natural triggers ignore it, the forced-deny callers use it to keep
// the retry flag set.
func (s *Service) fanOut(ctx context.Context, subjectKey, sessionID string, reading, threshold float64, force bool) error {
	targets, err := s.targets.ListActiveTargets(ctx, subjectKey)
	if err != nil {
		// Store unreachable: skip issuance rather than bypass the debounce.
		log.Printf("issue: list targets subject=%s: %v", subjectKey, err)
		return err
	}
	var firstErr error
	for _, t := range targets {
		if force {
			if err := s.targets.StampIssuance(ctx, t.ID); err != nil {
				log.Printf("issue: stamp target=%s: %v", t.ID, err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
		} else {
			won, err := s.targets.TryAcquireIssuance(ctx, t.ID, s.opts.DebounceWindow)
			if err != nil {
				log.Printf("issue: debounce target=%s: %v", t.ID, err)
				metrics.DebounceSkips.Inc()
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			if !won {
				metrics.DebounceSkips.Inc()
				continue
			}
		}
		if err := s.issueSignal(ctx, t, sessionID, reading, threshold, force); err != nil {
			// Logged and retried on the next natural trigger; the existing
			// token stays live until it expires on its own.
			log.Printf("issue: publish target=%s ref=%s: %v", t.ID, t.RefName, err)
			metrics.PublishFailures.Inc()
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *Service) forceDeny(ctx context.Context, subjectKey, sessionID string, reading, threshold float64) error {
	if err := s.fanOut(ctx, subjectKey, sessionID, reading, threshold, true); err != nil {
		return err
	}
	metrics.ForcedDenies.Inc()
	return nil
}

// issueSignal builds, signs and publishes one payload. forceDeny pins the
// decision to false regardless of the reading.
func (s *Service) issueSignal(ctx context.Context, t TargetRecord, sessionID string, reading, threshold float64, forceDeny bool) error {
	_, alg, _, priv, err := s.keys.GetActiveSignerKey(ctx)
	if err != nil {
		return err
	}
	if alg != "EdDSA" {
		return ErrUnsupportedAlg
	}
	if len(priv) != ed25519.PrivateKeySize {
		// ed25519.Sign panics on a wrong-length key; refuse it here instead.
		return ErrMalformedKey
	}
	nonce, err := crypto.NewNonce()
	if err != nil {
		return err
	}
	decision := gate.Decide(reading, threshold) && !forceDeny
	p := models.SignalPayload{
		V:          models.SchemaVersion,
		SubjectKey: t.SubjectKey,
		SessionID:  sessionID,
		Reading:    reading,
		Threshold:  threshold,
		Decision:   decision,
		ExpiresAt:  s.clock.Now().Add(s.opts.TokenTTL).Unix(),
		Nonce:      nonce,
	}
	signed, err := s.signer.Sign(priv, p)
	if err != nil {
		return err
	}
	payloadB, err := json.Marshal(signed)
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, t, payloadB, decision); err != nil {
		return err
	}
	metrics.SignalsIssued.WithLabelValues(decisionLabel(decision)).Inc()
	return nil
}

func decisionLabel(d bool) string {
	if d {
		return "allow"
	}
	return "deny"
}
