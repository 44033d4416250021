package service

import (
	"context"
	"time"

	"github.com/pulsegate/signal-service/internal/models"
)

// Clock — time abstraction for testability
type Clock interface {
	Now() time.Time
}

// Signer — signs a payload with the active key material
type Signer interface {
	Sign(privateKey []byte, p models.SignalPayload) (models.SignalPayload, error)
}

// KeyRepository — access to the authority's signing keys
type KeyRepository interface {
	GetActiveSignerKey(ctx context.Context) (kid string, alg string, publicKey []byte, privateKey []byte, err error)
	ListSignerKeys(ctx context.Context) ([]SignerKey, error)
}

// TargetRepository — gate target CRUD plus the debounce gate. TryAcquireIssuance
// must be a single atomic read-modify-write at the store: under N concurrent
// callers inside one window, exactly one sees true.
type TargetRepository interface {
	InsertTarget(ctx context.Context, t TargetRecord) error
	GetTarget(ctx context.Context, id string) (TargetRecord, error)
	DeactivateTarget(ctx context.Context, id string) error
	ListActiveTargets(ctx context.Context, subjectKey string) ([]TargetRecord, error)
	TryAcquireIssuance(ctx context.Context, id string, window time.Duration) (bool, error)
	StampIssuance(ctx context.Context, id string) error
}

// SessionRepository — monitoring session lifecycle and reading history.
// RecordReading applies the prev→next indicator transition only while the
// stored state is still prev, and returns whatever state the row ends up
// with; concurrent readings must not overwrite each other's transitions.
type SessionRepository interface {
	InsertSession(ctx context.Context, s SessionRecord) error
	GetSession(ctx context.Context, id string) (SessionRecord, error)
	RecordReading(ctx context.Context, sessionID string, value float64, recordedAt time.Time, decision bool, prev, next models.IndicatorState) (models.IndicatorState, error)
	CloseSession(ctx context.Context, id string) (SessionRecord, error)
	ListStaleEnforcing(ctx context.Context, staleAfter time.Duration) ([]SessionRecord, error)
	ClearDecision(ctx context.Context, id string) error
}

// Publisher — enforcement backend: pushes a signed payload (or an equivalent
// policy effect) out to one gate target
type Publisher interface {
	Publish(ctx context.Context, t TargetRecord, payload []byte, decision bool) error
}

// TargetRecord — write/read model of an enrolled repository
type TargetRecord struct {
	ID         string
	SubjectKey string
	Owner      string
	Repo       string
	RefName    string
	Credential string
	Status     models.TargetStatus
	CreatedAt  time.Time
}

// SessionRecord — monitoring session projection
type SessionRecord struct {
	ID             string
	SubjectKey     string
	Threshold      float64
	StartedAt      time.Time
	EndedAt        *time.Time
	LastReading    *float64
	LastReadingAt  *time.Time
	LastDecision   bool
	IndicatorState models.IndicatorState
}

// SignerKey — projection of a signing key (public half only)
type SignerKey struct {
	KID       string
	Alg       string
	PublicKey []byte
}

// EnrollTargetCommand — input for target enrollment
type EnrollTargetCommand struct {
	SubjectKey string
	Owner      string
	Repo       string
	Credential string
}

// IngestResult — outcome of one ingested reading
type IngestResult struct {
	Decision  bool
	Indicator models.IndicatorState
}
