package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulsegate/signal-service/internal/models"
	"github.com/pulsegate/signal-service/internal/service"
)

// Store — Postgres adapter implementing the service.* ports
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

// KeyRepository

func (s *Store) GetActiveSignerKey(ctx context.Context) (kid string, alg string, publicKey []byte, privateKey []byte, err error) {
	err = s.pool.QueryRow(ctx, `SELECT `+colKeyID+`, `+colAlg+`, `+colPublicKey+`, `+colPrivateKey+` FROM `+tableSignerKeys+` WHERE `+colStatus+`='active' ORDER BY `+colCreatedAt+` DESC LIMIT 1`).
		Scan(&kid, &alg, &publicKey, &privateKey)
	return
}

func (s *Store) ListSignerKeys(ctx context.Context) ([]service.SignerKey, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+colKeyID+`, `+colAlg+`, `+colPublicKey+` FROM `+tableSignerKeys+` WHERE `+colStatus+` IN ('active','retired')`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []service.SignerKey
	for rows.Next() {
		var k service.SignerKey
		if err := rows.Scan(&k.KID, &k.Alg, &k.PublicKey); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// TargetRepository

func (s *Store) InsertTarget(ctx context.Context, t service.TargetRecord) error {
	cmd := `INSERT INTO ` + tableTargets + ` (` +
		colID + `, ` + colSubjectKey + `, ` + colOwner + `, ` + colRepo + `, ` +
		colRefName + `, ` + colCredential + `, ` + colStatus + `) VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := s.pool.Exec(ctx, cmd, t.ID, t.SubjectKey, t.Owner, t.Repo, t.RefName, t.Credential, string(t.Status))
	return err
}

func (s *Store) GetTarget(ctx context.Context, id string) (service.TargetRecord, error) {
	var t service.TargetRecord
	var status string
	err := s.pool.QueryRow(ctx, `SELECT `+colID+`, `+colSubjectKey+`, `+colOwner+`, `+colRepo+`, `+colRefName+`, `+colCredential+`, `+colStatus+`, `+colCreatedAt+` FROM `+tableTargets+` WHERE `+colID+`=$1`, id).
		Scan(&t.ID, &t.SubjectKey, &t.Owner, &t.Repo, &t.RefName, &t.Credential, &status, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.TargetRecord{}, service.ErrNotFound
		}
		return service.TargetRecord{}, err
	}
	t.Status = models.TargetStatus(status)
	return t, nil
}

// DeactivateTarget flips status Active→Deactivated; ErrNotFound/ErrConflict otherwise
func (s *Store) DeactivateTarget(ctx context.Context, id string) error {
	cmd := `UPDATE ` + tableTargets + ` SET ` + colStatus + `=$1 WHERE ` + colID + `=$2 AND ` + colStatus + `=$3`
	tag, err := s.pool.Exec(ctx, cmd, string(models.TargetDeactivated), id, string(models.TargetActive))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := s.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM "+tableTargets+" WHERE "+colID+"=$1)", id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return service.ErrNotFound
	}
	return service.ErrConflict
}

func (s *Store) ListActiveTargets(ctx context.Context, subjectKey string) ([]service.TargetRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+colID+`, `+colSubjectKey+`, `+colOwner+`, `+colRepo+`, `+colRefName+`, `+colCredential+`, `+colCreatedAt+` FROM `+tableTargets+` WHERE `+colSubjectKey+`=$1 AND `+colStatus+`=$2`, subjectKey, string(models.TargetActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []service.TargetRecord
	for rows.Next() {
		t := service.TargetRecord{Status: models.TargetActive}
		if err := rows.Scan(&t.ID, &t.SubjectKey, &t.Owner, &t.Repo, &t.RefName, &t.Credential, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TryAcquireIssuance is the debounce gate: one conditional UPDATE, so the
// stale-check and the stamp are a single atomic read-modify-write at the
// database. Two concurrent callers cannot both see a stale window.
func (s *Store) TryAcquireIssuance(ctx context.Context, id string, window time.Duration) (bool, error) {
	cmd := `UPDATE ` + tableTargets + ` SET ` + colLastIssuedAt + `=now()
WHERE ` + colID + `=$1 AND ` + colStatus + `=$2
  AND (` + colLastIssuedAt + ` IS NULL OR ` + colLastIssuedAt + ` <= now() - make_interval(secs => $3))`
	tag, err := s.pool.Exec(ctx, cmd, id, string(models.TargetActive), window.Seconds())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// StampIssuance resets the window unconditionally (forced-deny path).
func (s *Store) StampIssuance(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `UPDATE `+tableTargets+` SET `+colLastIssuedAt+`=now() WHERE `+colID+`=$1`, id)
	return err
}

// SessionRepository

func (s *Store) InsertSession(ctx context.Context, rec service.SessionRecord) error {
	cmd := `INSERT INTO ` + tableSessions + ` (` +
		colID + `, ` + colSubjectKey + `, ` + colThreshold + `, ` + colStartedAt + `, ` + colIndicatorState + `) VALUES ($1,$2,$3,$4,$5)`
	_, err := s.pool.Exec(ctx, cmd, rec.ID, rec.SubjectKey, rec.Threshold, rec.StartedAt, string(rec.IndicatorState))
	return err
}

func (s *Store) GetSession(ctx context.Context, id string) (service.SessionRecord, error) {
	var rec service.SessionRecord
	var indicator string
	err := s.pool.QueryRow(ctx, `SELECT `+colID+`, `+colSubjectKey+`, `+colThreshold+`, `+colStartedAt+`, `+colEndedAt+`, `+colLastReading+`, `+colLastReadingAt+`, `+colLastDecision+`, `+colIndicatorState+` FROM `+tableSessions+` WHERE `+colID+`=$1`, id).
		Scan(&rec.ID, &rec.SubjectKey, &rec.Threshold, &rec.StartedAt, &rec.EndedAt, &rec.LastReading, &rec.LastReadingAt, &rec.LastDecision, &indicator)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.SessionRecord{}, service.ErrNotFound
		}
		return service.SessionRecord{}, err
	}
	rec.IndicatorState = models.IndicatorState(indicator)
	return rec, nil
}

// RecordReading appends a reading and advances the session snapshot in one
// transaction; a closed session rejects the write. The indicator transition
// is applied inside the UPDATE, guarded on the state it was computed from, so
// two concurrent readings cannot overwrite each other's transition; the row's
// resulting state is returned.
func (s *Store) RecordReading(ctx context.Context, sessionID string, value float64, recordedAt time.Time, decision bool, prev, next models.IndicatorState) (models.IndicatorState, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	cmd := `UPDATE ` + tableSessions + ` SET ` +
		colLastReading + `=$1, ` + colLastReadingAt + `=now(), ` +
		colLastDecision + `=$2, ` +
		colIndicatorState + `=CASE WHEN ` + colIndicatorState + `=$3 THEN $4 ELSE ` + colIndicatorState + ` END
WHERE ` + colID + `=$5 AND ` + colEndedAt + ` IS NULL
RETURNING ` + colIndicatorState
	var indicator string
	if err := tx.QueryRow(ctx, cmd, value, decision, string(prev), string(next), sessionID).Scan(&indicator); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", service.ErrSessionClosed
		}
		return "", err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO `+tableReadings+` (`+colSessionID+`, `+colValue+`, `+colRecordedAt+`) VALUES ($1,$2,$3)`, sessionID, value, recordedAt); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return models.IndicatorState(indicator), nil
}

// CloseSession ends the session and returns its final projection;
// ErrNotFound/ErrConflict mirror the target deactivation semantics. The
// last-decision flag stays as it was: it is cleared by the caller once the
// final deny has actually been published.
func (s *Store) CloseSession(ctx context.Context, id string) (service.SessionRecord, error) {
	var rec service.SessionRecord
	var indicator string
	err := s.pool.QueryRow(ctx, `UPDATE `+tableSessions+` SET `+colEndedAt+`=now()
WHERE `+colID+`=$1 AND `+colEndedAt+` IS NULL
RETURNING `+colID+`, `+colSubjectKey+`, `+colThreshold+`, `+colStartedAt+`, `+colEndedAt+`, `+colLastReading+`, `+colLastReadingAt+`, `+colLastDecision+`, `+colIndicatorState, id).
		Scan(&rec.ID, &rec.SubjectKey, &rec.Threshold, &rec.StartedAt, &rec.EndedAt, &rec.LastReading, &rec.LastReadingAt, &rec.LastDecision, &indicator)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return service.SessionRecord{}, err
		}
		var exists bool
		if err := s.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM "+tableSessions+" WHERE "+colID+"=$1)", id).Scan(&exists); err != nil {
			return service.SessionRecord{}, err
		}
		if !exists {
			return service.SessionRecord{}, service.ErrNotFound
		}
		return service.SessionRecord{}, service.ErrConflict
	}
	rec.IndicatorState = models.IndicatorState(indicator)
	return rec, nil
}

// ListStaleEnforcing returns sessions whose last decision was allow and that
// need a forced deny: open ones whose device has gone quiet past the
// staleness timeout, and closed ones whose final deny publish has not landed
// yet. The flag is only dropped after a successful publish, so a failed one
// keeps the session in this list for the next sweep.
func (s *Store) ListStaleEnforcing(ctx context.Context, staleAfter time.Duration) ([]service.SessionRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+colID+`, `+colSubjectKey+`, `+colThreshold+`, `+colStartedAt+`, `+colEndedAt+`, `+colLastReading+`, `+colLastReadingAt+`, `+colLastDecision+`, `+colIndicatorState+`
FROM `+tableSessions+`
WHERE `+colLastDecision+` AND (`+colEndedAt+` IS NOT NULL
  OR (`+colLastReadingAt+` IS NOT NULL AND `+colLastReadingAt+` < now() - make_interval(secs => $1)))`, staleAfter.Seconds())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []service.SessionRecord
	for rows.Next() {
		var rec service.SessionRecord
		var indicator string
		if err := rows.Scan(&rec.ID, &rec.SubjectKey, &rec.Threshold, &rec.StartedAt, &rec.EndedAt, &rec.LastReading, &rec.LastReadingAt, &rec.LastDecision, &indicator); err != nil {
			return nil, err
		}
		rec.IndicatorState = models.IndicatorState(indicator)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) ClearDecision(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `UPDATE `+tableSessions+` SET `+colLastDecision+`=FALSE WHERE `+colID+`=$1`, id)
	return err
}
