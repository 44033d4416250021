package service

import (
	"context"
	"log"
	"time"
)

// Supervisor watches for monitoring sessions whose device went quiet while
// their last issued decision was still allow, and forces a deny payload out
// before the token's own expiry would catch up.
type Supervisor struct {
	svc        *Service
	poll       time.Duration
	staleAfter time.Duration
}

func NewSupervisor(svc *Service, poll, staleAfter time.Duration) *Supervisor {
	if poll <= 0 {
		poll = 3 * time.Second
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Second
	}
	return &Supervisor{svc: svc, poll: poll, staleAfter: staleAfter}
}

// Run blocks until ctx is cancelled.
func (sv *Supervisor) Run(ctx context.Context) {
	t := time.NewTicker(sv.poll)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			sv.sweep(ctx)
		}
	}
}

func (sv *Supervisor) sweep(ctx context.Context) {
	stale, err := sv.svc.sessions.ListStaleEnforcing(ctx, sv.staleAfter)
	if err != nil {
		log.Printf("supervisor: list stale: %v", err)
		return
	}
	for _, sess := range stale {
		reading := 0.0
		if sess.LastReading != nil {
			reading = *sess.LastReading
		}
		log.Printf("supervisor: session=%s stale, forcing deny", sess.ID)
		// The flag is cleared only after the deny actually went out; a failed
		// publish leaves it set so the next sweep retries. Publishing the same
		// deny twice is harmless.
		if err := sv.svc.forceDeny(ctx, sess.SubjectKey, sess.ID, reading, sess.Threshold); err != nil {
			log.Printf("supervisor: force deny session=%s: %v", sess.ID, err)
			continue
		}
		if err := sv.svc.sessions.ClearDecision(ctx, sess.ID); err != nil {
			log.Printf("supervisor: clear decision session=%s: %v", sess.ID, err)
		}
	}
}
