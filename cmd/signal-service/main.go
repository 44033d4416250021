// @title         signal-service API
// @version       1.0
// @description   Authority side of the biometric signal gate: ingests readings, issues signed signal payloads to enrolled repositories.
// @BasePath      /api/v1
// @schemes       http
// @host          localhost:8082
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	icfg "github.com/pulsegate/signal-service/internal/config"
	ih "github.com/pulsegate/signal-service/internal/http"
	"github.com/pulsegate/signal-service/internal/repo"
	"github.com/pulsegate/signal-service/internal/service"
	"github.com/pulsegate/signal-service/internal/transport"
)

func main() {
	cfg := icfg.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := repo.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := repo.RunMigrations(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	store := repo.NewStore(pool)

	var publisher service.Publisher
	switch cfg.Enforcement {
	case "policy_lock":
		publisher = transport.PolicyLockBackend{Timeout: cfg.PublishTimeout}
	default:
		publisher = transport.RefTokenBackend{Timeout: cfg.PublishTimeout}
	}

	svc := service.New(store, store, store, service.RealClock{}, service.PayloadSigner{}, publisher, service.Options{
		TokenTTL:       cfg.TokenTTL,
		DebounceWindow: cfg.DebounceWindow,
		RefNamespace:   cfg.RefNamespace,
	})

	sup := service.NewSupervisor(svc, cfg.SupervisorPoll, cfg.StaleAfter)
	go sup.Run(ctx)

	e := ih.Router(svc, pool, cfg)

	srv := &http.Server{
		Addr:              cfg.Bind,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("signal-service listening on %s", cfg.Bind)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	_ = srv.Shutdown(shutdownCtx)
}
