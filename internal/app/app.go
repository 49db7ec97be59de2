package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kkkatsube/picc/cmd/migrate"
	"github.com/kkkatsube/picc/internal/cache"
	"github.com/kkkatsube/picc/internal/config"
	"github.com/kkkatsube/picc/internal/health"
	"github.com/kkkatsube/picc/internal/probe"
	"github.com/kkkatsube/picc/internal/r2"
	"github.com/kkkatsube/picc/internal/redisholder"
	"github.com/kkkatsube/picc/internal/repository/storage"
	"github.com/kkkatsube/picc/internal/session"
	"github.com/kkkatsube/picc/internal/thumbs"
	"github.com/kkkatsube/picc/internal/transport/handler"
	"github.com/kkkatsube/picc/internal/transport/router"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	HttpServer *http.Server

	repo   *storage.Storage
	holder *redisholder.Holder
	r2     *r2.S3
	cancel context.CancelFunc
}

func New(cfg *config.Config, version string) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	err := migrate.Migrate(cfg.Database.DSN, migrate.Migrations)
	if err != nil {
		cancel()
		return nil, err
	}

	repo, err := storage.New(ctx, cfg.Database.DSN)
	if err != nil {
		cancel()
		return nil, err
	}

	holder, err := redisholder.Build(ctx, &cfg.Redis)
	if err != nil {
		cancel()
		return nil, err
	}
	rc := holder.Get()

	sessions := session.NewStore(rc, cfg.Auth.SessionTTL*time.Second)

	dimCache := cache.NewCache("picc:dims", rc)
	prober := probe.New(cfg.Probe, dimCache)

	r2Storage, err := r2.NewStorage(&cfg.R2)
	if err != nil {
		cancel()
		return nil, err
	}

	producer := thumbs.Init(ctx, rc, cfg.Thumbs, r2Storage)

	healthSvc := health.NewService(repo, holder, version)

	h := handler.New(repo, prober, sessions, producer, healthSvc, cfg)
	r := router.NewRouter(h)

	s := &http.Server{
		Handler:      r,
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout * time.Second,
		WriteTimeout: cfg.Server.WriteTimeout * time.Second,
	}

	return &App{
		HttpServer: s,
		repo:       repo,
		holder:     holder,
		r2:         r2Storage,
		cancel:     cancel,
	}, nil
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests and the
// upload queue before returning.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting server on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.cancel()
		return err
	case sig := <-stop:
		log.Printf("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.HttpServer.Shutdown(ctx)

	a.cancel()
	a.r2.Close()
	a.repo.Close()
	_ = a.holder.Close()

	return err
}
