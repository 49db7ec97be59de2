package main

import (
	"log"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kkkatsube/picc/internal/app"
	"github.com/kkkatsube/picc/internal/config"
)

const (
	file    = "config.json"
	version = "1.0.0"
)

func initSentry(cfg *config.SentryConfig, release string) error {
	return sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     release,
	})
}

func main() {
	cfg := config.NewConfig()
	err := cfg.Read(file)
	if err != nil {
		log.Fatal(err)
	}

	err = initSentry(&cfg.Sentry, version)
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}

	// Flush buffered events before the program terminates.
	defer sentry.Flush(2 * time.Second)

	app, err := app.New(cfg, version)
	if err != nil {
		log.Fatal(err)
	}

	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
