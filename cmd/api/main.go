package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"pennybook.org/internal/auth"
	"pennybook.org/internal/config"
	"pennybook.org/internal/httpapi"
	"pennybook.org/internal/ledger"
	"pennybook.org/internal/mail"
	"pennybook.org/internal/obs"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	if cfg.DatabaseDSN == "" {
		log.Fatalf("missing DSN: set %s", config.EnvDatabaseDSN)
	}
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}

	users := auth.NewPGStore(db)
	authOpts := []auth.ServiceOption{
		auth.WithResetManager(auth.NewResetManager(users)),
	}
	if cfg.SMTP.Enabled() {
		authOpts = append(authOpts, auth.WithMailer(mail.NewSMTPSender(cfg.SMTP)))
	}
	authSvc, err := auth.NewService(users, tokens, authOpts...)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	ledgerSvc := ledger.NewService(ledger.NewPGStore(db))

	api := httpapi.New(authSvc, ledgerSvc, httpapi.ReadyProbe{DB: db}, version)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting pennybook-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
