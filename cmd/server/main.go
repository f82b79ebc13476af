package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/YogendraSinghChouhan/ElectionPortal/internal/auth"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/config"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/db"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/server"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/services"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/storage"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/store"
)

func main() {
	// Parse configuration
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("Error loading configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	client, err := db.ConnectMongoDB(ctx, cfg.MongoURI)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	database := client.Database(cfg.MongoDB)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		slog.Error("index creation failed", "error", err)
		os.Exit(1)
	}

	// ID proof uploads are refused while MinIO is unavailable.
	var proofs services.ProofStore
	ps, err := storage.NewProofStore(ctx, storage.MinioOptions{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		slog.Warn("ID proof storage disabled", "error", err)
	} else {
		proofs = ps
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)
	svc := services.New(services.Deps{
		Users:          store.NewUserStore(database),
		Constituencies: store.NewConstituencyStore(database),
		Candidates:     store.NewCandidateStore(database),
		Elections:      store.NewElectionStore(database),
		Proofs:         proofs,
		Tokens:         tokens,
	})

	if cfg.StatusSyncInterval > 0 {
		go svc.Elections.RunStatusSync(ctx, cfg.StatusSyncInterval)
	}

	app := server.New(svc, tokens, cfg)

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	if err := app.Listen(":" + strconv.Itoa(cfg.Port)); err != nil {
		slog.Error("Server closed", "error", err)
	}

	disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Disconnect(disconnectCtx); err != nil {
		slog.Error("database disconnect failed", "error", err)
	}
}
