package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"medstock/m/internal/api"
	"medstock/m/internal/auth"
	"medstock/m/internal/config"
	"medstock/m/internal/database"
	"medstock/m/internal/directory"
	"medstock/m/internal/geo"
	"medstock/m/internal/latency"
	"medstock/m/internal/logger"
	"medstock/m/internal/migrations"
	"medstock/m/internal/oversight"
	"medstock/m/internal/pharmacy"
	"medstock/m/internal/phc"
	"medstock/m/internal/seed"
	"medstock/m/internal/state"
	"medstock/m/internal/storage"
)

const serviceName = "medstock"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, lg *zap.Logger) error {
	store, closer, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			lg.Warn("close storage", zap.Error(err))
		}
	}()

	data, err := seed.Load(time.Now(), lg)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	st := state.New(data, state.WithLogger(lg))

	session, err := auth.NewSession(ctx, store,
		auth.WithSignInLatency(latency.Fixed(cfg.Mock.SignInDelay)),
		auth.WithLogger(lg),
	)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}

	lat := latency.New(cfg.Mock.LatencyMin, cfg.Mock.LatencyMax)
	handler := api.New(api.Services{
		Session:   session,
		Tokens:    auth.NewTokenIssuer(cfg.Secret, cfg.TokenTTL),
		Pharmacy:  pharmacy.NewService(st, lg),
		PHC:       phc.NewService(st, lat, lg),
		Oversight: oversight.NewService(st, lg),
		Directory: directory.NewService(st, lat, lg),
		Geocoder:  geo.NewGeocoder(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout, lg),
	}, cfg.CORSOrigins, lg)

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("MedStock server starting",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.Storage.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		lg.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func openStorage(ctx context.Context, cfg config.Storage) (storage.LocalStorage, io.Closer, error) {
	switch cfg.Backend {
	case "redis":
		client := storage.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		rs := storage.NewRedisStore(client, serviceName)
		if err := rs.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		return rs, client, nil
	case "memory":
		return storage.NewMemoryStore(), closerFunc(func() error { return nil }), nil
	default:
		db, err := database.Connect(cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.Run(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return storage.NewSQLStore(db), db, nil
	}
}
