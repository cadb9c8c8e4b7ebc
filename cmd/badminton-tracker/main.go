package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/badminton-tracker-go/internal/archive"
	appcfg "github.com/kapu/badminton-tracker-go/internal/config"
	"github.com/kapu/badminton-tracker-go/internal/httpapi"
	"github.com/kapu/badminton-tracker-go/internal/msgcat"
	"github.com/kapu/badminton-tracker-go/internal/obslog"
	"github.com/kapu/badminton-tracker-go/internal/store"
	"github.com/kapu/badminton-tracker-go/internal/tracker"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}

	cat, err := msgcat.New(cfg.MessageDir)
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}

	st, err := store.Open(cfg.RedisURL)
	if err != nil {
		log.Fatalf("store init error: %v", err)
	}

	opts := []tracker.Option{
		tracker.WithUndoTTL(time.Duration(cfg.UndoWindowSec) * time.Second),
	}
	if cfg.RandomSeed != 0 {
		opts = append(opts, tracker.WithRand(rand.New(rand.NewSource(cfg.RandomSeed))))
	}
	mgr, err := tracker.NewManager(context.Background(), st, opts...)
	if err != nil {
		log.Fatalf("tracker init error: %v", err)
	}

	// Optional Postgres archive for recorded matches.
	var repo *archive.Repository
	if cfg.DatabaseURL != "" {
		repo, err = archive.NewRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("archive init error: %v", err)
		}
		mgr.AttachArchive(repo)
	}

	api := httpapi.New(mgr, cat, httpapi.WithMaxBatch(cfg.MaxGenerateBatch))
	go func() {
		obslog.L().Info("api_listen", zap.String("addr", cfg.ListenAddr))
		if err := api.ListenAndServe(cfg.ListenAddr); err != nil {
			obslog.L().Fatal("api_serve_error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	_ = api.Shutdown()
	_ = st.Close()
	if repo != nil {
		_ = repo.Close()
	}
}
