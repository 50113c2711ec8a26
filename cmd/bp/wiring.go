package main

import (
	"context"
	"errors"

	"github.com/alfredjeanlab/blueprint/internal/config"
	"github.com/alfredjeanlab/blueprint/internal/events"
	"github.com/alfredjeanlab/blueprint/internal/handoff"
	"github.com/alfredjeanlab/blueprint/internal/store"
	"github.com/alfredjeanlab/blueprint/internal/store/memory"
	"github.com/alfredjeanlab/blueprint/internal/store/postgres"
	bpsync "github.com/alfredjeanlab/blueprint/internal/sync"
)

var errNoDatabase = errors.New("BLUEPRINT_DATABASE_URL is not set")

// openStore connects to PostgreSQL, or returns a process-local memory store
// when no database is configured.
func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Debug("using in-memory store (BLUEPRINT_DATABASE_URL not set)")
		return memory.New(), nil
	}
	s, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// requireStore is openStore for commands that only make sense against a
// database.
func requireStore(cfg *config.Config) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		return nil, errNoDatabase
	}
	return openStore(cfg)
}

func openPublisher(cfg *config.Config) (events.Publisher, error) {
	if cfg.NATSURL == "" {
		logger.Debug("events disabled (BLUEPRINT_NATS_URL not set)")
		return &events.NoopPublisher{}, nil
	}
	pub, err := events.NewNATSPublisher(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	logger.Debug("events enabled", "nats_url", cfg.NATSURL)
	return pub, nil
}

// openDestinations builds the sync destinations named by cfg. A destination
// that cannot be created is logged and skipped.
func openDestinations(ctx context.Context, cfg *config.Config) []bpsync.Destination {
	var dests []bpsync.Destination

	if cfg.SyncS3Bucket != "" {
		s3Dest, err := bpsync.NewS3Destination(ctx,
			cfg.SyncS3Bucket,
			cfg.SyncS3Key,
			cfg.SyncS3Region,
			cfg.SyncS3Endpoint,
		)
		if err != nil {
			logger.Error("failed to create S3 sync destination", "err", err)
		} else {
			dests = append(dests, s3Dest)
			logger.Debug("sync S3 destination enabled", "bucket", cfg.SyncS3Bucket, "key", cfg.SyncS3Key)
		}
	}

	if cfg.SyncGitRepo != "" {
		dests = append(dests, bpsync.NewGitDestination(cfg.SyncGitRepo, cfg.SyncGitFile, cfg.SyncGitBranch))
		logger.Debug("sync git destination enabled", "repo", cfg.SyncGitRepo, "file", cfg.SyncGitFile)
	}

	return dests
}

// services bundles what a command opened so it can be closed in one place.
type services struct {
	store     store.Store
	publisher events.Publisher
	handoff   *handoff.Service
}

// openServices wires the store, publisher and destinations into a handoff
// service. withStore=false skips the database even when one is configured.
func openServices(ctx context.Context, cfg *config.Config, withStore bool) (*services, error) {
	var (
		st  store.Store
		err error
	)
	if withStore {
		if st, err = openStore(cfg); err != nil {
			return nil, err
		}
	}
	pub, err := openPublisher(cfg)
	if err != nil {
		if st != nil {
			st.Close()
		}
		return nil, err
	}
	return &services{
		store:     st,
		publisher: pub,
		handoff:   handoff.New(st, pub, openDestinations(ctx, cfg), logger),
	}, nil
}

func (s *services) Close() {
	if err := s.publisher.Close(); err != nil {
		logger.Error("error closing publisher", "err", err)
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}
	}
}
