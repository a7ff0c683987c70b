// Package app runs the long-lived feed: the HTTP server plus a worker that
// refreshes the snapshot on a schedule or on demand.
package app

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tartampluch/birthdays/internal/config"
	"github.com/tartampluch/birthdays/internal/engine"
)

// Syncer produces snapshots. *engine.Generator satisfies it.
type Syncer interface {
	RunSync(ctx context.Context, cfg engine.SyncConfig) (*engine.Snapshot, error)
}

// Server publishes snapshots. *server.CalendarServer satisfies it.
type Server interface {
	Start(ctx context.Context) error
	Update(snap *engine.Snapshot) error
}

// Service ties a Syncer to a Server.
type Service struct {
	Syncer   Syncer
	Server   Server
	Interval time.Duration
	Sync     engine.SyncConfig

	// OnSync, when set, is called after every successful sync.
	OnSync func(*engine.Snapshot)

	refresh chan struct{}
	latest  atomic.Pointer[engine.Snapshot]
}

// New returns a Service refreshing every interval; a non-positive interval
// falls back to config.DefaultRefresh.
func New(syncer Syncer, srv Server, interval time.Duration, cfg engine.SyncConfig) *Service {
	if interval <= 0 {
		interval = config.DefaultRefresh
	}
	return &Service{
		Syncer:   syncer,
		Server:   srv,
		Interval: interval,
		Sync:     cfg,
		refresh:  make(chan struct{}, config.ChannelBufferSize),
	}
}

// Refresh asks the worker for an immediate sync. Requests made while one
// is already pending are coalesced.
func (s *Service) Refresh() {
	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

// Latest returns the last successful snapshot, or nil before the first one.
func (s *Service) Latest() *engine.Snapshot {
	return s.latest.Load()
}

// Serve starts the server and the worker and blocks until ctx is cancelled
// or the server fails.
func (s *Service) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	err := s.Server.Start(ctx)
	cancel()
	<-done
	return err
}

// Run manages the periodic synchronization schedule until ctx is done.
func (s *Service) Run(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	s.performSync(ctx, false)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, s.Interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-s.refresh:
			s.performSync(ctx, true)
			ticker.Reset(s.Interval)

		case <-ticker.C:
			s.performSync(ctx, false)
		}
	}
}

// performSync runs one sync and publishes the result. A failed sync keeps
// the previous snapshot online.
func (s *Service) performSync(ctx context.Context, manual bool) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)
	log.Info(config.MsgSyncReq, config.LogKeyManual, manual)

	snap, err := s.Syncer.RunSync(ctx, s.Sync)
	if err != nil {
		if ctx.Err() == nil {
			log.Error(config.MsgSyncFailed, config.LogKeyError, err)
		}
		return
	}

	if s.Server != nil {
		if err := s.Server.Update(snap); err != nil {
			log.Error(config.MsgSyncFailed, config.LogKeyError, err)
			return
		}
	}
	s.latest.Store(snap)

	if s.OnSync != nil {
		s.OnSync(snap)
	}
}
