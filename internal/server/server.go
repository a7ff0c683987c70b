// Package server publishes the latest snapshot over HTTP: the iCalendar
// feed and the upcoming birthdays as JSON.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/birthdays/internal/config"
	"github.com/tartampluch/birthdays/internal/engine"
	"github.com/tartampluch/birthdays/internal/render"
)

// document is one pre-rendered response body and its validators.
type document struct {
	data        []byte
	etag        string
	contentType string
}

// cacheItem stores everything rendered from one snapshot.
type cacheItem struct {
	ics          document
	upcoming     document
	lastModified string // RFC1123 format required by HTTP headers
}

// CalendarServer serves the rendered snapshot.
type CalendarServer struct {
	// cache uses atomic.Pointer for lock-free reads: the feed is polled
	// often and only replaced on sync.
	cache atomic.Pointer[cacheItem]
	Port  string
}

// NewCalendarServer creates a new instance of the server.
func NewCalendarServer(port string) *CalendarServer {
	return &CalendarServer{
		Port: port,
	}
}

// Handler returns the routes of the feed.
func (s *CalendarServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.serve(func(item *cacheItem) document { return item.ics }))
	mux.HandleFunc(config.RouteICS, s.serve(func(item *cacheItem) document { return item.ics }))
	mux.HandleFunc(config.RouteUpcoming, s.serve(func(item *cacheItem) document { return item.upcoming }))
	return mux
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *CalendarServer) Start(ctx context.Context) error {
	if err := config.ValidatePort(s.Port); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update renders snap and atomically replaces the served content.
// A nil snapshot is ignored.
func (s *CalendarServer) Update(snap *engine.Snapshot) error {
	if snap == nil {
		return nil
	}

	upcoming, err := json.Marshal(render.Entries(snap.Result.Entries))
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrJSONEncode, err)
	}

	item := &cacheItem{
		ics:          newDocument(snap.ICS, config.MimeTextCalendar),
		upcoming:     newDocument(upcoming, config.MimeJSONUTF8),
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}

	// Readers see either the old or the new complete item, never a mix.
	s.cache.Store(item)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(item.ics.data),
		config.LogKeyCount, len(snap.Result.Entries),
		config.LogKeyETag, item.ics.etag,
	)
	return nil
}

func newDocument(data []byte, contentType string) document {
	hash := sha256.Sum256(data)
	return document{
		data:        data,
		etag:        fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:])),
		contentType: contentType,
	}
}

// serve returns a handler for one document with HTTP caching support.
func (s *CalendarServer) serve(pick func(*cacheItem) document) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set(config.HeaderAllow, config.AllowedMethods)
			http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
			return
		}

		item := s.cache.Load()
		if item == nil {
			w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
			http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
			return
		}
		doc := pick(item)

		w.Header().Set(config.HeaderContentType, doc.contentType)
		w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
		w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
		w.Header().Set(config.HeaderETag, doc.etag)
		w.Header().Set(config.HeaderLastModified, item.lastModified)

		if notModified(r, doc.etag, item.lastModified) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		if r.Method == http.MethodGet {
			if _, err := io.Copy(w, bytes.NewReader(doc.data)); err != nil {
				slog.Error(config.ErrWriteResp,
					config.LogKeyComponent, config.CompServer,
					config.LogKeyError, err,
				)
			}
		}
	}
}

// notModified evaluates If-None-Match first, then If-Modified-Since.
func notModified(r *http.Request, etag, lastModified string) bool {
	if match := r.Header.Get(config.HeaderIfNoneMatch); match != "" {
		return match == etag
	}

	since := r.Header.Get(config.HeaderIfModifiedSince)
	if since == "" {
		return false
	}
	clientTime, err := time.Parse(http.TimeFormat, since)
	if err != nil {
		return false
	}
	serverTime, err := time.Parse(http.TimeFormat, lastModified)
	if err != nil {
		return false
	}
	return !serverTime.After(clientTime)
}
