package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/birthdays/internal/calendar"
	"github.com/tartampluch/birthdays/internal/config"
	"github.com/tartampluch/birthdays/internal/engine"
	"github.com/tartampluch/birthdays/internal/render"
)

func snapshot(ics string, records ...calendar.Record) *engine.Snapshot {
	return &engine.Snapshot{
		ICS:    []byte(ics),
		Result: calendar.OrderByProximity(records, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)),
	}
}

func do(t *testing.T, srv *CalendarServer, method, target string, header http.Header) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	resp := w.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// -----------------------------------------------------------------------------
// Unit Tests (White-Box Testing of Handler Logic)
// -----------------------------------------------------------------------------

func TestHandler_ServingCalendar(t *testing.T) {
	srv := NewCalendarServer("0")
	expectedICS := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR"
	require.NoError(t, srv.Update(snapshot(expectedICS)))

	for _, target := range []string{config.RouteICS, "/"} {
		t.Run(target, func(t *testing.T) {
			resp := do(t, srv, http.MethodGet, target, nil)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
			assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
			assert.Contains(t, resp.Header.Get(config.HeaderCacheControl), "no-cache")
			assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))
			assert.NotEmpty(t, resp.Header.Get(config.HeaderLastModified))

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, expectedICS, string(body))
		})
	}
}

func TestHandler_UnknownPath(t *testing.T) {
	srv := NewCalendarServer("0")
	require.NoError(t, srv.Update(snapshot("X")))

	resp := do(t, srv, http.MethodGet, "/favicon.ico", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_Upcoming(t *testing.T) {
	srv := NewCalendarServer("0")
	require.NoError(t, srv.Update(snapshot("X",
		calendar.Record{ID: "1", Name: "Later", BirthDate: "1990-07-01"},
		calendar.Record{ID: "2", Name: "Now", BirthDate: "1990-06-15"},
		calendar.Record{ID: "3", Name: "Bad", BirthDate: "nope"},
	)))

	resp := do(t, srv, http.MethodGet, config.RouteUpcoming, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeJSONUTF8, resp.Header.Get(config.HeaderContentType))

	var got []render.EntryJSON
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 2)

	assert.Equal(t, "Now", got[0].Name)
	assert.True(t, got[0].IsToday)
	assert.Equal(t, "today", got[0].Countdown)
	require.NotNil(t, got[0].AgeNext)
	assert.Equal(t, 35, *got[0].AgeNext)

	assert.Equal(t, "Later", got[1].Name)
	assert.Equal(t, 16, got[1].DaysUntil)
	assert.Equal(t, "2025-07-01", got[1].NextOccurrence)
}

func TestHandler_Caching(t *testing.T) {
	srv := NewCalendarServer("0")
	require.NoError(t, srv.Update(snapshot("DATA_VERSION_1")))

	etag := do(t, srv, http.MethodGet, config.RouteICS, nil).Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag, "Server must provide an ETag")

	resp := do(t, srv, http.MethodGet, config.RouteICS, http.Header{config.HeaderIfNoneMatch: {etag}})
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body, "Body must be empty on 304 Not Modified")

	// A stale ETag wins over a fresh If-Modified-Since.
	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	resp = do(t, srv, http.MethodGet, config.RouteICS, http.Header{
		config.HeaderIfNoneMatch:     {`"stale"`},
		config.HeaderIfModifiedSince: {future},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_IfModifiedSince(t *testing.T) {
	srv := NewCalendarServer("0")
	require.NoError(t, srv.Update(snapshot("DATA")))

	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	resp := do(t, srv, http.MethodGet, config.RouteICS, http.Header{config.HeaderIfModifiedSince: {future}})
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)

	past := time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat)
	resp = do(t, srv, http.MethodGet, config.RouteICS, http.Header{config.HeaderIfModifiedSince: {past}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_ETagChangesWithContent(t *testing.T) {
	srv := NewCalendarServer("0")

	require.NoError(t, srv.Update(snapshot("V1")))
	first := do(t, srv, http.MethodGet, config.RouteICS, nil).Header.Get(config.HeaderETag)

	require.NoError(t, srv.Update(snapshot("V2")))
	second := do(t, srv, http.MethodGet, config.RouteICS, nil).Header.Get(config.HeaderETag)

	assert.NotEqual(t, first, second)
}

func TestHandler_Head(t *testing.T) {
	srv := NewCalendarServer("0")
	require.NoError(t, srv.Update(snapshot("BODY")))

	resp := do(t, srv, http.MethodHead, config.RouteICS, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	srv := NewCalendarServer("0")

	for _, target := range []string{"/", config.RouteICS, config.RouteUpcoming} {
		resp := do(t, srv, http.MethodPost, target, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, target)
		assert.Equal(t, config.AllowedMethods, resp.Header.Get(config.HeaderAllow))
	}
}

func TestHandler_Initializing(t *testing.T) {
	srv := NewCalendarServer("0")

	for _, target := range []string{config.RouteICS, config.RouteUpcoming} {
		resp := do(t, srv, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter))
	}
}

func TestUpdate_NilSnapshot(t *testing.T) {
	srv := NewCalendarServer("0")
	assert.NoError(t, srv.Update(nil))
	assert.Nil(t, srv.cache.Load())
}

// -----------------------------------------------------------------------------
// Concurrency Tests (Race Detection)
// -----------------------------------------------------------------------------

// TestServer_RaceCondition validates the thread-safety of atomic.Pointer usage.
// Run this with `go test -race`.
func TestServer_RaceCondition(t *testing.T) {
	srv := NewCalendarServer("0")
	handler := srv.Handler()
	var wg sync.WaitGroup

	end := time.Now().Add(500 * time.Millisecond)

	for w := 0; w < 5; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; time.Now().Before(end); i++ {
				_ = srv.Update(snapshot(fmt.Sprintf("VERSION:%d-%d", id, i)))
				time.Sleep(time.Microsecond)
			}
		}(w)
	}

	for r := 0; r < 20; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, config.RouteICS, nil))

				if w.Code != http.StatusOK && w.Code != http.StatusServiceUnavailable {
					t.Errorf("Unexpected status code during race test: %d", w.Code)
				}
			}
		}()
	}

	wg.Wait()
}

// -----------------------------------------------------------------------------
// Integration Tests (Real TCP Lifecycle)
// -----------------------------------------------------------------------------

func TestServer_Lifecycle(t *testing.T) {
	const port = "18099"

	srv := NewCalendarServer(port)
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- srv.Start(ctx)
	}()

	url := "http://127.0.0.1:" + port + config.RouteICS

	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 2*time.Second, 50*time.Millisecond, "Server failed to bind/listen in time")

	resp, err := http.Get(url)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()

	require.NoError(t, srv.Update(snapshot("BEGIN:VCALENDAR\nEND:VCALENDAR")))

	resp, err = http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "BEGIN:VCALENDAR")

	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err, "Server should shutdown gracefully without error")
	case <-time.After(5 * time.Second):
		t.Fatal("Server shutdown timed out")
	}
}

func TestServer_StartRejectsBadPort(t *testing.T) {
	for _, port := range []string{"", "abc", "70000"} {
		err := NewCalendarServer(port).Start(context.Background())
		assert.Error(t, err, port)
	}
}
