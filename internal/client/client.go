// Package client talks to the birthdays REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/tartampluch/birthdays/internal/calendar"
	"github.com/tartampluch/birthdays/internal/config"
)

// APIError is returned when the API answers with an unexpected status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %d %s", config.ErrAPIStatus, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client is a small HTTP client for the birthdays API.
// It is safe for concurrent use.
type Client struct {
	base *url.URL
	http *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New validates baseURL and returns a Client rooted at it.
// Only http and https are accepted.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %q", config.ErrProtocol, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%s: missing host", config.ErrInvalidURL)
	}

	c := &Client{
		base: u,
		http: &http.Client{Timeout: config.HTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// birthdayJSON is the wire form of a birthday record.
type birthdayJSON struct {
	ID        flexID `json:"id"`
	Name      string `json:"name"`
	BirthDate string `json:"birthdate"`
}

func (b birthdayJSON) record() calendar.Record {
	return calendar.Record{
		ID:        string(b.ID),
		Name:      b.Name,
		BirthDate: b.BirthDate,
	}
}

// createJSON is the request body of Add.
type createJSON struct {
	Name      string `json:"name"`
	BirthDate string `json:"birthdate"`
}

// flexID accepts both numeric and string identifiers.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = flexID(n.String())
	return nil
}

// List returns every stored birthday in API order.
// Birth dates are returned verbatim; they are validated when annotated.
func (c *Client) List(ctx context.Context) ([]calendar.Record, error) {
	resp, err := c.do(ctx, http.MethodGet, c.endpoint(), nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var payload []birthdayJSON
	if err := json.NewDecoder(io.LimitReader(resp.Body, config.MaxAPIResponseSize)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrAPIDecode, err)
	}

	records := make([]calendar.Record, len(payload))
	for i, b := range payload {
		records[i] = b.record()
	}
	return records, nil
}

// ListBirthdays lets the client act as a record source for the engine.
func (c *Client) ListBirthdays(ctx context.Context) ([]calendar.Record, error) {
	return c.List(ctx)
}

// Add validates nb and stores it. The returned record is the one echoed by
// the API, or nb itself when the API answers without a body.
func (c *Client) Add(ctx context.Context, nb NewBirthday) (calendar.Record, error) {
	name, birth, err := nb.normalize()
	if err != nil {
		return calendar.Record{}, err
	}

	body, err := json.Marshal(createJSON{Name: name, BirthDate: birth.String()})
	if err != nil {
		return calendar.Record{}, fmt.Errorf("%s: %w", config.ErrJSONEncode, err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.endpoint(), body)
	if err != nil {
		return calendar.Record{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return calendar.Record{}, c.statusError(resp)
	}

	created := birthdayJSON{Name: name, BirthDate: birth.String()}
	err = json.NewDecoder(io.LimitReader(resp.Body, config.MaxAPIResponseSize)).Decode(&created)
	if err != nil && !errors.Is(err, io.EOF) {
		return calendar.Record{}, fmt.Errorf("%s: %w", config.ErrAPIDecode, err)
	}

	slog.InfoContext(ctx, config.MsgRecordAdded,
		config.LogKeyComponent, config.CompClient,
		config.LogKeyID, string(created.ID),
		config.LogKeyName, created.Name,
	)
	return created.record(), nil
}

// Delete removes the birthday with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrIDRequired
	}

	resp, err := c.do(ctx, http.MethodDelete, c.endpoint(url.PathEscape(id)), nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusNoContent:
		slog.InfoContext(ctx, config.MsgRecordDeleted,
			config.LogKeyComponent, config.CompClient,
			config.LogKeyID, id,
		)
		return nil
	default:
		return c.statusError(resp)
	}
}

// endpoint resolves the birthdays collection, plus optional escaped
// segments, against the base URL.
func (c *Client) endpoint(segments ...string) *url.URL {
	return c.base.JoinPath(append([]string{config.APIPathBirthdays}, segments...)...)
}

func (c *Client) do(ctx context.Context, method string, u *url.URL, body []byte) (*http.Response, error) {
	// Query strings may carry tokens; only scheme, host and path are logged.
	safeURL := u.Scheme + "://" + u.Host + u.Path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrAPIRequest, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeJSON)
	if body != nil {
		req.Header.Set(config.HeaderContentType, config.MimeJSON)
	}

	slog.DebugContext(ctx, config.MsgAPIRequest,
		config.LogKeyComponent, config.CompClient,
		config.LogKeyMethod, method,
		config.LogKeyURL, safeURL,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrAPINetwork, err)
	}
	return resp, nil
}

func (c *Client) statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, config.MaxErrorBodySize))

	slog.Warn(config.MsgAPIStatus,
		config.LogKeyComponent, config.CompClient,
		config.LogKeyMethod, resp.Request.Method,
		config.LogKeyStatus, resp.StatusCode,
	)
	return &APIError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(data)),
	}
}
