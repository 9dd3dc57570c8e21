// Package datasource fetches NearByTask collections from the admin REST API.
package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nearbytask/admin-dashboard/components/listing"
)

// HTTPConfig configures the backend client.
type HTTPConfig struct {
	BaseURL    string
	Session    SessionProvider
	HTTPClient *http.Client
	Timeout    time.Duration
}

// HTTPClient talks to the NearByTask backend. Every call carries the
// session's bearer token.
type HTTPClient struct {
	baseURL string
	session SessionProvider
	client  *http.Client
}

// FetchRequest names one collection endpoint.
type FetchRequest struct {
	Path       string
	Collection string
	// Month is passed through as the month query parameter when set.
	Month string
}

// Fetcher returns the raw items of a collection.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) ([]json.RawMessage, error)
}

var errUnsuccessful = errors.New("datasource: backend reported failure")

// NewHTTPClient builds a client for the given base url.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("datasource: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	session := cfg.Session
	if session == nil {
		session = StaticSession("")
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		session: session,
		client:  httpClient,
	}, nil
}

// Fetch GETs req.Path and unwraps the collection from either
// {<collection>: [...]} or {success, <collection>: [...]}. A missing
// collection key yields an empty result.
func (c *HTTPClient) Fetch(ctx context.Context, req FetchRequest) ([]json.RawMessage, error) {
	if req.Collection == "" {
		return nil, fmt.Errorf("datasource: collection is required for %s", req.Path)
	}
	path, err := withMonth(req.Path, req.Month)
	if err != nil {
		return nil, &listing.Error{Kind: listing.KindValidation, Op: "datasource.fetch", Err: err}
	}
	var envelope map[string]json.RawMessage
	if err := c.Do(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	if raw, ok := envelope["success"]; ok {
		var success bool
		if err := json.Unmarshal(raw, &success); err == nil && !success {
			return nil, &listing.Error{Kind: listing.KindFetch, Op: "datasource.fetch", Err: fmt.Errorf("%w: %s", errUnsuccessful, envelopeMessage(envelope))}
		}
	}
	raw, ok := envelope[req.Collection]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return []json.RawMessage{}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &listing.Error{Kind: listing.KindFetch, Op: "datasource.fetch", Err: fmt.Errorf("decode %s: %w", req.Collection, err)}
	}
	return items, nil
}

// withMonth merges the month filter into any query the path already carries.
func withMonth(path, month string) (string, error) {
	if month == "" {
		return path, nil
	}
	u, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", path, err)
	}
	q := u.Query()
	q.Set("month", month)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Do performs an authenticated JSON request. A nil payload sends no body.
// Non-2xx statuses become *listing.Error classified by status.
func (c *HTTPClient) Do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("datasource: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("datasource: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := c.session.Token(ctx)
	if err != nil {
		return &listing.Error{Kind: listing.KindForbidden, Op: "datasource.session", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return &listing.Error{Kind: listing.KindFetch, Op: "datasource.request", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(io.LimitReader(resp.Body, 4096))
		return &listing.Error{
			Kind:   listing.Classify(resp.StatusCode),
			Op:     method + " " + path,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("remote error: %s", strings.TrimSpace(buf.String())),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &listing.Error{Kind: listing.KindFetch, Op: method + " " + path, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func envelopeMessage(envelope map[string]json.RawMessage) string {
	for _, key := range []string{"message", "error"} {
		var msg string
		if raw, ok := envelope[key]; ok && json.Unmarshal(raw, &msg) == nil && msg != "" {
			return msg
		}
	}
	return "success=false"
}
