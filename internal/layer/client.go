package layer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Failure reasons reported to a FetchObserver.
const (
	ReasonTransport = "transport"
	ReasonStatus    = "status"
	ReasonDecode    = "decode"
	ReasonExtract   = "extract"
)

// FetchObserver is notified of per-column fetch failures. Implementations
// must be safe for concurrent use; the fields of one snapshot are fetched in
// parallel.
type FetchObserver interface {
	FieldError(account, column, reason string)
}

// Config holds fetcher configuration.
type Config struct {
	BaseURL        string
	Denom          string
	RequestTimeout time.Duration
	UserAgent      string
}

// Client fetches field values from a Layer node's REST API. Every failure
// path resolves to an empty value, so a snapshot can always be assembled
// from whatever did arrive.
type Client struct {
	httpClient *http.Client
	baseURL    string
	denom      string
	userAgent  string
	observer   FetchObserver
}

// NewClient creates a REST fetcher, applying defaults for any zero field.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Denom == "" {
		cfg.Denom = DefaultDenom
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "layerwatch/0.4"
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		baseURL:   cfg.BaseURL,
		denom:     cfg.Denom,
		userAgent: cfg.UserAgent,
	}
}

// SetObserver registers a failure observer.
func (c *Client) SetObserver(obs FetchObserver) {
	c.observer = obs
}

// Fetch performs one GET for one field and returns the extracted value.
// It never fails past this boundary: transport errors, non-200 statuses,
// undecodable bodies and extractor misses each log their diagnostics and
// yield "", leaving the column empty for this cycle.
func (c *Client) Fetch(ctx context.Context, t Target, spec FieldSpec) string {
	url := spec.URL(c.baseURL, c.denom, t)

	// A cycle in flight runs to completion even if shutdown is requested;
	// the request timeout still bounds the call.
	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodGet, url, nil)
	if err != nil {
		c.fail(t, spec.Column, url, ReasonTransport, err, 0, nil)
		return ""
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.fail(t, spec.Column, url, ReasonTransport, err, 0, nil)
		return ""
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.fail(t, spec.Column, url, ReasonTransport, err, resp.StatusCode, nil)
		return ""
	}
	if resp.StatusCode != http.StatusOK {
		c.fail(t, spec.Column, url, ReasonStatus, fmt.Errorf("HTTP %d", resp.StatusCode), resp.StatusCode, body)
		return ""
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		c.fail(t, spec.Column, url, ReasonDecode, err, resp.StatusCode, body)
		return ""
	}

	value, err := spec.Extract(doc)
	if err != nil {
		c.fail(t, spec.Column, url, ReasonExtract, err, resp.StatusCode, body)
		return ""
	}

	log.Debug().
		Str("account", t.Name).
		Str("column", spec.Column).
		Str("endpoint", url).
		Int("status", resp.StatusCode).
		Str("value", value).
		Msg("Field fetched")

	return value
}

func (c *Client) fail(t Target, column, url, reason string, err error, status int, body []byte) {
	if c.observer != nil {
		c.observer.FieldError(t.Name, column, reason)
	}

	evt := log.Warn().
		Str("account", t.Name).
		Str("column", column).
		Str("endpoint", url).
		Str("reason", reason).
		Err(err)
	if status != 0 {
		evt = evt.Int("status", status)
	}
	if len(body) > 0 {
		evt = evt.Str("body", string(body))
	}
	evt.Msg("Field fetch failed")
}
