// Package supabase talks to a Supabase project: PostgREST for row access and
// the realtime websocket for change notifications.
package supabase

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
	"time"

	"github.com/Subha2009/kamun-software/internal/ports"
	"github.com/gorilla/websocket"
)

const (
	restPath           = "/rest/v1/"
	realtimePath       = "/realtime/v1/websocket"
	defaultSchema      = "public"
	defaultTimeout     = 10 * time.Second
	defaultHeartbeat   = 25 * time.Second
	minReconnectDelay  = time.Second
	maxReconnectDelay  = 30 * time.Second
	maxErrorBodyLength = 4 << 10
)

type Config struct {
	URL       string
	Key       string
	Schema    string
	Timeout   time.Duration
	Heartbeat time.Duration
}

type Client struct {
	baseURL   *url.URL
	key       string
	schema    string
	http      *http.Client
	dialer    *websocket.Dialer
	heartbeat time.Duration
	logger    *slog.Logger
}

var _ ports.RemoteStore = (*Client)(nil)

type APIError struct {
	Method string
	Table  string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase %s %s: status %d: %s", e.Method, e.Table, e.Status, e.Body)
}

func New(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.URL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse supabase url: %w", err)
	}
	if base.Scheme != "https" && base.Scheme != "http" {
		return nil, fmt.Errorf("unsupported supabase url scheme %q", base.Scheme)
	}
	if strings.TrimSpace(cfg.Key) == "" {
		return nil, errors.New("supabase key is required")
	}

	if cfg.Schema == "" {
		cfg.Schema = defaultSchema
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = defaultHeartbeat
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:   base,
		key:       cfg.Key,
		schema:    cfg.Schema,
		http:      httpClient,
		dialer:    &websocket.Dialer{HandshakeTimeout: cfg.Timeout, Proxy: http.ProxyFromEnvironment},
		heartbeat: cfg.Heartbeat,
		logger:    logger.With("component", "supabase"),
	}, nil
}

func (c *Client) Select(ctx context.Context, collection ports.Collection, filter ports.Filter) ([]json.RawMessage, error) {
	query := filterQuery(filter)
	query.Set("select", "*")
	return c.do(ctx, http.MethodGet, collection, query, nil, "")
}

func (c *Client) Insert(ctx context.Context, collection ports.Collection, records []json.RawMessage) ([]json.RawMessage, error) {
	if len(records) == 0 {
		return nil, nil
	}
	return c.do(ctx, http.MethodPost, collection, url.Values{}, records, "return=representation")
}

func (c *Client) Update(ctx context.Context, collection ports.Collection, filter ports.Filter, patch ports.Patch) ([]json.RawMessage, error) {
	return c.do(ctx, http.MethodPatch, collection, filterQuery(filter), patch, "return=representation")
}

func (c *Client) Delete(ctx context.Context, collection ports.Collection, filter ports.Filter) error {
	_, err := c.do(ctx, http.MethodDelete, collection, filterQuery(filter), nil, "return=minimal")
	return err
}

func (c *Client) do(ctx context.Context, method string, collection ports.Collection, query url.Values, body any, prefer string) ([]json.RawMessage, error) {
	endpoint := *c.baseURL
	endpoint.Path = strings.TrimRight(endpoint.Path, "/") + restPath + string(collection)
	endpoint.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", collection, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", collection, err)
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Profile", c.schema)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Content-Profile", c.schema)
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLength))
		return nil, &APIError{Method: method, Table: string(collection), Status: resp.StatusCode, Body: strings.TrimSpace(string(detail))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", collection, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", collection, err)
	}

	return rows, nil
}

func filterQuery(filter ports.Filter) url.Values {
	query := url.Values{}
	for field, value := range filter {
		query.Set(field, "eq."+ports.FormatValue(value))
	}
	return query
}

func (c *Client) realtimeURL() string {
	endpoint := *c.baseURL
	if endpoint.Scheme == "https" {
		endpoint.Scheme = "wss"
	} else {
		endpoint.Scheme = "ws"
	}
	endpoint.Path = strings.TrimRight(endpoint.Path, "/") + realtimePath
	endpoint.RawQuery = url.Values{"apikey": {c.key}, "vsn": {"1.0.0"}}.Encode()
	return endpoint.String()
}
