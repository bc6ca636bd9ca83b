package keboola

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zhouzirui/z-fairytale/backend/internal/model/table"
)

const (
	tokenHeader    = "X-StorageApi-Token"
	defaultTimeout = 30 * time.Second
)

// Config 描述 Storage API 客户端配置
type Config struct {
	URL          string
	Token        string
	Timeout      time.Duration
	PollInterval time.Duration
}

// Client talks to the Keboola Storage API over HTTP.
type Client struct {
	base         *url.URL
	token        string
	pollInterval time.Duration
	httpClient   *http.Client
	logger       *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger 设置日志记录器
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient validates the credentials and builds a client. It performs no network call.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	base, token, err := resolveCredentials(cfg)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}

	c := &Client{
		base:         base,
		token:        token,
		pollInterval: poll,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WriteTable imports the table into tableID. incremental=false matches the storage default.
func (c *Client) WriteTable(ctx context.Context, tableID string, t *table.Table, incremental bool) error {
	data, err := t.MarshalCSV()
	if err != nil {
		return fmt.Errorf("encode table: %w", err)
	}

	form := url.Values{}
	form.Set("dataString", string(data))
	form.Set("incremental", boolParam(incremental))

	req, err := c.newRequest(ctx, http.MethodPost, tablePath(tableID, "import"), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		ImportedRowsCount int `json:"importedRowsCount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil && !errors.Is(err, io.EOF) {
		c.logger.Warn("failed to decode import response", zap.String("table", tableID), zap.Error(err))
	}

	c.logger.Info("table imported",
		zap.String("table", tableID),
		zap.Int("rows", t.Len()),
		zap.Int("imported", result.ImportedRowsCount),
		zap.Bool("incremental", incremental),
	)
	return nil
}

// Ping verifies the token against the API.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/v2/storage/tokens/verify", nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("build request path: %w", err)
	}
	endpoint := c.base.JoinPath(ref.Path)
	endpoint.RawQuery = ref.RawQuery

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(tokenHeader, c.token)
	req.Header.Set("Accept", "application/json, text/csv")
	return req, nil
}

// do sends the request and turns non-2xx responses into *APIError.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}
	return resp, nil
}

func tablePath(tableID string, action ...string) string {
	p := "/v2/storage/tables/" + url.PathEscape(tableID)
	for _, a := range action {
		p += "/" + a
	}
	return p
}

func boolParam(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
