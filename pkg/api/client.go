// Package api talks to the gallery REST backend. Every response is a
// {success, data, message} envelope; failures come back as *TransportError or *Error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"atelier/pkg/bus"

	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

// TokenSource supplies the bearer token for each request
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed token, mostly for tests and one-shot commands
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// TokenFunc adapts a function to TokenSource
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Client is safe for concurrent use
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	bus     *bus.Bus
	log     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithBus makes 401 responses publish bus.AuthRequired with a retry of the request
func WithBus(b *bus.Bus) Option {
	return func(c *Client) { c.bus = b }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL is the API root requests are resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

type call struct {
	method string
	path   string
	query  url.Values
	body   any
	// quiet requests never raise AuthRequired; login and refresh report 401 to their caller
	quiet bool
}

func (r call) op() string {
	return r.method + " " + r.path
}

func (c *Client) do(ctx context.Context, r call, out any) error {
	var payload []byte
	if r.body != nil {
		var err error
		payload, err = json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encoding %s body: %w", r.op(), err)
		}
	}

	err := c.send(ctx, r, payload, out)
	if err != nil && !r.quiet && c.bus != nil && isUnauthorized(err) {
		c.bus.Publish(bus.AuthRequired{
			Reason: UserMessage(err),
			Retry: func(ctx context.Context) error {
				return c.do(ctx, r, nil)
			},
		})
	}
	return err
}

func (c *Client) send(ctx context.Context, r call, payload []byte, out any) error {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", r.op(), err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("op", r.op()), zap.Error(err))
		return &TransportError{Op: r.op(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: r.op(), Err: err}
	}
	c.log.Debug("request done",
		zap.String("op", r.op()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &Error{Kind: kindOf(resp.StatusCode), Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return &Error{Kind: KindServer, Status: resp.StatusCode, Message: "malformed response envelope"}
	}
	if !env.Success {
		return &Error{Kind: KindValidation, Status: resp.StatusCode, Message: env.Message}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &Error{Kind: KindServer, Status: resp.StatusCode, Message: fmt.Sprintf("decoding %s data: %v", r.op(), err)}
	}
	return nil
}

func isUnauthorized(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == KindUnauthorized
}

func pathID(prefix, id string, rest ...string) string {
	p := prefix + "/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}
