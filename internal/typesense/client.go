// Package typesense is the gateway to a Typesense server. It adapts the
// official typesense-go client to the dynamic JSON shapes the use cases work
// with and maps its failures onto the domain error taxonomy.
package typesense

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tsgo "github.com/typesense/typesense-go/v3/typesense"
	"go.uber.org/zap"

	"github.com/kailas-cloud/typesense-mcp/internal/domain"
	"github.com/kailas-cloud/typesense-mcp/internal/metrics"
)

// maxErrorBody bounds how much of an error response is kept as the message.
const maxErrorBody = 4096

// Config holds connection parameters for a Typesense node.
type Config struct {
	Host          string
	Port          int
	Protocol      string
	APIKey        string
	Timeout       time.Duration
	NumRetries    int
	RetryInterval time.Duration
}

// BaseURL returns protocol://host:port.
func (c Config) BaseURL() string {
	return fmt.Sprintf("%s://%s:%d", c.Protocol, c.Host, c.Port)
}

// Client talks to one Typesense node. It is safe for concurrent use.
type Client struct {
	ts      *tsgo.Client
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a gateway client. Retries and the connection timeout are
// handled by the underlying typesense-go client.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Host == "" {
		return nil, errors.New("typesense host is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("typesense api key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ts := tsgo.NewClient(
		tsgo.WithServer(strings.TrimRight(cfg.BaseURL(), "/")),
		tsgo.WithAPIKey(cfg.APIKey),
		tsgo.WithConnectionTimeout(cfg.Timeout),
		tsgo.WithNumRetries(max(cfg.NumRetries, 0)),
		tsgo.WithRetryInterval(cfg.RetryInterval),
	)
	return &Client{ts: ts, timeout: cfg.Timeout, logger: logger}, nil
}

// call runs one SDK operation, recording latency and outcome and mapping the
// error. Errors already classified by the domain pass through unchanged.
func (c *Client) call(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	metrics.EngineRequestDuration.WithLabelValues(op).Observe(elapsed.Seconds())

	if err == nil {
		metrics.EngineRequestsTotal.WithLabelValues(op, "ok").Inc()
		c.logger.Debug("engine request", zap.String("op", op), zap.Duration("latency", elapsed))
		return nil
	}

	mapped := classify(ctx, err)
	metrics.EngineRequestsTotal.WithLabelValues(op, statusLabel(mapped)).Inc()
	c.logger.Debug("engine request failed",
		zap.String("op", op),
		zap.Duration("latency", elapsed),
		zap.Error(err),
	)
	return &Error{Op: op, Err: mapped}
}

func classify(ctx context.Context, err error) error {
	var httpErr *tsgo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return domain.NewEngineError(httpErr.Status, errorMessage(httpErr.Body, http.StatusText(httpErr.Status)))
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, domain.ErrEngine), errors.Is(err, domain.ErrValidation):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrConnectivity, err)
	}
}

func statusLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrEngine):
		return "engine_error"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unreachable"
	}
}

// errorMessage extracts the engine's {"message": "..."} field, falling back
// to the raw body or the HTTP status text.
func errorMessage(body []byte, status string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return status
	}
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	return msg
}

// toAPI moves a dynamic JSON value into one of the SDK's typed request
// structs. Keys the SDK does not know are rejected instead of dropped.
func toAPI(src, dst any) error {
	if src == nil {
		src = map[string]any{}
	}
	data, err := json.Marshal(src)
	if err != nil {
		return domain.NewValidationError("encode engine request: %v", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.NewValidationError("unsupported engine parameters: %v", err)
	}
	return nil
}

// fromAPI turns a typed SDK response back into plain JSON values, keeping
// numbers as json.Number.
func fromAPI(src, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("%w: encode response: %w", domain.ErrEngine, err)
	}
	return fromJSON(data, dst)
}

func fromJSON(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrEngine, err)
	}
	return nil
}

// send calls an SDK method that takes one typed parameter struct, filling
// the struct from src.
func send[T, R any](ctx context.Context, src any, fn func(context.Context, *T) (R, error)) (R, error) {
	var in T
	if err := toAPI(src, &in); err != nil {
		var zero R
		return zero, err
	}
	return fn(ctx, &in)
}

// sendWith is send for SDK methods that take a payload before the parameter struct.
func sendWith[A, T, R any](
	ctx context.Context, arg A, src any, fn func(context.Context, A, *T) (R, error),
) (R, error) {
	var in T
	if err := toAPI(src, &in); err != nil {
		var zero R
		return zero, err
	}
	return fn(ctx, arg, &in)
}

// object runs op and converts its typed result into a JSON object.
func object[R any](ctx context.Context, c *Client, op string, fn func() (R, error)) (map[string]any, error) {
	var out map[string]any
	err := c.call(ctx, op, func() error {
		res, err := fn()
		if err != nil {
			return err
		}
		return fromAPI(res, &out)
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// list runs op and converts its typed result into a JSON array of objects.
func list[R any](ctx context.Context, c *Client, op string, fn func() (R, error)) ([]map[string]any, error) {
	var out []map[string]any
	err := c.call(ctx, op, func() error {
		res, err := fn()
		if err != nil {
			return err
		}
		return fromAPI(res, &out)
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []map[string]any{}
	}
	return out, nil
}
