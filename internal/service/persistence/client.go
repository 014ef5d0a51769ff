package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	applog "github.com/janisto/huma-hashchain/internal/platform/logging"
)

const (
	// DefaultAddr is used when no persistence address is configured.
	DefaultAddr = "localhost:8081"
	// DefaultTimeout bounds a single counter fetch.
	DefaultTimeout = 5 * time.Second

	userAgent    = "huma-hashchain"
	maxBodyBytes = 64 << 10
)

// Client implements Service against a counter service over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the counter service URL, e.g. "http://localhost:8081".
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithAddr sets the counter service from a host:port address.
func WithAddr(addr string) Option {
	return WithBaseURL(BaseURL(addr))
}

// NewClient creates a counter client. A nil httpClient gets one bounded by DefaultTimeout.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    BaseURL(DefaultAddr),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL turns a host:port address into an http URL. Addresses that already
// carry a scheme are returned unchanged.
func BaseURL(addr string) string {
	addr = strings.TrimRight(strings.TrimSpace(addr), "/")
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	return "http://" + addr
}

type counterBody struct {
	Data *uint64 `json:"data"`
}

// Next issues GET / against the counter service and returns its data value.
func (c *Client) Next(ctx context.Context) (uint64, error) {
	resp, err := c.doRequest(ctx)
	if err != nil {
		return 0, &UpstreamError{
			Kind:    UpstreamErrorKindUnavailable,
			Timeout: isTimeout(err),
			cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		reason := reasonPhrase(resp)
		applog.LogWarn(ctx, "persistence store error status",
			zap.Int("status", resp.StatusCode),
			zap.String("reason", reason),
		)
		return 0, &UpstreamError{
			Kind:   UpstreamErrorKindStatus,
			Status: resp.StatusCode,
			Reason: reason,
		}
	}

	v, err := decodeValue(resp.Body)
	if err != nil {
		return 0, &UpstreamError{Kind: UpstreamErrorKindMalformed, Status: resp.StatusCode, cause: err}
	}
	return v, nil
}

func (c *Client) doRequest(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
		req.Header.Set(chimiddleware.RequestIDHeader, reqID)
	}
	if tp := applog.TraceparentFromContext(ctx); tp != "" {
		req.Header.Set(applog.TraceparentHeader, tp)
	}
	return c.httpClient.Do(req)
}

func decodeValue(r io.Reader) (uint64, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil {
		return 0, fmt.Errorf("reading body: %w", err)
	}
	var body counterBody
	if err := json.Unmarshal(data, &body); err != nil {
		return 0, fmt.Errorf("decoding body: %w", err)
	}
	if body.Data == nil {
		return 0, errors.New(`missing "data" field`)
	}
	return *body.Data, nil
}

// reasonPhrase returns the upstream status line's reason, falling back to the standard text.
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Compile-time interface check
var _ Service = (*Client)(nil)
