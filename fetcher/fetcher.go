package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	// DefaultUserAgent is a desktop browser identification; some sites
	// refuse requests from obvious bots.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// DefaultTimeout bounds the whole request, body included.
	DefaultTimeout = 15 * time.Second
)

// Failure classes returned by Fetch. Callers match them with errors.Is.
var (
	ErrTimeout = errors.New("request timed out")
	ErrNetwork = errors.New("network error")
	ErrStatus  = errors.New("unexpected HTTP status")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s", e.StatusCode, e.Status)
}

func (e *StatusError) Unwrap() error {
	return ErrStatus
}

// Options configures a Fetcher. Zero values select the defaults.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Logger    *zap.Logger
}

// Fetcher downloads single pages. Every call is one attempt: no retries, no
// backoff.
type Fetcher struct {
	client *resty.Client
	log    *zap.Logger
}

// New creates a Fetcher with the given options.
func New(opts Options) *Fetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent)

	return &Fetcher{client: client, log: log}
}

// Fetch retrieves pageURL and returns its body decoded to text. The
// returned error wraps ErrTimeout, ErrNetwork or ErrStatus.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	f.log.Debug("fetching page", zap.String("url", pageURL))

	resp, err := f.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	if !resp.IsSuccess() {
		return "", &StatusError{StatusCode: resp.StatusCode(), Status: resp.Status()}
	}

	body := resp.Body()
	f.log.Debug("fetched page",
		zap.String("url", pageURL),
		zap.Int("status", resp.StatusCode()),
		zap.Int("bytes", len(body)),
	)

	return Decode(body, resp.Header().Get("Content-Type")), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
