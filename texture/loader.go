package texture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	// Register decoders for the supported formats. AVIF passes the
	// extension allow-list but has no registered decoder; its decode
	// failure maps to ErrUnsupportedFormat, which is not retried.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/scrawlkit/scrawl/recovery"
)

// supportedExtensions is the fixed format allow-list, checked before any
// network request is attempted.
var supportedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".webp": true,
	".avif": true,
}

// Loader defaults.
const (
	DefaultLoadTimeout = 10 * time.Second
	DefaultMaxRetries  = 2
	DefaultBaseDelay   = 200 * time.Millisecond
	DefaultMaxDelay    = 5 * time.Second
)

// Fetcher retrieves raw asset bytes. The default implementation uses
// net/http; tests substitute counting or failing fetchers.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Loader fetches and decodes texture images with a format allow-list,
// a per-attempt timeout, and retry with exponential backoff.
type Loader struct {
	fetcher Fetcher
	timeout time.Duration
	policy  recovery.Policy
	log     *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f Fetcher) LoaderOption {
	return func(l *Loader) { l.fetcher = f }
}

// WithTimeout sets the per-attempt load timeout.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) { l.timeout = d }
}

// WithRetries sets the retry count and backoff base delay.
func WithRetries(maxRetries int, baseDelay time.Duration) LoaderOption {
	return func(l *Loader) {
		l.policy.MaxRetries = maxRetries
		l.policy.BaseDelay = baseDelay
	}
}

// WithLoaderLogger sets the loader's logger.
func WithLoaderLogger(log *slog.Logger) LoaderOption {
	return func(l *Loader) { l.log = log }
}

// NewLoader creates a loader with default timeout and retry policy.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		fetcher: &httpFetcher{client: &http.Client{}},
		timeout: DefaultLoadTimeout,
		policy: recovery.Policy{
			MaxRetries: DefaultMaxRetries,
			BaseDelay:  DefaultBaseDelay,
			MaxDelay:   DefaultMaxDelay,
			Retryable:  retryable,
		},
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadImage fetches and decodes the image at url. The extension is
// validated against the allow-list before any network request; failures
// after that are retried with exponential backoff up to the configured
// limit, each attempt bounded by the load timeout.
func (l *Loader) LoadImage(ctx context.Context, url string) (image.Image, error) {
	if err := ValidateFormat(url); err != nil {
		return nil, err
	}

	attempt := 0
	result := recovery.Retry(ctx, l.policy, func(ctx context.Context) recovery.Result[image.Image] {
		attempt++
		img, err := l.loadOnce(ctx, url)
		if err != nil {
			l.log.Warn("texture load attempt failed", "url", url, "attempt", attempt, "error", err)
			return recovery.Fail[image.Image](err)
		}
		return recovery.Ok(img)
	})
	img, err := result.Unpack()
	if err != nil {
		return nil, fmt.Errorf("texture: load %s after %d attempts: %w", url, attempt, err)
	}
	return img, nil
}

// loadOnce performs a single fetch+decode attempt under the load timeout.
func (l *Loader) loadOnce(ctx context.Context, url string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	data, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, ErrEmptyImage
	}
	return img, nil
}

// ValidateFormat checks the url's extension against the allow-list.
func ValidateFormat(url string) error {
	ext := strings.ToLower(path.Ext(url))
	if !supportedExtensions[ext] {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return nil
}

// retryable classifies load errors: template-not-found and network
// failures retry; unsupported-format never does.
func retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrUnsupportedFormat):
		return false
	case errors.Is(err, ErrEmptyImage):
		return false
	default:
		return true
	}
}

// httpFetcher is the production Fetcher.
type httpFetcher struct {
	client *http.Client
}

func (f *httpFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("texture: build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrLoadFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrLoadFailed, err)
	}
	return data, nil
}
