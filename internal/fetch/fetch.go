package fetch

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-logr/logr"

	"github.com/plugmgr/plugmgr/internal/branding"
)

// DefaultRetries is the number of retries after the first attempt.
const DefaultRetries = 2

// StatusError reports a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s returned status %d", e.URL, e.StatusCode)
}

// Fetcher downloads packages.
type Fetcher struct {
	httpClient *http.Client
	retries    uint64
	newBackOff func() backoff.BackOff
	log        logr.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithRetries sets how many times a transient failure is retried.
func WithRetries(n int) Option {
	return func(f *Fetcher) {
		if n < 0 {
			n = 0
		}
		f.retries = uint64(n)
	}
}

// WithBackOff sets the retry schedule. The function is called once per
// download.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(f *Fetcher) {
		f.newBackOff = fn
	}
}

// WithLogger sets the logger used to report retries.
func WithLogger(l logr.Logger) Option {
	return func(f *Fetcher) {
		f.log = l
	}
}

// New creates a Fetcher with the given options.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: http.DefaultClient,
		retries:    DefaultRetries,
		newBackOff: defaultBackOff,
		log:        logr.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 0
	return b
}

// IsURL reports whether source names a remote package (http:// or
// https://, any case).
func IsURL(source string) bool {
	s := strings.ToLower(strings.TrimSpace(source))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Download fetches url into destPath and returns the number of bytes
// written. The body is written to a temporary file next to destPath and
// renamed into place, so a failed download never leaves a partial package
// under the final name.
func (f *Fetcher) Download(url, destPath string) (int64, error) {
	var written int64
	attempt := 0
	op := func() error {
		attempt++
		n, err := f.get(url, destPath)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) && se.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		written = n
		return nil
	}
	notify := func(err error, wait time.Duration) {
		f.log.V(1).Info("retrying download", "url", url, "attempt", attempt, "wait", wait.String(), "error", err.Error())
	}

	b := backoff.WithMaxRetries(f.newBackOff(), f.retries)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return 0, fmt.Errorf("downloading %s: %w", url, err)
	}
	return written, nil
}

func (f *Fetcher) get(url, destPath string) (int64, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return 0, backoff.Permanent(fmt.Errorf("creating download request: %w", err))
	}
	req.Header.Set("User-Agent", branding.CLIName()+"-loader")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	tmp := destPath + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return 0, backoff.Permanent(fmt.Errorf("creating download file: %w", err))
	}
	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("writing download: %w", err)
	}
	if err := os.Rename(tmp, destPath); err != nil {
		os.Remove(tmp)
		return 0, backoff.Permanent(fmt.Errorf("moving download into place: %w", err))
	}
	return n, nil
}
