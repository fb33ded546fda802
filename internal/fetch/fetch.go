// Package fetch downloads a dataset over HTTP and stores the body verbatim.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/KaramelBytes/tabstat-cli/internal/utils"
	"github.com/sirupsen/logrus"
)

// DefaultURL is the UCI Iris data file.
const DefaultURL = "https://archive.ics.uci.edu/ml/machine-learning-databases/iris/iris.data"

// DefaultMaxBodyBytes caps a download unless Options.MaxBodyBytes says otherwise.
const DefaultMaxBodyBytes = 64 << 20

// Fetcher performs GET requests with a timeout and bounded retries.
type Fetcher struct {
	httpClient       *http.Client
	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	maxBodyBytes     int64
	log              logrus.FieldLogger
}

// Options configures a Fetcher. Zero values fall back to defaults.
type Options struct {
	Timeout          time.Duration
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration
	// MaxBodyBytes rejects larger responses with ErrBodyTooLarge.
	MaxBodyBytes int64
	Logger       logrus.FieldLogger
}

// New returns a Fetcher with defaults applied: 60s timeout, 3 attempts, 500ms base backoff
// capped at 4s, 64 MiB body limit.
func New(opt Options) *Fetcher {
	if opt.Timeout <= 0 {
		opt.Timeout = 60 * time.Second
	}
	if opt.RetryMaxAttempts <= 0 {
		opt.RetryMaxAttempts = 3
	}
	if opt.RetryBaseDelay <= 0 {
		opt.RetryBaseDelay = 500 * time.Millisecond
	}
	if opt.RetryMaxDelay <= 0 {
		opt.RetryMaxDelay = 4 * time.Second
	}
	if opt.MaxBodyBytes <= 0 {
		opt.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opt.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opt.Logger = l
	}
	return &Fetcher{
		httpClient:       &http.Client{Timeout: opt.Timeout},
		retryMaxAttempts: opt.RetryMaxAttempts,
		retryBaseDelay:   opt.RetryBaseDelay,
		retryMaxDelay:    opt.RetryMaxDelay,
		maxBodyBytes:     opt.MaxBodyBytes,
		log:              opt.Logger,
	}
}

// Download GETs url and atomically writes the body to path. It returns the number of bytes
// written.
func (f *Fetcher) Download(ctx context.Context, url, path string) (int, error) {
	body, err := f.Get(ctx, url)
	if err != nil {
		return 0, err
	}
	if err := utils.SafeWriteFile(path, body); err != nil {
		return 0, fmt.Errorf("save dataset: %w", err)
	}
	return len(body), nil
}

// Get returns the response body of url. Transport failures, 429 and 5xx responses are retried
// with exponential backoff and jitter; other statuses fail immediately.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	backoff := f.retryBaseDelay
	var lastErr error
	for attempt := 1; attempt <= f.retryMaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		body, err := f.once(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(err) || attempt == f.retryMaxAttempts {
			break
		}
		sleep := withJitter(backoff)
		if sleep > f.retryMaxDelay {
			sleep = f.retryMaxDelay
		}
		f.log.WithFields(logrus.Fields{"attempt": attempt, "max": f.retryMaxAttempts, "wait": sleep}).
			Warnf("fetch failed, retrying: %v", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
		backoff *= 2
	}
	return nil, lastErr
}

func (f *Fetcher) once(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: string(b)}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, fmt.Errorf("fetch %s: %w (limit %d bytes)", url, ErrBodyTooLarge, f.maxBodyBytes)
	}
	return body, nil
}

func retryable(err error) bool {
	var serr *StatusError
	if errors.As(err, &serr) {
		return serr.Retryable()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var nerr *NetworkError
	return errors.As(err, &nerr)
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 500 * time.Millisecond
	}
	// jitter factor in [0.8, 1.2)
	f := 0.8 + rand.Float64()*0.4
	out := time.Duration(float64(d) * f)
	if out <= 0 {
		return d
	}
	return out
}
