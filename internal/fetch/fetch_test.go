package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const body = "5.1,3.5,1.4,0.2,Iris-setosa\n4.9,3.0,1.4,0.2,Iris-setosa\n"

func fastFetcher() *Fetcher {
	return New(Options{
		Timeout:          5 * time.Second,
		RetryMaxAttempts: 3,
		RetryBaseDelay:   time.Millisecond,
		RetryMaxDelay:    5 * time.Millisecond,
	})
}

func sequenceServer(t *testing.T, statuses ...int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		i := int(atomic.AddInt32(&calls, 1)) - 1
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		st := statuses[i]
		w.WriteHeader(st)
		if st == http.StatusOK {
			_, _ = w.Write([]byte(body))
			return
		}
		_, _ = w.Write([]byte("nope"))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestDownload_WritesBodyVerbatim(t *testing.T) {
	srv, calls := sequenceServer(t, http.StatusOK)
	path := filepath.Join(t.TempDir(), "data", "iris.data")

	n, err := fastFetcher().Download(context.Background(), srv.URL, path)
	require.NoError(t, err)
	assert.Equal(t, len(body), n)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestGet_RetriesServerErrors(t *testing.T) {
	srv, calls := sequenceServer(t, http.StatusServiceUnavailable, http.StatusTooManyRequests, http.StatusOK)

	got, err := fastFetcher().Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestGet_ClientErrorIsNotRetried(t *testing.T) {
	srv, calls := sequenceServer(t, http.StatusNotFound, http.StatusOK)

	_, err := fastFetcher().Get(context.Background(), srv.URL)
	var serr *StatusError
	require.True(t, errors.As(err, &serr), "got %v", err)
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)
	assert.Equal(t, "nope", serr.Body)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestGet_GivesUpAfterMaxAttempts(t *testing.T) {
	srv, calls := sequenceServer(t, http.StatusBadGateway)

	_, err := fastFetcher().Get(context.Background(), srv.URL)
	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.True(t, serr.Retryable())
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestGet_UnreachableIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := fastFetcher().Get(context.Background(), url)
	var nerr *NetworkError
	require.True(t, errors.As(err, &nerr), "got %T: %v", err, err)
	assert.Equal(t, url, nerr.URL)
}

func TestDownload_FailureLeavesNoFile(t *testing.T) {
	srv, _ := sequenceServer(t, http.StatusForbidden)
	path := filepath.Join(t.TempDir(), "iris.data")

	_, err := fastFetcher().Download(context.Background(), srv.URL, path)
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGet_CanceledContext(t *testing.T) {
	srv, _ := sequenceServer(t, http.StatusOK)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fastFetcher().Get(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDownload_RejectsOversizedBody(t *testing.T) {
	srv, calls := sequenceServer(t, http.StatusOK)
	path := filepath.Join(t.TempDir(), "iris.data")
	f := New(Options{RetryMaxAttempts: 3, RetryBaseDelay: time.Millisecond, MaxBodyBytes: int64(len(body)) - 1})

	_, err := f.Download(context.Background(), srv.URL, path)
	require.ErrorIs(t, err, ErrBodyTooLarge)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls), "an oversized body is not retried")
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	f = New(Options{MaxBodyBytes: int64(len(body))})
	got, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}
