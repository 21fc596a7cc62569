package httpadapter

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientSetsUserAgent(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.UserAgent())
	}))
	defer srv.Close()

	c := NewClient(time.Second, "Mozilla/5.0 test")
	resp, err := c.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, "Mozilla/5.0 test", got.Load())
	require.Nil(t, c.Jar)
}

func TestClientKeepsCallerUserAgent(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.UserAgent())
	}))
	defer srv.Close()

	c := NewClient(time.Second, "Mozilla/5.0 test")
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom")

	resp, err := c.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, "custom", got.Load())
}

func TestClientDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(50*time.Millisecond, "ua")
	_, err := c.Get(srv.URL)
	require.Error(t, err)
	require.EqualValues(t, 1, calls.Load())
}

func TestClientTimeoutCoversHeaders(t *testing.T) {
	c := NewClient(20*time.Second, "")
	require.Equal(t, 20*time.Second, c.Timeout)

	tr, ok := c.Transport.(*Transport)
	require.True(t, ok)
	base, ok := tr.Base.(*http.Transport)
	require.True(t, ok)
	require.Zero(t, base.ResponseHeaderTimeout)
}
