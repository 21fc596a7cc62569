package httpadapter

import (
	"errors"
	"net/http"
	"time"
)

const (
	tlsHandshakeTimeout = 10 * time.Second
)

// Transport sets a browser-like User-Agent on every outgoing request.
// It never retries.
type Transport struct {
	Base      http.RoundTripper
	UserAgent string
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	r := req.Clone(req.Context())
	if r.Header.Get("User-Agent") == "" && t.UserAgent != "" {
		r.Header.Set("User-Agent", t.UserAgent)
	}

	return t.Base.RoundTrip(r)
}

// NewClient returns a client without a cookie jar whose requests are bounded
// by timeout. Slow headers count against timeout only.
func NewClient(timeout time.Duration, userAgent string) *http.Client {
	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		TLSHandshakeTimeout: tlsHandshakeTimeout,
	}

	return &http.Client{
		Transport: &Transport{Base: base, UserAgent: userAgent},
		Timeout:   timeout,
	}
}
