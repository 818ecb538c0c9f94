package httpclient

import (
	"net/http"
	"time"
)

// DefaultUserAgent identifies the importer to feed hosts.
const DefaultUserAgent = "jansetu-feed-importer/1.0"

const maxRedirects = 10

// headerTransport sets fixed request headers before delegating.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return t.base.RoundTrip(req)
}

// NewClient creates an HTTP client that follows up to 10 redirects, gives
// up after timeout and sends a feed-friendly Accept header with userAgent.
// A zero timeout means no limit.
func NewClient(timeout time.Duration, userAgent string) *http.Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &headerTransport{
			base: http.DefaultTransport,
			headers: map[string]string{
				"User-Agent": userAgent,
				"Accept":     "application/atom+xml, application/rss+xml, application/xml;q=0.9, */*;q=0.8",
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}
