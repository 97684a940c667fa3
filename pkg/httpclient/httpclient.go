package httpclient

import (
	"net/http"
	"time"
)

// DefaultUserAgent identifies the scraper to GitHub.
const DefaultUserAgent = "pvescrape"

// NewGitHubClient creates an HTTP client for anonymous GitHub requests.
// A zero timeout leaves the deadline to the request context.
func NewGitHubClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &gitHubTransport{
			Base:      http.DefaultTransport,
			UserAgent: DefaultUserAgent,
		},
	}
}

// gitHubTransport is a RoundTripper that sets a User-Agent on requests without one.
type gitHubTransport struct {
	Base      http.RoundTripper
	UserAgent string
}

// RoundTrip implements the http.RoundTripper interface
func (t *gitHubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	req2 := req.Clone(req.Context())

	if req2.Header.Get("User-Agent") == "" && t.UserAgent != "" {
		req2.Header.Set("User-Agent", t.UserAgent)
	}

	return t.Base.RoundTrip(req2)
}
