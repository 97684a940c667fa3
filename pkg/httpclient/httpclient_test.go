package httpclient

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGitHubTransportUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.Header.Get("User-Agent")))
	}))
	defer server.Close()

	tests := []struct {
		name      string
		userAgent string
		want      string
	}{
		{
			name: "default user agent",
			want: DefaultUserAgent,
		},
		{
			name:      "existing user agent preserved",
			userAgent: "custom/1.0",
			want:      "custom/1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest("GET", server.URL, nil)
			if err != nil {
				t.Fatalf("Failed to create request: %v", err)
			}
			if tt.userAgent != "" {
				req.Header.Set("User-Agent", tt.userAgent)
			}

			resp, err := NewGitHubClient(time.Second).Do(req)
			if err != nil {
				t.Fatalf("client.Do() error = %v", err)
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if string(body) != tt.want {
				t.Errorf("User-Agent = %v, want %v", string(body), tt.want)
			}
		})
	}
}

func TestGitHubTransportDoesNotMutateRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	req, err := http.NewRequest("GET", server.URL, nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := NewGitHubClient(time.Second).Do(req)
	if err != nil {
		t.Fatalf("client.Do() error = %v", err)
	}
	resp.Body.Close()

	if ua := req.Header.Get("User-Agent"); ua != "" {
		t.Errorf("original request was modified: User-Agent = %v", ua)
	}
}

func TestNewGitHubClient(t *testing.T) {
	client := NewGitHubClient(3 * time.Second)
	if client == nil {
		t.Fatal("NewGitHubClient() returned nil")
	}
	if client.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want %v", client.Timeout, 3*time.Second)
	}

	transport, ok := client.Transport.(*gitHubTransport)
	if !ok {
		t.Fatal("NewGitHubClient() did not set gitHubTransport")
	}
	if transport.Base != http.DefaultTransport {
		t.Error("gitHubTransport.Base is not http.DefaultTransport")
	}
}
