package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/brettbedarf/filetree"
)

// HTTPClient is the part of *http.Client a source needs
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPProvider builds sources that GET their contents from a URL
type HTTPProvider struct {
	client HTTPClient
}

func RegisterHTTP(r *Registry, client HTTPClient) {
	r.Register(HTTPSourceType, &HTTPProvider{client: client})
}

func (p *HTTPProvider) NewSource(cfg SourceConfig) (filetree.ContentSource, error) {
	raw := strings.TrimSpace(cfg.URL)
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", cfg.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid url %q: scheme must be http or https", cfg.URL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid url %q: missing host", cfg.URL)
	}
	if u.User != nil {
		return nil, fmt.Errorf("invalid url %q: user info not allowed; use headers", cfg.URL)
	}
	return &HTTPSource{url: u.String(), headers: cfg.Headers, client: p.client}, nil
}

// HTTPSource implements [filetree.ContentSource] for HTTP sources
type HTTPSource struct {
	url     string
	headers map[string]string
	client  HTTPClient
}

func (s *HTTPSource) URL() string {
	return s.url
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	// Add custom headers
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: unexpected status %s", s.url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
