package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hpungsan/lectio/internal/config"
)

// Dataset names one of the three remote JSON documents.
type Dataset string

const (
	DatasetTitles   Dataset = "titles"
	DatasetHeadings Dataset = "headings"
	DatasetBody     Dataset = "body"
)

// Source fetches the raw bytes of a dataset.
type Source interface {
	Fetch(ctx context.Context, d Dataset) ([]byte, error)
}

// HTTPSource fetches datasets with plain GET requests.
type HTTPSource struct {
	client  *http.Client
	baseURL string
	paths   map[Dataset]string
}

// NewHTTPSource builds a source from the configured base URL and paths.
// The client timeout is only set when http_timeout_seconds is configured.
func NewHTTPSource(cfg *config.Config) *HTTPSource {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &HTTPSource{
		client:  &http.Client{Timeout: cfg.HTTPTimeout()},
		baseURL: strings.TrimRight(cfg.SourceBaseURL, "/"),
		paths: map[Dataset]string{
			DatasetTitles:   cfg.TitlesPath,
			DatasetHeadings: cfg.HeadingsPath,
			DatasetBody:     cfg.BodyPath,
		},
	}
}

// URL returns the absolute URL for d.
func (s *HTTPSource) URL(d Dataset) string {
	path := s.paths[d]
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.baseURL + path
}

// Fetch performs GET on the dataset URL. Any non-2xx status is an error.
func (s *HTTPSource) Fetch(ctx context.Context, d Dataset) ([]byte, error) {
	if _, ok := s.paths[d]; !ok {
		return nil, fmt.Errorf("unknown dataset %q", d)
	}
	url := s.URL(d)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
