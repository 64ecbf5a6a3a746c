package europepmc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// ListSource supplies the compressed candidate identifier list.
type ListSource interface {
	CandidateList(ctx context.Context) (io.ReadCloser, error)
}

// ArticleSource supplies parsed full-text documents.
// FetchArticle returns an error wrapping ErrNotAvailable when the repository has
// no full text for id, and one wrapping ErrMalformed when the XML does not parse.
type ArticleSource interface {
	FetchArticle(ctx context.Context, id string) (*Document, error)
}

// Source is the archive the harvester reads from.
type Source interface {
	ListSource
	ArticleSource
}

// Client is an HTTP client for the Europe PMC REST and archive services.
type Client struct {
	client     *http.Client
	articleURL string
	archiveURL string
	userAgent  string
}

// NewClient creates a client for the endpoints in cfg.
func NewClient(cfg *Config) *Client {
	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout(),
		},
		articleURL: cfg.EuropePMC.RestArticles.RootURL,
		archiveURL: cfg.EuropePMC.ArchiveAPI.RootURL,
		userAgent:  cfg.Harvest.UserAgent,
	}
}

// CandidateList fetches the gzip-compressed list of PMC identifiers.
// The caller must close the returned body.
func (c *Client) CandidateList(ctx context.Context) (io.ReadCloser, error) {
	resp, err := c.get(ctx, c.archiveURL)
	if err != nil {
		return nil, fmt.Errorf("fetch archive: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch archive: %w: %s", ErrUnexpectedStatus, resp.Status)
	}
	return resp.Body, nil
}

// FetchArticle fetches and parses the full-text XML for id. The request is
// issued once; there are no retries.
func (c *Client) FetchArticle(ctx context.Context, id string) (*Document, error) {
	resp, err := c.get(ctx, FullTextURL(c.articleURL, id))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: %w: %s", id, ErrNotAvailable, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", id, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("fetch %s: %w: empty response", id, ErrNotAvailable)
	}

	doc, err := ParseDocument(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", id, err)
	}
	if !doc.HasBody() {
		return nil, fmt.Errorf("%s: %w: no body", id, ErrNotAvailable)
	}
	return doc, nil
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	return c.client.Do(req)
}
