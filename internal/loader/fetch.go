package loader

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/kailas-cloud/docchat/internal/domain"
)

// maxFetchSize caps remote document bodies at 16MB.
const maxFetchSize = 16 << 20

// Fetcher downloads remote documents and extracts their text.
type Fetcher struct {
	loader *Loader
	client *http.Client
}

// NewFetcher creates a fetcher. client may be nil to use http.DefaultClient.
func NewFetcher(loader *Loader, client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{loader: loader, client: client}
}

// Fetch downloads url and extracts text based on the response content type.
// The URL itself becomes the document source.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return Document{}, fmt.Errorf("build request for %s: %w", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize+1))
	if err != nil {
		return Document{}, fmt.Errorf("read body of %s: %w", url, err)
	}
	if len(body) > maxFetchSize {
		return Document{}, fmt.Errorf("document %s exceeds %d bytes", url, maxFetchSize)
	}

	mediaType := responseMediaType(resp)
	switch {
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		doc, err := f.loader.loadHTML(url, body)
		if err != nil {
			return Document{}, err
		}
		return doc, nil
	case strings.HasPrefix(mediaType, "text/"):
		doc, err := f.loader.loadText(url, body)
		if err != nil {
			return Document{}, err
		}
		return doc, nil
	default:
		return Document{}, fmt.Errorf("content type %q: %w", mediaType, domain.ErrUnsupportedFormat)
	}
}

func responseMediaType(resp *http.Response) string {
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		return "text/plain"
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ct
	}
	return mediaType
}
