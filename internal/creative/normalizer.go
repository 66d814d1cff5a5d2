package creative

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/Bhasvanth-Dev9380/ad-generator/internal/domain"
)

// minImageBytes is the sanity floor for a fetched image body. Anything
// smaller is treated as an error page or truncated response.
const minImageBytes = 20

const defaultImageMIME = "image/png"

// NormalizedImage is the byte-accurate, MIME-typed product photo prepared
// for model submission. URL is the durable hosted location when one exists.
type NormalizedImage struct {
	Data []byte
	MIME string
	URL  string
}

// Fetcher retrieves remote images and normalizes them for the pipeline.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher builds a Fetcher. A nil client gets a default with a timeout;
// redirects are followed by the underlying client.
func NewFetcher(httpClient *http.Client) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{httpClient: httpClient}
}

// Fetch downloads an image URL and returns its normalized representation.
// Non-2xx responses map to domain.ErrFetchFailed and bodies under the sanity
// threshold to domain.ErrEmptyContent.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*NormalizedImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: status %d fetching %s", domain.ErrFetchFailed, resp.StatusCode, rawURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrFetchFailed, err)
	}
	if len(data) < minImageBytes {
		return nil, fmt.Errorf("%w: got %d bytes from %s", domain.ErrEmptyContent, len(data), rawURL)
	}

	return &NormalizedImage{
		Data: data,
		MIME: resolveMIME(resp.Header.Get("Content-Type"), rawURL),
		URL:  rawURL,
	}, nil
}

// NormalizeUpload wraps freshly uploaded bytes. The declared content type is
// trusted when present; the generic image default applies otherwise.
func NormalizeUpload(data []byte, contentType string) *NormalizedImage {
	mimeType := strings.TrimSpace(contentType)
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = defaultImageMIME
	}
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}
	return &NormalizedImage{Data: data, MIME: mimeType}
}

// resolveMIME prefers an image content-type header, then the URL's file
// extension, then the png default.
func resolveMIME(contentType, rawURL string) string {
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil && strings.HasPrefix(parsed, "image/") {
		return parsed
	}
	return mimeFromExtension(rawURL)
}

// extensionForMIME is the inverse of mimeFromExtension for upload names.
func extensionForMIME(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

func mimeFromExtension(rawURL string) string {
	ext := ""
	if u, err := url.Parse(rawURL); err == nil {
		ext = strings.ToLower(path.Ext(u.Path))
	} else {
		ext = strings.ToLower(path.Ext(rawURL))
	}
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return defaultImageMIME
	}
}
