package imghost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Bhasvanth-Dev9380/ad-generator/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("imghost: api key is required")

// Options configures the image host client.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client performs HTTP calls to an imgbb-compatible image hosting API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

type uploadResponse struct {
	Data struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
		DeleteURL  string `json:"delete_url"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Error   struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.imgbb.com/1"
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Upload submits an image payload (base64 body or a data-URL with its prefix
// already stripped by the caller) under the given file name and returns the
// hosted URL.
func (c *Client) Upload(ctx context.Context, payload, fileName string) (string, error) {
	if strings.TrimSpace(payload) == "" {
		return "", fmt.Errorf("imghost: payload is required")
	}

	form := url.Values{}
	form.Set("key", c.apiKey)
	form.Set("image", payload)
	if fileName != "" {
		form.Set("name", fileName)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("imghost: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("imghost: upload: %w", err)
	}
	defer resp.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("imghost: decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !out.Success {
		msg := out.Error.Message
		if msg == "" {
			msg = "upload rejected"
		}
		return "", fmt.Errorf("imghost: status %d: %s", resp.StatusCode, msg)
	}

	hosted := out.Data.URL
	if hosted == "" {
		hosted = out.Data.DisplayURL
	}
	if hosted == "" {
		return "", fmt.Errorf("imghost: response carried no url")
	}

	c.logger.Debug().
		Str("file_name", fileName).
		Msg("imghost: upload completed")

	return hosted, nil
}
