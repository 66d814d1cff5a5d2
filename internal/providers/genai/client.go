package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Bhasvanth-Dev9380/ad-generator/internal/infra"
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client is a thin typed facade over the Gemini generateContent REST API.
// Callers assemble ordered parts (text and inline images) and optionally
// constrain the response to a JSON schema; the client translates to the wire
// format and normalizes candidates back into Response.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

// Part is one ordered element of a generation request: either text or an
// inline image payload, never both.
type Part struct {
	Text       string
	InlineMIME string
	InlineData []byte
}

// TextPart builds a text instruction part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// ImagePart builds an inline image part from raw bytes.
func ImagePart(mime string, data []byte) Part {
	return Part{InlineMIME: mime, InlineData: data}
}

// Schema is the subset of the Gemini response-schema vocabulary the service
// needs to constrain structured output.
type Schema struct {
	Type       string             `json:"type"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

// GenerateOptions carries per-call generation constraints.
type GenerateOptions struct {
	ResponseMIMEType string
	ResponseSchema   *Schema
}

// ResponsePart is a normalized candidate content part: text, inline image
// bytes, or neither (unsupported part kinds are carried empty).
type ResponsePart struct {
	Text       string
	InlineMIME string
	InlineData []byte
}

// Response holds the normalized candidate parts of one generateContent call.
type Response struct {
	Parts []ResponsePart
}

// FirstText returns the first non-blank text part, or "".
func (r *Response) FirstText() string {
	for _, p := range r.Parts {
		if strings.TrimSpace(p.Text) != "" {
			return p.Text
		}
	}
	return ""
}

// FirstInlineImage returns the first part carrying inline image bytes.
func (r *Response) FirstInlineImage() (mime string, data []byte, ok bool) {
	for _, p := range r.Parts {
		if len(p.InlineData) > 0 {
			return p.InlineMIME, p.InlineData, true
		}
	}
	return "", nil, false
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   *Schema `json:"responseSchema,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults. Callers may
// provide a nil HTTP client; a reusable one with a generation-sized timeout
// is created.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("genai: api key is required")
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.0-flash"
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
		model:      model,
		httpClient: client,
		logger:     logger,
	}, nil
}

// Model returns the configured Gemini model identifier.
func (c *Client) Model() string {
	return c.model
}

// GenerateContent performs one generateContent call with the given ordered
// parts. It is a single attempt: transport or API errors are returned, never
// retried.
func (c *Client) GenerateContent(ctx context.Context, parts []Part, opts *GenerateOptions) (*Response, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("genai: at least one part is required")
	}

	wireParts := make([]geminiPart, 0, len(parts))
	for _, p := range parts {
		if len(p.InlineData) > 0 {
			wireParts = append(wireParts, geminiPart{InlineData: &geminiInlineData{
				MimeType: p.InlineMIME,
				Data:     base64.StdEncoding.EncodeToString(p.InlineData),
			}})
			continue
		}
		wireParts = append(wireParts, geminiPart{Text: p.Text})
	}

	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: wireParts}},
	}
	if opts != nil && (opts.ResponseMIMEType != "" || opts.ResponseSchema != nil) {
		payload.GenerationConfig = &geminiGenerationConfig{
			ResponseMimeType: opts.ResponseMIMEType,
			ResponseSchema:   opts.ResponseSchema,
		}
	}

	var wireResp geminiGenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.model))
	if err := c.invoke(ctx, path, payload, &wireResp); err != nil {
		return nil, err
	}

	resp := &Response{}
	for _, candidate := range wireResp.Candidates {
		for _, part := range candidate.Content.Parts {
			normalized := ResponsePart{Text: part.Text}
			if part.InlineData != nil && part.InlineData.Data != "" {
				data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("genai: decode inline data: %w", err)
				}
				normalized.InlineMIME = part.InlineData.MimeType
				normalized.InlineData = data
			}
			resp.Parts = append(resp.Parts, normalized)
		}
	}

	c.logger.Debug().
		Str("model", c.model).
		Int("parts", len(resp.Parts)).
		Msg("genai: generateContent completed")

	return resp, nil
}

func (c *Client) invoke(ctx context.Context, path string, payload any, out any) error {
	endpoint := c.baseURL + path
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr geminiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}
