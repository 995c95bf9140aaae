// Package gemini talks to the Gemini generateContent REST endpoint. It
// sends either a raw file as inline binary or locally extracted text, and
// returns the model's free-form answer. Caching is the caller's concern.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"golang.org/x/time/rate"

	"github.com/rinomina/facile/internal/core/domain"
	"github.com/rinomina/facile/internal/core/ports"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-1.5-flash"

	// One blocking round trip, no retry; a slow call just waits this out.
	requestTimeout = 60 * time.Second
)

type Client struct {
	baseURL    string
	model      string
	keys       ports.APIKeySource
	httpClient *http.Client
	limiter    *rate.Limiter
}

type Option func(*Client)

// WithBaseURL points the client at a different endpoint, used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

func New(keys ports.APIKeySource, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		keys:       keys,
		httpClient: &http.Client{Timeout: requestTimeout},
		// Generous client-side ceiling; keeps a misbehaving caller from
		// hammering the quota.
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AnalyzeFile uploads the file as inline base64 with a sniffed media type
// alongside the fixed prompt.
func (c *Client) AnalyzeFile(ctx context.Context, path string) (string, error) {
	key := c.keys.GeminiAPIKeyPlain()
	if key == "" {
		return "", domain.WrapError(domain.ErrMissingKey, "analyze file", errors.New("no Gemini API key configured"))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", domain.WrapError(domain.ErrNotFound, "analyze file", err)
	}

	payload := generateContentRequest{
		Contents: []content{{
			Parts: []part{
				{Text: analysisPrompt},
				{InlineData: &inlineData{
					MimeType: detectMediaType(path, data),
					Data:     base64.StdEncoding.EncodeToString(data),
				}},
			},
		}},
	}
	return c.generate(ctx, key, payload)
}

// AnalyzeText sends pre-extracted text instead of the raw file. Office
// formats take this path after local extraction.
func (c *Client) AnalyzeText(ctx context.Context, filename, text string) (string, error) {
	key := c.keys.GeminiAPIKeyPlain()
	if key == "" {
		return "", domain.WrapError(domain.ErrMissingKey, "analyze text", errors.New("no Gemini API key configured"))
	}

	payload := generateContentRequest{
		Contents: []content{{
			Parts: []part{
				{Text: analysisPrompt},
				{Text: fmt.Sprintf("Document %q, extracted text:\n%s", filepath.Base(filename), text)},
			},
		}},
	}
	return c.generate(ctx, key, payload)
}

// detectMediaType sniffs magic bytes first, then the extension, then falls
// back to octet-stream.
func detectMediaType(path string, data []byte) string {
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}
