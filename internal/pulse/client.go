// Package pulse talks to the external Pulse document-analysis API. The
// service consumes raw file bytes plus the original name and MIME type and
// returns an opaque metadata payload with a structured analysis section.
package pulse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the default Pulse extraction endpoint
	DefaultBaseURL = "https://pro.api.runpulse.com/extract_beta"
	// DefaultTimeout is the default HTTP timeout for Pulse requests
	DefaultTimeout = 60 * time.Second
)

// Result is the mapped outcome of a Pulse extraction call. Raw carries the
// complete response payload untouched.
type Result struct {
	Language      string
	LineCount     int
	NamedEntities json.RawMessage
	Raw           json.RawMessage
}

// extractResponse mirrors the shape of the Pulse response we rely on.
// Everything outside analysis is treated as opaque.
type extractResponse struct {
	Analysis struct {
		Language      string          `json:"language"`
		LineCount     int             `json:"line_count"`
		NamedEntities json.RawMessage `json:"named_entities"`
	} `json:"analysis"`
}

// Client calls the Pulse extraction API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Pulse client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// NewClientWithConfig creates a Pulse client with custom configuration.
func NewClientWithConfig(apiKey, baseURL string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Extract sends the file to Pulse as a multipart form and maps the response.
func (c *Client) Extract(ctx context.Context, filename, mimeType string, content []byte) (*Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("pulse API key is not configured")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, escapeQuotes(filename)))
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("write form part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pulse API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed extractResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &Result{
		Language:      parsed.Analysis.Language,
		LineCount:     parsed.Analysis.LineCount,
		NamedEntities: parsed.Analysis.NamedEntities,
		Raw:           json.RawMessage(body),
	}, nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
