// Package genai implements a minimal client for the Google
// generative-language REST API (the Gemini generateContent surface).
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Models maps model IDs to their context window sizes.
var Models = map[string]int{
	"gemini-2.0-flash":      1048576,
	"gemini-2.0-flash-lite": 1048576,
	"gemini-1.5-flash":      1048576,
	"gemini-1.5-pro":        2097152,
}

const (
	defaultBaseURL    = "https://generativelanguage.googleapis.com"
	defaultAPIVersion = "v1beta"
	defaultMaxTokens  = 8192
	defaultTimeout    = 2 * time.Minute

	// DefaultModel is used when a request does not name a model.
	DefaultModel = "gemini-2.0-flash"
)

// Message roles accepted by the API.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// MaxContextTokens returns the context window for a model.
func MaxContextTokens(model string) int {
	if n, ok := Models[model]; ok {
		return n
	}
	return 1048576 // Default for unknown models
}

// Client talks to the generative-language API. It holds no credential:
// the API key is supplied per call so callers can rotate keys freely.
type Client struct {
	baseURL    string
	apiVersion string
	client     *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing or proxies).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithAPIVersion sets the API version path segment.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		c.apiVersion = version
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a generative-language API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiVersion: defaultAPIVersion,
		client:     &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Message is one conversation turn.
type Message struct {
	Role string
	Text string
}

// SafetySetting adjusts one harm-category filter.
type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// PermissiveSafety returns settings that disable every adjustable harm
// filter, leaving blocking decisions to the non-adjustable upstream policy.
func PermissiveSafety() []SafetySetting {
	categories := []string{
		"HARM_CATEGORY_HARASSMENT",
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
	}
	settings := make([]SafetySetting, 0, len(categories))
	for _, cat := range categories {
		settings = append(settings, SafetySetting{Category: cat, Threshold: "BLOCK_NONE"})
	}
	return settings
}

// Request describes one generateContent call.
type Request struct {
	Model           string
	Messages        []Message
	System          string
	MaxOutputTokens int
	Temperature     float64
	Safety          []SafetySetting
}

// Candidate is one generated reply.
type Candidate struct {
	Text         string
	FinishReason string
}

// Response is a parsed generateContent reply. Use Text to extract the
// generated text; it reports safety blocks as a distinct error type.
type Response struct {
	Candidates   []Candidate
	BlockReason  string
	InputTokens  int
	OutputTokens int
}

// Finish reasons and block reasons that indicate withheld output.
const (
	finishSafety     = "SAFETY"
	finishProhibited = "PROHIBITED_CONTENT"
	finishBlocklist  = "BLOCKLIST"
)

// Text returns the text of the first candidate. If the upstream withheld
// the output for policy reasons it returns a *BlockedError.
func (r *Response) Text() (string, error) {
	if r.BlockReason != "" {
		return "", &BlockedError{Reason: r.BlockReason}
	}
	if len(r.Candidates) == 0 {
		return "", fmt.Errorf("response contained no candidates")
	}
	cand := r.Candidates[0]
	switch cand.FinishReason {
	case finishSafety, finishProhibited, finishBlocklist:
		return "", &BlockedError{Reason: cand.FinishReason}
	}
	if cand.Text == "" {
		return "", fmt.Errorf("response candidate contained no text")
	}
	return cand.Text, nil
}

// apiRequest is the request body for the generateContent API.
type apiRequest struct {
	Contents          []apiContent         `json:"contents"`
	SystemInstruction *apiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *apiGenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings    []SafetySetting      `json:"safetySettings,omitempty"`
}

// apiContent is a role-tagged sequence of parts.
type apiContent struct {
	Role  string    `json:"role,omitempty"`
	Parts []apiPart `json:"parts"`
}

// apiPart is a text fragment in a content block.
type apiPart struct {
	Text string `json:"text"`
}

// apiGenerationConfig bounds the generated output.
type apiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

// apiResponse is the response from the generateContent API.
type apiResponse struct {
	Candidates []struct {
		Content      apiContent `json:"content"`
		FinishReason string     `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

// apiErrorBody is an error response from the API.
type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateContent sends one generation request authenticated with apiKey.
// Non-2xx replies come back as *APIError; transport failures are wrapped
// plain errors. The call itself never retries.
func (c *Client) GenerateContent(ctx context.Context, apiKey string, req Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	maxTokens := req.MaxOutputTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	body := apiRequest{
		GenerationConfig: &apiGenerationConfig{
			MaxOutputTokens: maxTokens,
			Temperature:     req.Temperature,
		},
		SafetySettings: req.Safety,
	}
	for _, msg := range req.Messages {
		role := msg.Role
		if role == "" {
			role = RoleUser
		}
		body.Contents = append(body.Contents, apiContent{
			Role:  role,
			Parts: []apiPart{{Text: msg.Text}},
		})
	}
	if req.System != "" {
		body.SystemInstruction = &apiContent{Parts: []apiPart{{Text: req.System}}}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, c.apiVersion, model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	// Check for error response
	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var parsed apiErrorBody
		if err := json.Unmarshal(respBody, &parsed); err == nil && parsed.Error.Message != "" {
			apiErr.Status = parsed.Error.Status
			apiErr.Message = parsed.Error.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return nil, apiErr
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	out := &Response{
		BlockReason:  parsed.PromptFeedback.BlockReason,
		InputTokens:  parsed.UsageMetadata.PromptTokenCount,
		OutputTokens: parsed.UsageMetadata.CandidatesTokenCount,
	}
	for _, cand := range parsed.Candidates {
		var text string
		for _, part := range cand.Content.Parts {
			text += part.Text
		}
		out.Candidates = append(out.Candidates, Candidate{
			Text:         text,
			FinishReason: cand.FinishReason,
		})
	}
	return out, nil
}
