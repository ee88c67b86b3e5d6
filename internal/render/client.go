package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

const defaultModel = "gemini-2.5-flash-image"

var (
	ErrNotConfigured = errors.New("image rendering is not configured")
	ErrEmptyPrompt   = errors.New("prompt is empty")
	ErrNoImage       = errors.New("no image in response")
)

// Renderer turns prompt text into image data URLs.
type Renderer interface {
	GenerateImage(ctx context.Context, prompt string) ([]string, error)
}

type Options struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	Model      string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

type Client struct {
	apiKey     string
	baseURL    string
	apiVersion string
	model      string
	httpClient *http.Client
	logger     zerolog.Logger
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "v1beta"
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		apiVersion: apiVersion,
		model:      model,
		httpClient: httpClient,
		logger:     opts.Logger,
	}
}

// GenerateImage renders prompt. Trailing "--flag value" parameters are not
// understood by the image model, so they are cut from the text and the
// aspect ratio is passed through the image config instead.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]string, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	text, aspect := SplitParameters(prompt)
	if text == "" {
		return nil, ErrEmptyPrompt
	}

	req := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: fmt.Sprintf("Generate a high quality image: %s", text)}}},
		},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"IMAGE"},
		},
	}
	if aspect != "" {
		req.GenerationConfig.ImageConfig = &imageConfig{AspectRatio: aspect}
	}

	images, err := c.generateContent(ctx, req)
	if err != nil && req.GenerationConfig.ImageConfig != nil && isUnknownFieldError(err, "imageConfig") {
		c.logger.Debug().Msg("imageConfig rejected, retrying without it")
		req.GenerationConfig.ImageConfig = nil
		images, err = c.generateContent(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, ErrNoImage
	}

	c.logger.Info().Int("images", len(images)).Str("aspect_ratio", aspect).Msg("image rendered")
	return images, nil
}

func (c *Client) generateContent(ctx context.Context, payload generateContentRequest) ([]string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, c.apiVersion, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return nil, fmt.Errorf("gemini API %s: %s", httpResp.Status, strings.TrimSpace(string(rawBody)))
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return extractImages(decoded), nil
}

func extractImages(resp generateContentResponse) []string {
	var images []string
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" && p.InlineData.MimeType != "" {
				images = append(images, fmt.Sprintf("data:%s;base64,%s", p.InlineData.MimeType, p.InlineData.Data))
			}
		}
	}
	return images
}

var aspectParam = regexp.MustCompile(`--(?:ar|aspect)\s+(\d+):(\d+)`)

// Aspect ratios accepted by the image model.
var supportedAspects = map[string]bool{
	"1:1": true, "2:3": true, "3:2": true, "3:4": true, "4:3": true,
	"4:5": true, "5:4": true, "9:16": true, "16:9": true, "21:9": true,
}

// SplitParameters separates the descriptive text from the trailing
// parameter tokens and returns the aspect ratio when the model supports it.
func SplitParameters(prompt string) (string, string) {
	prompt = strings.TrimSpace(prompt)
	params := ""
	if idx := strings.Index(" "+prompt, " --"); idx >= 0 {
		cut := max(idx-1, 0)
		params = prompt[cut:]
		prompt = strings.TrimSpace(prompt[:cut])
	}

	aspect := ""
	if m := aspectParam.FindStringSubmatch(params); m != nil {
		aspect = m[1] + ":" + m[2]
		if m[1] == m[2] {
			aspect = "1:1"
		}
		if !supportedAspects[aspect] {
			aspect = ""
		}
	}
	return prompt, aspect
}

func isUnknownFieldError(err error, field string) bool {
	message := err.Error()
	return strings.Contains(message, "Unknown name") && strings.Contains(message, field)
}
