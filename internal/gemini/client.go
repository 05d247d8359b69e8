package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nexaguru/nexaguru/internal/config"
)

// Client talks to the Google Generative Language API. Image generation is a
// single predict round trip; video generation submits a long-running operation
// and polls it to completion before fetching the media bytes.
type Client struct {
	apiKey          string
	baseURL         string
	imageModel      string
	videoModel      string
	pollInterval    time.Duration
	pollMaxAttempts int
	httpClient      *http.Client
	log             *slog.Logger
}

// Asset is a generated media payload. Data always holds the raw bytes; URL is
// set for video, where the provider hands back a reference first.
type Asset struct {
	Data []byte
	Mime string
	URL  string
}

func NewClient(cfg config.Config, log *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &Client{
		apiKey:          cfg.GeminiAPIKey,
		baseURL:         strings.TrimRight(cfg.GeminiBaseURL, "/"),
		imageModel:      cfg.ImageModel,
		videoModel:      cfg.VideoModel,
		pollInterval:    cfg.PollInterval,
		pollMaxAttempts: cfg.PollMaxAttempts,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GenerateImage produces a single still image for the prompt.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*Asset, error) {
	if c.apiKey == "" {
		return nil, ErrMissingCredential
	}

	requestBody := map[string]any{
		"instances": []map[string]any{
			{"prompt": prompt},
		},
		"parameters": map[string]any{
			"sampleCount":    1,
			"aspectRatio":    "1:1",
			"outputMimeType": "image/jpeg",
		},
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:predict", c.baseURL, c.imageModel)
	rawBody, err := c.post(ctx, endpoint, requestBody)
	if err != nil {
		return nil, err
	}

	var predictResp struct {
		Predictions []struct {
			BytesBase64Encoded string `json:"bytesBase64Encoded"`
			MimeType           string `json:"mimeType"`
		} `json:"predictions"`
	}
	if err := json.Unmarshal(rawBody, &predictResp); err != nil {
		return nil, fmt.Errorf("decode predict response: %w (body=%s)", err, truncateBody(rawBody))
	}

	if len(predictResp.Predictions) == 0 || predictResp.Predictions[0].BytesBase64Encoded == "" {
		return nil, ErrEmptyResult
	}

	data, err := base64.StdEncoding.DecodeString(predictResp.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return nil, fmt.Errorf("decode image bytes: %w", err)
	}

	mime := predictResp.Predictions[0].MimeType
	if mime == "" {
		mime = "image/jpeg"
	}

	return &Asset{Data: data, Mime: mime}, nil
}

// GenerateVideo submits a long-running video job, polls it to completion and
// downloads the resulting media. The poll loop is bounded; ErrTimedOut is
// returned when the budget runs out.
func (c *Client) GenerateVideo(ctx context.Context, prompt string, aspectRatio string) (*Asset, error) {
	if c.apiKey == "" {
		return nil, ErrMissingCredential
	}

	operationName, err := c.submitVideo(ctx, prompt, aspectRatio)
	if err != nil {
		return nil, fmt.Errorf("submit video: %w", err)
	}

	videoURI, err := c.pollOperation(ctx, operationName)
	if err != nil {
		return nil, err
	}

	return c.downloadVideo(ctx, videoURI)
}

func (c *Client) submitVideo(ctx context.Context, prompt string, aspectRatio string) (string, error) {
	requestBody := map[string]any{
		"instances": []map[string]any{
			{"prompt": prompt},
		},
		"parameters": map[string]any{
			"sampleCount": 1,
			"resolution":  "720p",
			"aspectRatio": aspectRatio,
		},
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:predictLongRunning", c.baseURL, c.videoModel)
	rawBody, err := c.post(ctx, endpoint, requestBody)
	if err != nil {
		return "", err
	}

	var submitResp struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(rawBody, &submitResp); err != nil {
		return "", fmt.Errorf("decode submit response: %w (body=%s)", err, truncateBody(rawBody))
	}
	if submitResp.Name == "" {
		return "", fmt.Errorf("empty operation name in response")
	}

	if c.log != nil {
		c.log.Info("video operation submitted", "operation", submitResp.Name)
	}

	return submitResp.Name, nil
}

// pollOperation queries the operation until it reports done, up to the
// configured attempt budget.
func (c *Client) pollOperation(ctx context.Context, operationName string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1beta/%s", c.baseURL, operationName)

	for attempt := 0; attempt < c.pollMaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return "", fmt.Errorf("new request: %w", err)
		}
		req.Header.Set("x-goog-api-key", c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return "", fmt.Errorf("poll operation: %w", err)
		}

		rawBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return "", fmt.Errorf("read response body: %w", err)
		}

		if resp.StatusCode >= 300 {
			return "", c.statusError(resp.StatusCode, endpoint, rawBody)
		}

		var opResp struct {
			Done  bool `json:"done"`
			Error *struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
			Response struct {
				GenerateVideoResponse struct {
					GeneratedSamples []struct {
						Video struct {
							URI string `json:"uri"`
						} `json:"video"`
					} `json:"generatedSamples"`
				} `json:"generateVideoResponse"`
			} `json:"response"`
		}
		if err := json.Unmarshal(rawBody, &opResp); err != nil {
			return "", fmt.Errorf("decode operation response: %w (body=%s)", err, truncateBody(rawBody))
		}

		if opResp.Error != nil {
			if isAuthMessage(opResp.Error.Message) {
				return "", fmt.Errorf("%w: %s", ErrAuthExpired, opResp.Error.Message)
			}
			return "", fmt.Errorf("operation failed: %s (code: %d)", opResp.Error.Message, opResp.Error.Code)
		}

		if opResp.Done {
			samples := opResp.Response.GenerateVideoResponse.GeneratedSamples
			if len(samples) == 0 || samples[0].Video.URI == "" {
				return "", ErrEmptyResult
			}
			if c.log != nil {
				c.log.Info("video operation completed", "operation", operationName, "attempt", attempt+1)
			}
			return samples[0].Video.URI, nil
		}

		if c.log != nil && attempt%10 == 0 {
			c.log.Info("video operation pending", "operation", operationName, "attempt", attempt+1, "max_attempts", c.pollMaxAttempts)
		}

		if attempt < c.pollMaxAttempts-1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.pollInterval):
			}
		}
	}

	return "", fmt.Errorf("%w after %d attempts", ErrTimedOut, c.pollMaxAttempts)
}

// downloadVideo fetches the raw media; the completion response carries a
// reference, not the bytes, and the credential rides along as a query
// parameter.
func (c *Client) downloadVideo(ctx context.Context, videoURI string) (*Asset, error) {
	parsed, err := url.Parse(videoURI)
	if err != nil {
		return nil, fmt.Errorf("parse video uri: %w", err)
	}
	query := parsed.Query()
	query.Set("key", c.apiKey)
	parsed.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status=%d", ErrDownloadFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyResult
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "video/mp4"
	}

	return &Asset{Data: data, Mime: mime, URL: videoURI}, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload map[string]any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post gemini: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 300 {
		return nil, c.statusError(resp.StatusCode, endpoint, rawBody)
	}

	return rawBody, nil
}

func (c *Client) statusError(status int, endpoint string, body []byte) error {
	if c.log != nil {
		c.log.Error("gemini request failed", "status", status, "url", endpoint, "body", truncateBody(body))
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden || isAuthMessage(string(body)) {
		return fmt.Errorf("%w: status=%d", ErrAuthExpired, status)
	}
	return fmt.Errorf("gemini error: status=%d url=%s body=%s", status, endpoint, truncateBody(body))
}

// isAuthMessage recognizes the provider's key-selection failure, which shows
// up as a not-found entity rather than a 401.
func isAuthMessage(message string) bool {
	return strings.Contains(message, "Requested entity was not found")
}

func truncateBody(body []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(body))
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "…"
}
