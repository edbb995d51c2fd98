package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/fashion"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/logger"
)

// ImageAgent wraps the image-generation and upscaling services. Both return a
// URL to the produced image hosted by the provider; callers persist the bytes
// themselves.
type ImageAgent interface {
	GenerateOutfitImage(ctx context.Context, photoURL, prompt string, params fashion.RenderParams) (string, error)
	UpscaleImage(ctx context.Context, imageURL string) (string, error)
}

type replicateClient struct {
	log        *logger.Logger
	baseURL    string
	apiToken   string
	fluxModel  string
	upscaleVer string
	httpClient *http.Client

	maxRetries   int
	pollInterval time.Duration
}

func NewReplicateClient(log *logger.Logger) (ImageAgent, error) {
	apiToken := strings.TrimSpace(os.Getenv("REPLICATE_API_TOKEN"))
	if apiToken == "" {
		return nil, fmt.Errorf("missing REPLICATE_API_TOKEN")
	}

	baseURL := strings.TrimSpace(os.Getenv("REPLICATE_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.replicate.com"
	}
	fluxModel := strings.TrimSpace(os.Getenv("REPLICATE_FLUX_MODEL"))
	if fluxModel == "" {
		fluxModel = "black-forest-labs/flux-kontext-max"
	}
	upscaleVer := strings.TrimSpace(os.Getenv("REPLICATE_UPSCALE_VERSION"))
	if upscaleVer == "" {
		// nightmareai/real-esrgan
		upscaleVer = "f121d640bd286e1fdc67f9799164c1d5be36ff74576ee11c803ae5b665dd46aa"
	}

	timeoutSec := 180
	if v := os.Getenv("REPLICATE_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}
	maxRetries := 3
	if v := os.Getenv("REPLICATE_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	return &replicateClient{
		log:          log.With("service", "ReplicateClient"),
		baseURL:      baseURL,
		apiToken:     apiToken,
		fluxModel:    fluxModel,
		upscaleVer:   upscaleVer,
		httpClient:   &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries:   maxRetries,
		pollInterval: 2 * time.Second,
	}, nil
}

type replicateHTTPError struct {
	StatusCode int
	Body       string
}

func (e *replicateHTTPError) Error() string {
	return fmt.Sprintf("replicate http %d: %s", e.StatusCode, e.Body)
}

func isRetryableHTTP(code int) bool {
	if code == 408 || code == 429 {
		return true
	}
	return code >= 500 && code <= 599
}

func isRetryableErr(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var httpErr *replicateHTTPError
	if errors.As(err, &httpErr) {
		return isRetryableHTTP(httpErr.StatusCode)
	}
	return false
}

func jitterSleep(base time.Duration) time.Duration {
	// +/- 20%
	if base <= 0 {
		return 0
	}
	delta := base.Seconds() * 0.2
	low := base.Seconds() - delta
	v := low + rand.Float64()*(2*delta)
	return time.Duration(v * float64(time.Second))
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  any             `json:"error"`
}

func (c *replicateClient) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &replicateHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *replicateClient) do(ctx context.Context, method, path string, body any, out any) error {
	backoff := 1 * time.Second
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("replicate decode error: %w; raw=%s", uErr, string(raw))
			}
			return nil
		}
		if !isRetryableErr(err) || attempt == c.maxRetries {
			return err
		}

		sleepFor := backoff
		if resp != nil {
			if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
				if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
					sleepFor = time.Duration(secs) * time.Second
				}
			}
		}
		if sleepFor > 10*time.Second {
			sleepFor = 10 * time.Second
		}
		sleepFor = jitterSleep(sleepFor)

		c.log.Warn("Replicate request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}
	return fmt.Errorf("unreachable retry loop")
}

func (c *replicateClient) GenerateOutfitImage(ctx context.Context, photoURL, prompt string, params fashion.RenderParams) (string, error) {
	body := map[string]any{
		"input": map[string]any{
			"prompt":              prompt,
			"input_image":         photoURL,
			"aspect_ratio":        "3:4",
			"output_format":       "jpg",
			"output_quality":      params.OutputQuality,
			"safety_tolerance":    2,
			"prompt_upsampling":   params.PromptUpsampling,
			"guidance_scale":      params.GuidanceScale,
			"num_inference_steps": params.NumInferenceSteps,
		},
	}
	var pred prediction
	if err := c.do(ctx, http.MethodPost, "/v1/models/"+c.fluxModel+"/predictions", body, &pred); err != nil {
		return "", fmt.Errorf("create flux prediction: %w", err)
	}
	final, err := c.waitForPrediction(ctx, pred)
	if err != nil {
		return "", err
	}
	url, err := outputURL(final.Output)
	if err != nil {
		return "", fmt.Errorf("flux prediction output: %w", err)
	}
	return url, nil
}

func (c *replicateClient) UpscaleImage(ctx context.Context, imageURL string) (string, error) {
	body := map[string]any{
		"version": c.upscaleVer,
		"input": map[string]any{
			"image":        imageURL,
			"scale":        2,
			"face_enhance": true,
		},
	}
	var pred prediction
	if err := c.do(ctx, http.MethodPost, "/v1/predictions", body, &pred); err != nil {
		return "", fmt.Errorf("create upscale prediction: %w", err)
	}
	final, err := c.waitForPrediction(ctx, pred)
	if err != nil {
		return "", err
	}
	url, err := outputURL(final.Output)
	if err != nil {
		return "", fmt.Errorf("upscale prediction output: %w", err)
	}
	return url, nil
}

func (c *replicateClient) waitForPrediction(ctx context.Context, pred prediction) (prediction, error) {
	for {
		switch pred.Status {
		case "succeeded":
			return pred, nil
		case "failed", "canceled":
			return pred, fmt.Errorf("prediction %s %s: %v", pred.ID, pred.Status, pred.Error)
		}
		select {
		case <-ctx.Done():
			return pred, ctx.Err()
		case <-time.After(c.pollInterval):
		}
		var next prediction
		if err := c.do(ctx, http.MethodGet, "/v1/predictions/"+pred.ID, nil, &next); err != nil {
			return pred, fmt.Errorf("poll prediction %s: %w", pred.ID, err)
		}
		pred = next
	}
}

// outputURL handles both output shapes the predictions API produces: a single
// URL string or an array of URL strings.
func outputURL(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("empty output")
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return single, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 && many[0] != "" {
		return many[0], nil
	}
	return "", fmt.Errorf("unrecognized output shape: %s", string(raw))
}
