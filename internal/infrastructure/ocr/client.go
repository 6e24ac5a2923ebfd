package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/kiranascan/backend/internal/domain"
)

const maxRetries = 3

// Client talks to a PaddleOCR-style recognition sidecar over HTTP.
// It implements domain.OCREngine.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	log         zerolog.Logger
}

// Options configures the OCR client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Logger            zerolog.Logger
}

// NewClient creates an OCR sidecar client. The rate limiter keeps the
// sidecar's recognition queue from being flooded by concurrent uploads.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 5
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL:     opts.BaseURL,
		rateLimiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		log:         opts.Logger,
	}
}

// Recognize uploads image bytes to the sidecar and maps the response to
// raw fragments. Transient failures are retried up to three times with
// linear backoff.
func (c *Client) Recognize(ctx context.Context, image []byte) ([]domain.RawFragment, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		fragments, retryable, err := c.recognizeOnce(ctx, image)
		if err == nil {
			return fragments, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}

		c.log.Warn().Err(err).Int("attempt", attempt).Msg("ocr request failed")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt*500) * time.Millisecond):
		}
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrOCRUnavailable, lastErr)
}

func (c *Client) recognizeOnce(ctx context.Context, image []byte) ([]domain.RawFragment, bool, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "receipt.png")
	if err != nil {
		return nil, false, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, false, fmt.Errorf("build multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, false, fmt.Errorf("build multipart body: %w", err)
	}

	reqURL := fmt.Sprintf("%s/predict/ocr", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &body)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("User-Agent", "KiranaScan/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", domain.ErrOCRUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("%w: status %d", domain.ErrOCRUnavailable, resp.StatusCode)
	}

	var wire wireResponse
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}

	fragments, err := wire.fragments()
	if err != nil {
		return nil, false, err
	}
	return fragments, false, nil
}
