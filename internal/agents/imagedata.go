package agents

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	_ "golang.org/x/image/webp"
)

// default output size for the 3:4 aspect ratio the generator is asked for
const (
	DefaultImageWidth  = 768
	DefaultImageHeight = 1024
)

var imageFetchClient = &http.Client{Timeout: 2 * time.Minute}

// FetchImage downloads the produced image bytes so they can be persisted to
// the object store before the provider's hosted URL expires.
func FetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := imageFetchClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch failed: status=%d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("image fetch read: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image fetch returned empty body")
	}
	return data, nil
}

// ProbeDimensions decodes just the image header to report actual dimensions.
// Generators occasionally return webp regardless of the requested format, so
// the webp decoder is registered too. Falls back to the defaults when the
// header is unreadable.
func ProbeDimensions(data []byte) (width, height int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return DefaultImageWidth, DefaultImageHeight
	}
	return cfg.Width, cfg.Height
}
