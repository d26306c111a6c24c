package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrRemoteImageBlocked is returned for an http(s) reference when cross-origin images are disabled.
var ErrRemoteImageBlocked = errors.New("remote images are disabled")

const maxImageBytes = 10 << 20

// ImageLoader resolves logo and signature references. A reference is a data
// URL, an http(s) URL or a local file path.
type ImageLoader struct {
	client *http.Client
}

// NewImageLoader creates a loader. A nil client gets a 15 second timeout.
func NewImageLoader(client *http.Client) *ImageLoader {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &ImageLoader{client: client}
}

// Load fetches and decodes the image at ref
func (l *ImageLoader) Load(ctx context.Context, ref string, allowRemote bool) (image.Image, error) {
	ref = strings.TrimSpace(ref)

	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(ref, "data:"):
		data, err = decodeDataURL(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		if !allowRemote {
			return nil, fmt.Errorf("%w: %s", ErrRemoteImageBlocked, ref)
		}
		data, err = l.fetch(ctx, ref)
	default:
		data, err = readFile(ref)
	}
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func decodeDataURL(ref string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data URL")
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, errors.New("only base64 data URLs are supported")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URL: %w", err)
	}
	return data, nil
}

func (l *ImageLoader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch image: %s returned %s", url, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxImageBytes))
}
