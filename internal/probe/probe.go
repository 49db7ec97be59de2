// Package probe resolves the natural pixel dimensions of a remote image by
// fetching it and decoding just the header. Results are cached per URL.
package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	// register decoders for image.DecodeConfig
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"

	"github.com/kkkatsube/picc/internal/cache"
	"github.com/kkkatsube/picc/internal/config"
)

var (
	// ErrScheme rejects URLs outside the policy: https anywhere, plain
	// http only toward localhost/private ranges (and only when the
	// deployment allows it).
	ErrScheme = errors.New("url must be https, or http to a local address")

	// ErrNotImage is returned when the fetched body is not a supported
	// image type.
	ErrNotImage = errors.New("url does not point to a supported image")
)

var allowedMIMEs = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
	"image/webp": {},
}

// CheckURL enforces the picture-URL policy shared by canvas images and
// favorites images.
func CheckURL(raw string, allowPrivate bool) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	switch u.Scheme {
	case "https":
		return nil
	case "http":
		if allowPrivate && isPrivateHost(u.Hostname()) {
			return nil
		}
		return ErrScheme
	default:
		return ErrScheme
	}
}

func isPrivateHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate()
}

type Dimensions struct {
	Width  int
	Height int
}

type Prober struct {
	client   *http.Client
	maxBody  int64
	cache    *cache.Cache
	cacheTTL int
}

func New(cfg config.ProbeConfig, dimCache *cache.Cache) *Prober {
	return &Prober{
		client:   &http.Client{Timeout: cfg.Timeout * time.Second},
		maxBody:  cfg.MaxBodyMB << 20,
		cache:    dimCache,
		cacheTTL: cfg.CacheTTL,
	}
}

// Measure fetches the asset at rawURL and returns its pixel dimensions.
// Cache misses cost one GET bounded by the configured timeout and body
// limit; cache errors are treated as misses.
func (p *Prober) Measure(ctx context.Context, rawURL string) (Dimensions, error) {
	if p.cache != nil {
		if val, ok, err := p.cache.Get(ctx, rawURL); err == nil && ok {
			if d, ok := parseDims(val); ok {
				return d, nil
			}
		}
	}

	d, err := p.fetch(ctx, rawURL)
	if err != nil {
		return Dimensions{}, err
	}

	if p.cache != nil {
		_ = p.cache.Store(ctx, rawURL, p.cacheTTL, fmt.Sprintf("%dx%d", d.Width, d.Height))
	}
	return d, nil
}

func (p *Prober) fetch(ctx context.Context, rawURL string) (Dimensions, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Dimensions{}, fmt.Errorf("invalid url: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Dimensions{}, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Dimensions{}, fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBody))
	if err != nil {
		return Dimensions{}, fmt.Errorf("read image: %w", err)
	}

	mime := mimetype.Detect(body)
	if _, ok := allowedMIMEs[mime.String()]; !ok {
		return Dimensions{}, ErrNotImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		return Dimensions{}, ErrNotImage
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

func parseDims(val string) (Dimensions, bool) {
	var d Dimensions
	if _, err := fmt.Sscanf(val, "%dx%d", &d.Width, &d.Height); err != nil {
		return Dimensions{}, false
	}
	if d.Width <= 0 || d.Height <= 0 {
		return Dimensions{}, false
	}
	return d, true
}
