package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/IshaanNene/HotTag/internal/config"
	"github.com/IshaanNene/HotTag/internal/types"
)

// Fetcher retrieves source pages.
type Fetcher interface {
	// Fetch retrieves the document at rawURL in a single attempt.
	Fetch(ctx context.Context, rawURL string) (*types.Page, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// TitlesURL builds the promotion title-list URL for a Cagematch promotion id.
func TitlesURL(baseURL, sourceID string) string {
	base := strings.TrimRight(baseURL, "?")
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return fmt.Sprintf("%s?id=8&nr=%s&page=9", base, url.QueryEscape(sourceID))
}

// New creates the fetcher selected by cfg.Fetcher.Type.
func New(cfg *config.Config, logger *slog.Logger) (Fetcher, error) {
	switch cfg.Fetcher.Type {
	case "http":
		return NewHTTPFetcher(&cfg.Fetcher, logger), nil
	case "browser":
		return NewBrowserFetcher(&cfg.Fetcher, logger)
	default:
		return nil, fmt.Errorf("unsupported fetcher type: %s", cfg.Fetcher.Type)
	}
}
