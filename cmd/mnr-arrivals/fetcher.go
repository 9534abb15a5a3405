package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/theoremus-urban-solutions/mnr-arrivals/gtfsrt"
)

// fetcher reads feeds from URLs or local files.
// This is CLI-specific logic and is not part of the core library.
type fetcher struct {
	client *gtfsrt.Client
}

func newFetcher(client *gtfsrt.Client) *fetcher {
	return &fetcher{client: client}
}

// Fetch returns the bytes at urlOrPath. Anything not starting with http:// or
// https:// is read from disk, which makes saved .pb feeds replayable.
func (f *fetcher) Fetch(ctx context.Context, urlOrPath string) ([]byte, error) {
	if urlOrPath == "" {
		return nil, fmt.Errorf("no feed location configured")
	}
	if !isURL(urlOrPath) {
		data, err := os.ReadFile(urlOrPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", urlOrPath, err)
		}
		return data, nil
	}
	return f.client.Fetch(ctx, urlOrPath)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
