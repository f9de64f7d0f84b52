package watcher

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bnema/subreddit-filter/internal/log"
	"github.com/bnema/subreddit-filter/internal/parser"
)

// Source contributes extra names each time a FileStore loads
type Source func(ctx context.Context) ([]string, error)

// Opener returns the raw content of a local path or URL
type Opener interface {
	Open(ctx context.Context, src string) ([]byte, error)
}

// ListSource reads a plain-text block-list from src
func ListSource(o Opener, src string) Source {
	return func(ctx context.Context) ([]string, error) {
		data, err := o.Open(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("loading block-list %s: %w", src, err)
		}

		p := parser.New()
		names, err := p.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parsing block-list %s: %w", src, err)
		}

		stats := p.Stats()
		log.Debug(map[string]any{
			"source":   src,
			"accepted": stats.Accepted,
			"skipped":  stats.Skipped,
		}, "block-list loaded")
		return names, nil
	}
}
