package extract

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/pkoukk/tiktoken-go"
	"golang.org/x/sync/errgroup"

	"github.com/trellis-labs/trellis/backend/internal/util"
	"github.com/trellis-labs/trellis/backend/pkg/logger"
)

// maxInputChars bounds the text handed to the generation backend, keeping
// cost and latency predictable for large note sets.
const maxInputChars = 12000

const tokenEncoding = "o200k_base"

const parallelFetches = 4

// Source is one raw text input to a pipeline run. Content takes precedence
// over Summary; StorageKey references an object in blob storage to fetch the
// content from. A source carrying none of the three is skipped.
type Source struct {
	Name       string `json:"name" validate:"required"`
	Content    string `json:"content,omitempty"`
	Summary    string `json:"summary,omitempty"`
	StorageKey string `json:"storageKey,omitempty"`
}

// ObjectFetcher loads source text from blob storage by key.
type ObjectFetcher interface {
	FetchText(ctx context.Context, key string) (string, error)
}

// collectSources resolves storage-backed sources and drops the empty ones.
// Storage fetches run in parallel; a failed fetch skips that source only.
func collectSources(ctx context.Context, fetcher ObjectFetcher, sources []Source) []Source {
	resolved := make([]Source, len(sources))
	copy(resolved, sources)

	if fetcher != nil {
		eg, gCtx := errgroup.WithContext(ctx)
		eg.SetLimit(parallelFetches)
		var mu sync.Mutex
		for i := range resolved {
			if resolved[i].StorageKey == "" || resolved[i].Content != "" {
				continue
			}
			idx := i
			eg.Go(func() error {
				text, err := fetcher.FetchText(gCtx, resolved[idx].StorageKey)
				if err != nil {
					logger.Warn("Failed to fetch source from storage",
						"key", resolved[idx].StorageKey, "err", err)
					return nil
				}
				mu.Lock()
				resolved[idx].Content = text
				mu.Unlock()
				return nil
			})
		}
		// workers never return errors, Wait only observes cancellation
		_ = eg.Wait()
	}

	kept := make([]Source, 0, len(resolved))
	for _, s := range resolved {
		if strings.TrimSpace(s.Content) == "" && strings.TrimSpace(s.Summary) == "" {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

// buildInputText concatenates sources under their headings, strips markup
// down to plain text, and caps the result at maxInputChars.
func buildInputText(sources []Source) string {
	var b strings.Builder
	for _, s := range sources {
		text := s.Content
		if strings.TrimSpace(text) == "" {
			text = s.Summary
		}
		text = stripMarkup(s.Name, text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("## ")
		b.WriteString(s.Name)
		b.WriteString("\n\n")
		b.WriteString(text)
		if b.Len() >= maxInputChars {
			break
		}
	}
	return util.TruncateRunes(strings.TrimSpace(b.String()), maxInputChars)
}

// stripMarkup reduces a source body to plain text. HTML documents go through
// readability, everything else through the markdown stripper.
func stripMarkup(name, text string) string {
	if util.LooksLikeHTML(text) {
		u, err := url.Parse("https://trellis.local/" + url.PathEscape(name))
		if err == nil {
			article, err := readability.FromReader(strings.NewReader(text), u)
			if err == nil {
				var b strings.Builder
				if err := article.RenderText(&b); err == nil {
					return strings.TrimSpace(b.String())
				}
			}
		}
		logger.Warn("Failed to extract readable text, falling back to tag stripping", "source", name)
	}
	return util.StripMarkdown(text)
}

// countTokens reports the token footprint of the parsed input, for logging.
func countTokens(text string) int {
	enc, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		return 0
	}
	return len(enc.Encode(text, nil, nil))
}
