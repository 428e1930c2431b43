package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type mapFetcher struct {
	objects map[string]string
}

func (m *mapFetcher) FetchText(ctx context.Context, key string) (string, error) {
	text, ok := m.objects[key]
	if !ok {
		return "", errors.New("no such object")
	}
	return text, nil
}

func TestCollectSources(t *testing.T) {
	fetcher := &mapFetcher{objects: map[string]string{
		"docs/a.txt": "fetched text",
	}}
	sources := []Source{
		{Name: "Inline", Content: "inline text"},
		{Name: "Stored", StorageKey: "docs/a.txt"},
		{Name: "Missing", StorageKey: "docs/gone.txt"},
		{Name: "Empty"},
		{Name: "Summarized", Summary: "just a summary"},
	}

	kept := collectSources(context.Background(), fetcher, sources)
	if len(kept) != 3 {
		t.Fatalf("expected 3 kept sources, got %d: %+v", len(kept), kept)
	}
	if kept[0].Name != "Inline" || kept[1].Name != "Stored" || kept[2].Name != "Summarized" {
		t.Errorf("unexpected source order: %+v", kept)
	}
	if kept[1].Content != "fetched text" {
		t.Errorf("storage content was not resolved: %+v", kept[1])
	}
}

func TestCollectSourcesNilFetcher(t *testing.T) {
	kept := collectSources(context.Background(), nil, []Source{
		{Name: "Stored", StorageKey: "docs/a.txt"},
		{Name: "Inline", Content: "text"},
	})
	// without a fetcher, storage-only sources resolve to nothing and drop out
	if len(kept) != 1 || kept[0].Name != "Inline" {
		t.Fatalf("expected only the inline source, got %+v", kept)
	}
}

func TestBuildInputTextHeadings(t *testing.T) {
	text := buildInputText([]Source{
		{Name: "First", Content: "alpha"},
		{Name: "Second", Summary: "beta"},
	})
	want := "## First\n\nalpha\n\n## Second\n\nbeta"
	if text != want {
		t.Errorf("expected %q, got %q", want, text)
	}
}

func TestBuildInputTextTruncation(t *testing.T) {
	long := strings.Repeat("x", maxInputChars)
	text := buildInputText([]Source{
		{Name: "Big", Content: long},
		{Name: "Never", Content: "reached"},
	})
	if len([]rune(text)) != maxInputChars {
		t.Errorf("expected input capped at %d runes, got %d", maxInputChars, len([]rune(text)))
	}
	if strings.Contains(text, "Never") {
		t.Error("sources past the cap must not be included")
	}
}

func TestBuildInputTextStripsMarkdown(t *testing.T) {
	text := buildInputText([]Source{
		{Name: "Note", Content: "# Heading\n\nSome **bold** text with [a link](https://example.com)."},
	})
	for _, marker := range []string{"#", "**", "](", "https://example.com"} {
		if strings.Contains(text[len("## Note"):], marker) {
			t.Errorf("markdown marker %q survived stripping: %q", marker, text)
		}
	}
	if !strings.Contains(text, "Some bold text with a link.") {
		t.Errorf("text content was lost: %q", text)
	}
}

func TestStripMarkupHTML(t *testing.T) {
	html := `<!DOCTYPE html><html><head><title>Page</title></head><body>
<article><h1>Meeting notes</h1><p>Discussed the roadmap in detail, including the
rollout schedule for the next two quarters and open staffing questions.</p></article>
</body></html>`
	text := stripMarkup("page.html", html)
	if strings.Contains(text, "<") {
		t.Errorf("tags survived extraction: %q", text)
	}
	if !strings.Contains(text, "roadmap") {
		t.Errorf("body text was lost: %q", text)
	}
}
