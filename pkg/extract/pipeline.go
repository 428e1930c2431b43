// Package extract implements the content extraction pipeline: it drives raw
// text sources through a generation backend constrained to the extraction
// schema, streams progress to the caller, and materializes confirmed
// suggestions into durable collections, records and graphs.
package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/trellis-labs/trellis/backend/internal/util"
	"github.com/trellis-labs/trellis/backend/pkg/ai"
	"github.com/trellis-labs/trellis/backend/pkg/logger"
	"github.com/trellis-labs/trellis/backend/pkg/model"
	"github.com/trellis-labs/trellis/backend/pkg/store"
)

// ConfirmFunc selects which suggestions to materialize. It is called once,
// after the suggestions event, with the full batch in order.
type ConfirmFunc func(ctx context.Context, suggestions []Suggestion) []Suggestion

// ConfirmAll confirms every suggestion in the batch.
func ConfirmAll(ctx context.Context, suggestions []Suggestion) []Suggestion {
	return suggestions
}

// ConfirmTitles confirms the suggestions whose titles appear in the given
// list, preserving batch order.
func ConfirmTitles(titles []string) ConfirmFunc {
	wanted := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		wanted[t] = struct{}{}
	}
	return func(ctx context.Context, suggestions []Suggestion) []Suggestion {
		confirmed := make([]Suggestion, 0, len(suggestions))
		for _, s := range suggestions {
			if _, ok := wanted[s.Title]; ok {
				confirmed = append(confirmed, s)
			}
		}
		return confirmed
	}
}

// Params configures a Pipeline.
type Params struct {
	Store store.Store
	// Client is the generation backend. A nil client means no credential is
	// configured; runs then fail with ErrNoCredential at the analyze stage.
	Client  ai.TextClient
	Fetcher ObjectFetcher

	// Model overrides the client's default model for this pipeline's runs.
	Model string

	MaxRetries int
	Now        func() time.Time
}

// Pipeline runs extraction end to end. One Pipeline is safe for concurrent
// runs; all per-run state lives on the stack of Run.
type Pipeline struct {
	store      store.Store
	client     ai.TextClient
	fetcher    ObjectFetcher
	model      string
	maxRetries int
	now        func() time.Time
}

// New creates a Pipeline.
func New(params Params) *Pipeline {
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		store:      params.Store,
		client:     params.Client,
		fetcher:    params.Fetcher,
		model:      params.Model,
		maxRetries: maxRetries,
		now:        now,
	}
}

// RunInput is one pipeline invocation.
type RunInput struct {
	Sources []Source
	Scope   model.Scope
	// Confirm selects the suggestions to materialize. A nil Confirm ends the
	// run gracefully after the suggestions event (review-only run).
	Confirm ConfirmFunc
}

// Run starts a pipeline run and returns its event channel. The channel is
// closed when the run ends; a run that ends without a done event was
// cancelled by the caller. Cancelling ctx stops the run; writes already
// committed are not rolled back.
func (p *Pipeline) Run(ctx context.Context, input RunInput) <-chan Event {
	em := newEmitter(ctx)
	go func() {
		defer close(em.ch)
		p.run(ctx, em, input)
	}()
	return em.ch
}

func (p *Pipeline) run(ctx context.Context, em *emitter, input RunInput) {
	// collect
	if !em.step(StepCollect, "Collecting sources") {
		return
	}
	sources := collectSources(ctx, p.fetcher, input.Sources)

	// parse
	if !em.step(StepParse, "Preparing text") {
		return
	}
	text := buildInputText(sources)
	if text == "" {
		em.delta("There is nothing to analyze in the provided sources.")
		em.done()
		return
	}
	logger.Debug("[Extract] Input prepared", "chars", len(text), "tokens", countTokens(text))

	// analyze
	if !em.step(StepAnalyze, "Analyzing content") {
		return
	}
	if p.client == nil {
		em.error(ErrNoCredential)
		em.done()
		return
	}
	existing, err := p.store.ListCollections(ctx, input.Scope)
	if err != nil {
		em.error(fmt.Errorf("failed to look up existing collections: %w", err))
		em.done()
		return
	}

	prompt := fmt.Sprintf(analyzePrompt, describeCollections(existing))
	genOpts := []ai.GenerateOption{ai.WithSystemPrompts(prompt)}
	if p.model != "" {
		genOpts = append(genOpts, ai.WithModel(p.model))
	}

	p.client.ResetMetrics()
	res, err := util.RetryWithContext(ctx, p.maxRetries, func(ctx context.Context) (analysisResponse, error) {
		var r analysisResponse
		err := p.client.GenerateCompletionWithFormat(
			ctx,
			"extract_structured_entities",
			"Extract structured entities from a text document.",
			text,
			&r,
			genOpts...,
		)
		return r, err
	})
	if err != nil {
		em.error(fmt.Errorf("analysis failed: %w", err))
		em.done()
		return
	}
	usage := p.client.GetMetrics()
	logger.Debug("[Extract] Analysis complete",
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
		"duration_ms", usage.DurationMs)

	suggestions := make([]Suggestion, 0, len(res.Suggestions))
	for i := range res.Suggestions {
		if err := res.Suggestions[i].Validate(); err != nil {
			em.error(&SchemaViolationError{Index: i, Reason: err.Error()})
			em.done()
			return
		}
		suggestions = append(suggestions, fromRaw(res.Suggestions[i]))
	}

	// suggest
	summaries := make([]SuggestionSummary, 0, len(suggestions))
	for i := range suggestions {
		summaries = append(summaries, SuggestionSummary{
			Type:          suggestions[i].Kind(),
			Title:         suggestions[i].Title,
			Icon:          suggestions[i].Icon,
			Description:   suggestions[i].Description,
			SourceHeading: suggestions[i].SourceHeading,
		})
	}
	if !em.suggestions(summaries) {
		return
	}
	if len(suggestions) == 0 {
		em.delta("No structured data found in the provided text.")
		em.done()
		return
	}

	if input.Confirm == nil {
		em.done()
		return
	}
	confirmed := input.Confirm(ctx, suggestions)
	if len(confirmed) == 0 {
		em.done()
		return
	}

	// create: strictly sequential, later suggestions may depend on entities
	// earlier ones just created
	if !em.step(StepCreate, "Creating entities") {
		return
	}
	var counts createdCounts
	for i := range confirmed {
		if ctx.Err() != nil {
			return
		}
		created, err := p.materialize(ctx, em, input.Scope, &confirmed[i])
		counts.add(created)
		if err != nil {
			logger.Error("[Extract] Failed to create suggestion",
				"title", confirmed[i].Title, "err", err)
		}
	}

	// summarize
	message := fmt.Sprintf(
		"Created %d collection(s), %d record(s) and %d graph(s).",
		counts.collections, counts.records, counts.graphs,
	)
	if strings.TrimSpace(res.Summary) != "" {
		message = message + "\n\n" + strings.TrimSpace(res.Summary)
	}
	em.delta(message)
	em.done()
}

// describeCollections renders the existing collections for the analyze
// prompt, so the model can target them by id or name.
func describeCollections(collections []model.Collection) string {
	if len(collections) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, c := range collections {
		names := make([]string, 0, len(c.Fields))
		for _, f := range c.Fields {
			names = append(names, f.Name)
		}
		fmt.Fprintf(&b, "- %s (id: %s, fields: %s)\n", c.Name, c.ID, strings.Join(names, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}
