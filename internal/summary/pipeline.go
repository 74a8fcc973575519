package summary

import (
	"context"
	"fmt"
	"log"

	"github.com/mardromus/scrumdinger/models"
)

// Degraded summary placeholders. A live meeting must never lose collected
// transcript or talk-time data to a downstream AI failure, so the pipeline
// reports failures as visible text instead of aborting completion.
const (
	ErrNotConfiguredText = "Error: summarizer not configured. Set llm.apiKey in the configuration or the provider's API key environment variable."
	ErrGenerationText    = "An error occurred while generating the summary."
)

// Generator is the external text-generation collaborator.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Outcome is the pipeline's parsed result. When Failed is set, Summary holds
// a placeholder error text and must not be re-parsed for action items.
type Outcome struct {
	Summary     string
	ActionItems []models.ActionItem
	Failed      bool
}

// Pipeline wraps the generator with the fixed meeting-summary instruction
// template and the output parsers.
type Pipeline struct {
	gen            Generator
	promptTemplate string
}

// NewPipeline builds a pipeline over gen. The template must contain one %s
// verb for the flattened transcript. A nil generator yields a pipeline that
// degrades to the not-configured placeholder.
func NewPipeline(gen Generator, promptTemplate string) *Pipeline {
	return &Pipeline{gen: gen, promptTemplate: promptTemplate}
}

// Summarize submits the flattened transcript to the generator and parses the
// returned markdown into action items. All failure modes degrade to a marked
// error text; Summarize never returns an error to the caller.
func (p *Pipeline) Summarize(ctx context.Context, transcript string) Outcome {
	if p == nil || p.gen == nil {
		return Outcome{Summary: ErrNotConfiguredText, Failed: true}
	}
	prompt := fmt.Sprintf(p.promptTemplate, transcript)
	text, err := p.gen.GenerateContent(ctx, prompt)
	if err != nil {
		log.Printf("summary generation failed: %v", err)
		return Outcome{Summary: ErrGenerationText, Failed: true}
	}
	return Outcome{
		Summary:     text,
		ActionItems: ExtractActionItems(text),
	}
}
