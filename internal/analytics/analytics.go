// Package analytics derives per-member and per-team insights from finished
// scrums, reusing the summary parsers and the text-generation collaborator.
package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mardromus/scrumdinger/internal/summary"
	"github.com/mardromus/scrumdinger/models"
	"github.com/mardromus/scrumdinger/prompts"
	"github.com/mardromus/scrumdinger/store"
)

// Service answers analytics queries over the scrum store.
type Service struct {
	store        store.ScrumStore
	gen          summary.Generator
	templatesDir string
}

// NewService builds an analytics service. gen may be nil, in which case
// queries that need generation fail with a descriptive error.
func NewService(st store.ScrumStore, gen summary.Generator, templatesDir string) *Service {
	return &Service{store: st, gen: gen, templatesDir: templatesDir}
}

// MemberSummary collects every update a member gave in finished scrums since
// the cutoff and asks the collaborator for a performance summary.
func (s *Service) MemberSummary(ctx context.Context, memberName string, since time.Time) (string, error) {
	scrums, err := s.finishedSince(since)
	if err != nil {
		return "", err
	}

	var updates []string
	for _, scrum := range scrums {
		updates = append(updates, summary.ExtractMemberUpdates(scrum.Transcript, memberName)...)
	}
	if len(updates) == 0 {
		return fmt.Sprintf("No recent updates found for %s.", memberName), nil
	}

	if s.gen == nil {
		return "", fmt.Errorf("summarizer not configured")
	}
	tmpl, err := prompts.GetPrompt(prompts.KeyMemberSummary, s.templatesDir)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(tmpl, memberName, strings.Join(updates, "\n---\n"))

	text, err := s.gen.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate member summary: %w", err)
	}
	return text, nil
}

// BlockerTrends gathers the blockers parsed out of every finished scrum's
// summary and asks the collaborator for recurring themes and suggested
// actions. Summaries that degraded to error text contribute nothing, which
// is the safe behavior.
func (s *Service) BlockerTrends(ctx context.Context) (string, error) {
	scrums, err := s.finishedSince(time.Time{})
	if err != nil {
		return "", err
	}

	var blockers []string
	for _, scrum := range scrums {
		blockers = append(blockers, summary.ExtractBlockers(scrum.Summary)...)
	}
	if len(blockers) == 0 {
		return "No blockers reported.", nil
	}

	if s.gen == nil {
		return "", fmt.Errorf("summarizer not configured")
	}
	tmpl, err := prompts.GetPrompt(prompts.KeyBlockerTrends, s.templatesDir)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(tmpl, strings.Join(blockers, "\n"))

	text, err := s.gen.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("analyze blocker trends: %w", err)
	}
	return text, nil
}

// TalkTimeTotals aggregates cumulative talk time per member across finished
// scrums since the cutoff.
func (s *Service) TalkTimeTotals(since time.Time) (map[string]int, error) {
	scrums, err := s.finishedSince(since)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]int)
	for _, scrum := range scrums {
		for name, secs := range scrum.TalkTimes {
			totals[name] += secs
		}
	}
	return totals, nil
}

func (s *Service) finishedSince(since time.Time) ([]models.Scrum, error) {
	return s.store.ListScrums(func(scrum models.Scrum) bool {
		if scrum.Status != models.StatusFinished {
			return false
		}
		return since.IsZero() || scrum.ScheduledAt.After(since)
	}, nil)
}
