// Package summary prepares meeting transcripts for the AI summarization
// collaborator and parses its markdown output back into structured data.
//
// Parsing is deliberately lenient pattern matching: the upstream generator's
// format is requested, not guaranteed, so unmatched input yields empty
// results rather than errors.
package summary

import (
	"regexp"
	"strings"

	"github.com/mardromus/scrumdinger/models"
)

const actionItemMarker = "[ ] "

var (
	blockersHeadingRe = regexp.MustCompile(`(?i)\*\*Blockers(\*?):\*\*`)
	anyHeadingRe      = regexp.MustCompile(`\*\*.*\*\*:`)
	bulletRe          = regexp.MustCompile(`^(\*|-)\s+(.*)`)
	anySpeakerRe      = regexp.MustCompile(`^\[.*?\]:`)
)

// ExtractActionItems scans a summary line by line for lines beginning with
// the literal "[ ] " marker after trimming, and returns them as incomplete
// action items in order. Lines with any other marker are ignored.
func ExtractActionItems(summaryText string) []models.ActionItem {
	if summaryText == "" {
		return nil
	}
	var items []models.ActionItem
	for _, line := range strings.Split(summaryText, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, actionItemMarker) {
			continue
		}
		text := strings.TrimSpace(trimmed[len(actionItemMarker):])
		if text == "" {
			continue
		}
		items = append(items, models.ActionItem{Text: text, Completed: false})
	}
	return items
}

// ExtractBlockers returns the bullet items under the summary's Blockers
// heading. The section ends at the next bold heading-with-colon line. A
// bullet reading "none." (any case) marks an explicitly empty section and is
// discarded.
func ExtractBlockers(summaryText string) []string {
	if summaryText == "" {
		return nil
	}
	var blockers []string
	inSection := false
	for _, line := range strings.Split(summaryText, "\n") {
		trimmed := strings.TrimSpace(line)
		if blockersHeadingRe.MatchString(trimmed) {
			inSection = true
			continue
		}
		if inSection && anyHeadingRe.MatchString(trimmed) {
			break
		}
		if !inSection {
			continue
		}
		m := bulletRe.FindStringSubmatch(trimmed)
		if m == nil || m[2] == "" {
			continue
		}
		text := strings.TrimSpace(m[2])
		if strings.EqualFold(text, "none.") {
			continue
		}
		blockers = append(blockers, text)
	}
	return blockers
}

// ExtractMemberUpdates collects every update block a member contributed to a
// flattened transcript. A block starts at a "[<member>]:" header (case
// insensitive, whitespace around the name tolerated) and runs until the next
// speaker header of any kind. Non-contiguous blocks for the same member are
// returned separately, in transcript order.
func ExtractMemberUpdates(transcript, memberName string) []string {
	if transcript == "" {
		return nil
	}
	memberRe := regexp.MustCompile(`(?i)^\[\s*` + regexp.QuoteMeta(memberName) + `\s*\]:`)

	var updates []string
	capturing := false
	var current strings.Builder

	flush := func() {
		if text := strings.TrimSpace(current.String()); text != "" {
			updates = append(updates, text)
		}
		current.Reset()
	}

	for _, line := range strings.Split(transcript, "\n") {
		switch {
		case memberRe.MatchString(line):
			flush()
			capturing = true
		case anySpeakerRe.MatchString(line):
			flush()
			capturing = false
		case capturing:
			current.WriteString(line)
			current.WriteString("\n")
		}
	}
	if capturing {
		flush()
	}
	return updates
}
