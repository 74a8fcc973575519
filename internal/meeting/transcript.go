package meeting

import "strings"

// Entry is one logged utterance: who said it and what was said.
type Entry struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// TranscriptLog is an append-only log of utterances bucketed per speaker.
// Buckets keep first-appearance order; utterances within a bucket keep
// submission order. Flatten renders the exact text shape the summary
// pipeline and the per-member update parser expect, so its format is a
// contract, not a presentation choice.
type TranscriptLog struct {
	order   []string
	buckets map[string][]string
	entries []Entry
}

// NewTranscriptLog creates an empty log.
func NewTranscriptLog() *TranscriptLog {
	return &TranscriptLog{buckets: make(map[string][]string)}
}

// Append records an utterance for speaker. Empty or whitespace-only text is
// silently dropped.
func (t *TranscriptLog) Append(speaker, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if _, seen := t.buckets[speaker]; !seen {
		t.order = append(t.order, speaker)
	}
	t.buckets[speaker] = append(t.buckets[speaker], text)
	t.entries = append(t.entries, Entry{Speaker: speaker, Text: text})
}

// Entries returns the chronological log.
func (t *TranscriptLog) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of logged utterances.
func (t *TranscriptLog) Len() int {
	return len(t.entries)
}

// Flatten renders the full transcript as one text blob: a "[Name]:" header
// per speaker bucket in first-appearance order, one utterance per line,
// blocks separated by a blank line.
func (t *TranscriptLog) Flatten() string {
	blocks := make([]string, 0, len(t.order))
	for _, speaker := range t.order {
		blocks = append(blocks, "["+speaker+"]:\n"+strings.Join(t.buckets[speaker], "\n"))
	}
	return strings.Join(blocks, "\n\n")
}
