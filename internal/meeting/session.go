package meeting

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mardromus/scrumdinger/internal/summary"
	"github.com/mardromus/scrumdinger/models"
)

// Status is the live meeting phase. It extends the persisted scrum lifecycle
// with PAUSED, which exists only while a session is running.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusPaused     Status = "PAUSED"
	StatusFinished   Status = "FINISHED"
)

var (
	// ErrNoAttendees is returned when starting a meeting with an empty rotation.
	ErrNoAttendees = errors.New("meeting has no attendees")
	// ErrBadAllotment is returned when the per-speaker allotment is not positive.
	ErrBadAllotment = errors.New("per-speaker time allotment must be positive")
	// ErrFinished is returned for operations on a finished meeting.
	ErrFinished = errors.New("meeting already finished")
	// ErrNotInProgress is returned for operations only valid while in progress.
	ErrNotInProgress = errors.New("meeting is not in progress")
	// ErrSummaryPending is returned by Result while the summary call is in flight.
	ErrSummaryPending = errors.New("summary generation still in progress")
)

// Summarizer is the external collaborator a finished session hands its
// flattened transcript to. Implemented by summary.Pipeline.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) summary.Outcome
}

// Snapshot is the externally observable state of a session, reported to the
// listener on every transition and tick so a hosting UI can render live state.
type Snapshot struct {
	Status         Status         `json:"status"`
	Summarizing    bool           `json:"summarizing"`
	CurrentSpeaker string         `json:"currentSpeaker,omitempty"`
	SpeakerIndex   int            `json:"speakerIndex"`
	Remaining      int            `json:"remainingSeconds"`
	TalkTimes      map[string]int `json:"talkTimes"`
	Entries        []Entry        `json:"entries"`
}

// Result is what a finished session hands back to the scheduling layer for
// merging into the permanent scrum record.
type Result struct {
	Transcript  string
	Summary     string
	TalkTimes   map[string]int
	ActionItems []models.ActionItem
	Notes       string
}

// Listener receives a snapshot after every observable state change.
// It is invoked without the session lock held.
type Listener func(Snapshot)

// Option configures a Session.
type Option func(*Session)

// WithTickInterval overrides the wall-clock tick period. Tests use this to
// keep the loop from firing; production uses the one-second default.
func WithTickInterval(d time.Duration) Option {
	return func(s *Session) { s.tickEvery = d }
}

// WithListener registers the snapshot listener.
func WithListener(l Listener) Option {
	return func(s *Session) { s.listener = l }
}

// Session drives one live meeting: it owns the countdown, the talk-time
// accumulator, the transcript log, the current speaker index, and the pending
// utterance buffer. All mutations are serialized behind one mutex; a single
// ticker goroutine delivers wall-clock seconds while the meeting is in
// progress and is cancelled deterministically on pause, end, and close.
type Session struct {
	mu sync.Mutex

	attendees []models.Attendee
	idx       int
	status    Status

	timer      *Countdown
	talk       *TalkTimeAccumulator
	transcript *TranscriptLog
	utterance  string
	notes      string

	summarizer  Summarizer
	summarizing bool
	summary     string
	actionItems []models.ActionItem

	listener  Listener
	tickEvery time.Duration
	stopTick  chan struct{}
	done      chan struct{}
}

// NewSession builds a session over the scrum's fixed rotation. The scrum
// record itself is not mutated; the caller merges Result back after the
// meeting ends.
func NewSession(scrum *models.Scrum, summarizer Summarizer, opts ...Option) *Session {
	attendees := make([]models.Attendee, len(scrum.Attendees))
	copy(attendees, scrum.Attendees)

	s := &Session{
		attendees:  attendees,
		status:     StatusNotStarted,
		timer:      NewCountdown(scrum.TimePerSpeakerSecs),
		talk:       NewTalkTimeAccumulator(scrum.SpeakerNames()),
		transcript: NewTranscriptLog(),
		notes:      scrum.Notes,
		summarizer: summarizer,
		tickEvery:  time.Second,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins or resumes the meeting. Starting an empty rotation or one with
// a non-positive allotment is rejected; starting while already in progress is
// a no-op.
func (s *Session) Start() error {
	s.mu.Lock()
	switch s.status {
	case StatusFinished:
		s.mu.Unlock()
		return ErrFinished
	case StatusInProgress:
		s.mu.Unlock()
		return nil
	}
	if len(s.attendees) == 0 {
		s.mu.Unlock()
		return ErrNoAttendees
	}
	if s.timer.Allotment() <= 0 {
		s.mu.Unlock()
		return ErrBadAllotment
	}
	s.status = StatusInProgress
	s.timer.Start()
	s.startTickingLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return nil
}

// Pause halts the countdown and talk-time accrual, preserving remaining time
// and the current speaker. A no-op outside IN_PROGRESS.
func (s *Session) Pause() {
	s.mu.Lock()
	if s.status != StatusInProgress {
		s.mu.Unlock()
		return
	}
	s.status = StatusPaused
	s.timer.Pause()
	s.stopTickingLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// NextSpeaker advances the rotation. Outside IN_PROGRESS the action is
// ignored and the current snapshot is returned unchanged.
func (s *Session) NextSpeaker() Snapshot {
	s.mu.Lock()
	if s.status == StatusInProgress {
		s.advanceLocked(context.Background())
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return snap
}

// SetUtterance replaces the pending input buffer for the current speaker.
// The buffer is flushed into the transcript by LogUtterance or by the next
// speaker advance.
func (s *Session) SetUtterance(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusFinished {
		return
	}
	s.utterance = text
}

// LogUtterance appends the buffered input text to the transcript for the
// current speaker and clears the buffer. Only valid while IN_PROGRESS.
func (s *Session) LogUtterance() error {
	s.mu.Lock()
	if s.status != StatusInProgress {
		s.mu.Unlock()
		return ErrNotInProgress
	}
	s.flushUtteranceLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return nil
}

// AddTime extends (or, with a negative delta, shortens) the current speaker's
// remaining time without touching the running state.
func (s *Session) AddTime(delta int) Snapshot {
	s.mu.Lock()
	if s.status == StatusInProgress || s.status == StatusPaused {
		s.timer.AddTime(delta)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return snap
}

// SetNotes replaces the collaborative notes carried into the final result.
func (s *Session) SetNotes(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = text
}

// End finishes the meeting from any non-finished state, stopping the clock
// and accrual immediately and handing whatever transcript exists to the
// summarizer. The summary is produced asynchronously; Done is closed when it
// lands. Ending an already finished meeting is a no-op.
func (s *Session) End(ctx context.Context) {
	s.mu.Lock()
	if s.status == StatusFinished {
		s.mu.Unlock()
		return
	}
	s.finishLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Close tears the session down, stopping the tick loop regardless of state.
// It does not trigger summarization.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.Pause()
	s.stopTickingLocked()
}

// Snapshot returns the current observable state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Done is closed once the meeting has finished and the summary (or its
// degraded placeholder) has been recorded.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Result returns the finished meeting's accumulated output. It fails while
// the meeting is still live or the summary call is still in flight.
func (s *Session) Result() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusFinished {
		return Result{}, ErrNotInProgress
	}
	if s.summarizing {
		return Result{}, ErrSummaryPending
	}
	return Result{
		Transcript:  s.transcript.Flatten(),
		Summary:     s.summary,
		TalkTimes:   s.talk.Snapshot(),
		ActionItems: s.actionItems,
		Notes:       s.notes,
	}, nil
}

// tick consumes one wall-clock second: accrue talk time for the floor
// holder, count the timer down, and auto-advance on expiry. The expiry is
// consumed under the same lock as the advance, so a racing manual advance
// can never double-fire.
func (s *Session) tick() {
	s.mu.Lock()
	if s.status != StatusInProgress {
		s.mu.Unlock()
		return
	}
	s.talk.Tick(s.attendees[s.idx].Name)
	if expired := s.timer.Tick(); expired {
		s.advanceLocked(context.Background())
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// advanceLocked flushes the outgoing speaker's pending utterance and moves
// the floor. Exhausting the rotation is the only automatic path to FINISHED.
func (s *Session) advanceLocked(ctx context.Context) {
	s.flushUtteranceLocked()
	next := s.idx + 1
	if next < len(s.attendees) {
		s.idx = next
		s.timer.ResetToAllotment()
		s.timer.Start()
		return
	}
	s.finishLocked(ctx)
}

func (s *Session) flushUtteranceLocked() {
	if s.idx < len(s.attendees) {
		s.transcript.Append(s.attendees[s.idx].Name, s.utterance)
	}
	s.utterance = ""
}

func (s *Session) finishLocked(ctx context.Context) {
	s.status = StatusFinished
	s.timer.Pause()
	s.stopTickingLocked()

	if s.summarizer == nil {
		s.summary = summary.ErrNotConfiguredText
		close(s.done)
		return
	}
	s.summarizing = true
	go s.runSummary(ctx, s.transcript.Flatten())
}

func (s *Session) runSummary(ctx context.Context, transcript string) {
	out := s.summarizer.Summarize(ctx, transcript)
	s.mu.Lock()
	s.summary = out.Summary
	s.actionItems = out.ActionItems
	s.summarizing = false
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	close(s.done)
}

func (s *Session) startTickingLocked() {
	if s.stopTick != nil {
		return
	}
	stop := make(chan struct{})
	s.stopTick = stop
	go s.runTicks(stop)
}

func (s *Session) stopTickingLocked() {
	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
}

func (s *Session) runTicks(stop chan struct{}) {
	t := time.NewTicker(s.tickEvery)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			s.tick()
		}
	}
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Status:       s.status,
		Summarizing:  s.summarizing,
		SpeakerIndex: s.idx,
		Remaining:    s.timer.Remaining(),
		TalkTimes:    s.talk.Snapshot(),
		Entries:      s.transcript.Entries(),
	}
	if s.status != StatusFinished && s.idx < len(s.attendees) {
		snap.CurrentSpeaker = s.attendees[s.idx].Name
	}
	return snap
}

func (s *Session) notify(snap Snapshot) {
	if s.listener != nil {
		s.listener(snap)
	}
}
