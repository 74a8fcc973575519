// Package reminder dispatches start-time reminders for upcoming scrums.
// Delivery itself lives behind the Notifier interface; email transport is a
// deployment concern outside this module.
package reminder

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mardromus/scrumdinger/models"
	"github.com/mardromus/scrumdinger/store"
)

// Notifier delivers one reminder for an upcoming scrum.
type Notifier interface {
	Notify(scrum models.Scrum) error
}

// LogNotifier writes reminders to the process log. It is the default when no
// delivery backend is wired in.
type LogNotifier struct{}

// Notify logs the reminder.
func (LogNotifier) Notify(scrum models.Scrum) error {
	log.Printf("reminder: scrum %q starts at %s (%d attendees)",
		scrum.Title, scrum.ScheduledAt.Format(time.RFC3339), len(scrum.Attendees))
	return nil
}

// Service periodically scans for scrums whose scheduled time falls inside
// the reminder window and notifies once per scrum.
type Service struct {
	store    store.ScrumStore
	notifier Notifier
	window   time.Duration
	interval time.Duration

	mu   sync.Mutex
	sent map[string]bool
}

// NewService builds a reminder service. window is how far ahead of the
// scheduled time a reminder fires; interval is how often the store is
// scanned.
func NewService(st store.ScrumStore, n Notifier, window, interval time.Duration) *Service {
	if n == nil {
		n = LogNotifier{}
	}
	return &Service{
		store:    st,
		notifier: n,
		window:   window,
		interval: interval,
		sent:     make(map[string]bool),
	}
}

// Run scans on the configured interval until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.CheckOnce(time.Now()); err != nil {
				log.Printf("reminder scan failed: %v", err)
			}
		}
	}
}

// CheckOnce performs one scan relative to now and returns how many
// reminders were dispatched. Each scrum is reminded at most once per
// process lifetime.
func (s *Service) CheckOnce(now time.Time) (int, error) {
	scrums, err := s.store.ListScrums(func(scrum models.Scrum) bool {
		return scrum.Status == models.StatusNotStarted
	}, nil)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, scrum := range scrums {
		if s.sent[scrum.ID] {
			continue
		}
		until := scrum.ScheduledAt.Sub(now)
		if until < 0 || until > s.window {
			continue
		}
		if err := s.notifier.Notify(scrum); err != nil {
			log.Printf("reminder delivery failed for scrum %s: %v", scrum.ID, err)
			continue
		}
		s.sent[scrum.ID] = true
		dispatched++
	}
	return dispatched, nil
}
