package store

import (
	"github.com/mardromus/scrumdinger/models"
)

// ScrumStore defines the interface for scrum and team persistence.
// It is the opaque read/write boundary the meeting core hands finished
// results to; no transactional guarantees are promised beyond single-call
// atomicity.
type ScrumStore interface {
	// Initialize configures the store with necessary parameters, such as
	// file path and data format. It must be called before any other
	// store operation.
	Initialize(config map[string]string) error

	// CreateScrum adds a new scrum to the store, generating an ID and
	// timestamps where missing. The scrum is validated before writing.
	CreateScrum(scrum models.Scrum) (models.Scrum, error)

	// GetScrum retrieves a scrum by its unique identifier.
	GetScrum(id string) (models.Scrum, error)

	// UpdateScrum modifies an existing scrum, applying the given updates.
	// The 'updates' map contains field names to their new values.
	UpdateScrum(id string, updates map[string]interface{}) (models.Scrum, error)

	// DeleteScrum removes a scrum from the store.
	DeleteScrum(id string) error

	// ListScrums retrieves scrums, optionally filtered and sorted.
	// If filterFn is nil, all scrums are returned (subject to sorting).
	ListScrums(filterFn func(models.Scrum) bool, sortFn func([]models.Scrum) []models.Scrum) ([]models.Scrum, error)

	// MarkInProgress flips a scrum to IN_PROGRESS when its live meeting starts.
	MarkInProgress(id string) (models.Scrum, error)

	// FinalizeScrum merges a finished meeting's result into the record and
	// flips the status to FINISHED.
	FinalizeScrum(id string, result FinishedMeeting) (models.Scrum, error)

	// ToggleActionItem flips the completed flag of the action item at index.
	ToggleActionItem(id string, index int) (models.Scrum, error)

	// AddComment appends a comment to a scrum's discussion thread.
	AddComment(id string, comment models.Comment) (models.Scrum, error)

	// CreateTeam adds a new team to the store.
	CreateTeam(team models.Team) (models.Team, error)

	// GetTeam retrieves a team by its unique identifier.
	GetTeam(id string) (models.Team, error)

	// ListTeams retrieves all teams.
	ListTeams() ([]models.Team, error)

	// DeleteTeam removes a team from the store.
	DeleteTeam(id string) error

	// Close releases any resources held by the store, such as file locks.
	Close() error
}

// FinishedMeeting carries everything a completed live meeting folds back
// into the permanent scrum record.
type FinishedMeeting struct {
	Transcript  string
	Summary     string
	TalkTimes   map[string]int
	ActionItems []models.ActionItem
	Notes       string
}
