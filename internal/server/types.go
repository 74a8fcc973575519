package server

import (
	"time"

	"github.com/mardromus/scrumdinger/models"
)

// createScrumRequest is the POST /api/scrums body.
type createScrumRequest struct {
	Title              string            `json:"title"`
	Description        string            `json:"description,omitempty"`
	Attendees          []models.Attendee `json:"attendees"`
	DurationMinutes    int               `json:"durationMinutes"`
	TimePerSpeakerSecs int               `json:"timePerSpeakerSeconds"`
	ScheduledAt        time.Time         `json:"scheduledAt"`
	TeamID             string            `json:"teamId,omitempty"`
	Recurring          string            `json:"recurring,omitempty"`
}

// commentRequest is the POST /api/scrums/{id}/comments body.
type commentRequest struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// utteranceRequest is the POST /api/meeting/utterance body. Text replaces
// the current speaker's input buffer; Log additionally flushes it into the
// transcript.
type utteranceRequest struct {
	Text string `json:"text"`
	Log  bool   `json:"log"`
}

// extendRequest is the POST /api/meeting/extend body.
type extendRequest struct {
	Seconds int `json:"seconds"`
}

// notesRequest is the POST /api/meeting/notes body.
type notesRequest struct {
	Text string `json:"text"`
}

// createTeamRequest is the POST /api/teams body.
type createTeamRequest struct {
	Name    string              `json:"name"`
	Members []models.TeamMember `json:"members,omitempty"`
}
