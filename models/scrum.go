package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ScrumStatus represents the lifecycle status of a scheduled scrum.
type ScrumStatus string

const (
	StatusNotStarted ScrumStatus = "NOT_STARTED"
	StatusInProgress ScrumStatus = "IN_PROGRESS"
	StatusFinished   ScrumStatus = "FINISHED"
)

// Recurrence tags a scrum that repeats on a schedule.
type Recurrence string

const (
	RecurrenceDaily  Recurrence = "daily"
	RecurrenceWeekly Recurrence = "weekly"
)

// Attendee is a participant eligible to speak in rotation order.
// Email is the attendee's identity within a meeting; Name is what the
// transcript and talk-time views display.
type Attendee struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=1,max=100"`
}

// ActionItem is a follow-up task parsed out of an AI summary.
// Items are never auto-completed; the flag is toggled by the user.
type ActionItem struct {
	Text      string `json:"text" validate:"required"`
	Completed bool   `json:"completed"`
}

// Comment is one entry in a scrum's discussion thread.
type Comment struct {
	Author    string    `json:"author" validate:"required"`
	Text      string    `json:"text" validate:"required"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
}

// Scrum is one scheduled or completed standup meeting record.
//
// The attendee list is fixed at creation time: it defines the speaking
// rotation and must not change once the meeting starts. The fields below
// the status line are populated only after the meeting finishes.
type Scrum struct {
	ID                   string      `json:"id" validate:"required,uuid4"`
	Title                string      `json:"title" validate:"required,min=3,max=255"`
	Description          string      `json:"description,omitempty"`
	Attendees            []Attendee  `json:"attendees" validate:"required,min=1,unique=Email,dive"`
	DurationMinutes      int         `json:"durationMinutes" validate:"required,min=1"`
	TimePerSpeakerSecs   int         `json:"timePerSpeakerSeconds" validate:"required,min=1"`
	ScheduledAt          time.Time   `json:"scheduledAt" validate:"required"`
	Status               ScrumStatus `json:"status" validate:"required,oneof=NOT_STARTED IN_PROGRESS FINISHED"`
	TeamID               string      `json:"teamId,omitempty" validate:"omitempty,uuid4"`
	Recurring            Recurrence  `json:"recurring,omitempty" validate:"omitempty,oneof=daily weekly"`

	// Populated after completion.
	Transcript  string         `json:"transcript,omitempty"`
	Summary     string         `json:"summary,omitempty"`
	TalkTimes   map[string]int `json:"speakerTalkTimes,omitempty"` // display name -> cumulative seconds
	ActionItems []ActionItem   `json:"actionItems,omitempty" validate:"omitempty,dive"`
	Notes       string         `json:"notes,omitempty"`
	Comments    []Comment      `json:"comments,omitempty" validate:"omitempty,dive"`

	CreatedAt time.Time `json:"createdAt" validate:"required"`
	UpdatedAt time.Time `json:"updatedAt" validate:"required"`
}

// TeamMemberRole describes a member's role within a team.
type TeamMemberRole string

const (
	RoleScrumMaster TeamMemberRole = "Scrum Master"
	RoleMember      TeamMemberRole = "Member"
	RoleObserver    TeamMemberRole = "Observer"
)

// TeamMember is one member of a team.
type TeamMember struct {
	Email string         `json:"email" validate:"required,email"`
	Name  string         `json:"name" validate:"required,min=1,max=100"`
	Role  TeamMemberRole `json:"role" validate:"required,oneof='Scrum Master' Member Observer"`
}

// Team groups the people a scrum is scheduled for.
type Team struct {
	ID      string       `json:"id" validate:"required,uuid4"`
	Name    string       `json:"name" validate:"required,min=1,max=100"`
	Members []TeamMember `json:"members" validate:"omitempty,unique=Email,dive"`
}

// global validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	if validate == nil {
		validate = validator.New()
	}
	err := validate.Struct(s)
	if err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			errorMessages = append(errorMessages, fmt.Sprintf("Validation failed on field '%s': rule '%s' (value: '%v')", e.StructNamespace(), e.Tag(), e.Value()))
		}
		return fmt.Errorf("%s", strings.Join(errorMessages, "; "))
	}
	return nil
}

// NewScrum creates a scrum in NOT_STARTED with timestamps set.
func NewScrum(id, title string, attendees []Attendee, durationMinutes, timePerSpeakerSecs int, scheduledAt time.Time) *Scrum {
	now := time.Now()
	return &Scrum{
		ID:                 id,
		Title:              title,
		Attendees:          attendees,
		DurationMinutes:    durationMinutes,
		TimePerSpeakerSecs: timePerSpeakerSecs,
		ScheduledAt:        scheduledAt,
		Status:             StatusNotStarted,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// SpeakerNames returns the attendee display names in rotation order.
func (s *Scrum) SpeakerNames() []string {
	names := make([]string, 0, len(s.Attendees))
	for _, a := range s.Attendees {
		names = append(names, a.Name)
	}
	return names
}
