package store

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/mardromus/scrumdinger/models"
)

func setupTestStore(t *testing.T) *FileScrumStore {
	t.Helper()

	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "scrums.json")

	store := NewFileScrumStore()
	config := map[string]string{
		"dataFile":       filePath,
		"dataFileFormat": "json",
	}

	err := store.Initialize(config)
	if err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}

	return store
}

func sampleScrum(title string) models.Scrum {
	return models.Scrum{
		Title: title,
		Attendees: []models.Attendee{
			{Email: "alice@example.com", Name: "Alice"},
			{Email: "bob@example.com", Name: "Bob"},
		},
		DurationMinutes:    15,
		TimePerSpeakerSecs: 30,
		ScheduledAt:        time.Now().Add(time.Hour).UTC(),
	}
}

func TestFileScrumStore_BasicOperations(t *testing.T) {
	store := setupTestStore(t)
	defer func() { _ = store.Close() }()

	// Test CreateScrum
	created, err := store.CreateScrum(sampleScrum("Daily Standup"))
	if err != nil {
		t.Fatalf("CreateScrum failed: %v", err)
	}
	if created.ID == "" {
		t.Error("Created scrum should have an ID")
	}
	if created.Status != models.StatusNotStarted {
		t.Errorf("Status = %q, want NOT_STARTED", created.Status)
	}

	// Test GetScrum
	retrieved, err := store.GetScrum(created.ID)
	if err != nil {
		t.Fatalf("GetScrum failed: %v", err)
	}
	if retrieved.Title != "Daily Standup" {
		t.Errorf("Title mismatch: got %q", retrieved.Title)
	}
	if len(retrieved.Attendees) != 2 {
		t.Errorf("Attendees = %d, want 2", len(retrieved.Attendees))
	}

	// Test UpdateScrum
	updates := map[string]interface{}{
		"title":                 "Platform Standup",
		"timePerSpeakerSeconds": float64(45), // JSON decodes numbers to float64
		"recurring":             "daily",
	}
	updated, err := store.UpdateScrum(created.ID, updates)
	if err != nil {
		t.Fatalf("UpdateScrum failed: %v", err)
	}
	if updated.Title != "Platform Standup" {
		t.Errorf("Title not updated: got %q", updated.Title)
	}
	if updated.TimePerSpeakerSecs != 45 {
		t.Errorf("TimePerSpeakerSecs = %d, want 45", updated.TimePerSpeakerSecs)
	}
	if updated.Recurring != models.RecurrenceDaily {
		t.Errorf("Recurring = %q, want daily", updated.Recurring)
	}

	// Test ListScrums
	scrums, err := store.ListScrums(nil, nil)
	if err != nil {
		t.Fatalf("ListScrums failed: %v", err)
	}
	if len(scrums) != 1 {
		t.Errorf("Expected 1 scrum, got %d", len(scrums))
	}

	// Test DeleteScrum
	if err := store.DeleteScrum(created.ID); err != nil {
		t.Fatalf("DeleteScrum failed: %v", err)
	}
	if _, err := store.GetScrum(created.ID); !errors.Is(err, ErrScrumNotFound) {
		t.Errorf("GetScrum after delete = %v, want ErrScrumNotFound", err)
	}
}

func TestFileScrumStore_UpdateRejectsUnknownField(t *testing.T) {
	store := setupTestStore(t)
	defer func() { _ = store.Close() }()

	created, err := store.CreateScrum(sampleScrum("Daily Standup"))
	if err != nil {
		t.Fatalf("CreateScrum failed: %v", err)
	}

	_, err = store.UpdateScrum(created.ID, map[string]interface{}{"attendees": []string{}})
	if err == nil {
		t.Fatal("updating the attendee rotation should be rejected")
	}
	if !strings.Contains(err.Error(), "unknown or immutable") {
		t.Errorf("error = %v, want unknown-field rejection", err)
	}
}

func TestFileScrumStore_CreateValidates(t *testing.T) {
	store := setupTestStore(t)
	defer func() { _ = store.Close() }()

	bad := sampleScrum("Daily Standup")
	bad.Attendees = nil
	if _, err := store.CreateScrum(bad); err == nil {
		t.Error("scrum without attendees should fail validation")
	}
}

func TestFileScrumStore_MeetingLifecycle(t *testing.T) {
	store := setupTestStore(t)
	defer func() { _ = store.Close() }()

	created, err := store.CreateScrum(sampleScrum("Daily Standup"))
	if err != nil {
		t.Fatalf("CreateScrum failed: %v", err)
	}

	// Test MarkInProgress
	inProgress, err := store.MarkInProgress(created.ID)
	if err != nil {
		t.Fatalf("MarkInProgress failed: %v", err)
	}
	if inProgress.Status != models.StatusInProgress {
		t.Errorf("Status = %q, want IN_PROGRESS", inProgress.Status)
	}

	// Test FinalizeScrum
	result := FinishedMeeting{
		Transcript: "[Alice]:\nShipped the login page.",
		Summary:    "**Summary:**\nGood progress.\n\n**Action Items:**\n[ ] Review PR",
		TalkTimes:  map[string]int{"Alice": 25, "Bob": 18},
		ActionItems: []models.ActionItem{
			{Text: "Review PR"},
		},
		Notes: "ship Friday",
	}
	finished, err := store.FinalizeScrum(created.ID, result)
	if err != nil {
		t.Fatalf("FinalizeScrum failed: %v", err)
	}
	if finished.Status != models.StatusFinished {
		t.Errorf("Status = %q, want FINISHED", finished.Status)
	}
	if finished.Transcript != result.Transcript {
		t.Errorf("Transcript not persisted")
	}
	if finished.TalkTimes["Alice"] != 25 {
		t.Errorf("TalkTimes = %v", finished.TalkTimes)
	}
	if finished.Notes != "ship Friday" {
		t.Errorf("Notes = %q", finished.Notes)
	}

	// Marking a finished scrum in progress again is rejected
	if _, err := store.MarkInProgress(created.ID); err == nil {
		t.Error("MarkInProgress on a finished scrum should fail")
	}

	// Test ToggleActionItem
	toggled, err := store.ToggleActionItem(created.ID, 0)
	if err != nil {
		t.Fatalf("ToggleActionItem failed: %v", err)
	}
	if !toggled.ActionItems[0].Completed {
		t.Error("action item should be completed after toggle")
	}
	toggled, err = store.ToggleActionItem(created.ID, 0)
	if err != nil {
		t.Fatalf("ToggleActionItem failed: %v", err)
	}
	if toggled.ActionItems[0].Completed {
		t.Error("action item should be incomplete after a second toggle")
	}

	// Out-of-range index
	if _, err := store.ToggleActionItem(created.ID, 5); err == nil {
		t.Error("out-of-range action item index should fail")
	}
}

func TestFileScrumStore_Comments(t *testing.T) {
	store := setupTestStore(t)
	defer func() { _ = store.Close() }()

	created, err := store.CreateScrum(sampleScrum("Daily Standup"))
	if err != nil {
		t.Fatalf("CreateScrum failed: %v", err)
	}

	withComment, err := store.AddComment(created.ID, models.Comment{Author: "Carol", Text: "Nice pace today"})
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if len(withComment.Comments) != 1 {
		t.Fatalf("Comments = %d, want 1", len(withComment.Comments))
	}
	if withComment.Comments[0].CreatedAt.IsZero() {
		t.Error("comment timestamp should be filled in")
	}
}

func TestFileScrumStore_ListFilterAndSort(t *testing.T) {
	store := setupTestStore(t)
	defer func() { _ = store.Close() }()

	early := sampleScrum("Early Sync")
	early.ScheduledAt = time.Now().Add(time.Hour).UTC()
	late := sampleScrum("Late Sync")
	late.ScheduledAt = time.Now().Add(3 * time.Hour).UTC()

	if _, err := store.CreateScrum(late); err != nil {
		t.Fatalf("CreateScrum failed: %v", err)
	}
	created, err := store.CreateScrum(early)
	if err != nil {
		t.Fatalf("CreateScrum failed: %v", err)
	}
	if _, err := store.MarkInProgress(created.ID); err != nil {
		t.Fatalf("MarkInProgress failed: %v", err)
	}

	inProgress, err := store.ListScrums(func(s models.Scrum) bool {
		return s.Status == models.StatusInProgress
	}, nil)
	if err != nil {
		t.Fatalf("ListScrums failed: %v", err)
	}
	if len(inProgress) != 1 || inProgress[0].Title != "Early Sync" {
		t.Errorf("filter result = %v", inProgress)
	}

	sorted, err := store.ListScrums(nil, func(list []models.Scrum) []models.Scrum {
		sort.Slice(list, func(i, j int) bool {
			return list[i].ScheduledAt.Before(list[j].ScheduledAt)
		})
		return list
	})
	if err != nil {
		t.Fatalf("ListScrums failed: %v", err)
	}
	if len(sorted) != 2 || sorted[0].Title != "Early Sync" || sorted[1].Title != "Late Sync" {
		t.Errorf("sort result = %v", sorted)
	}
}

func TestFileScrumStore_Teams(t *testing.T) {
	store := setupTestStore(t)
	defer func() { _ = store.Close() }()

	team, err := store.CreateTeam(models.Team{
		Name: "Platform",
		Members: []models.TeamMember{
			{Email: "carol@example.com", Name: "Carol", Role: models.RoleScrumMaster},
		},
	})
	if err != nil {
		t.Fatalf("CreateTeam failed: %v", err)
	}
	if team.ID == "" {
		t.Error("Created team should have an ID")
	}

	got, err := store.GetTeam(team.ID)
	if err != nil {
		t.Fatalf("GetTeam failed: %v", err)
	}
	if got.Name != "Platform" {
		t.Errorf("Name = %q", got.Name)
	}

	teams, err := store.ListTeams()
	if err != nil {
		t.Fatalf("ListTeams failed: %v", err)
	}
	if len(teams) != 1 {
		t.Errorf("ListTeams = %d, want 1", len(teams))
	}

	if err := store.DeleteTeam(team.ID); err != nil {
		t.Fatalf("DeleteTeam failed: %v", err)
	}
	if _, err := store.GetTeam(team.ID); !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("GetTeam after delete = %v, want ErrTeamNotFound", err)
	}
}

func TestFileScrumStore_PersistsAcrossReopen(t *testing.T) {
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "scrums.json")
	config := map[string]string{"dataFile": filePath, "dataFileFormat": "json"}

	store := NewFileScrumStore()
	if err := store.Initialize(config); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	created, err := store.CreateScrum(sampleScrum("Persistent Standup"))
	if err != nil {
		t.Fatalf("CreateScrum failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := NewFileScrumStore()
	if err := reopened.Initialize(config); err != nil {
		t.Fatalf("re-Initialize failed: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, err := reopened.GetScrum(created.ID)
	if err != nil {
		t.Fatalf("GetScrum after reopen failed: %v", err)
	}
	if got.Title != "Persistent Standup" {
		t.Errorf("Title = %q", got.Title)
	}
}

func TestFileScrumStore_YAMLFormat(t *testing.T) {
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "scrums.yaml")

	store := NewFileScrumStore()
	err := store.Initialize(map[string]string{"dataFile": filePath, "dataFileFormat": "yaml"})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	created, err := store.CreateScrum(sampleScrum("YAML Standup"))
	if err != nil {
		t.Fatalf("CreateScrum failed: %v", err)
	}
	got, err := store.GetScrum(created.ID)
	if err != nil {
		t.Fatalf("GetScrum failed: %v", err)
	}
	if got.Title != "YAML Standup" {
		t.Errorf("Title = %q", got.Title)
	}
}

func TestFileScrumStore_UnsupportedFormat(t *testing.T) {
	store := NewFileScrumStore()
	err := store.Initialize(map[string]string{"dataFileFormat": "xml"})
	if err == nil {
		t.Fatal("unsupported format should fail Initialize")
	}
}
