package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/mardromus/scrumdinger/internal/meeting"
	"github.com/mardromus/scrumdinger/internal/summary"
	"github.com/mardromus/scrumdinger/models"
	"github.com/mardromus/scrumdinger/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, gen summary.Generator) (*Server, store.ScrumStore) {
	t.Helper()

	st := store.NewFileScrumStore()
	err := st.Initialize(map[string]string{
		"dataFile":       filepath.Join(t.TempDir(), "scrums.json"),
		"dataFileFormat": "json",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	srv, err := New(0, st, gen, "")
	require.NoError(t, err)
	t.Cleanup(func() {
		srv.mu.Lock()
		if srv.live != nil {
			srv.live.Close()
		}
		srv.mu.Unlock()
	})

	return srv, st
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, req)
	return rec
}

func createTestScrum(t *testing.T, srv *Server) models.Scrum {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/scrums", createScrumRequest{
		Title: "Daily Standup",
		Attendees: []models.Attendee{
			{Email: "alice@example.com", Name: "Alice"},
			{Email: "bob@example.com", Name: "Bob"},
		},
		DurationMinutes:    15,
		TimePerSpeakerSecs: 30,
		ScheduledAt:        time.Now().Add(time.Hour).UTC(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var scrum models.Scrum
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scrum))
	return scrum
}

func TestScrumCRUD(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	created := createTestScrum(t, srv)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusNotStarted, created.Status)

	// List
	rec := doJSON(t, srv, http.MethodGet, "/api/scrums", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var list []models.Scrum
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	// Get
	rec = doJSON(t, srv, http.MethodGet, "/api/scrums/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Patch
	rec = doJSON(t, srv, http.MethodPatch, "/api/scrums/"+created.ID, map[string]interface{}{
		"title": "Platform Standup",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	var updated models.Scrum
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Platform Standup", updated.Title)

	// Delete
	rec = doJSON(t, srv, http.MethodDelete, "/api/scrums/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/scrums/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScrumNotFound(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/scrums/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/api/scrums/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateScrum_Invalid(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/scrums", createScrumRequest{
		Title: "No attendees",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestComments(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	created := createTestScrum(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/scrums/"+created.ID+"/comments", commentRequest{
		Author: "Carol",
		Text:   "Good pace today",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var scrum models.Scrum
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scrum))
	require.Len(t, scrum.Comments, 1)
	assert.Equal(t, "Carol", scrum.Comments[0].Author)
	assert.False(t, scrum.Comments[0].CreatedAt.IsZero())
}

func TestToggleActionItem(t *testing.T) {
	srv, st := newTestServer(t, nil)
	created := createTestScrum(t, srv)

	_, err := st.FinalizeScrum(created.ID, store.FinishedMeeting{
		ActionItems: []models.ActionItem{{Text: "Review PR"}},
	})
	require.NoError(t, err)

	rec := doJSON(t, srv, http.MethodPost, "/api/scrums/"+created.ID+"/action-items/0/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var scrum models.Scrum
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scrum))
	assert.True(t, scrum.ActionItems[0].Completed)

	// Out of range
	rec = doJSON(t, srv, http.MethodPost, "/api/scrums/"+created.ID+"/action-items/9/toggle", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Non-numeric index
	rec = doJSON(t, srv, http.MethodPost, "/api/scrums/"+created.ID+"/action-items/x/toggle", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeetingFlow(t *testing.T) {
	srv, st := newTestServer(t, nil)
	created := createTestScrum(t, srv)

	// No live meeting yet
	rec := doJSON(t, srv, http.MethodGet, "/api/meeting", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Start
	rec = doJSON(t, srv, http.MethodPost, "/api/scrums/"+created.ID+"/meeting/start", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var snap meeting.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, meeting.StatusInProgress, snap.Status)
	assert.Equal(t, "Alice", snap.CurrentSpeaker)

	stored, err := st.GetScrum(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, stored.Status)

	// A second live meeting is rejected
	other := createTestScrum(t, srv)
	rec = doJSON(t, srv, http.MethodPost, "/api/scrums/"+other.ID+"/meeting/start", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Utterance buffered and logged
	rec = doJSON(t, srv, http.MethodPost, "/api/meeting/utterance", utteranceRequest{
		Text: "Shipped the login page",
		Log:  true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, "Alice", snap.Entries[0].Speaker)

	// Extend
	rec = doJSON(t, srv, http.MethodPost, "/api/meeting/extend", extendRequest{Seconds: 15})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.GreaterOrEqual(t, snap.Remaining, 40)

	// Pause and resume
	rec = doJSON(t, srv, http.MethodPost, "/api/meeting/pause", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, meeting.StatusPaused, snap.Status)

	rec = doJSON(t, srv, http.MethodPost, "/api/meeting/resume", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, meeting.StatusInProgress, snap.Status)

	// Next speaker
	rec = doJSON(t, srv, http.MethodPost, "/api/meeting/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "Bob", snap.CurrentSpeaker)

	// Notes
	rec = doJSON(t, srv, http.MethodPost, "/api/meeting/notes", notesRequest{Text: "ship Friday"})
	require.Equal(t, http.StatusOK, rec.Code)

	// End; the finalize goroutine folds the result into the store
	rec = doJSON(t, srv, http.MethodPost, "/api/meeting/end", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, meeting.StatusFinished, snap.Status)

	require.Eventually(t, func() bool {
		scrum, err := st.GetScrum(created.ID)
		return err == nil && scrum.Status == models.StatusFinished
	}, 2*time.Second, 10*time.Millisecond, "meeting result never persisted")

	final, err := st.GetScrum(created.ID)
	require.NoError(t, err)
	assert.Contains(t, final.Transcript, "[Alice]:\nShipped the login page")
	assert.Equal(t, summary.ErrNotConfiguredText, final.Summary)
	assert.Equal(t, "ship Friday", final.Notes)

	// The live slot is free again
	require.Eventually(t, func() bool {
		sess, _ := srv.liveSession()
		return sess == nil
	}, 2*time.Second, 10*time.Millisecond)

	rec = doJSON(t, srv, http.MethodPost, "/api/scrums/"+other.ID+"/meeting/start", nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestStartMeeting_FinishedScrumRejected(t *testing.T) {
	srv, st := newTestServer(t, nil)
	created := createTestScrum(t, srv)

	_, err := st.FinalizeScrum(created.ID, store.FinishedMeeting{})
	require.NoError(t, err)

	rec := doJSON(t, srv, http.MethodPost, "/api/scrums/"+created.ID+"/meeting/start", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMeetingControls_RequireLiveMeeting(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	for _, path := range []string{
		"/api/meeting/pause", "/api/meeting/resume", "/api/meeting/next",
		"/api/meeting/extend", "/api/meeting/notes", "/api/meeting/end",
	} {
		rec := doJSON(t, srv, http.MethodPost, path, map[string]interface{}{})
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestTeamsCRUD(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/teams", createTeamRequest{
		Name: "Platform",
		Members: []models.TeamMember{
			{Email: "carol@example.com", Name: "Carol", Role: models.RoleScrumMaster},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var team models.Team
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &team))
	assert.NotEmpty(t, team.ID)

	rec = doJSON(t, srv, http.MethodGet, "/api/teams", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/teams/"+team.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/api/teams/"+team.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/teams/"+team.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyticsEndpoints(t *testing.T) {
	srv, st := newTestServer(t, nil)
	created := createTestScrum(t, srv)

	_, err := st.FinalizeScrum(created.ID, store.FinishedMeeting{
		Transcript: "[Alice]:\nShipped it.",
		Summary:    "**Blockers:**\n* None.",
		TalkTimes:  map[string]int{"Alice": 42},
	})
	require.NoError(t, err)

	// Talk time aggregates without a generator
	rec := doJSON(t, srv, http.MethodGet, "/api/analytics/talktime", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var totals map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &totals))
	assert.Equal(t, 42, totals["Alice"])

	// No blockers short-circuits before generation
	rec = doJSON(t, srv, http.MethodGet, "/api/analytics/blockers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var blockerResp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &blockerResp))
	assert.Equal(t, "No blockers reported.", blockerResp["analysis"])

	// A member with no updates gets the canned response
	rec = doJSON(t, srv, http.MethodGet, "/api/analytics/members/Mallory", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var memberResp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &memberResp))
	assert.Equal(t, "No recent updates found for Mallory.", memberResp["summary"])

	// A member with updates but no generator is a gateway failure
	rec = doJSON(t, srv, http.MethodGet, "/api/analytics/members/Alice?days=30", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestInfoEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/info", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var info map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "scrumdinger", info["name"])
}

func TestCORSHeaders(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/scrums", nil)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/api/scrums", nil)
	optRec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(optRec, req)
	assert.Equal(t, http.StatusNoContent, optRec.Code)
}
