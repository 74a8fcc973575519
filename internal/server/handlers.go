package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/mardromus/scrumdinger/internal/logger"
	"github.com/mardromus/scrumdinger/internal/meeting"
	"github.com/mardromus/scrumdinger/models"
	"github.com/mardromus/scrumdinger/store"
)

// handleListScrums returns scrums, optionally filtered by status, ordered by
// scheduled time.
func (s *Server) handleListScrums(w http.ResponseWriter, r *http.Request) {
	statusFilter := r.URL.Query().Get("status")

	var filterFn func(models.Scrum) bool
	if statusFilter != "" {
		filterFn = func(scrum models.Scrum) bool {
			return string(scrum.Status) == statusFilter
		}
	}

	scrums, err := s.store.ListScrums(filterFn, func(list []models.Scrum) []models.Scrum {
		sort.Slice(list, func(i, j int) bool {
			return list[i].ScheduledAt.Before(list[j].ScheduledAt)
		})
		return list
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if scrums == nil {
		scrums = []models.Scrum{}
	}

	writeAPIJSON(w, scrums)
}

func (s *Server) handleCreateScrum(w http.ResponseWriter, r *http.Request) {
	var req createScrumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	scrum := models.NewScrum("", req.Title, req.Attendees, req.DurationMinutes, req.TimePerSpeakerSecs, req.ScheduledAt)
	scrum.Description = req.Description
	scrum.TeamID = req.TeamID
	scrum.Recurring = models.Recurrence(req.Recurring)

	created, err := s.store.CreateScrum(*scrum)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	writeAPIStatus(w, http.StatusCreated, created)
}

func (s *Server) handleGetScrum(w http.ResponseWriter, r *http.Request) {
	scrum, err := s.store.GetScrum(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrScrumNotFound) {
			http.Error(w, "scrum not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeAPIJSON(w, scrum)
}

func (s *Server) handleUpdateScrum(w http.ResponseWriter, r *http.Request) {
	var updates map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	scrum, err := s.store.UpdateScrum(r.PathValue("id"), updates)
	if err != nil {
		if errors.Is(err, store.ErrScrumNotFound) {
			http.Error(w, "scrum not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeAPIJSON(w, scrum)
}

func (s *Server) handleDeleteScrum(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteScrum(r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrScrumNotFound) {
			http.Error(w, "scrum not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeAPIJSON(w, map[string]bool{"deleted": true})
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	scrum, err := s.store.AddComment(r.PathValue("id"), models.Comment{
		Author:    req.Author,
		Text:      req.Text,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, store.ErrScrumNotFound) {
			http.Error(w, "scrum not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeAPIJSON(w, scrum)
}

func (s *Server) handleToggleActionItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "invalid action item index", http.StatusBadRequest)
		return
	}

	scrum, err := s.store.ToggleActionItem(r.PathValue("id"), index)
	if err != nil {
		if errors.Is(err, store.ErrScrumNotFound) {
			http.Error(w, "scrum not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeAPIJSON(w, scrum)
}

// handleStartMeeting opens the live meeting room for a scrum. Only one
// meeting may be live at a time.
func (s *Server) handleStartMeeting(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	scrum, err := s.store.GetScrum(id)
	if err != nil {
		if errors.Is(err, store.ErrScrumNotFound) {
			http.Error(w, "scrum not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if scrum.Status == models.StatusFinished {
		http.Error(w, "scrum is already finished", http.StatusConflict)
		return
	}

	s.mu.Lock()
	if s.live != nil {
		s.mu.Unlock()
		http.Error(w, "another meeting is already live", http.StatusConflict)
		return
	}

	sess := meeting.NewSession(&scrum, s.pipeline)
	if err := sess.Start(); err != nil {
		s.mu.Unlock()
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.live = sess
	s.liveID = id
	s.mu.Unlock()
	logger.SetLiveMeeting(id)

	go s.finalizeWhenDone(id, sess)

	if _, err := s.store.MarkInProgress(id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeAPIStatus(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleMeetingSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, id := s.liveSession()
	if sess == nil {
		http.Error(w, "no live meeting", http.StatusNotFound)
		return
	}
	writeAPIJSON(w, struct {
		ScrumID string `json:"scrumId"`
		meeting.Snapshot
	}{ScrumID: id, Snapshot: sess.Snapshot()})
}

func (s *Server) handlePauseMeeting(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.liveSession()
	if sess == nil {
		http.Error(w, "no live meeting", http.StatusNotFound)
		return
	}
	sess.Pause()
	writeAPIJSON(w, sess.Snapshot())
}

func (s *Server) handleResumeMeeting(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.liveSession()
	if sess == nil {
		http.Error(w, "no live meeting", http.StatusNotFound)
		return
	}
	if err := sess.Start(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeAPIJSON(w, sess.Snapshot())
}

func (s *Server) handleNextSpeaker(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.liveSession()
	if sess == nil {
		http.Error(w, "no live meeting", http.StatusNotFound)
		return
	}
	writeAPIJSON(w, sess.NextSpeaker())
}

func (s *Server) handleUtterance(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.liveSession()
	if sess == nil {
		http.Error(w, "no live meeting", http.StatusNotFound)
		return
	}

	var req utteranceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sess.SetUtterance(req.Text)
	if req.Log {
		if err := sess.LogUtterance(); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
	}
	writeAPIJSON(w, sess.Snapshot())
}

func (s *Server) handleExtend(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.liveSession()
	if sess == nil {
		http.Error(w, "no live meeting", http.StatusNotFound)
		return
	}

	var req extendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	writeAPIJSON(w, sess.AddTime(req.Seconds))
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.liveSession()
	if sess == nil {
		http.Error(w, "no live meeting", http.StatusNotFound)
		return
	}

	var req notesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	sess.SetNotes(req.Text)
	writeAPIJSON(w, sess.Snapshot())
}

// handleEndMeeting finishes the live meeting early. The summary is produced
// in the background; the snapshot returned here reports the summarizing
// sub-state, and the finalize goroutine persists the result once it lands.
func (s *Server) handleEndMeeting(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.liveSession()
	if sess == nil {
		http.Error(w, "no live meeting", http.StatusNotFound)
		return
	}
	sess.End(context.Background())
	writeAPIJSON(w, sess.Snapshot())
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.store.ListTeams()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if teams == nil {
		teams = []models.Team{}
	}
	writeAPIJSON(w, teams)
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	team, err := s.store.CreateTeam(models.Team{Name: req.Name, Members: req.Members})
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeAPIStatus(w, http.StatusCreated, team)
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := s.store.GetTeam(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrTeamNotFound) {
			http.Error(w, "team not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeAPIJSON(w, team)
}

func (s *Server) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTeam(r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrTeamNotFound) {
			http.Error(w, "team not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeAPIJSON(w, map[string]bool{"deleted": true})
}

// handleMemberSummary generates an AI performance summary for one member
// from their updates over the last N days (default 7).
func (s *Server) handleMemberSummary(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	days := 7
	if d := r.URL.Query().Get("days"); d != "" {
		if parsed, err := strconv.Atoi(d); err == nil && parsed > 0 {
			days = parsed
		}
	}

	since := time.Now().AddDate(0, 0, -days)
	text, err := s.analytics.MemberSummary(r.Context(), name, since)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeAPIJSON(w, map[string]string{"member": name, "summary": text})
}

func (s *Server) handleBlockerTrends(w http.ResponseWriter, r *http.Request) {
	text, err := s.analytics.BlockerTrends(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeAPIJSON(w, map[string]string{"analysis": text})
}

func (s *Server) handleTalkTime(w http.ResponseWriter, r *http.Request) {
	totals, err := s.analytics.TalkTimeTotals(time.Time{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeAPIJSON(w, totals)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeAPIJSON(w, map[string]string{
		"name":    "scrumdinger",
		"version": "0.1.0",
	})
}
