// Package server exposes the scheduling CRUD and the live meeting room over
// a JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/mardromus/scrumdinger/internal/analytics"
	"github.com/mardromus/scrumdinger/internal/logger"
	"github.com/mardromus/scrumdinger/internal/meeting"
	"github.com/mardromus/scrumdinger/internal/summary"
	"github.com/mardromus/scrumdinger/prompts"
	"github.com/mardromus/scrumdinger/store"
)

// Server wires the scrum store, the summary pipeline, the analytics service,
// and at most one live meeting session behind an HTTP mux.
type Server struct {
	store     store.ScrumStore
	pipeline  *summary.Pipeline
	analytics *analytics.Service
	port      int
	server    *http.Server

	// One live meeting at a time; the session owns all live mutable state.
	mu     sync.Mutex
	liveID string
	live   *meeting.Session
}

// New builds the server. gen may be nil, in which case summaries degrade to
// the pipeline's placeholder text and analytics generation endpoints report
// the collaborator as unconfigured.
func New(port int, st store.ScrumStore, gen summary.Generator, templatesDir string) (*Server, error) {
	promptTemplate, err := prompts.GetPrompt(prompts.KeyMeetingSummary, templatesDir)
	if err != nil {
		return nil, fmt.Errorf("load meeting summary prompt: %w", err)
	}

	s := &Server{
		store:     st,
		pipeline:  summary.NewPipeline(gen, promptTemplate),
		analytics: analytics.NewService(st, gen, templatesDir),
		port:      port,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/scrums", s.handleListScrums)
	mux.HandleFunc("POST /api/scrums", s.handleCreateScrum)
	mux.HandleFunc("GET /api/scrums/{id}", s.handleGetScrum)
	mux.HandleFunc("PATCH /api/scrums/{id}", s.handleUpdateScrum)
	mux.HandleFunc("DELETE /api/scrums/{id}", s.handleDeleteScrum)
	mux.HandleFunc("POST /api/scrums/{id}/comments", s.handleAddComment)
	mux.HandleFunc("POST /api/scrums/{id}/action-items/{index}/toggle", s.handleToggleActionItem)

	mux.HandleFunc("POST /api/scrums/{id}/meeting/start", s.handleStartMeeting)
	mux.HandleFunc("GET /api/meeting", s.handleMeetingSnapshot)
	mux.HandleFunc("POST /api/meeting/pause", s.handlePauseMeeting)
	mux.HandleFunc("POST /api/meeting/resume", s.handleResumeMeeting)
	mux.HandleFunc("POST /api/meeting/next", s.handleNextSpeaker)
	mux.HandleFunc("POST /api/meeting/utterance", s.handleUtterance)
	mux.HandleFunc("POST /api/meeting/extend", s.handleExtend)
	mux.HandleFunc("POST /api/meeting/notes", s.handleNotes)
	mux.HandleFunc("POST /api/meeting/end", s.handleEndMeeting)

	mux.HandleFunc("GET /api/teams", s.handleListTeams)
	mux.HandleFunc("POST /api/teams", s.handleCreateTeam)
	mux.HandleFunc("GET /api/teams/{id}", s.handleGetTeam)
	mux.HandleFunc("DELETE /api/teams/{id}", s.handleDeleteTeam)

	mux.HandleFunc("GET /api/analytics/members/{name}", s.handleMemberSummary)
	mux.HandleFunc("GET /api/analytics/blockers", s.handleBlockerTrends)
	mux.HandleFunc("GET /api/analytics/talktime", s.handleTalkTime)

	mux.HandleFunc("GET /api/info", s.handleInfo)
	mux.HandleFunc("OPTIONS /api/", s.handleCORS)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: corsMiddleware(mux),
	}

	return s, nil
}

// Start runs the listener on its own goroutine.
func (s *Server) Start(wg *sync.WaitGroup, errChan chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()
}

// Shutdown stops the listener and tears down any live session's tick loop.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.live != nil {
		s.live.Close()
		s.live = nil
		s.liveID = ""
	}
	s.mu.Unlock()
	return s.server.Shutdown(ctx)
}

// liveSession returns the active session, or nil when no meeting is live.
func (s *Server) liveSession() (*meeting.Session, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live, s.liveID
}

// finalizeWhenDone waits for the session to finish and its summary to land,
// then folds the result into the persistent record and frees the live slot.
func (s *Server) finalizeWhenDone(scrumID string, sess *meeting.Session) {
	<-sess.Done()

	result, err := sess.Result()
	if err != nil {
		log.Printf("meeting result unavailable for scrum %s: %v", scrumID, err)
	} else {
		_, err = s.store.FinalizeScrum(scrumID, store.FinishedMeeting{
			Transcript:  result.Transcript,
			Summary:     result.Summary,
			TalkTimes:   result.TalkTimes,
			ActionItems: result.ActionItems,
			Notes:       result.Notes,
		})
		if err != nil {
			log.Printf("failed to finalize scrum %s: %v", scrumID, err)
		}
	}

	s.mu.Lock()
	if s.live == sess {
		s.live = nil
		s.liveID = ""
		logger.SetLiveMeeting("")
	}
	s.mu.Unlock()
}
