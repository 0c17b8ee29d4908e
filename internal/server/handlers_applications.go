package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/nexwork/nexwork/internal/screening"
	"github.com/nexwork/nexwork/internal/server/middleware"
	"github.com/nexwork/nexwork/internal/status"
	"github.com/nexwork/nexwork/internal/types"
)

// handleListMyApplications lists the caller's applications across all jobs.
func (s *Server) handleListMyApplications(w http.ResponseWriter, r *http.Request) {
	candidate, err := s.candidateID(r)
	if err != nil {
		errorFrom(w, err)
		return
	}
	apps, err := s.store.ListApplicationsByCandidate(r.Context(), candidate)
	if err != nil {
		errorFrom(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"applications": apps, "count": len(apps)})
}

// handleUpdateStatus applies a recruiter's manual stage change.
func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	recruiterID, _ := middleware.GetUserID(r)
	appID, err := pathID(r, "id")
	if err != nil {
		errorFrom(w, err)
		return
	}

	var req types.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	app, err := s.screening.RecruiterTransition(r.Context(), recruiterID, appID, status.Status(req.Status))
	if err != nil {
		errorFrom(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, app)
}

// handleDeleteApplication removes an application to one of the caller's jobs.
func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	recruiterID, _ := middleware.GetUserID(r)
	appID, err := pathID(r, "id")
	if err != nil {
		errorFrom(w, err)
		return
	}
	if err := s.screening.DeleteApplication(r.Context(), recruiterID, appID); err != nil {
		errorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleApplicationHistory returns the status trail of one application to its
// candidate or to the recruiter owning the job.
func (s *Server) handleApplicationHistory(w http.ResponseWriter, r *http.Request) {
	appID, err := pathID(r, "id")
	if err != nil {
		errorFrom(w, err)
		return
	}
	app, err := s.store.GetApplication(r.Context(), appID)
	if err != nil {
		errorFrom(w, err)
		return
	}
	if !s.canSee(r, app) {
		errorFrom(w, screening.ErrForbidden)
		return
	}

	history, err := s.store.ApplicationHistory(r.Context(), appID)
	if err != nil {
		errorFrom(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"application": app, "history": history})
}

// handleStatusEvents streams status changes visible to the caller as
// Server-Sent Events until the client disconnects or the server shuts down.
func (s *Server) handleStatusEvents(w http.ResponseWriter, r *http.Request) {
	changes, cancel, err := s.bus.Subscribe(r.Context())
	if err != nil {
		log.Printf("[events] subscribe failed: %v", err)
		errorResponse(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}
	defer cancel()

	sse, err := NewSSEWriter(w)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.streamsDone:
			return
		case <-heartbeat.C:
			if err := sse.WriteHeartbeat(); err != nil {
				return
			}
		case change, ok := <-changes:
			if !ok {
				sse.WriteError("event stream closed")
				return
			}
			app, err := s.store.GetApplication(r.Context(), change.ApplicationID)
			if err != nil || !s.canSee(r, app) {
				continue
			}
			if err := sse.WriteEvent("status_changed", change); err != nil {
				return
			}
		}
	}
}

// canSee reports whether the caller is the application's candidate or the
// recruiter owning its job.
func (s *Server) canSee(r *http.Request, app *types.Application) bool {
	if middleware.GetRole(r) == string(types.RoleSeeker) {
		candidate, err := s.candidateID(r)
		return err == nil && candidate == app.CandidateID
	}
	return s.callerOwnsJob(r, app.JobID)
}
