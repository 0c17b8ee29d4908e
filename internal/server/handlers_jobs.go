package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/nexwork/nexwork/internal/screening"
	"github.com/nexwork/nexwork/internal/server/middleware"
	"github.com/nexwork/nexwork/internal/types"
)

// handleListJobs lists paid postings, newest first.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.ListPaidJobs(r.Context())
	if err != nil {
		errorFrom(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"jobs": jobs, "count": len(jobs)})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		errorFrom(w, err)
		return
	}
	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		errorFrom(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, job)
}

// handleListMyJobs lists the calling recruiter's postings, paid or not.
func (s *Server) handleListMyJobs(w http.ResponseWriter, r *http.Request) {
	recruiterID, _ := middleware.GetUserID(r)
	jobs, err := s.store.ListJobsByRecruiter(r.Context(), recruiterID)
	if err != nil {
		errorFrom(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"jobs": jobs, "count": len(jobs)})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	recruiterID, _ := middleware.GetUserID(r)

	var req types.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	job, err := s.store.CreateJob(r.Context(), recruiterID, &req)
	if err != nil {
		errorFrom(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.ownedJob(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteJob(r.Context(), job.ID); err != nil {
		errorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListCandidates lists every application to one of the caller's jobs.
func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	job, ok := s.ownedJob(w, r)
	if !ok {
		return
	}
	apps, err := s.store.ListApplicationsByJob(r.Context(), job.ID)
	if err != nil {
		errorFrom(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"job_id": job.ID, "applications": apps, "count": len(apps)})
}

// ownedJob loads the {id} job and checks the caller owns it. It writes the
// error response itself and reports false on any failure.
func (s *Server) ownedJob(w http.ResponseWriter, r *http.Request) (*types.Job, bool) {
	recruiterID, _ := middleware.GetUserID(r)
	id, err := pathID(r, "id")
	if err != nil {
		errorFrom(w, err)
		return nil, false
	}
	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		errorFrom(w, err)
		return nil, false
	}
	if job.RecruiterID != recruiterID {
		errorFrom(w, screening.ErrForbidden)
		return nil, false
	}
	return job, true
}

// callerOwnsJob reports whether the caller is the recruiter owning jobID.
func (s *Server) callerOwnsJob(r *http.Request, jobID uuid.UUID) bool {
	if middleware.GetRole(r) != string(types.RoleRecruiter) {
		return false
	}
	userID, err := middleware.GetUserID(r)
	if err != nil {
		return false
	}
	job, err := s.store.GetJob(r.Context(), jobID)
	return err == nil && job.RecruiterID == userID
}
