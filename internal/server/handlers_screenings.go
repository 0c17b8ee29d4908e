package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/nexwork/nexwork/internal/screening"
	"github.com/nexwork/nexwork/internal/server/middleware"
	"github.com/nexwork/nexwork/internal/types"
)

// candidateID resolves the caller's candidate identity: the linked wallet
// address, or the account id.
func (s *Server) candidateID(r *http.Request) (string, error) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		return "", err
	}
	user, err := s.userService.Get(r.Context(), userID)
	if err != nil {
		return "", err
	}
	return user.CandidateID(), nil
}

// handleStartScreening opens, or resumes, the caller's screening for a job.
func (s *Server) handleStartScreening(w http.ResponseWriter, r *http.Request) {
	var req types.StartScreeningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}
	candidate, err := s.candidateID(r)
	if err != nil {
		errorFrom(w, err)
		return
	}

	view, err := s.screening.Start(r.Context(), uuid.MustParse(req.JobID), candidate)
	if err != nil {
		errorFrom(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, view)
}

func (s *Server) handleGetScreening(w http.ResponseWriter, r *http.Request) {
	sessionID, candidate, ok := s.sessionRequest(w, r)
	if !ok {
		return
	}
	view, err := s.screening.Get(sessionID, candidate)
	if err != nil {
		errorFrom(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, view)
}

// handleVoiceAnswer records the transcript for the current voice question.
func (s *Server) handleVoiceAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID, candidate, ok := s.sessionRequest(w, r)
	if !ok {
		return
	}
	var req types.VoiceAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	view, err := s.screening.SubmitVoiceAnswer(r.Context(), sessionID, candidate, req.Answer)
	s.screeningResponse(w, view, err)
}

// handleCodeSubmission grades code for the current coding question.
func (s *Server) handleCodeSubmission(w http.ResponseWriter, r *http.Request) {
	sessionID, candidate, ok := s.sessionRequest(w, r)
	if !ok {
		return
	}
	var req types.CodeSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	view, err := s.screening.SubmitCode(r.Context(), sessionID, candidate, req.Code)
	s.screeningResponse(w, view, err)
}

func (s *Server) sessionRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, string, bool) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		errorFrom(w, err)
		return uuid.Nil, "", false
	}
	candidate, err := s.candidateID(r)
	if err != nil {
		errorFrom(w, err)
		return uuid.Nil, "", false
	}
	return sessionID, candidate, true
}

// screeningResponse writes the session view. Errors that still carry a view
// (a wrong-phase submission) include it so the client can resync.
func (s *Server) screeningResponse(w http.ResponseWriter, view *screening.View, err error) {
	if err == nil {
		jsonResponse(w, http.StatusOK, view)
		return
	}
	status := HTTPStatus(err)
	if view == nil || status == http.StatusInternalServerError {
		errorFrom(w, err)
		return
	}
	jsonResponse(w, status, map[string]any{"error": err.Error(), "session": view})
}
