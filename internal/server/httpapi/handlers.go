package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/agentdesk/internal/server/auth"
	"github.com/dmitrijs2005/agentdesk/internal/server/models"
	"github.com/dmitrijs2005/agentdesk/internal/server/services"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type messageResponse struct {
	Role      models.Role `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

type draftRequest struct {
	Intent    string `json:"intent"`
	Recipient string `json:"recipient"`
	Purpose   string `json:"purpose"`
	Tone      string `json:"tone"`
}

type draftResponse struct {
	SessionID string `json:"session_id"`
	Draft     string `json:"draft"`
	Warning   string `json:"warning,omitempty"`
}

type planRequest struct {
	Tasks string `json:"tasks"`
}

type planResponse struct {
	ID        string `json:"id,omitempty"`
	Breakdown string `json:"breakdown"`
	Schedule  string `json:"schedule"`
	Tips      string `json:"tips"`
	Warning   string `json:"warning,omitempty"`
}

type researchRequest struct {
	Query string `json:"query"`
}

type sourceResponse struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type researchResponse struct {
	ID      string           `json:"id,omitempty"`
	Answer  string           `json:"answer"`
	Sources []sourceResponse `json:"sources"`
	Warning string           `json:"warning,omitempty"`
}

type taskRecordResponse struct {
	ID        string            `json:"id"`
	Input     string            `json:"input"`
	Fields    map[string]string `json:"fields"`
	CreatedAt time.Time         `json:"created_at"`
}

type exportResponse struct {
	URL string `json:"url"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.svc.Auth.Signup(r.Context(), req.Username, req.Password); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"username": services.NormalizeUserName(req.Username)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.svc.Auth.Login(r.Context(), req.Username, req.Password); err != nil {
		s.fail(w, r, err)
		return
	}

	token, err := auth.GenerateToken(services.NormalizeUserName(req.Username), s.jwtSecret, s.tokenTTL)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.svc.Conversations.CreateSession(r.Context(), userNameFromContext(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(*session))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Conversations.ListSessions(r.Context(), userNameFromContext(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]sessionResponse, 0, len(list))
	for _, session := range list {
		out = append(out, toSessionResponse(session))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.svc.Conversations.Messages(r.Context(), userNameFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageResponse{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleDraft serves both /v1/drafts (new session) and
// /v1/sessions/{id}/drafts.
func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	res, err := s.svc.Email.Draft(r.Context(), services.EmailRequest{
		Username:  userNameFromContext(r.Context()),
		SessionID: chi.URLParam(r, "id"),
		Intent:    req.Intent,
		Recipient: req.Recipient,
		Purpose:   req.Purpose,
		Tone:      req.Tone,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, draftResponse{
		SessionID: res.SessionID,
		Draft:     res.Draft,
		Warning:   warning(res.PersistErr),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	url, err := s.svc.Export.Export(r.Context(), userNameFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{URL: url})
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	res, err := s.svc.Planner.Plan(r.Context(), req.Tasks)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := planResponse{
		Breakdown: res.Breakdown,
		Schedule:  res.Schedule,
		Tips:      res.Tips,
		Warning:   warning(res.PersistErr),
	}
	if res.Record != nil {
		out.ID = res.Record.ID
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	res, err := s.svc.Research.Ask(r.Context(), req.Query)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := researchResponse{
		Answer:  res.Answer,
		Sources: make([]sourceResponse, 0, len(res.Sources)),
		Warning: warning(res.PersistErr),
	}
	for _, src := range res.Sources {
		out.Sources = append(out.Sources, sourceResponse{Title: src.Title, URL: src.URL})
	}
	if res.Record != nil {
		out.ID = res.Record.ID
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	s.listRecent(w, r, models.KindPlan)
}

func (s *Server) handleListResearch(w http.ResponseWriter, r *http.Request) {
	s.listRecent(w, r, models.KindResearch)
}

func (s *Server) listRecent(w http.ResponseWriter, r *http.Request, kind models.TaskKind) {
	limit := s.recentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	list, err := s.svc.Conversations.ListRecent(r.Context(), kind, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]taskRecordResponse, 0, len(list))
	for _, rec := range list {
		out = append(out, taskRecordResponse{ID: rec.ID, Input: rec.Input, Fields: rec.Fields, CreatedAt: rec.CreatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

func toSessionResponse(s models.Session) sessionResponse {
	return sessionResponse{ID: s.ID, Title: s.Title, CreatedAt: s.CreatedAt}
}
