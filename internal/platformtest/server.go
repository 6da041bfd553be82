// Package platformtest поднимает фейковый API Skillogs для тестов.
package platformtest

import (
	"encoding/json"
	"fmt"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	DTO_http "skillogs_validator/internal/DTO/http"
)

const (
	Email    = "student@example.com"
	Password = "secret"
)

// Submission - принятый PUT .../flexible_content.
type Submission struct {
	Cohort    string
	Module    string
	Session   string
	ContentID string
	Header    stdhttp.Header
	Body      DTO_http.ValidationRequest
}

type Server struct {
	*httptest.Server

	mu          sync.Mutex
	token       string
	logins      int
	content     []byte
	details     map[string][]byte
	failures    map[string]int
	submissions []Submission
	sessionGets int
}

// apiError - тело ошибки в том виде, в каком его отдаёт Skillogs API.
type apiError struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func New(sessionContent []byte) *Server {
	s := &Server{
		content:  sessionContent,
		details:  map[string][]byte{},
		failures: map[string]int{},
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/api/auth/token", s.issueToken)
	r.Route("/api/user/cohort/{cohort}/module/{module}/session/{session}", func(r chi.Router) {
		r.Use(s.requireBearer)
		r.Get("/content", s.sessionContent)
		r.Get("/content/{contentID}/flexible_content", s.contentDetails)
		r.Put("/content/{contentID}/flexible_content", s.validate)
	})

	s.Server = httptest.NewServer(r)
	return s
}

// SetDetails - детальный контент для GET; без него платформа отвечает 405.
func (s *Server) SetDetails(contentID string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details[contentID] = raw
}

// FailContent заставляет PUT для contentID отвечать HTML-страницей с кодом status.
func (s *Server) FailContent(contentID string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[contentID] = status
}

// ExpireToken - текущий токен перестаёт приниматься.
func (s *Server) ExpireToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

func (s *Server) Submissions() []Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Submission(nil), s.submissions...)
}

func (s *Server) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

func (s *Server) SessionGets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionGets
}

func (s *Server) issueToken(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	if err := r.ParseForm(); err != nil {
		reply(w, stdhttp.StatusBadRequest, apiError{Message: "Malformed request: " + err.Error()})
		return
	}
	if r.PostForm.Get("email") != Email || r.PostForm.Get("password") != Password {
		reply(w, stdhttp.StatusUnauthorized, apiError{Message: "These credentials do not match our records."})
		return
	}

	s.mu.Lock()
	s.logins++
	s.token = fmt.Sprintf("token-%d", s.logins)
	tok := s.token
	s.mu.Unlock()

	reply(w, stdhttp.StatusOK, DTO_http.TokenResponse{Token: tok})
}

func (s *Server) requireBearer(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		s.mu.Lock()
		want := s.token
		s.mu.Unlock()

		got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if want == "" || got != want {
			reply(w, stdhttp.StatusUnauthorized, apiError{Message: "Unauthenticated."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) sessionContent(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
	s.mu.Lock()
	s.sessionGets++
	body := s.content
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(stdhttp.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) contentDetails(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	s.mu.Lock()
	body, ok := s.details[chi.URLParam(r, "contentID")]
	s.mu.Unlock()

	if !ok {
		reply(w, stdhttp.StatusMethodNotAllowed, apiError{Message: "The GET method is not supported for this content."})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(stdhttp.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) validate(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	contentID := chi.URLParam(r, "contentID")

	var req DTO_http.ValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		reply(w, stdhttp.StatusBadRequest, apiError{Message: "Malformed request: " + err.Error()})
		return
	}
	if len(req.Payload.Data) == 0 {
		reply(w, stdhttp.StatusUnprocessableEntity, apiError{
			Message: "The payload.data field is required.",
			Errors:  map[string][]string{"payload.data": {"The payload.data field is required."}},
		})
		return
	}

	s.mu.Lock()
	status, fail := s.failures[contentID]
	if !fail {
		s.submissions = append(s.submissions, Submission{
			Cohort:    chi.URLParam(r, "cohort"),
			Module:    chi.URLParam(r, "module"),
			Session:   chi.URLParam(r, "session"),
			ContentID: contentID,
			Header:    r.Header.Clone(),
			Body:      req,
		})
	}
	s.mu.Unlock()

	if fail {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte("<!DOCTYPE html><html><body><h1>Server Error</h1></body></html>"))
		return
	}
	reply(w, stdhttp.StatusOK, map[string]any{"success": true, "content_id": contentID})
}

// reply пишет JSON так же, как платформа: application/json без charset.
func reply(w stdhttp.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, private")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
