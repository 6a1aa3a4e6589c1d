// Package transsmarttest provides a fake Transsmart API for tests.
package transsmarttest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// DefaultToken is issued by login unless WithToken is given.
const DefaultToken = "test-token"

// Request is a recorded authenticated request.
type Request struct {
	Method      string
	Path        string
	EscapedPath string
	RawQuery    string
	Header      http.Header
	Body        []byte
}

// Server is an httptest server speaking the provider's login and bearer protocol.
// Authenticated requests are recorded and answered by the handler.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	token       string
	username    string
	password    string
	loginStatus int
	loginBody   string
	loginDelay  time.Duration
	handler     http.HandlerFunc
	logins      int
	requests    []Request
}

// Option configures a Server.
type Option func(*Server)

// WithToken sets the token issued by login.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithCredentials makes login accept only username and password.
func WithCredentials(username, password string) Option {
	return func(s *Server) {
		s.username = username
		s.password = password
	}
}

// WithLoginResponse makes login answer status with the raw body, whatever the credentials.
func WithLoginResponse(status int, body string) Option {
	return func(s *Server) {
		s.loginStatus = status
		s.loginBody = body
	}
}

// WithLoginDelay delays every login response.
func WithLoginDelay(d time.Duration) Option {
	return func(s *Server) { s.loginDelay = d }
}

// WithHandler answers authenticated requests.
func WithHandler(h http.HandlerFunc) Option {
	return func(s *Server) { s.handler = h }
}

// NewServer starts a fake API. Callers must Close it.
func NewServer(opts ...Option) *Server {
	s := &Server{
		token:   DefaultToken,
		handler: Echo,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/", s.handleAPI)
	s.Server = httptest.NewServer(mux)
	return s
}

// SetHandler replaces the handler for authenticated requests.
func (s *Server) SetHandler(h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// SetToken changes the token issued by subsequent logins.
func (s *Server) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Logins returns how many login requests were received.
func (s *Server) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

// Requests returns the recorded authenticated requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent authenticated request.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.logins++
	token, username, password := s.token, s.username, s.password
	status, body, delay := s.loginStatus, s.loginBody, s.loginDelay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if status != 0 {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
		return
	}

	user, pass, ok := r.BasicAuth()
	if !ok || (username != "" && (user != username || pass != password)) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Invalid credentials"}`)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:      r.Method,
		Path:        r.URL.Path,
		EscapedPath: r.URL.EscapedPath(),
		RawQuery:    r.URL.RawQuery,
		Header:      r.Header.Clone(),
		Body:        body,
	})
	token, handler := s.token, s.handler
	s.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+token {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Unauthorized"}`)
		return
	}

	handler(w, r)
}

// Echo answers with the method, path and query of the request.
func Echo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"method": r.Method,
		"path":   r.URL.Path,
		"query":  r.URL.RawQuery,
	})
}

// JSON returns a handler answering status with the given raw body.
func JSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}
