// Package mockapp is a small self-contained web application that the harness
// can run when there is no real application to test against. It backs the
// example suites and the harness's own unit tests.
//
// Endpoints:
//
//	GET    /status           liveness document
//	GET    /api/users        list users
//	POST   /api/users        create a user
//	GET    /api/users/{id}   fetch one user
//	PUT    /api/users/{id}   replace one user
//	PATCH  /api/users/{id}   partially update one user
//	DELETE /api/users/{id}   delete one user
//	GET    /flaky/{n}        respond 503 to the first n requests, then 200
//
// State is in-memory only and lost when the server stops.
package mockapp

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/testhive/app-test-harness/framework"
)

// User is the resource managed by the /api/users endpoints.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Active   bool   `json:"active"`
}

// Server holds the mock application's state and its HTTP handler.
type Server struct {
	logger     framework.Logger
	router     *mux.Router
	httpServer *http.Server

	lock        sync.Mutex
	users       map[int]User
	nextUserID  int
	flakyCounts map[string]int
}

// NewServer creates a Server with empty state.
func NewServer(logger framework.Logger) *Server {
	if logger == nil {
		logger = framework.NullLogger()
	}
	s := &Server{
		logger:      logger,
		users:       make(map[int]User),
		nextUserID:  1,
		flakyCounts: make(map[string]int),
	}
	r := mux.NewRouter()
	r.HandleFunc("/status", s.getStatus).Methods("GET")
	r.HandleFunc("/api/users", s.listUsers).Methods("GET")
	r.HandleFunc("/api/users", s.createUser).Methods("POST")
	r.HandleFunc("/api/users/{id:[0-9]+}", s.getUser).Methods("GET")
	r.HandleFunc("/api/users/{id:[0-9]+}", s.replaceUser).Methods("PUT")
	r.HandleFunc("/api/users/{id:[0-9]+}", s.patchUser).Methods("PATCH")
	r.HandleFunc("/api/users/{id:[0-9]+}", s.deleteUser).Methods("DELETE")
	r.HandleFunc("/flaky/{count:[0-9]+}", s.getFlaky).Methods("GET")
	s.router = r
	return s
}

// Handler exposes the router so tests can mount the application on an
// httptest server instead of a real listener.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins serving on addr (host:port). It returns once the listener is
// accepting connections.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.httpServer = &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("mock app server error: %s", err)
		}
	}()
	s.logger.Printf("Mock application listening at %s", addr)
	return nil
}

// Close shuts the server down, allowing in-flight requests a short grace
// period.
func (s *Server) Close() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	users := make([]User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	s.lock.Unlock()
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var u User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid user document")
		return
	}
	s.lock.Lock()
	u.ID = s.nextUserID
	s.nextUserID++
	s.users[u.ID] = u
	s.lock.Unlock()
	writeJSON(w, http.StatusCreated, u)
}

func userID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	u, ok := s.users[userID(r)]
	s.lock.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "no such user")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) replaceUser(w http.ResponseWriter, r *http.Request) {
	var u User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid user document")
		return
	}
	id := userID(r)
	s.lock.Lock()
	_, ok := s.users[id]
	if ok {
		u.ID = id
		s.users[id] = u
	}
	s.lock.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "no such user")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) patchUser(w http.ResponseWriter, r *http.Request) {
	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid patch document")
		return
	}
	id := userID(r)
	s.lock.Lock()
	u, ok := s.users[id]
	if ok {
		if v, present := fields["username"].(string); present {
			u.Username = v
		}
		if v, present := fields["email"].(string); present {
			u.Email = v
		}
		if v, present := fields["active"].(bool); present {
			u.Active = v
		}
		s.users[id] = u
	}
	s.lock.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "no such user")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := userID(r)
	s.lock.Lock()
	_, ok := s.users[id]
	delete(s.users, id)
	s.lock.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "no such user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getFlaky fails with 503 until the same path has been requested count times,
// then succeeds. Each distinct count value keeps its own counter, so suites
// can use /flaky/3 and /flaky/5 independently.
func (s *Server) getFlaky(w http.ResponseWriter, r *http.Request) {
	count, _ := strconv.Atoi(mux.Vars(r)["count"])
	s.lock.Lock()
	s.flakyCounts[r.URL.Path]++
	seen := s.flakyCounts[r.URL.Path]
	s.lock.Unlock()
	if seen <= count {
		writeError(w, http.StatusServiceUnavailable, "not yet")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"attempts": seen})
}
