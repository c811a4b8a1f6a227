// Package mockapi serves an in-memory version of the careers posts API.
// It mirrors the remote contract closely enough for tests and local development:
// newest-first ordering, username filtering, limit/offset pagination and
// trailing-slash item routes.
package mockapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dfryer1193/codeleap/api"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

const (
	defaultLimit = 10

	// timeLayout has a fixed width so timestamps sort as strings
	timeLayout = "2006-01-02T15:04:05.000000Z07:00"
)

// Server holds posts in memory and records the requests it receives.
type Server struct {
	mu       sync.Mutex
	posts    map[int]api.Post
	nextID   int
	requests []Request
	failures map[string]int
	now      func() time.Time
	baseURL  string
}

// Request is a recorded call, used by tests to assert on traffic.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
}

func New() *Server {
	return &Server{
		posts:    make(map[int]api.Post),
		nextID:   1,
		failures: make(map[string]int),
		now:      time.Now,
	}
}

// SetBaseURL sets the absolute URL used in next/previous links.
func (s *Server) SetBaseURL(base string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseURL = strings.TrimSuffix(base, "/") + "/"
}

// Seed inserts a post as if it had been created earlier. A zero ID is assigned.
func (s *Server) Seed(p api.Post) api.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == 0 {
		p.ID = s.nextID
	}
	if p.ID >= s.nextID {
		s.nextID = p.ID + 1
	}
	if p.CreatedDatetime == "" {
		p.CreatedDatetime = s.now().UTC().Add(time.Duration(p.ID) * time.Millisecond).Format(timeLayout)
	}
	s.posts[p.ID] = p
	return p
}

// FailNext makes the next n requests with the given method answer 500.
func (s *Server) FailNext(method string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] += n
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// CountRequests counts recorded requests with the given method.
func (s *Server) CountRequests(method string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

// Post returns the stored post with id.
func (s *Server) Post(id int) (api.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	return p, ok
}

// Router builds the chi router for the API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.record)
	r.Use(s.injectFailures)

	r.Get("/", s.listPosts)
	r.Post("/", s.createPost)
	r.Route("/{id}", func(r chi.Router) {
		r.Patch("/", s.updatePost)
		r.Delete("/", s.deletePost)
	})

	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
		}
		if r.Body != nil && r.ContentLength != 0 {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				rec.Body = body
				// Re-encode so handlers can decode the same payload.
				raw, _ := json.Marshal(body)
				r.Body = io.NopCloser(bytes.NewReader(raw))
			}
		}

		s.mu.Lock()
		s.requests = append(s.requests, rec)
		s.mu.Unlock()

		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Str("requestID", middleware.GetReqID(r.Context())).Msg("Mock API request")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		fail := s.failures[r.Method] > 0
		if fail {
			s.failures[r.Method]--
		}
		s.mu.Unlock()

		if fail {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "injected failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := intParam(query, "limit", defaultLimit)
	if err != nil || limit <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"limit": "A valid integer is required."})
		return
	}
	offset, err := intParam(query, "offset", 0)
	if err != nil || offset < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"offset": "A valid integer is required."})
		return
	}
	username := query.Get("username")

	s.mu.Lock()
	matched := make([]api.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if username != "" && p.Username != username {
			continue
		}
		matched = append(matched, p)
	}
	base := s.baseURL
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedDatetime == matched[j].CreatedDatetime {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedDatetime > matched[j].CreatedDatetime
	})

	page := api.Page[api.Post]{Count: len(matched), Results: []api.Post{}}
	if offset < len(matched) {
		end := min(offset+limit, len(matched))
		page.Results = matched[offset:end]
	}
	if offset+limit < len(matched) {
		next := pageLink(base, username, limit, offset+limit)
		page.Next = &next
	}
	if offset > 0 {
		prev := pageLink(base, username, limit, max(offset-limit, 0))
		page.Previous = &prev
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var proto api.PostProto
	if err := json.NewDecoder(r.Body).Decode(&proto); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return
	}
	if errs := requireFields(map[string]string{"username": proto.Username, "title": proto.Title, "content": proto.Content}); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	s.mu.Lock()
	p := api.Post{
		ID:              s.nextID,
		Username:        proto.Username,
		Title:           proto.Title,
		Content:         proto.Content,
		CreatedDatetime: s.now().UTC().Format(timeLayout),
	}
	s.posts[p.ID] = p
	s.nextID++
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	if title, ok := patch["title"].(string); ok {
		p.Title = title
	}
	if content, ok := patch["content"].(string); ok {
		p.Content = content
	}
	s.posts[id] = p

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	delete(s.posts, id)
	w.WriteHeader(http.StatusNoContent)
}

func requireFields(fields map[string]string) map[string][]string {
	var errs map[string][]string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			if errs == nil {
				errs = make(map[string][]string)
			}
			errs[name] = []string{"This field may not be blank."}
		}
	}
	return errs
}

func intParam(q url.Values, key string, def int) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func pageLink(base, username string, limit, offset int) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	if username != "" {
		q.Set("username", username)
	}
	return fmt.Sprintf("%s?%s", base, q.Encode())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode mock API response")
	}
}
