package rest

import (
	"context"
	"sync"

	"github.com/dfryer1193/codeleap/network/application"
	"github.com/dfryer1193/codeleap/network/domain"
	"github.com/rs/zerolog/log"
)

// Server holds the signed-in user's post list for the REST surface.
// Only one user is signed in at a time, matching the local session store.
type Server struct {
	sessions *application.SessionService
	repo     domain.PostRepository
	hub      *Hub

	mu          sync.RWMutex
	list        *application.PostList
	unsubscribe func()
}

func NewServer(sessions *application.SessionService, repo domain.PostRepository, hub *Hub) *Server {
	return &Server{
		sessions: sessions,
		repo:     repo,
		hub:      hub,
	}
}

// Restore signs the stored user back in, if there is one, and loads their list.
func (s *Server) Restore(ctx context.Context) error {
	username, ok, err := s.sessions.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if ok {
		s.activate(ctx, username)
	}
	return nil
}

func (s *Server) current() (*application.PostList, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list, s.list != nil
}

// activate replaces the active post list with one for username and loads it.
func (s *Server) activate(ctx context.Context, username string) {
	list := application.NewPostList(s.repo, username)
	unsubscribe := list.Subscribe(s.hub.Publish)

	s.mu.Lock()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.list = list
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	log.Info().Str("username", username).Msg("Session started")
	list.Fetch(ctx)
}

func (s *Server) deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.list = nil
	s.unsubscribe = nil
}

