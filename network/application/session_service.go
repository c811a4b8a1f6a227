package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/dfryer1193/codeleap/network/domain"
)

// Route is the top-level view to show.
type Route int

const (
	RouteSignIn Route = iota
	RouteHome
)

func (r Route) String() string {
	if r == RouteHome {
		return "home"
	}
	return "sign-in"
}

// SessionService remembers the local username and decides which view to show.
type SessionService struct {
	repo domain.SessionRepository
}

func NewSessionService(repo domain.SessionRepository) *SessionService {
	return &SessionService{repo: repo}
}

// SignIn stores the username after trimming it. A blank name is rejected.
func (s *SessionService) SignIn(ctx context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", domain.ErrEmptyUsername
	}

	if err := s.repo.SaveUsername(ctx, username); err != nil {
		return "", fmt.Errorf("failed to save username: %w", err)
	}
	return username, nil
}

func (s *SessionService) SignOut(ctx context.Context) error {
	if err := s.repo.ClearUsername(ctx); err != nil {
		return fmt.Errorf("failed to clear username: %w", err)
	}
	return nil
}

// CurrentUser returns the stored username and whether one exists.
func (s *SessionService) CurrentUser(ctx context.Context) (string, bool, error) {
	username, ok, err := s.repo.GetUsername(ctx)
	if err != nil {
		return "", false, fmt.Errorf("failed to read username: %w", err)
	}
	if !ok || username == "" {
		return "", false, nil
	}
	return username, true, nil
}

// Route sends users without a stored username to the sign-in view.
func (s *SessionService) Route(ctx context.Context) (Route, string, error) {
	username, ok, err := s.CurrentUser(ctx)
	if err != nil {
		return RouteSignIn, "", err
	}
	if !ok {
		return RouteSignIn, "", nil
	}
	return RouteHome, username, nil
}
