package domain

import (
	"context"
	"errors"
)

var ErrEmptyUsername = errors.New("username cannot be empty")

// AnonymousUsername is used when no username has been stored.
const AnonymousUsername = "Anonymous"

// SessionRepository persists the locally remembered username.
type SessionRepository interface {
	// GetUsername returns the stored username and whether one exists
	GetUsername(ctx context.Context) (string, bool, error)

	SaveUsername(ctx context.Context, username string) error

	ClearUsername(ctx context.Context) error
}
