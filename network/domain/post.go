package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrEmptyTitle   = errors.New("title cannot be empty")
	ErrEmptyContent = errors.New("content cannot be empty")
)

// Post represents a post on the network.
// ID and CreatedDatetime are assigned by the server and never change after creation.
// Only Title and Content are editable.
type Post struct {
	ID              int
	Title           string
	Content         string
	Username        string
	CreatedDatetime string
}

// OwnedBy reports whether the post was written by username.
func (p Post) OwnedBy(username string) bool {
	return p.Username == username
}

// CreatedAt parses the server timestamp. The zero time is returned if it cannot be parsed.
func (p Post) CreatedAt() time.Time {
	t, err := time.Parse(time.RFC3339Nano, p.CreatedDatetime)
	if err != nil {
		return time.Time{}
	}
	return t
}

// PostPage is one page of the post list, in server order.
type PostPage struct {
	Count    int
	Next     string
	Previous string
	Results  []Post
}

// PostQuery narrows a list request. An empty Username means no filter.
type PostQuery struct {
	Username string
}

// PostInput holds the fields of a new post.
type PostInput struct {
	Username string
	Title    string
	Content  string
}

// Validate checks that title and content are non-empty once trimmed.
func (in PostInput) Validate() error {
	return PostChanges{Title: in.Title, Content: in.Content}.Validate()
}

// PostChanges holds the mutable fields of an existing post.
type PostChanges struct {
	Title   string
	Content string
}

func (c PostChanges) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, ErrEmptyTitle)
	}
	if strings.TrimSpace(c.Content) == "" {
		errs = append(errs, ErrEmptyContent)
	}
	return errors.Join(errs...)
}

// PostRepository is the remote collection of posts.
type PostRepository interface {
	GetPosts(ctx context.Context, query PostQuery) (*PostPage, error)
	CreatePost(ctx context.Context, in PostInput) (*Post, error)
	UpdatePost(ctx context.Context, id int, changes PostChanges) (*Post, error)
	DeletePost(ctx context.Context, id int) error
}

// TimeAgo renders the age of a timestamp the way post cards show it.
func TimeAgo(created, now time.Time) string {
	seconds := int(now.Sub(created) / time.Second)
	switch {
	case seconds < 60:
		return fmt.Sprintf("%d seconds ago", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%d minutes ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%d hours ago", seconds/3600)
	default:
		return fmt.Sprintf("%d days ago", seconds/86400)
	}
}
