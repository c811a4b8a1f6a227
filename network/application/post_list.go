package application

import (
	"context"
	"sync"

	"github.com/dfryer1193/codeleap/network/domain"
	"github.com/rs/zerolog/log"
)

const (
	MsgLoadFailed   = "Could not load posts. Please try again later."
	MsgCreateFailed = "Could not create post. Please try again later."
	MsgUpdateFailed = "Could not update post. Please try again later."
	MsgDeleteFailed = "Could not delete post. Please try again later."
)

// EditDialog is the state of the edit dialog. Post is the copy the form was opened with.
type EditDialog struct {
	Open   bool
	Post   domain.Post
	Saving bool
}

// DeleteDialog is the state of the delete confirmation dialog.
type DeleteDialog struct {
	Open     bool
	PostID   int
	Deleting bool
}

// PostListState is a snapshot of the controller, safe to hand to a view.
type PostListState struct {
	Username      string
	Posts         []domain.Post
	Count         int
	OwnPostCount  int
	IsLoading     bool
	Error         string
	Filter        domain.Filter
	MyPostsLocked bool
	Edit          EditDialog
	Delete        DeleteDialog
}

// PostList owns the visible page of posts, the filter and the dialog state,
// and runs the refetch-after-mutation workflow.
//
// Network calls are made without holding the lock. Overlapping fetches are not
// coordinated: whichever response arrives last replaces the list.
type PostList struct {
	repo     domain.PostRepository
	username string

	mu           sync.Mutex
	posts        []domain.Post
	count        int
	ownPostCount int
	isLoading    bool
	errMsg       string
	filter       domain.Filter
	edit         EditDialog
	del          DeleteDialog

	listeners map[int]func(Event)
	nextSubID int
}

// NewPostList creates a controller for the given session user.
// An empty username falls back to domain.AnonymousUsername.
func NewPostList(repo domain.PostRepository, username string) *PostList {
	if username == "" {
		username = domain.AnonymousUsername
	}
	return &PostList{
		repo:      repo,
		username:  username,
		filter:    domain.NoFilter(),
		listeners: make(map[int]func(Event)),
	}
}

func (l *PostList) Username() string {
	return l.username
}

// State returns a snapshot of the controller.
func (l *PostList) State() PostListState {
	l.mu.Lock()
	defer l.mu.Unlock()

	posts := make([]domain.Post, len(l.posts))
	copy(posts, l.posts)

	return PostListState{
		Username:      l.username,
		Posts:         posts,
		Count:         l.count,
		OwnPostCount:  l.ownPostCount,
		IsLoading:     l.isLoading,
		Error:         l.errMsg,
		Filter:        l.filter,
		MyPostsLocked: l.filter.Locked(l.username),
		Edit:          l.edit,
		Delete:        l.del,
	}
}

// Fetch loads the list for the current filter. On success the list is
// replaced wholesale and the error cleared; on failure the stale list stays.
func (l *PostList) Fetch(ctx context.Context) {
	l.mu.Lock()
	l.isLoading = true
	query := l.filter.Query(l.username)
	l.mu.Unlock()

	page, err := l.repo.GetPosts(ctx, query)

	l.mu.Lock()
	if err != nil {
		l.errMsg = MsgLoadFailed
	} else {
		l.posts = page.Results
		l.count = page.Count
		l.ownPostCount = countOwned(page.Results, l.username)
		l.errMsg = ""
	}
	l.isLoading = false
	l.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Str("username", query.Username).Msg("Failed to load posts")
		return
	}
	l.emit(Event{Kind: EventPostsLoaded})
}

// Refresh re-runs Fetch with the current filter.
func (l *PostList) Refresh(ctx context.Context) {
	l.Fetch(ctx)
}

// SetAuthorFilter searches by an explicit author and refetches if the filter changed.
// An author other than the session user turns "my posts" off.
func (l *PostList) SetAuthorFilter(ctx context.Context, author string) {
	l.updateFilter(ctx, func(f domain.Filter) domain.Filter {
		return f.WithAuthor(author, l.username)
	})
}

// ClearAuthorFilter removes the explicit author search.
func (l *PostList) ClearAuthorFilter(ctx context.Context) {
	l.SetAuthorFilter(ctx, "")
}

// ToggleFilterByUser flips "my posts". Turning it on clears the author search.
func (l *PostList) ToggleFilterByUser(ctx context.Context) {
	l.updateFilter(ctx, func(f domain.Filter) domain.Filter {
		return f.Toggled()
	})
}

// ClearUserFilter turns "my posts" off.
func (l *PostList) ClearUserFilter(ctx context.Context) {
	l.updateFilter(ctx, func(f domain.Filter) domain.Filter {
		if f.IsMine() {
			return domain.NoFilter()
		}
		return f
	})
}

func (l *PostList) updateFilter(ctx context.Context, apply func(domain.Filter) domain.Filter) {
	l.mu.Lock()
	next := apply(l.filter)
	changed := next != l.filter
	l.filter = next
	l.mu.Unlock()

	if changed {
		l.Fetch(ctx)
	}
}

// Create submits a post as the session user, then refetches and emits EventPostCreated.
// Title and content are expected to be validated by the caller.
// On failure the error message is set and err is returned to the caller.
func (l *PostList) Create(ctx context.Context, title, content string) error {
	created, err := l.repo.CreatePost(ctx, domain.PostInput{
		Username: l.username,
		Title:    title,
		Content:  content,
	})
	if err != nil {
		l.setError(MsgCreateFailed)
		log.Error().Err(err).Str("username", l.username).Msg("Failed to create post")
		return err
	}

	l.Fetch(ctx)
	l.emit(Event{Kind: EventPostCreated, PostID: created.ID})
	return nil
}

// Edit opens the edit dialog for a post in the current list.
// It reports false and changes nothing if the post is not in the list.
func (l *PostList) Edit(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.posts {
		if p.ID == id {
			l.edit = EditDialog{Open: true, Post: p}
			return true
		}
	}
	return false
}

// CancelEdit closes the edit dialog unless a save is in flight.
func (l *PostList) CancelEdit() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.edit.Saving {
		return
	}
	l.edit = EditDialog{}
}

// SaveEdit updates a post, refetches and closes the edit dialog.
// A zero id is ignored. On failure the dialog stays open, the error message
// is set and err is returned.
func (l *PostList) SaveEdit(ctx context.Context, title, content string, id int) error {
	if id == 0 {
		return nil
	}

	l.mu.Lock()
	l.edit.Saving = true
	l.mu.Unlock()

	_, err := l.repo.UpdatePost(ctx, id, domain.PostChanges{Title: title, Content: content})
	if err != nil {
		l.mu.Lock()
		l.edit.Saving = false
		l.errMsg = MsgUpdateFailed
		l.mu.Unlock()
		log.Error().Err(err).Int("postID", id).Msg("Failed to update post")
		return err
	}

	l.Fetch(ctx)

	l.mu.Lock()
	l.edit = EditDialog{}
	l.mu.Unlock()
	return nil
}

// RequestDelete opens the delete confirmation for id.
func (l *PostList) RequestDelete(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.del = DeleteDialog{Open: true, PostID: id}
}

// CancelDelete closes the delete confirmation unless a delete is in flight.
func (l *PostList) CancelDelete() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.del.Deleting {
		return
	}
	l.del = DeleteDialog{}
}

// ConfirmDelete deletes a post. On success it emits EventPostDeleted and refetches.
// On failure the error message is set. The dialog is closed either way, and the
// failure is not returned.
func (l *PostList) ConfirmDelete(ctx context.Context, id int) {
	l.mu.Lock()
	l.del.Deleting = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.del = DeleteDialog{}
		l.mu.Unlock()
	}()

	if err := l.repo.DeletePost(ctx, id); err != nil {
		l.setError(MsgDeleteFailed)
		log.Error().Err(err).Int("postID", id).Msg("Failed to delete post")
		return
	}

	l.emit(Event{Kind: EventPostDeleted, PostID: id})
	l.Fetch(ctx)
}

func (l *PostList) setError(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errMsg = msg
}

func countOwned(posts []domain.Post, username string) int {
	n := 0
	for _, p := range posts {
		if p.OwnedBy(username) {
			n++
		}
	}
	return n
}
