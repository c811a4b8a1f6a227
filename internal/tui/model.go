// Package tui is the terminal front end: a sign-in screen and the home feed
// with its post form, author search, and edit and delete dialogs.
package tui

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dfryer1193/codeleap/network/application"
	"github.com/dfryer1193/codeleap/network/domain"
)

type screen int

const (
	screenLoading screen = iota
	screenSignIn
	screenHome
)

// focus is the home screen region that receives keystrokes.
type focus int

const (
	focusList focus = iota
	focusSearch
	focusForm
	focusEdit
	focusDelete
)

const (
	msgPostCreated = "Post created!"
	msgPostDeleted = "Post deleted!"
)

type routeMsg struct {
	route    application.Route
	username string
	err      error
}

type signedInMsg struct {
	username string
	err      error
}

// operation names the controller call a command made.
type operation int

const (
	opFetch operation = iota
	opCreate
	opSave
	opDelete
)

// opDoneMsg follows every controller call made from a command.
// events holds what the controller emitted while the call ran.
type opDoneMsg struct {
	op     operation
	events []application.Event
}

type Model struct {
	ctx      context.Context
	sessions *application.SessionService
	repo     domain.PostRepository

	screen screen
	focus  focus
	err    error
	status string
	width  int

	signIn textinput.Model

	list     *application.PostList
	cursor   int
	creating bool
	search  textinput.Model
	title   textinput.Model
	content textarea.Model
	// the edit dialog has its own fields so a half-written new post survives
	editTitle   textinput.Model
	editContent textarea.Model
}

func New(ctx context.Context, sessions *application.SessionService, repo domain.PostRepository) *Model {
	signIn := textinput.New()
	signIn.Placeholder = "John doe"
	signIn.Focus()

	search := textinput.New()
	search.Placeholder = "Search by author"

	return &Model{
		ctx:         ctx,
		sessions:    sessions,
		repo:        repo,
		screen:      screenLoading,
		signIn:      signIn,
		search:      search,
		title:       newTitleInput(),
		content:     newContentArea(),
		editTitle:   newTitleInput(),
		editContent: newContentArea(),
	}
}

func newTitleInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Hello world"
	ti.CharLimit = 120
	return ti
}

func newContentArea() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "Content here"
	ta.SetHeight(4)
	return ta
}

// Init resolves the starting screen from the stored session.
func (m *Model) Init() tea.Cmd {
	return func() tea.Msg {
		route, username, err := m.sessions.Route(m.ctx)
		return routeMsg{route: route, username: username, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.content.SetWidth(max(msg.Width-4, 20))
		m.editContent.SetWidth(max(msg.Width-8, 20))
		return m, nil

	case routeMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		if msg.route == application.RouteHome {
			return m, m.startHome(msg.username)
		}
		m.screen = screenSignIn
		return m, textinput.Blink

	case signedInMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		return m, m.startHome(msg.username)

	case opDoneMsg:
		if msg.op == opCreate {
			m.creating = false
		}
		m.handleEvents(msg.op, msg.events)
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenSignIn:
			return m.updateSignIn(msg)
		case screenHome:
			return m.updateHome(msg)
		}
	}
	return m, nil
}

func (m *Model) updateSignIn(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		if !canSignIn(m.signIn.Value()) {
			return m, nil
		}
		username := m.signIn.Value()
		return m, func() tea.Msg {
			name, err := m.sessions.SignIn(m.ctx, username)
			return signedInMsg{username: name, err: err}
		}
	}

	var cmd tea.Cmd
	m.signIn, cmd = m.signIn.Update(msg)
	return m, cmd
}

func (m *Model) startHome(username string) tea.Cmd {
	m.screen = screenHome
	m.focus = focusList
	m.err = nil
	m.creating = false
	m.list = application.NewPostList(m.repo, username)
	return m.run(opFetch, m.list.Fetch)
}

// run calls fn off the update loop and reports the events emitted while it ran.
// Failures are not returned: the controller records them in its error message.
func (m *Model) run(op operation, fn func(ctx context.Context)) tea.Cmd {
	ctx, list := m.ctx, m.list
	return func() tea.Msg {
		var (
			mu     sync.Mutex
			events []application.Event
		)
		unsubscribe := list.Subscribe(func(evt application.Event) {
			mu.Lock()
			events = append(events, evt)
			mu.Unlock()
		})
		fn(ctx)
		unsubscribe()

		mu.Lock()
		defer mu.Unlock()
		return opDoneMsg{op: op, events: events}
	}
}

// handleEvents reacts only to the event the finished operation owns, so an
// overlapping call cannot claim another command's success.
func (m *Model) handleEvents(op operation, events []application.Event) {
	for _, evt := range events {
		switch {
		case op == opCreate && evt.Kind == application.EventPostCreated:
			m.status = msgPostCreated
			m.title.Reset()
			m.content.Reset()
			m.setFocus(focusList)
		case op == opDelete && evt.Kind == application.EventPostDeleted:
			m.status = msgPostDeleted
		}
	}
}

func (m *Model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	// the controller may have closed a dialog behind our back
	st := m.list.State()
	if m.focus == focusEdit && !st.Edit.Open {
		m.setFocus(focusList)
	}
	if m.focus == focusDelete && !st.Delete.Open {
		m.setFocus(focusList)
	}

	switch m.focus {
	case focusSearch:
		return m.updateSearch(msg)
	case focusForm:
		return m.updateForm(msg)
	case focusEdit:
		return m.updateEdit(msg, st)
	case focusDelete:
		return m.updateDelete(msg, st)
	}
	return m.updateList(msg, st)
}

func (m *Model) updateList(msg tea.KeyMsg, st application.PostListState) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(st.Posts)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.NewPost):
		m.setFocus(focusForm)
	case key.Matches(msg, keys.Search):
		m.search.SetValue(st.Filter.Author())
		m.setFocus(focusSearch)
	case key.Matches(msg, keys.MyPosts):
		if st.MyPostsLocked {
			return m, nil
		}
		m.cursor = 0
		return m, m.run(opFetch, m.list.ToggleFilterByUser)
	case key.Matches(msg, keys.ClearAuthor):
		if st.Filter.Kind() != domain.FilterByAuthor {
			return m, nil
		}
		m.cursor = 0
		return m, m.run(opFetch, m.list.ClearAuthorFilter)
	case key.Matches(msg, keys.Refresh):
		return m, m.run(opFetch, m.list.Refresh)
	case key.Matches(msg, keys.Edit):
		post, ok := m.selectedOwnPost(st)
		if !ok || !m.list.Edit(post.ID) {
			return m, nil
		}
		m.editTitle.SetValue(post.Title)
		m.editContent.SetValue(post.Content)
		m.setFocus(focusEdit)
	case key.Matches(msg, keys.Delete):
		post, ok := m.selectedOwnPost(st)
		if !ok {
			return m, nil
		}
		m.list.RequestDelete(post.ID)
		m.setFocus(focusDelete)
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.setFocus(focusList)
		return m, nil
	case tea.KeyEnter:
		author := strings.TrimSpace(m.search.Value())
		m.setFocus(focusList)
		m.cursor = 0
		return m, m.run(opFetch, func(ctx context.Context) {
			m.list.SetAuthorFilter(ctx, author)
		})
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.setFocus(focusList)
		return m, nil
	case key.Matches(msg, keys.NextField):
		toggleFields(&m.title, &m.content)
		return m, nil
	case key.Matches(msg, keys.Submit):
		title, content := m.title.Value(), m.content.Value()
		if m.creating || !canSubmit(title, content) {
			return m, nil
		}
		m.creating = true
		return m, m.run(opCreate, func(ctx context.Context) {
			_ = m.list.Create(ctx, title, content)
		})
	}

	// inputs are frozen while the post is being submitted
	if m.creating {
		return m, nil
	}

	var cmd tea.Cmd
	if m.title.Focused() {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.content, cmd = m.content.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateEdit(msg tea.KeyMsg, st application.PostListState) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.list.CancelEdit()
		if !m.list.State().Edit.Open {
			m.setFocus(focusList)
		}
		return m, nil
	case key.Matches(msg, keys.NextField):
		toggleFields(&m.editTitle, &m.editContent)
		return m, nil
	case key.Matches(msg, keys.Submit):
		title, content := m.editTitle.Value(), m.editContent.Value()
		if st.Edit.Saving || !canSubmit(title, content) {
			return m, nil
		}
		id := st.Edit.Post.ID
		return m, m.run(opSave, func(ctx context.Context) {
			_ = m.list.SaveEdit(ctx, title, content, id)
		})
	}

	var cmd tea.Cmd
	if m.editTitle.Focused() {
		m.editTitle, cmd = m.editTitle.Update(msg)
	} else {
		m.editContent, cmd = m.editContent.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateDelete(msg tea.KeyMsg, st application.PostListState) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Confirm):
		if st.Delete.Deleting {
			return m, nil
		}
		id := st.Delete.PostID
		return m, m.run(opDelete, func(ctx context.Context) {
			m.list.ConfirmDelete(ctx, id)
		})
	case key.Matches(msg, keys.Back), msg.String() == "n":
		m.list.CancelDelete()
		if !m.list.State().Delete.Open {
			m.setFocus(focusList)
		}
	}
	return m, nil
}

// setFocus moves keyboard focus and the text cursor with it.
func (m *Model) setFocus(f focus) {
	m.focus = f
	m.search.Blur()
	m.title.Blur()
	m.content.Blur()
	m.editTitle.Blur()
	m.editContent.Blur()

	switch f {
	case focusSearch:
		m.search.Focus()
	case focusForm:
		m.title.Focus()
	case focusEdit:
		m.editTitle.Focus()
	}
}

func (m *Model) selectedOwnPost(st application.PostListState) (domain.Post, bool) {
	if m.cursor < 0 || m.cursor >= len(st.Posts) {
		return domain.Post{}, false
	}
	post := st.Posts[m.cursor]
	return post, post.OwnedBy(st.Username)
}

func (m *Model) clampCursor() {
	if m.list == nil {
		return
	}
	n := len(m.list.State().Posts)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func toggleFields(title *textinput.Model, content *textarea.Model) {
	if title.Focused() {
		title.Blur()
		content.Focus()
		return
	}
	content.Blur()
	title.Focus()
}

func canSignIn(username string) bool {
	return strings.TrimSpace(username) != ""
}

func canSubmit(title, content string) bool {
	return domain.PostChanges{Title: title, Content: content}.Validate() == nil
}
