package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	NewPost     key.Binding
	Search      key.Binding
	MyPosts     key.Binding
	ClearAuthor key.Binding
	Edit        key.Binding
	Delete      key.Binding
	Refresh     key.Binding
	Submit      key.Binding
	NextField   key.Binding
	Confirm     key.Binding
	Back        key.Binding
	Quit        key.Binding
}

var keys = keyMap{
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	NewPost:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new post")),
	Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search author")),
	MyPosts:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "my posts")),
	ClearAuthor: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove author filter")),
	Edit:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Submit:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
	NextField:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	Confirm:     key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
	Back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:        key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
}

func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NewPost, k.Search, k.MyPosts, k.ClearAuthor, k.Edit, k.Delete, k.Refresh, k.Quit}
}

func (k keyMap) formHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Submit, k.Back}
}
