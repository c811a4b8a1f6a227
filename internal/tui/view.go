package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	"github.com/dfryer1193/codeleap/network/application"
	"github.com/dfryer1193/codeleap/network/domain"
)

var now = time.Now

var (
	accent = lipgloss.Color("#7695EC")
	muted  = lipgloss.Color("#777777")
	danger = lipgloss.Color("#FF5151")
	success = lipgloss.Color("#47B960")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accent).
			Padding(0, 1)
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)
	selectedCardStyle = cardStyle.BorderForeground(accent)
	titleStyle        = lipgloss.NewStyle().Bold(true)
	metaStyle         = lipgloss.NewStyle().Foreground(muted)
	errorStyle        = lipgloss.NewStyle().Foreground(danger)
	statusStyle       = lipgloss.NewStyle().Foreground(success)
	chipStyle         = lipgloss.NewStyle().Foreground(accent).Border(lipgloss.NormalBorder()).Padding(0, 1)
	dialogStyle       = lipgloss.NewStyle().
				Border(lipgloss.DoubleBorder()).
				BorderForeground(accent).
				Padding(1, 2)
	disabledStyle = lipgloss.NewStyle().Foreground(muted).Strikethrough(true)
)

var helpView = help.New()

func (m *Model) View() string {
	switch m.screen {
	case screenSignIn:
		return m.viewSignIn()
	case screenHome:
		return m.viewHome()
	}
	return "Loading..."
}

func (m *Model) viewSignIn() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Welcome to CodeLeap network!"))
	b.WriteString("\n\nPlease enter your username\n")
	b.WriteString(m.signIn.View())
	b.WriteString("\n\n")
	b.WriteString(button("ENTER", canSignIn(m.signIn.Value())))
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()))
	}
	return dialogStyle.Render(b.String())
}

func (m *Model) viewHome() string {
	st := m.list.State()

	var b strings.Builder
	b.WriteString(headerStyle.Render("CodeLeap Network"))
	b.WriteString(metaStyle.Render(fmt.Sprintf("  @%s", st.Username)))
	b.WriteString("\n\n")

	switch m.focus {
	case focusEdit:
		return b.String() + m.viewEditDialog(st)
	case focusDelete:
		return b.String() + m.viewDeleteDialog(st)
	}

	b.WriteString(m.viewForm())
	b.WriteString("\n")
	b.WriteString(m.viewFilters(st))
	b.WriteString("\n")

	if st.Error != "" {
		b.WriteString(errorStyle.Render(st.Error) + "\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	if st.IsLoading {
		b.WriteString(metaStyle.Render("Loading...") + "\n")
	}

	b.WriteString(m.viewPosts(st))
	b.WriteString("\n")
	if m.focus == focusForm {
		b.WriteString(helpView.ShortHelpView(keys.formHelp()))
	} else {
		b.WriteString(helpView.ShortHelpView(keys.listHelp()))
	}
	return b.String()
}

func (m *Model) viewForm() string {
	if m.focus != focusForm {
		return metaStyle.Render("What's on your mind? (n)") + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("What's on your mind?") + "\n")
	b.WriteString("Title\n" + m.title.View() + "\n")
	b.WriteString("Content\n" + m.content.View() + "\n")
	label := "Create"
	if m.creating {
		label = "Creating..."
	}
	b.WriteString(button(label, !m.creating && canSubmit(m.title.Value(), m.content.Value())))
	return cardStyle.Render(b.String()) + "\n"
}

func (m *Model) viewFilters(st application.PostListState) string {
	var parts []string

	if m.focus == focusSearch {
		parts = append(parts, m.search.View())
	}

	mine := "[ ] Only my posts"
	if st.Filter.IsMine() {
		mine = "[x] Only my posts"
	}
	if st.MyPostsLocked {
		parts = append(parts, disabledStyle.Render(mine))
	} else {
		parts = append(parts, mine)
	}

	switch st.Filter.Kind() {
	case domain.FilterByAuthor:
		parts = append(parts, chipStyle.Render(fmt.Sprintf("author: %s  (x)", st.Filter.Author())))
	case domain.FilterByCurrentUser:
		parts = append(parts, chipStyle.Render(fmt.Sprintf("my posts: %d  (m)", st.OwnPostCount)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(parts, "  ")) + "\n"
}

func (m *Model) viewPosts(st application.PostListState) string {
	if len(st.Posts) == 0 && !st.IsLoading {
		return metaStyle.Render("No posts yet.") + "\n"
	}

	at := now()
	cards := make([]string, 0, len(st.Posts))
	for i, p := range st.Posts {
		style := cardStyle
		if i == m.cursor {
			style = selectedCardStyle
		}

		header := titleStyle.Render(p.Title)
		if p.OwnedBy(st.Username) {
			header += metaStyle.Render("  (e)dit (d)elete")
		}
		meta := metaStyle.Render(fmt.Sprintf("@%s · %s", p.Username, domain.TimeAgo(p.CreatedAt(), at)))

		width := max(m.width-4, 20)
		cards = append(cards, style.Width(width).Render(header+"\n"+meta+"\n\n"+p.Content))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (m *Model) viewEditDialog(st application.PostListState) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Edit item") + "\n\n")
	b.WriteString("Title\n" + m.editTitle.View() + "\n")
	b.WriteString("Content\n" + m.editContent.View() + "\n\n")

	label := "Save"
	if st.Edit.Saving {
		label = "Saving..."
	}
	b.WriteString(button("Cancel (esc)", !st.Edit.Saving) + "  ")
	b.WriteString(button(label, !st.Edit.Saving && canSubmit(m.editTitle.Value(), m.editContent.Value())))
	if st.Error != "" {
		b.WriteString("\n" + errorStyle.Render(st.Error))
	}
	return dialogStyle.Render(b.String())
}

func (m *Model) viewDeleteDialog(st application.PostListState) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Are you sure you want to delete this item?") + "\n\n")

	label := "Delete (y)"
	if st.Delete.Deleting {
		label = "Deleting..."
	}
	b.WriteString(button("Cancel (n)", !st.Delete.Deleting) + "  ")
	b.WriteString(errorStyle.Render(label))
	return dialogStyle.Render(b.String())
}

func button(label string, enabled bool) string {
	if !enabled {
		return disabledStyle.Render("[" + label + "]")
	}
	return lipgloss.NewStyle().Bold(true).Foreground(accent).Render("[" + label + "]")
}
