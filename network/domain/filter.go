package domain

// FilterKind selects which variant a Filter holds.
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterByAuthor
	FilterByCurrentUser
)

func (k FilterKind) String() string {
	switch k {
	case FilterByAuthor:
		return "author"
	case FilterByCurrentUser:
		return "mine"
	default:
		return "none"
	}
}

// Filter narrows the post list. Explicit author search and "my posts" cannot
// both be active, so it is a single tagged value rather than two flags.
type Filter struct {
	kind   FilterKind
	author string
}

func NoFilter() Filter {
	return Filter{kind: FilterNone}
}

// ByAuthor filters by an explicit author. An empty name yields NoFilter.
func ByAuthor(name string) Filter {
	if name == "" {
		return NoFilter()
	}
	return Filter{kind: FilterByAuthor, author: name}
}

func ByCurrentUser() Filter {
	return Filter{kind: FilterByCurrentUser}
}

func (f Filter) Kind() FilterKind {
	return f.kind
}

// Author returns the explicit author, or "" for the other variants.
func (f Filter) Author() string {
	return f.author
}

func (f Filter) IsMine() bool {
	return f.kind == FilterByCurrentUser
}

// Query resolves the filter into list parameters for the given session user.
func (f Filter) Query(sessionUser string) PostQuery {
	switch f.kind {
	case FilterByCurrentUser:
		return PostQuery{Username: sessionUser}
	case FilterByAuthor:
		return PostQuery{Username: f.author}
	default:
		return PostQuery{}
	}
}

// WithAuthor applies an explicit author search.
// Clearing the search leaves "my posts" alone. Searching for the session
// user while "my posts" is on keeps it on, since both resolve to the same query.
// Any other author turns "my posts" off.
func (f Filter) WithAuthor(author, sessionUser string) Filter {
	if author == "" {
		if f.kind == FilterByAuthor {
			return NoFilter()
		}
		return f
	}
	if author == sessionUser && f.kind == FilterByCurrentUser {
		return f
	}
	return ByAuthor(author)
}

// Toggled flips "my posts". Turning it on drops any explicit author.
func (f Filter) Toggled() Filter {
	if f.kind == FilterByCurrentUser {
		return NoFilter()
	}
	return ByCurrentUser()
}

// Locked reports whether "my posts" must be disabled because a different
// author is being searched for.
func (f Filter) Locked(sessionUser string) bool {
	return f.kind == FilterByAuthor && f.author != sessionUser
}
