package application

// EventKind identifies what happened in the post list.
type EventKind int

const (
	// EventPostsLoaded follows every successful fetch
	EventPostsLoaded EventKind = iota
	// EventPostCreated follows a successful create and its refetch
	EventPostCreated
	// EventPostDeleted follows a successful delete, before the refetch
	EventPostDeleted
)

func (k EventKind) String() string {
	switch k {
	case EventPostsLoaded:
		return "posts_loaded"
	case EventPostCreated:
		return "post_created"
	case EventPostDeleted:
		return "post_deleted"
	default:
		return "unknown"
	}
}

// Event is emitted to subscribers after successful operations.
// Views use it for success feedback; it carries no state.
type Event struct {
	Kind   EventKind `json:"-"`
	PostID int       `json:"post_id,omitempty"`
}

// Subscribe registers fn for every future event and returns a function that removes it.
// fn is called synchronously from the goroutine that completed the operation.
func (l *PostList) Subscribe(fn func(Event)) func() {
	l.mu.Lock()
	id := l.nextSubID
	l.nextSubID++
	l.listeners[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.listeners, id)
		l.mu.Unlock()
	}
}

func (l *PostList) emit(evt Event) {
	l.mu.Lock()
	fns := make([]func(Event), 0, len(l.listeners))
	for _, fn := range l.listeners {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(evt)
	}
}
