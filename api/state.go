package api

// PostView is a post card as the local REST surface renders it.
type PostView struct {
	Post
	TimeAgo string `json:"time_ago"`
	Owned   bool   `json:"owned"`
}

type FilterView struct {
	Kind   string `json:"kind"`
	Author string `json:"author,omitempty"`
}

type EditDialogView struct {
	Open    bool   `json:"open"`
	PostID  int    `json:"post_id,omitempty"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
	Saving  bool   `json:"saving"`
}

type DeleteDialogView struct {
	Open     bool `json:"open"`
	PostID   int  `json:"post_id,omitempty"`
	Deleting bool `json:"deleting"`
}

// ListState is the full post list view model.
type ListState struct {
	Username      string           `json:"username"`
	Posts         []PostView       `json:"posts"`
	Count         int              `json:"count"`
	OwnPostCount  int              `json:"own_post_count"`
	IsLoading     bool             `json:"is_loading"`
	Error         string           `json:"error,omitempty"`
	Filter        FilterView       `json:"filter"`
	MyPostsLocked bool             `json:"my_posts_locked"`
	Edit          EditDialogView   `json:"edit"`
	Delete        DeleteDialogView `json:"delete"`
}

// Session reports who is signed in and which view to show.
type Session struct {
	Username string `json:"username,omitempty"`
	Route    string `json:"route"`
}

type SignInRequest struct {
	Username string `json:"username"`
}

type AuthorFilterRequest struct {
	Author string `json:"author"`
}

// PostForm is the body of create and save-edit requests.
type PostForm struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// DialogRequest opens a dialog for one post.
type DialogRequest struct {
	PostID int `json:"post_id"`
}

// StreamMessage is one frame on the event stream.
type StreamMessage struct {
	Type   string `json:"type"`
	PostID int    `json:"post_id,omitempty"`
}
