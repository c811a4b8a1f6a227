package api

// Post is a post as returned by the careers API.
type Post struct {
	ID              int    `json:"id"`
	Username        string `json:"username"`
	CreatedDatetime string `json:"created_datetime"`
	Title           string `json:"title"`
	Content         string `json:"content"`
}

// PostProto is the body of a create request.
type PostProto struct {
	Username string `json:"username"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// PostPatch is the body of an update request. The author is never sent.
type PostPatch struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Page is the paginated list envelope.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next,omitempty"`
	Previous *string `json:"previous,omitempty"`
	Results  []T     `json:"results"`
}
