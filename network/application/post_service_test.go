package application

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/dfryer1193/codeleap/api"
	"github.com/dfryer1193/codeleap/network/domain"
)

// recordingClient is a hand-written APIClient that records every call.
type recordingClient struct {
	calls []clientCall
	err   error

	page    api.Page[api.Post]
	created api.Post
	updated api.Post
}

type clientCall struct {
	method string
	path   string
	params url.Values
	body   any
}

func (c *recordingClient) Get(ctx context.Context, path string, params url.Values, out any) error {
	c.calls = append(c.calls, clientCall{method: "GET", path: path, params: params})
	if c.err != nil {
		return c.err
	}
	*out.(*api.Page[api.Post]) = c.page
	return nil
}

func (c *recordingClient) Post(ctx context.Context, path string, body any, out any) error {
	c.calls = append(c.calls, clientCall{method: "POST", path: path, body: body})
	if c.err != nil {
		return c.err
	}
	*out.(*api.Post) = c.created
	return nil
}

func (c *recordingClient) Patch(ctx context.Context, path string, body any, out any) error {
	c.calls = append(c.calls, clientCall{method: "PATCH", path: path, body: body})
	if c.err != nil {
		return c.err
	}
	*out.(*api.Post) = c.updated
	return nil
}

func (c *recordingClient) Delete(ctx context.Context, path string) error {
	c.calls = append(c.calls, clientCall{method: "DELETE", path: path})
	return c.err
}

func TestPostService_GetPostsQuery(t *testing.T) {
	tests := []struct {
		name         string
		query        domain.PostQuery
		wantUsername bool
	}{
		{
			name:         "With username",
			query:        domain.PostQuery{Username: "alice"},
			wantUsername: true,
		},
		{
			name:         "Empty username is omitted",
			query:        domain.PostQuery{},
			wantUsername: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &recordingClient{}
			service := NewPostService(client)

			if _, err := service.GetPosts(context.Background(), tt.query); err != nil {
				t.Fatalf("GetPosts failed: %v", err)
			}
			if len(client.calls) != 1 {
				t.Fatalf("calls = %d, want 1", len(client.calls))
			}
			call := client.calls[0]
			if call.method != "GET" || call.path != "" {
				t.Errorf("call = %s %q, want GET %q", call.method, call.path, "")
			}
			_, has := call.params["username"]
			if has != tt.wantUsername {
				t.Errorf("username param present = %v, want %v", has, tt.wantUsername)
			}
			if tt.wantUsername && call.params.Get("username") != tt.query.Username {
				t.Errorf("username = %q, want %q", call.params.Get("username"), tt.query.Username)
			}
		})
	}
}

func TestPostService_GetPostsMapsPage(t *testing.T) {
	next := "https://example.com/careers/?limit=10&offset=10"
	client := &recordingClient{
		page: api.Page[api.Post]{
			Count: 12,
			Next:  &next,
			Results: []api.Post{
				{ID: 2, Username: "bob", Title: "second", Content: "b", CreatedDatetime: "2024-01-02T00:00:00Z"},
				{ID: 1, Username: "alice", Title: "first", Content: "a", CreatedDatetime: "2024-01-01T00:00:00Z"},
			},
		},
	}
	service := NewPostService(client)

	page, err := service.GetPosts(context.Background(), domain.PostQuery{})
	if err != nil {
		t.Fatalf("GetPosts failed: %v", err)
	}
	if page.Count != 12 || page.Next != next || page.Previous != "" {
		t.Errorf("page envelope = %+v, want count 12 with next link only", page)
	}
	if len(page.Results) != 2 || page.Results[0].ID != 2 || page.Results[1].ID != 1 {
		t.Fatalf("results = %+v, want ids [2 1] in server order", page.Results)
	}
	if page.Results[0].CreatedDatetime != "2024-01-02T00:00:00Z" || page.Results[0].Username != "bob" {
		t.Errorf("results[0] = %+v, fields not mapped", page.Results[0])
	}
}

func TestPostService_CreatePostSendsAllFields(t *testing.T) {
	client := &recordingClient{created: api.Post{ID: 7, Username: "bob", Title: "Hi", Content: "There", CreatedDatetime: "2024-01-01T00:00:00Z"}}
	service := NewPostService(client)

	post, err := service.CreatePost(context.Background(), domain.PostInput{Username: "bob", Title: "Hi", Content: "There"})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if post.ID != 7 || post.CreatedDatetime == "" {
		t.Errorf("post = %+v, want server-assigned fields", post)
	}

	body, ok := client.calls[0].body.(api.PostProto)
	if !ok {
		t.Fatalf("body type = %T, want api.PostProto", client.calls[0].body)
	}
	if body != (api.PostProto{Username: "bob", Title: "Hi", Content: "There"}) {
		t.Errorf("body = %+v, want all three fields", body)
	}
}

func TestPostService_UpdatePostOmitsUsername(t *testing.T) {
	client := &recordingClient{updated: api.Post{ID: 5, Username: "bob", Title: "New", Content: "Body"}}
	service := NewPostService(client)

	if _, err := service.UpdatePost(context.Background(), 5, domain.PostChanges{Title: "New", Content: "Body"}); err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}

	call := client.calls[0]
	if call.method != "PATCH" || call.path != "5/" {
		t.Errorf("call = %s %q, want PATCH %q", call.method, call.path, "5/")
	}
	if _, ok := call.body.(api.PostPatch); !ok {
		t.Errorf("body type = %T, want api.PostPatch", call.body)
	}
}

func TestPostService_DeletePostPath(t *testing.T) {
	client := &recordingClient{}
	service := NewPostService(client)

	if err := service.DeletePost(context.Background(), 42); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if call := client.calls[0]; call.method != "DELETE" || call.path != "42/" {
		t.Errorf("call = %s %q, want DELETE %q", call.method, call.path, "42/")
	}
}

func TestPostService_PropagatesErrorsUnchanged(t *testing.T) {
	sentinel := errors.New("boom")
	client := &recordingClient{err: sentinel}
	service := NewPostService(client)
	ctx := context.Background()

	if _, err := service.GetPosts(ctx, domain.PostQuery{}); err != sentinel {
		t.Errorf("GetPosts error = %v, want %v", err, sentinel)
	}
	if _, err := service.CreatePost(ctx, domain.PostInput{}); err != sentinel {
		t.Errorf("CreatePost error = %v, want %v", err, sentinel)
	}
	if _, err := service.UpdatePost(ctx, 1, domain.PostChanges{}); err != sentinel {
		t.Errorf("UpdatePost error = %v, want %v", err, sentinel)
	}
	if err := service.DeletePost(ctx, 1); err != sentinel {
		t.Errorf("DeletePost error = %v, want %v", err, sentinel)
	}
}

func TestItemPath(t *testing.T) {
	tests := []struct {
		id       int
		expected string
	}{
		{id: 1, expected: "1/"},
		{id: 1234, expected: "1234/"},
	}

	for _, tt := range tests {
		if result := itemPath(tt.id); result != tt.expected {
			t.Errorf("itemPath(%d) = %q, want %q", tt.id, result, tt.expected)
		}
	}
}
