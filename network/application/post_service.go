package application

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dfryer1193/codeleap/api"
	"github.com/dfryer1193/codeleap/network/domain"
)

var _ domain.PostRepository = (*PostService)(nil)

// APIClient defines the HTTP verbs the post service needs from the remote API.
type APIClient interface {
	Get(ctx context.Context, path string, params url.Values, out any) error
	Post(ctx context.Context, path string, body any, out any) error
	Patch(ctx context.Context, path string, body any, out any) error
	Delete(ctx context.Context, path string) error
}

// PostService maps post operations onto API calls.
// Client failures are returned unchanged.
type PostService struct {
	client APIClient
}

func NewPostService(client APIClient) *PostService {
	return &PostService{
		client: client,
	}
}

// GetPosts lists posts. The username parameter is only sent when non-empty.
func (s *PostService) GetPosts(ctx context.Context, query domain.PostQuery) (*domain.PostPage, error) {
	params := url.Values{}
	if query.Username != "" {
		params.Set("username", query.Username)
	}

	var page api.Page[api.Post]
	if err := s.client.Get(ctx, "", params, &page); err != nil {
		return nil, err
	}

	return pageToDomain(&page), nil
}

// CreatePost submits username, title and content.
func (s *PostService) CreatePost(ctx context.Context, in domain.PostInput) (*domain.Post, error) {
	proto := api.PostProto{
		Username: in.Username,
		Title:    in.Title,
		Content:  in.Content,
	}

	var created api.Post
	if err := s.client.Post(ctx, "", proto, &created); err != nil {
		return nil, err
	}

	post := postToDomain(created)
	return &post, nil
}

// UpdatePost submits only title and content, never the author.
func (s *PostService) UpdatePost(ctx context.Context, id int, changes domain.PostChanges) (*domain.Post, error) {
	patch := api.PostPatch{
		Title:   changes.Title,
		Content: changes.Content,
	}

	var updated api.Post
	if err := s.client.Patch(ctx, itemPath(id), patch, &updated); err != nil {
		return nil, err
	}

	post := postToDomain(updated)
	return &post, nil
}

func (s *PostService) DeletePost(ctx context.Context, id int) error {
	return s.client.Delete(ctx, itemPath(id))
}

// itemPath builds the relative path of a single post. The API requires the trailing slash.
func itemPath(id int) string {
	return fmt.Sprintf("%s/", strconv.Itoa(id))
}

func postToDomain(p api.Post) domain.Post {
	return domain.Post{
		ID:              p.ID,
		Title:           p.Title,
		Content:         p.Content,
		Username:        p.Username,
		CreatedDatetime: p.CreatedDatetime,
	}
}

func pageToDomain(page *api.Page[api.Post]) *domain.PostPage {
	out := &domain.PostPage{
		Count:   page.Count,
		Results: make([]domain.Post, 0, len(page.Results)),
	}
	if page.Next != nil {
		out.Next = *page.Next
	}
	if page.Previous != nil {
		out.Previous = *page.Previous
	}
	for _, p := range page.Results {
		out.Results = append(out.Results, postToDomain(p))
	}
	return out
}
