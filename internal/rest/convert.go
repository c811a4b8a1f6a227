package rest

import (
	"time"

	"github.com/dfryer1193/codeleap/api"
	"github.com/dfryer1193/codeleap/network/application"
	"github.com/dfryer1193/codeleap/network/domain"
)

var now = time.Now

func toListState(st application.PostListState) api.ListState {
	at := now()

	posts := make([]api.PostView, 0, len(st.Posts))
	for _, p := range st.Posts {
		posts = append(posts, api.PostView{
			Post:    toAPIPost(p),
			TimeAgo: domain.TimeAgo(p.CreatedAt(), at),
			Owned:   p.OwnedBy(st.Username),
		})
	}

	out := api.ListState{
		Username:      st.Username,
		Posts:         posts,
		Count:         st.Count,
		OwnPostCount:  st.OwnPostCount,
		IsLoading:     st.IsLoading,
		Error:         st.Error,
		Filter:        api.FilterView{Kind: st.Filter.Kind().String(), Author: st.Filter.Author()},
		MyPostsLocked: st.MyPostsLocked,
		Delete: api.DeleteDialogView{
			Open:     st.Delete.Open,
			PostID:   st.Delete.PostID,
			Deleting: st.Delete.Deleting,
		},
	}

	if st.Edit.Open {
		out.Edit = api.EditDialogView{
			Open:    true,
			PostID:  st.Edit.Post.ID,
			Title:   st.Edit.Post.Title,
			Content: st.Edit.Post.Content,
			Saving:  st.Edit.Saving,
		}
	}
	return out
}

func toAPIPost(p domain.Post) api.Post {
	return api.Post{
		ID:              p.ID,
		Username:        p.Username,
		CreatedDatetime: p.CreatedDatetime,
		Title:           p.Title,
		Content:         p.Content,
	}
}
