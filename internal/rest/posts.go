package rest

import (
	"net/http"

	"github.com/dfryer1193/codeleap/api"
	"github.com/dfryer1193/codeleap/internal/middleware"
	"github.com/dfryer1193/codeleap/network/application"
	"github.com/dfryer1193/codeleap/network/domain"
	"github.com/dfryer1193/codeleap/shared/apperror"
	"github.com/gin-gonic/gin"
)

func GetPosts(c *gin.Context) {
	writeState(c, http.StatusOK)
}

func RefreshPosts(c *gin.Context) {
	middleware.PostList(c).Refresh(c.Request.Context())
	writeState(c, http.StatusOK)
}

func SetAuthorFilter(c *gin.Context) {
	var req api.AuthorFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.NewValidationError("invalid request body", err))
		return
	}

	middleware.PostList(c).SetAuthorFilter(c.Request.Context(), req.Author)
	writeState(c, http.StatusOK)
}

func ClearAuthorFilter(c *gin.Context) {
	middleware.PostList(c).ClearAuthorFilter(c.Request.Context())
	writeState(c, http.StatusOK)
}

// ToggleMyPosts flips "my posts". It is refused while another author is searched.
func ToggleMyPosts(c *gin.Context) {
	list := middleware.PostList(c)
	if list.State().MyPostsLocked {
		respondError(c, apperror.NewValidationError("remove the author filter first", nil))
		return
	}

	list.ToggleFilterByUser(c.Request.Context())
	writeState(c, http.StatusOK)
}

func ClearMyPosts(c *gin.Context) {
	middleware.PostList(c).ClearUserFilter(c.Request.Context())
	writeState(c, http.StatusOK)
}

func CreatePost(c *gin.Context) {
	form, ok := bindPostForm(c)
	if !ok {
		return
	}

	list := middleware.PostList(c)
	if err := list.Create(c.Request.Context(), form.Title, form.Content); err != nil {
		respondError(c, apperror.NewExternalServiceError(application.MsgCreateFailed, err))
		return
	}
	writeState(c, http.StatusCreated)
}

func OpenEdit(c *gin.Context) {
	var req api.DialogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.NewValidationError("invalid request body", err))
		return
	}

	if !middleware.PostList(c).Edit(req.PostID) {
		respondError(c, apperror.NewNotFoundError("post is not in the current list", nil))
		return
	}
	writeState(c, http.StatusOK)
}

// SaveEdit saves the post held by the open edit dialog.
func SaveEdit(c *gin.Context) {
	list := middleware.PostList(c)
	edit := list.State().Edit
	if !edit.Open {
		respondError(c, apperror.NewValidationError("no post is being edited", nil))
		return
	}

	form, ok := bindPostForm(c)
	if !ok {
		return
	}

	if err := list.SaveEdit(c.Request.Context(), form.Title, form.Content, edit.Post.ID); err != nil {
		respondError(c, apperror.NewExternalServiceError(application.MsgUpdateFailed, err))
		return
	}
	writeState(c, http.StatusOK)
}

func CancelEdit(c *gin.Context) {
	middleware.PostList(c).CancelEdit()
	writeState(c, http.StatusOK)
}

func RequestDelete(c *gin.Context) {
	var req api.DialogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.NewValidationError("invalid request body", err))
		return
	}

	middleware.PostList(c).RequestDelete(req.PostID)
	writeState(c, http.StatusOK)
}

// ConfirmDelete deletes the post held by the open delete dialog. A failed delete
// is reported through the list error, not the status code.
func ConfirmDelete(c *gin.Context) {
	list := middleware.PostList(c)
	del := list.State().Delete
	if !del.Open {
		respondError(c, apperror.NewValidationError("no post is awaiting deletion", nil))
		return
	}

	list.ConfirmDelete(c.Request.Context(), del.PostID)
	writeState(c, http.StatusOK)
}

func CancelDelete(c *gin.Context) {
	middleware.PostList(c).CancelDelete()
	writeState(c, http.StatusOK)
}

func bindPostForm(c *gin.Context) (api.PostForm, bool) {
	var form api.PostForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondError(c, apperror.NewValidationError("invalid request body", err))
		return form, false
	}

	if err := (domain.PostChanges{Title: form.Title, Content: form.Content}).Validate(); err != nil {
		respondError(c, apperror.NewValidationError(err.Error(), err))
		return form, false
	}
	return form, true
}

func writeState(c *gin.Context, status int) {
	c.JSON(status, toListState(middleware.PostList(c).State()))
}
