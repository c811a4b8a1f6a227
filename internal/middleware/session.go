package middleware

import (
	"github.com/dfryer1193/codeleap/network/application"
	"github.com/dfryer1193/codeleap/shared/apperror"
	"github.com/gin-gonic/gin"
)

const postListKey = "post_list"

// PostListSource returns the controller of the signed-in user, or false when nobody is signed in.
type PostListSource func() (*application.PostList, bool)

// RequireSession rejects the request with 401 unless a user is signed in,
// and stores that user's controller on the context.
func RequireSession(source PostListSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, ok := source()
		if !ok {
			appErr := apperror.NewUnauthorizedError("sign in to continue", nil)
			c.AbortWithStatusJSON(appErr.StatusCode(), appErr.ToResponse())
			return
		}

		c.Set(postListKey, list)
		c.Next()
	}
}

// PostList returns the controller stored by RequireSession.
func PostList(c *gin.Context) *application.PostList {
	list, _ := c.MustGet(postListKey).(*application.PostList)
	return list
}
