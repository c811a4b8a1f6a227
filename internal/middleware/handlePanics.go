package middleware

import (
	"fmt"

	"github.com/dfryer1193/codeleap/shared/apperror"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// HandlePanics turns a recovered panic into a JSON internal error.
func HandlePanics() gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("%v", recovered)
		}

		log.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("requestID", RequestID(c)).
			Msg("Recovered from panic")

		appErr := apperror.NewInternalError("internal server error", err)
		c.AbortWithStatusJSON(appErr.StatusCode(), appErr.ToResponse())
	}
}
