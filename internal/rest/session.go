package rest

import (
	"errors"
	"net/http"

	"github.com/dfryer1193/codeleap/api"
	"github.com/dfryer1193/codeleap/network/application"
	"github.com/dfryer1193/codeleap/network/domain"
	"github.com/dfryer1193/codeleap/shared/apperror"
	"github.com/gin-gonic/gin"
)

func (s *Server) GetSession(c *gin.Context) {
	route, username, err := s.sessions.Route(c.Request.Context())
	if err != nil {
		respondError(c, apperror.NewInternalError("could not read session", err))
		return
	}

	c.JSON(http.StatusOK, api.Session{Username: username, Route: route.String()})
}

func (s *Server) SignIn(c *gin.Context) {
	var req api.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.NewValidationError("invalid request body", err))
		return
	}

	username, err := s.sessions.SignIn(c.Request.Context(), req.Username)
	if errors.Is(err, domain.ErrEmptyUsername) {
		respondError(c, apperror.NewValidationError(err.Error(), err))
		return
	}
	if err != nil {
		respondError(c, apperror.NewInternalError("could not save session", err))
		return
	}

	s.activate(c.Request.Context(), username)
	c.JSON(http.StatusOK, api.Session{Username: username, Route: application.RouteHome.String()})
}

func (s *Server) SignOut(c *gin.Context) {
	if err := s.sessions.SignOut(c.Request.Context()); err != nil {
		respondError(c, apperror.NewInternalError("could not clear session", err))
		return
	}

	s.deactivate()
	c.JSON(http.StatusOK, api.Session{Route: application.RouteSignIn.String()})
}

func respondError(c *gin.Context, err *apperror.AppError) {
	c.Error(err)
	c.AbortWithStatusJSON(err.StatusCode(), err.ToResponse())
}
