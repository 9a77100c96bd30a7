package handler

import (
	"intro-auction/internal/adapter/http/middleware"
	"intro-auction/internal/core/domain"
	"intro-auction/pkg/apperror"
	"intro-auction/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// viewer returns the authenticated caller or writes a 401.
func viewer(c *gin.Context) (*domain.RequestContext, bool) {
	rc, ok := middleware.GetRequestContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return nil, false
	}
	return rc, true
}

// pathID parses the :id route parameter. A malformed id is reported as not found.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrConversationNotFound())
		return uuid.Nil, false
	}
	return id, true
}
