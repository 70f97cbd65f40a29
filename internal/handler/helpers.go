package handler

import (
	"errors"

	"github.com/Baaaki/inmobiliaria-api/internal/apperrors"
	"github.com/Baaaki/inmobiliaria-api/internal/middleware"
	"github.com/Baaaki/inmobiliaria-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errInvalidID = apperrors.New(apperrors.KindInvalidInput, "invalid id format")

// pathID parses a uuid path parameter. On failure the error is recorded and
// the caller must return.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		_ = c.Error(invalidID(err))
		return uuid.Nil, false
	}
	return id, true
}

// callerID returns the authenticated user's id. Routes using it sit behind
// AuthMiddleware, so a miss is a wiring bug reported as 401.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(apperrors.New(apperrors.KindUnauthorized, "authorization required"))
		return uuid.Nil, false
	}
	return claims.ID, true
}

// fail records err, naming the entity when the service reports a miss.
func fail(c *gin.Context, err error, notFoundMsg string) {
	if errors.Is(err, service.ErrNotFound) {
		err = apperrors.Wrap(apperrors.KindNotFound, notFoundMsg, err)
	}
	_ = c.Error(err)
}

// bindJSON binds the body and records any binding error.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(err)
		return false
	}
	return true
}

func invalidID(err error) error {
	return apperrors.Wrap(apperrors.KindInvalidInput, errInvalidID.Message, err)
}
