package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sunrisehms/finance_backend/internal/apperrors"
	"github.com/sunrisehms/finance_backend/internal/core/domain"
	"github.com/sunrisehms/finance_backend/internal/dto"
	"github.com/sunrisehms/finance_backend/internal/middleware"
)

// respondError maps service errors onto the response envelope. Client errors
// surface their message; internal errors are logged and replaced with a
// generic message.
func respondError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code >= 400 && appErr.Code < 500 {
		c.JSON(appErr.Code, dto.Fail(appErr.Message))
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, dto.Fail(err.Error()))
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.Fail("You do not have permission to perform this action"))
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.Fail(err.Error()))
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, dto.Fail(err.Error()))
	default:
		logger.Error("Unhandled error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.Fail("Internal server error"))
	}
}

// mustActor fetches the authenticated actor, aborting with 401 when missing.
func mustActor(c *gin.Context) (domain.Actor, bool) {
	a, found := middleware.GetActorFromContext(c)
	if !found {
		c.JSON(http.StatusUnauthorized, dto.Fail("Unauthorized"))
		return domain.Actor{}, false
	}
	return a, true
}
