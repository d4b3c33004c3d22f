package http

import (
	"errors"
	"net/http"

	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/adapters/transport/http/middleware"
	customErrors "github.com/Miraines/MoonyAndStarry/contacts-service/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	MsgAccountExists     = "Account already exists"
	MsgEmailNotConfirmed = "Email not confirmed"
	MsgVerificationError = "Verification error"
	MsgUserNotFound      = "User not found"
	MsgInvalidToken      = "Could not validate credentials"
	MsgInvalidScope      = "Invalid scope for token"
	MsgEmailTokenInvalid = "Invalid token for email verification"
	MsgResetTokenInvalid = "Invalid or expired token"
	MsgTokenExpired      = "Token has expired"
	MsgInternal          = "Internal server error"
)

// detailOf prefers the message carried by the error itself.
func detailOf(err error, fallback string) string {
	var de *customErrors.DetailError
	if errors.As(err, &de) {
		return de.Detail
	}
	var ce *customErrors.CredentialError
	if errors.As(err, &ce) {
		return ce.Detail
	}
	return fallback
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case customErrors.IsInvalidArgument(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
	case customErrors.IsInvalidCredentials(err):
		middleware.AbortUnauthorized(c, detailOf(err, "Invalid credentials"))
	case customErrors.IsEmailNotConfirmed(err):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": MsgEmailNotConfirmed})
	case errors.Is(err, customErrors.ErrInvalidScope):
		middleware.AbortUnauthorized(c, MsgInvalidScope)
	case customErrors.IsUnauthorized(err):
		middleware.AbortUnauthorized(c, MsgInvalidToken)
	case customErrors.IsAlreadyExists(err):
		c.JSON(http.StatusConflict, gin.H{"detail": detailOf(err, MsgAccountExists)})
	case customErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"detail": detailOf(err, MsgUserNotFound)})
	case customErrors.IsVerification(err):
		c.JSON(http.StatusBadRequest, gin.H{"detail": MsgVerificationError})
	case customErrors.IsUnprocessableEntity(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": MsgEmailTokenInvalid})
	case customErrors.IsTokenExpired(err):
		c.JSON(http.StatusBadRequest, gin.H{"detail": MsgTokenExpired})
	case customErrors.IsInvalidOrExpiredToken(err):
		c.JSON(http.StatusBadRequest, gin.H{"detail": MsgResetTokenInvalid})
	default:
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": MsgInternal})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
}
