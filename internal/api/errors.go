package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/ourworld/internal/logging"
	"github.com/yourusername/ourworld/internal/store"
)

// Error はクライアントにそのまま返してよいエラーです。
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func badRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// notFoundAs は store.ErrNotFound を操作ごとの 404 メッセージに置き換えます。
func notFoundAs(err error, message string) error {
	if errors.Is(err, store.ErrNotFound) {
		return &Error{Status: http.StatusNotFound, Message: message}
	}
	return err
}

// respondWithError はエラーを HTTP レスポンスに変換します。
// 想定外のエラーはログにだけ残し、クライアントには汎用メッセージを返します。
func respondWithError(c *gin.Context, err error) {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		c.JSON(apiErr.Status, gin.H{"message": apiErr.Message})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found."})
	case errors.Is(err, context.Canceled):
		c.JSON(http.StatusRequestTimeout, gin.H{"message": "Request canceled."})
	default:
		logging.FromContext(c, nil).Error(c.Request.Context(), "request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
	}
}
