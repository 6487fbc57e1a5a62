package routes

import (
	"log"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/rm-hull/inventory-console/internal/gateway"
	"github.com/rm-hull/inventory-console/internal/inventory"
)

// abortWithError maps err onto a response status. Upstream status errors keep
// their status so the frontend sees what the remote API said.
func abortWithError(c *gin.Context, err error) {
	var vErr *inventory.ValidationError
	var stErr *gateway.HTTPStatusError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
	case errors.Is(err, inventory.ErrUnknownKind):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, gateway.ErrRefreshFailed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired, please log in again"})
	case errors.As(err, &stErr):
		c.JSON(stErr.StatusCode, gin.H{"error": upstreamMessage(stErr)})
	default:
		log.Printf("error while handling %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal server error occurred"})
	}
}

func upstreamMessage(err *gateway.HTTPStatusError) string {
	if env := gateway.DefaultSchema.Decode(err.Body); env.Message != "" {
		return env.Message
	}
	return err.Status
}
