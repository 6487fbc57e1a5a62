package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rm-hull/inventory-console/internal/models"
)

type Authenticator interface {
	Login(ctx context.Context, username, password string) error
	Logout() error
}

type SessionState interface {
	State() models.Credential
}

func Login(auth Authenticator) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
			return
		}

		if err := auth.Login(c.Request.Context(), req.Username, req.Password); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"loggedIn": true})
	}
}

func Logout(auth Authenticator) func(c *gin.Context) {
	return func(c *gin.Context) {
		if err := auth.Logout(); err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func Session(state SessionState) func(c *gin.Context) {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"loggedIn": state.State().LoggedIn()})
	}
}
