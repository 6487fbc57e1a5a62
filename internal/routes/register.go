package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/rm-hull/inventory-console/internal/notify"
)

type SessionManager interface {
	Authenticator
	SessionState
}

type DashboardService interface {
	Summarizer
	Invalidator
}

type Console struct {
	Collections Collections
	Dashboard   DashboardService
	Feed        *notify.Feed
	Session     SessionManager
}

// Register mounts the console API under group.
func Register(group *gin.RouterGroup, console Console) {
	group.GET("/dashboard", Dashboard(console.Dashboard))
	group.GET("/notifications", Notifications(console.Feed))

	group.GET("/session", Session(console.Session))
	group.POST("/session/login", Login(console.Session))
	group.POST("/session/logout", Logout(console.Session))

	group.GET("/resources/:kind", List(console.Collections))
	group.POST("/resources/:kind", Create(console.Collections, console.Dashboard))
	group.GET("/resources/:kind/:id", Get(console.Collections))
	group.PUT("/resources/:kind/:id", Update(console.Collections, console.Dashboard))
	group.DELETE("/resources/:kind/:id", Delete(console.Collections, console.Dashboard))
}
