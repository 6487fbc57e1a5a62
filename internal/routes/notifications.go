package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rm-hull/inventory-console/internal/notify"
)

// Notifications lists the notifications still on screen, or every buffered
// one with ?all=true.
func Notifications(feed *notify.Feed) func(c *gin.Context) {
	return func(c *gin.Context) {
		items := feed.Active(time.Now())
		if all, _ := strconv.ParseBool(c.Query("all")); all {
			items = feed.All()
		}
		c.JSON(http.StatusOK, gin.H{"notifications": items})
	}
}
