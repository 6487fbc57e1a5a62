package routes

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rm-hull/inventory-console/internal/dashboard"
)

type Summarizer interface {
	Summary(ctx context.Context) (*dashboard.Summary, error)
	Refresh(ctx context.Context) (*dashboard.Summary, error)
}

func Dashboard(summarizer Summarizer) func(c *gin.Context) {
	return func(c *gin.Context) {
		get := summarizer.Summary
		if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
			get = summarizer.Refresh
		}

		summary, err := get(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}
