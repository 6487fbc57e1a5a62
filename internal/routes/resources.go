package routes

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/rm-hull/inventory-console/internal/inventory"
)

type Collections interface {
	Collection(kind inventory.Kind) (inventory.Collection, error)
}

// Invalidator is told whenever a write may have changed derived data.
type Invalidator interface {
	Invalidate()
}

func collection(c *gin.Context, collections Collections) (inventory.Collection, bool) {
	coll, err := collections.Collection(inventory.Kind(c.Param("kind")))
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}
	return coll, true
}

func List(collections Collections) func(c *gin.Context) {
	return func(c *gin.Context) {
		coll, ok := collection(c, collections)
		if !ok {
			return
		}

		query, err := parseQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		page, err := coll.Page(c.Request.Context(), query)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func Get(collections Collections) func(c *gin.Context) {
	return func(c *gin.Context) {
		coll, ok := collection(c, collections)
		if !ok {
			return
		}

		item, err := coll.Fetch(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func Create(collections Collections, invalidator Invalidator) func(c *gin.Context) {
	return write(collections, invalidator, http.StatusCreated, func(ctx context.Context, coll inventory.Collection, c *gin.Context, body []byte) (any, error) {
		return coll.CreateFromJSON(ctx, body)
	})
}

func Update(collections Collections, invalidator Invalidator) func(c *gin.Context) {
	return write(collections, invalidator, http.StatusOK, func(ctx context.Context, coll inventory.Collection, c *gin.Context, body []byte) (any, error) {
		return coll.UpdateFromJSON(ctx, c.Param("id"), body)
	})
}

func Delete(collections Collections, invalidator Invalidator) func(c *gin.Context) {
	return func(c *gin.Context) {
		coll, ok := collection(c, collections)
		if !ok {
			return
		}

		if err := coll.Delete(c.Request.Context(), c.Param("id")); err != nil {
			abortWithError(c, err)
			return
		}
		invalidator.Invalidate()
		c.Status(http.StatusNoContent)
	}
}

type writeFunc func(ctx context.Context, coll inventory.Collection, c *gin.Context, body []byte) (any, error)

func write(collections Collections, invalidator Invalidator, status int, fn writeFunc) func(c *gin.Context) {
	return func(c *gin.Context) {
		coll, ok := collection(c, collections)
		if !ok {
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}

		item, err := fn(c.Request.Context(), coll, c, body)
		if err != nil {
			abortWithError(c, err)
			return
		}
		invalidator.Invalidate()
		c.JSON(status, item)
	}
}

func parseQuery(c *gin.Context) (inventory.Query, error) {
	query := inventory.Query{
		Search: c.Query("q"),
		SortBy: c.Query("sort"),
	}

	if s := c.Query("desc"); s != "" {
		desc, err := strconv.ParseBool(s)
		if err != nil {
			return query, errors.New("invalid desc parameter")
		}
		query.Desc = desc
	}

	for name, target := range map[string]*int{"page": &query.Page, "page_size": &query.PageSize} {
		s := c.Query(name)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return query, errors.Newf("invalid %s parameter", name)
		}
		*target = n
	}

	return query, nil
}
