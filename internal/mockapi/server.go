// Package mockapi is an in-memory stand-in for the remote inventory API. It
// issues short-lived JWT access tokens with single-use refresh tokens and
// serves CRUD for every resource kind behind them.
package mockapi

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rm-hull/inventory-console/internal/inventory"
)

type Config struct {
	Username       string
	Password       string
	Secret         string
	AccessTokenTTL time.Duration
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func failure(message string) envelope {
	return envelope{Success: false, Message: message}
}

var singular = map[inventory.Kind]string{
	inventory.Products:   "Product",
	inventory.Categories: "Category",
	inventory.Vendors:    "Vendor",
	inventory.Warehouses: "Warehouse",
	inventory.Units:      "Unit",
}

type Server struct {
	cfg           Config
	now           func() time.Time
	mu            sync.Mutex
	generation    int
	refreshTokens map[string]string
	refreshCount  atomic.Int32
	collections   map[inventory.Kind]*collection
}

func New(cfg Config) (*Server, error) {
	if cfg.Secret == "" {
		cfg.Secret = uuid.NewString()
	}
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 15 * time.Minute
	}

	s := &Server{
		cfg:           cfg,
		now:           time.Now,
		refreshTokens: make(map[string]string),
		collections:   make(map[inventory.Kind]*collection, len(inventory.Kinds)),
	}
	for _, kind := range inventory.Kinds {
		s.collections[kind] = newCollection(func() time.Time { return s.now() })
	}

	units, err := seedUnits()
	if err != nil {
		return nil, err
	}
	for _, unit := range units {
		s.collections[inventory.Units].create(unit)
	}

	return s, nil
}

// Handler returns the gin engine serving the API.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), gin.Logger())

	auth := r.Group("/auth")
	auth.POST("/login", s.login)
	auth.POST("/refresh", s.refresh)

	api := r.Group("/", s.jwtAuth())
	api.GET("/:kind", s.withKind(s.list))
	api.POST("/:kind", s.withKind(s.create))
	api.GET("/:kind/:id", s.withKind(s.get))
	api.PUT("/:kind/:id", s.withKind(s.update))
	api.DELETE("/:kind/:id", s.withKind(s.delete))

	return r
}

// RevokeAccessTokens invalidates every access token issued so far, as if
// they had all expired. Refresh tokens stay valid.
func (s *Server) RevokeAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
}

// RefreshCount is the number of refresh calls received.
func (s *Server) RefreshCount() int {
	return int(s.refreshCount.Load())
}

func (s *Server) withKind(handler func(*gin.Context, inventory.Kind, *collection)) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := inventory.ParseKind(c.Param("kind"))
		if !ok {
			c.JSON(http.StatusNotFound, failure("Unknown resource: "+c.Param("kind")))
			return
		}
		handler(c, kind, s.collections[kind])
	}
}

func (s *Server) list(c *gin.Context, kind inventory.Kind, coll *collection) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: coll.list()})
}

func (s *Server) get(c *gin.Context, kind inventory.Kind, coll *collection) {
	item, ok := coll.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, failure(singular[kind]+" not found"))
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Data: item})
}

func (s *Server) create(c *gin.Context, kind inventory.Kind, coll *collection) {
	fields, err := bindRecord(c)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, failure(err.Error()))
		return
	}
	item := coll.create(fields)
	c.JSON(http.StatusCreated, envelope{Success: true, Message: singular[kind] + " created", Data: item})
}

func (s *Server) update(c *gin.Context, kind inventory.Kind, coll *collection) {
	fields, err := bindRecord(c)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, failure(err.Error()))
		return
	}
	item, ok := coll.update(c.Param("id"), fields)
	if !ok {
		c.JSON(http.StatusNotFound, failure(singular[kind]+" not found"))
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: singular[kind] + " updated", Data: item})
}

func (s *Server) delete(c *gin.Context, kind inventory.Kind, coll *collection) {
	if !coll.delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, failure(singular[kind]+" not found"))
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: singular[kind] + " deleted"})
}

func bindRecord(c *gin.Context) (record, error) {
	var fields record
	if err := c.ShouldBindJSON(&fields); err != nil {
		return nil, errors.Wrap(err, "request body must be a JSON object")
	}
	name, _ := fields["name"].(string)
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("name is required")
	}
	return fields, nil
}
