package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rm-hull/inventory-console/internal/models"
)

const issuer = "inventory-mock-api"

// Claims are carried by every access token. Generation ties a token to the
// server's current signing generation so tests can expire all tokens at once.
type Claims struct {
	jwt.RegisteredClaims
	Generation int `json:"gen"`
}

func (s *Server) issueTokens(username string) (models.TokenData, error) {
	now := s.now()

	s.mu.Lock()
	generation := s.generation
	s.mu.Unlock()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
		},
		Generation: generation,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return models.TokenData{}, errors.Wrap(err, "failed to sign access token")
	}

	refreshToken := uuid.NewString()
	s.mu.Lock()
	s.refreshTokens[refreshToken] = username
	s.mu.Unlock()

	return models.TokenData{
		AccessToken:  signed,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.cfg.AccessTokenTTL / time.Second),
	}, nil
}

func (s *Server) parseAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if claims.Generation != s.generation {
		return nil, errors.New("token has been revoked")
	}
	return claims, nil
}

func (s *Server) jwtAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, failure("Authorization header is required"))
			return
		}

		claims, err := s.parseAccessToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, failure("Access token is invalid or expired"))
			return
		}

		c.Set("username", claims.Subject)
		c.Next()
	}
}

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure("Username and password are required"))
		return
	}
	if req.Username != s.cfg.Username || req.Password != s.cfg.Password {
		c.JSON(http.StatusUnauthorized, failure("Invalid username or password"))
		return
	}

	tokens, err := s.issueTokens(req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, failure(err.Error()))
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "Welcome back, " + req.Username, Data: tokens})
}

func (s *Server) refresh(c *gin.Context) {
	s.refreshCount.Add(1)

	var req models.TokenRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, failure("Refresh token is required"))
		return
	}

	s.mu.Lock()
	username, ok := s.refreshTokens[req.RefreshToken]
	delete(s.refreshTokens, req.RefreshToken)
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusUnauthorized, failure("Refresh token is invalid or has already been used"))
		return
	}

	tokens, err := s.issueTokens(username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, failure(err.Error()))
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Data: tokens})
}
