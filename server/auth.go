package server

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"tweet_curator/models"
)

const tokenSubject = "dashboard"

func (s *Server) authEnabled() bool { return s.auth.Password != "" }

// handleLogin exchanges the dashboard password (sent in the "password" header) for a bearer token.
// With no password configured every request is allowed and the token is empty.
func (s *Server) handleLogin(c *gin.Context) {
	if !s.authEnabled() {
		c.JSON(http.StatusOK, models.TokenResponse{})
		return
	}
	given := c.GetHeader("password")
	if subtle.ConstantTimeCompare([]byte(given), []byte(s.auth.Password)) != 1 {
		s.log.Warn("login rejected", "remote", c.ClientIP())
		c.Header("WWW-Authenticate", "Basic")
		errorJSON(c, http.StatusUnauthorized, "incorrect password")
		return
	}
	token, exp, err := s.issueToken()
	if err != nil {
		s.log.Error("sign token failed", "error", err)
		errorJSON(c, http.StatusInternalServerError, "could not issue token")
		return
	}
	c.JSON(http.StatusOK, models.TokenResponse{Token: token, ExpiresAt: exp})
}

func (s *Server) issueToken() (string, int64, error) {
	now := s.now()
	exp := now.Add(s.auth.TTL())
	claims := jwt.RegisteredClaims{
		Subject:   tokenSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.auth.JWTSecret))
	if err != nil {
		return "", 0, err
	}
	return signed, exp.Unix(), nil
}

func (s *Server) parseToken(raw string) error {
	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.auth.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithSubject(tokenSubject))
	if err != nil {
		return fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return errors.New("invalid or expired token")
	}
	return nil
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.authEnabled() {
			c.Next()
			return
		}
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			errorJSON(c, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		if err := s.parseToken(raw); err != nil {
			s.log.Debug("token rejected", "error", err)
			errorJSON(c, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
