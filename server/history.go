package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tweet_curator/history"
	"tweet_curator/publisher"
)

const defaultHistoryLimit = 20

func (s *Server) handleListHistory(c *gin.Context) {
	limit := defaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errorJSON(c, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	entries, err := s.history.List(c.Request.Context(), limit)
	if err != nil {
		s.log.Error("history list failed", "error", err)
		errorJSON(c, http.StatusInternalServerError, "could not read history")
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(entries), "entries": entries})
}

// lookup writes the error response itself and reports whether the entry was found.
func (s *Server) lookup(c *gin.Context) (history.Entry, bool) {
	e, err := s.history.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, history.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, err.Error())
		return history.Entry{}, false
	}
	if err != nil {
		s.log.Error("history get failed", "id", c.Param("id"), "error", err)
		errorJSON(c, http.StatusInternalServerError, "could not read history")
		return history.Entry{}, false
	}
	return e, true
}

func (s *Server) handleGetHistory(c *gin.Context) {
	if e, ok := s.lookup(c); ok {
		c.JSON(http.StatusOK, e)
	}
}

func (s *Server) handleDigest(c *gin.Context) {
	e, ok := s.lookup(c)
	if !ok {
		return
	}
	doc, err := publisher.Document(e)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc))
}

func (s *Server) handlePublish(c *gin.Context) {
	e, ok := s.lookup(c)
	if !ok {
		return
	}
	path, err := s.publisher.Publish(c.Request.Context(), e)
	if err != nil {
		s.log.Error("publish failed", "id", e.ID, "error", err)
		status := http.StatusInternalServerError
		if path != "" {
			status = http.StatusBadGateway
		}
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "path": path})
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}
