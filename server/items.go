package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tweet_curator/dataset"
	"tweet_curator/models"
)

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": s.items.Len()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Alive!"})
}

// handleListItems supports ?user=&tag= (repeatable), day=YYYY-MM-DD, q=, sort= and order=asc|desc.
func (s *Server) handleListItems(c *gin.Context) {
	f := dataset.Filter{
		Users:  c.QueryArray("user"),
		Tags:   c.QueryArray("tag"),
		Day:    c.Query("day"),
		Search: c.Query("q"),
		SortBy: c.Query("sort"),
		Asc:    strings.EqualFold(c.Query("order"), "asc"),
	}
	switch f.SortBy {
	case "", dataset.SortLikes, dataset.SortDate, dataset.SortUser, dataset.SortID:
	default:
		errorJSON(c, http.StatusBadRequest, "unknown sort key "+f.SortBy)
		return
	}
	items := s.items.Query(f)
	c.JSON(http.StatusOK, models.ItemsResponse{Count: len(items), Items: items})
}

func (s *Server) handleAddItem(c *gin.Context) {
	var req models.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	it, err := s.items.Add(req.Text)
	if errors.Is(err, dataset.ErrEmptyText) {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, it)
}

func (s *Server) handleRefreshItems(c *gin.Context) {
	if err := s.items.Refresh(); err != nil {
		s.log.Error("dataset refresh failed", "error", err)
		errorJSON(c, http.StatusInternalServerError, "could not refresh dataset")
		return
	}
	items := s.items.All()
	c.JSON(http.StatusOK, models.ItemsResponse{Count: len(items), Items: items})
}

func (s *Server) handleFacets(c *gin.Context) {
	f := s.items.Facets()
	c.JSON(http.StatusOK, models.FacetsResponse{Users: f.Users, Tags: f.Tags, LatestDate: f.LatestDate})
}

func (s *Server) handleContexts(c *gin.Context) {
	c.JSON(http.StatusOK, s.contexts.All())
}

func (s *Server) handlePrompts(c *gin.Context) {
	c.JSON(http.StatusOK, s.prompts.All())
}
