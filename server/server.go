package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tweet_curator/catalog"
	"tweet_curator/config"
	"tweet_curator/dataset"
	"tweet_curator/generator"
	"tweet_curator/history"
	"tweet_curator/logger"
	"tweet_curator/publisher"
)

// Deps are the collaborators the HTTP layer serves.
type Deps struct {
	Pipeline  *generator.Pipeline
	Contexts  *catalog.Catalog
	Prompts   *catalog.Catalog
	Items     *dataset.Store
	History   history.Log
	Publisher *publisher.Publisher
	Auth      config.AuthConfig
	Log       *logger.Logger
}

type Server struct {
	pipeline  *generator.Pipeline
	contexts  *catalog.Catalog
	prompts   *catalog.Catalog
	items     *dataset.Store
	history   history.Log
	publisher *publisher.Publisher
	auth      config.AuthConfig
	log       *logger.Logger
	now       func() time.Time
}

func New(d Deps) (*Server, error) {
	switch {
	case d.Pipeline == nil:
		return nil, errors.New("generation pipeline required")
	case d.Contexts == nil || d.Prompts == nil:
		return nil, errors.New("context and prompt catalogs required")
	case d.Items == nil:
		return nil, errors.New("item store required")
	case d.History == nil:
		return nil, errors.New("history log required")
	case d.Publisher == nil:
		return nil, errors.New("publisher required")
	}
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		pipeline:  d.Pipeline,
		contexts:  d.Contexts,
		prompts:   d.Prompts,
		items:     d.Items,
		history:   d.History,
		publisher: d.Publisher,
		auth:      d.Auth,
		log:       log.With("component", "server"),
		now:       time.Now,
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), requestLogger(s.log), corsAll())
	r.NoMethod(func(c *gin.Context) { c.AbortWithStatus(http.StatusMethodNotAllowed) })

	r.GET("/", s.handleRoot)
	r.GET("/health", s.handleHealth)

	api := r.Group("/api")
	api.POST("/login", s.handleLogin)

	protected := api.Group("", s.requireAuth())
	protected.GET("/items", s.handleListItems)
	protected.POST("/items", s.handleAddItem)
	protected.POST("/items/refresh", s.handleRefreshItems)
	protected.GET("/items/facets", s.handleFacets)
	protected.GET("/contexts", s.handleContexts)
	protected.GET("/prompts", s.handlePrompts)
	protected.POST("/generation", s.handleGeneration)
	protected.GET("/history", s.handleListHistory)
	protected.GET("/history/:id", s.handleGetHistory)
	protected.GET("/history/:id/digest", s.handleDigest)
	protected.POST("/history/:id/publish", s.handlePublish)

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting web server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down web server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
