// Package api implements the HTTP API for corpus building and cache
// management.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/contextkit/corpora/internal/config"
	"github.com/contextkit/corpora/internal/corpus"
	"github.com/contextkit/corpora/internal/crawler"
	"github.com/contextkit/corpora/internal/domain"
	"github.com/contextkit/corpora/internal/logger"
	"github.com/contextkit/corpora/internal/storage"
)

// readHeaderTimeout bounds header reads on the listener.
const readHeaderTimeout = 10 * time.Second

// CacheStore is the subset of the metadata store the API needs.
type CacheStore interface {
	Get(ctx context.Context, alias string) (*storage.CacheRecord, error)
	List(ctx context.Context) ([]storage.CacheRecord, error)
	Delete(ctx context.Context, alias string) error
}

// Crawler runs one crawl to completion.
type Crawler interface {
	Crawl(ctx context.Context) (*domain.LoadedSource, error)
}

// CrawlerFactory builds a crawler for one request's configuration.
type CrawlerFactory func(cfg domain.CrawlConfig) Crawler

// Server hosts the HTTP API.
type Server struct {
	log        logger.Interface
	store      CacheStore
	newCrawler CrawlerFactory
	httpServer *http.Server
}

// NewServer creates the API server. A nil factory uses the default crawler.
func NewServer(cfg *config.ServerConfig, log logger.Interface, store CacheStore, factory CrawlerFactory) *Server {
	if factory == nil {
		factory = func(crawlCfg domain.CrawlConfig) Crawler {
			return crawler.New(crawlCfg, crawler.WithLogger(log))
		}
	}

	s := &Server{
		log:        log,
		store:      store,
		newCrawler: factory,
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Router(),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(s.log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.POST("/crawl", s.handleCrawl)
	v1.POST("/assemble", s.handleAssemble)
	v1.GET("/caches", s.handleListCaches)
	v1.GET("/caches/:alias", s.handleGetCache)
	v1.DELETE("/caches/:alias", s.handleDeleteCache)

	return router
}

// Start serves until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.log.Info("Starting API server", "address", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Stopping API server")

	return s.httpServer.Shutdown(ctx)
}

// crawlRequest is the POST /api/v1/crawl body. Unset numeric fields fall
// back to the crawl defaults.
type crawlRequest struct {
	SeedURLs         []string `json:"seed_urls" binding:"required"`
	TargetTokens     *int     `json:"target_tokens"`
	MinTokensPerPage *int     `json:"min_tokens_per_page"`
	MaxPages         *int     `json:"max_pages"`
	MaxSubrequests   *int     `json:"max_subrequests"`
	SameDomainOnly   *bool    `json:"same_domain_only"`
	RespectRobotsTxt *bool    `json:"respect_robots_txt"`
	DelayMs          *int     `json:"delay_ms"`
}

func (r *crawlRequest) toConfig() domain.CrawlConfig {
	cfg := domain.NewCrawlConfig(r.SeedURLs...)

	if r.TargetTokens != nil {
		cfg.TargetTokens = *r.TargetTokens
	}

	if r.MinTokensPerPage != nil {
		cfg.MinTokensPerPage = *r.MinTokensPerPage
	}

	if r.MaxPages != nil {
		cfg.MaxPages = *r.MaxPages
	}

	if r.MaxSubrequests != nil {
		cfg.MaxSubrequests = *r.MaxSubrequests
	}

	if r.SameDomainOnly != nil {
		cfg.SameDomainOnly = *r.SameDomainOnly
	}

	if r.RespectRobotsTxt != nil {
		cfg.RespectRobotsTxt = *r.RespectRobotsTxt
	}

	if r.DelayMs != nil {
		cfg.Delay = time.Duration(*r.DelayMs) * time.Millisecond
	}

	return cfg
}

func (s *Server) handleCrawl(c *gin.Context) {
	var req crawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	cfg := req.toConfig()
	if err := cfg.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	source, err := s.newCrawler(cfg).Crawl(c.Request.Context())
	if err != nil {
		s.log.Error("Crawl failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"content":      source.Content,
		"total_tokens": source.TotalTokens,
		"file_count":   source.FileCount,
		"metadata":     source.Metadata,
	})
}

// assembleRequest is the POST /api/v1/assemble body.
type assembleRequest struct {
	Sources []assembleSource `json:"sources" binding:"required"`

	// MaxTokens rejects the combined corpus when the total estimate
	// exceeds it. Zero disables the ceiling.
	MaxTokens int `json:"max_tokens"`
}

type assembleSource struct {
	Label   string `json:"label" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func (s *Server) handleAssemble(c *gin.Context) {
	var req assembleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	sources := make([]*domain.LoadedSource, 0, len(req.Sources))
	labels := make([]string, 0, len(req.Sources))

	for _, src := range req.Sources {
		sources = append(sources, &domain.LoadedSource{
			Content:     src.Content,
			TotalTokens: domain.EstimateTokens(src.Content),
			FileCount:   1,
			Metadata:    domain.NewMetadata(src.Label),
		})
		labels = append(labels, src.Label)
	}

	combined, err := corpus.Combine(sources, labels, req.MaxTokens)
	if err != nil {
		var limitErr *domain.TokenLimitError
		if errors.As(err, &limitErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": limitErr.Error()})
			return
		}

		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"content":      combined.Content,
		"total_tokens": combined.TotalTokens,
		"file_count":   combined.FileCount,
	})
}

func (s *Server) handleListCaches(c *gin.Context) {
	records, err := s.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if records == nil {
		records = []storage.CacheRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"caches": records})
}

func (s *Server) handleGetCache(c *gin.Context) {
	record, err := s.store.Get(c.Request.Context(), c.Param("alias"))
	if err != nil {
		respondCacheError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (s *Server) handleDeleteCache(c *gin.Context) {
	if err := s.store.Delete(c.Request.Context(), c.Param("alias")); err != nil {
		respondCacheError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondCacheError(c *gin.Context, err error) {
	var notFound *domain.CacheNotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// loggingMiddleware logs each request with method, path, status and latency.
func loggingMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("HTTP Request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
