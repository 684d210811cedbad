// Package api exposes the functions and stored articles over HTTP.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pevans/technews/article"
	"github.com/pevans/technews/functions"
	"github.com/pevans/technews/logger"
	"github.com/pevans/technews/metrics"
	"github.com/pevans/technews/store"
)

// Pagination defaults for GET /api/v1/articles.
const (
	defaultLimit = 25
	maxLimit     = 100
)

// APIServer serves the HTTP API.
type APIServer struct {
	functions *functions.Functions
	store     store.Store
	metrics   *metrics.Metrics
	log       logger.Logger
}

// NewAPIServer creates a new API server. m may be nil, in which case
// /metrics is not served.
func NewAPIServer(fns *functions.Functions, st store.Store, m *metrics.Metrics, log logger.Logger) *APIServer {
	return &APIServer{
		functions: fns,
		store:     st,
		metrics:   m,
		log:       log,
	}
}

// SetupRouter configures the Gin router with all API routes.
func (s *APIServer) SetupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	api := router.Group("/api/v1")
	api.POST("/functions/scrape", s.HandleScrape)
	api.POST("/functions/translate", s.HandleTranslate)
	api.GET("/articles", s.HandleListArticles)
	api.GET("/articles/:id", s.HandleGetArticle)

	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	return router
}

// requestLogger logs one structured entry per request.
func (s *APIServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("duration", time.Since(start)),
			logger.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logger.String("errors", c.Errors.String()))
			s.log.Error("HTTP request with errors", fields...)
			return
		}
		s.log.Info("HTTP request", fields...)
	}
}

// TranslateRequest is the body of POST /api/v1/functions/translate.
type TranslateRequest struct {
	ArticleID string `json:"article_id"`
}

// ListArticlesResponse is the response for GET /api/v1/articles.
type ListArticlesResponse struct {
	Articles []article.Document `json:"articles"`
	Total    int                `json:"total"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

// errorResponse creates a standardized error response.
func errorResponse(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// HandleScrape handles POST /api/v1/functions/scrape.
func (s *APIServer) HandleScrape(c *gin.Context) {
	status, result := s.functions.Scrape(c.Request.Context())
	c.JSON(status, result)
}

// HandleTranslate handles POST /api/v1/functions/translate. A missing or
// malformed body is treated as a missing article id.
func (s *APIServer) HandleTranslate(c *gin.Context) {
	var req TranslateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, functions.Result{Success: false, Error: "invalid request body: " + err.Error()})
			return
		}
	}

	status, result := s.functions.Translate(c.Request.Context(), req.ArticleID)
	c.JSON(status, result)
}

// HandleListArticles handles GET /api/v1/articles.
func (s *APIServer) HandleListArticles(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultLimit)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", "limit must be a positive integer"))
		return
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", "offset must be a non-negative integer"))
		return
	}

	docs, err := s.store.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.log.Error("failed to list articles", logger.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to list articles"))
		return
	}

	c.JSON(http.StatusOK, ListArticlesResponse{
		Articles: docs,
		Total:    len(docs),
		Limit:    limit,
		Offset:   offset,
	})
}

// HandleGetArticle handles GET /api/v1/articles/{id}.
func (s *APIServer) HandleGetArticle(c *gin.Context) {
	doc, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorResponse("not_found", "Article not found"))
		return
	}
	if err != nil {
		s.log.Error("failed to get article", logger.String("id", c.Param("id")), logger.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to get article"))
		return
	}

	c.JSON(http.StatusOK, doc)
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
