package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	"github.com/kode4food/nebula"
	"github.com/kode4food/nebula/internal/archive"
	"github.com/kode4food/nebula/internal/engine"
	"github.com/kode4food/nebula/pkg/api"
)

type (
	// Server implements the HTTP API server for the engine
	Server struct {
		engine  *engine.Engine
		archive RunArchive
		aurora  api.GraphID
	}

	// RunArchive reads back runs exported when they finished
	RunArchive interface {
		Get(context.Context, api.GraphID, api.RunID) (*api.Run, error)
	}
)

var (
	ErrInvalidJSON     = errors.New("invalid JSON request")
	ErrAuroraDisabled  = errors.New("AuroraText graph not initialized")
	ErrArchiveDisabled = errors.New("run archive not configured")
)

// NewServer creates a new HTTP API server
func NewServer(eng *engine.Engine) *Server {
	return &Server{
		engine: eng,
	}
}

// WithAurora enables the AuroraText endpoint backed by the given graph
func (s *Server) WithAurora(id api.GraphID) *Server {
	s.aurora = id
	return s
}

// WithArchive enables reading finished runs back from the archive
func (s *Server) WithArchive(a RunArchive) *Server {
	s.archive = a
	return s
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods", "GET, POST, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers",
			"Content-Type, Authorization",
		)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	router.GET("/health", s.handleHealth)

	// Graph endpoints
	graph := router.Group("/graph")
	{
		graph.GET("", s.listGraphs)
		graph.POST("/create", s.createGraph)
		graph.POST("/run", s.runGraph)
		graph.GET("/state/:runID", s.getRunState)
		graph.POST("/continue/:runID", s.continueRun)
		graph.GET("/:graphID", s.getGraph)
	}

	// Tool endpoints
	router.GET("/tools", s.listTools)
	router.POST("/tools", s.registerTool)

	router.POST("/aurora/run", s.runAurora)

	router.GET("/archive/:graphID/:runID", s.getArchivedRun)

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Service: nebula.Name,
		Version: nebula.Version,
		Status:  "online",
	})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, api.ErrGraphNotFound),
		errors.Is(err, api.ErrRunNotFound),
		errors.Is(err, api.ErrToolNotFound),
		errors.Is(err, archive.ErrArchiveNotFound),
		errors.Is(err, ErrArchiveDisabled):
		return http.StatusNotFound
	case errors.Is(err, api.ErrInvalidToolDefinition):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := errorStatus(err)
	c.JSON(status, api.ErrorResponse{
		Error:  err.Error(),
		Status: status,
	})
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  ErrInvalidJSON.Error() + ": " + err.Error(),
			Status: http.StatusBadRequest,
		})
		return false
	}
	return true
}
