package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/nebula/internal/aurora"
	"github.com/kode4food/nebula/pkg/api"
)

func (s *Server) runGraph(c *gin.Context) {
	var req api.RunGraphRequest
	if !bindJSON(c, &req) {
		return
	}
	s.startRun(c, req.GraphID, req.InitialState)
}

func (s *Server) runAurora(c *gin.Context) {
	if s.aurora == "" {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Error:  ErrAuroraDisabled.Error(),
			Status: http.StatusInternalServerError,
		})
		return
	}

	var init api.State
	if !bindJSON(c, &init) {
		return
	}
	s.startRun(c, s.aurora, aurora.DefaultState(init))
}

func (s *Server) startRun(c *gin.Context, id api.GraphID, init api.State) {
	runID, err := s.engine.CreateRun(id, init)
	if err != nil {
		abortWithError(c, err)
		return
	}
	s.complete(c, runID)
}

func (s *Server) continueRun(c *gin.Context) {
	s.complete(c, api.RunID(c.Param("runID")))
}

func (s *Server) complete(c *gin.Context, id api.RunID) {
	run, err := s.engine.RunToCompletion(c.Request.Context(), id)
	if errors.Is(err, api.ErrRunNotFound) {
		abortWithError(c, err)
		return
	}
	if err != nil {
		status := errorStatus(err)
		c.JSON(status, api.ErrorResponse{
			Error:  err.Error(),
			RunID:  id,
			Status: status,
		})
		return
	}
	c.JSON(http.StatusOK, api.NewRunGraphResponse(run))
}

func (s *Server) getRunState(c *gin.Context) {
	run, err := s.engine.GetRunState(api.RunID(c.Param("runID")))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.NewRunStateResponse(run))
}

func (s *Server) getArchivedRun(c *gin.Context) {
	if s.archive == nil {
		abortWithError(c, ErrArchiveDisabled)
		return
	}

	run, err := s.archive.Get(c.Request.Context(),
		api.GraphID(c.Param("graphID")), api.RunID(c.Param("runID")),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.NewRunStateResponse(run))
}
