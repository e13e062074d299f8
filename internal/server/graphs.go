package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/nebula/pkg/api"
)

func (s *Server) listGraphs(c *gin.Context) {
	graphs := s.engine.ListGraphs()
	c.JSON(http.StatusOK, api.GraphsListResponse{
		Graphs: graphs,
		Count:  len(graphs),
	})
}

func (s *Server) createGraph(c *gin.Context) {
	var req api.CreateGraphRequest
	if !bindJSON(c, &req) {
		return
	}

	id := s.engine.CreateGraph(req.Name, req.Nodes, req.Edges, req.StartNode)
	c.JSON(http.StatusCreated, api.CreateGraphResponse{
		GraphID: id,
	})
}

func (s *Server) getGraph(c *gin.Context) {
	g, err := s.engine.GetGraph(api.GraphID(c.Param("graphID")))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}
