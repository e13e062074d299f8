package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/nebula/pkg/api"
)

func (s *Server) listTools(c *gin.Context) {
	names := s.engine.Tools().Names()
	c.JSON(http.StatusOK, api.ToolsListResponse{
		Tools: names,
		Count: len(names),
	})
}

func (s *Server) registerTool(c *gin.Context) {
	var def api.ToolDefinition
	if !bindJSON(c, &def) {
		return
	}

	if err := s.engine.Tools().RegisterDefinition(&def); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, api.ToolRegisteredResponse{
		Message: "Tool registered",
		Name:    def.Name,
	})
}
