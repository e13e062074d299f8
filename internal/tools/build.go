package tools

import (
	"fmt"
	"time"

	"github.com/kode4food/nebula/pkg/api"
)

// Build validates a tool definition and constructs the tool it describes
func Build(def *api.ToolDefinition) (Tool, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	switch def.Type {
	case api.ToolTypeLua:
		return NewLuaTool(def.Script)
	case api.ToolTypeExtract:
		return NewExtractTool(def.Source, def.Path, def.Target, def.Default)
	case api.ToolTypeHTTP:
		timeout := DefaultHTTPTimeout
		if def.TimeoutMS > 0 {
			timeout = time.Duration(def.TimeoutMS) * time.Millisecond
		}
		return NewHTTPTool(def.Name, def.Endpoint, timeout), nil
	default:
		return nil, fmt.Errorf("%w: %s: unknown type %q",
			api.ErrInvalidToolDefinition, def.Name, def.Type)
	}
}
