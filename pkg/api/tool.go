package api

import (
	"fmt"
	"strings"
)

type (
	// ToolType selects how a declarative tool definition is executed
	ToolType string

	// ToolDefinition declares a script tool that can be registered at
	// runtime, either from the catalog file or over HTTP
	ToolDefinition struct {
		Name    ToolName `json:"name" yaml:"name"`
		Type    ToolType `json:"type" yaml:"type"`
		Script  string   `json:"script,omitempty" yaml:"script,omitempty"`
		Source  Name     `json:"source,omitempty" yaml:"source,omitempty"`
		Path    string   `json:"path,omitempty" yaml:"path,omitempty"`
		Target  Name     `json:"target,omitempty" yaml:"target,omitempty"`
		Default string   `json:"default,omitempty" yaml:"default,omitempty"`

		Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
		TimeoutMS int64  `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	}

	// ToolRequest is the body posted to a remote tool endpoint
	ToolRequest struct {
		State State `json:"state"`
	}

	// ToolResult is the body a remote tool endpoint responds with
	ToolResult struct {
		State   State  `json:"state,omitempty"`
		Error   string `json:"error,omitempty"`
		Success bool   `json:"success"`
	}
)

const (
	ToolTypeLua     ToolType = "lua"
	ToolTypeExtract ToolType = "extract"
	ToolTypeHTTP    ToolType = "http"
)

// Validate checks that the definition names a tool and carries the fields
// its type requires
func (d *ToolDefinition) Validate() error {
	if strings.TrimSpace(string(d.Name)) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidToolDefinition)
	}

	switch d.Type {
	case ToolTypeLua:
		if strings.TrimSpace(d.Script) == "" {
			return fmt.Errorf("%w: %s: script is required",
				ErrInvalidToolDefinition, d.Name)
		}
	case ToolTypeExtract:
		if d.Path == "" {
			return fmt.Errorf("%w: %s: path is required",
				ErrInvalidToolDefinition, d.Name)
		}
		if d.Target == "" {
			return fmt.Errorf("%w: %s: target is required",
				ErrInvalidToolDefinition, d.Name)
		}
	case ToolTypeHTTP:
		if d.Endpoint == "" {
			return fmt.Errorf("%w: %s: endpoint is required",
				ErrInvalidToolDefinition, d.Name)
		}
		if d.TimeoutMS < 0 {
			return fmt.Errorf("%w: %s: timeout must not be negative",
				ErrInvalidToolDefinition, d.Name)
		}
	default:
		return fmt.Errorf("%w: %s: unknown type %q",
			ErrInvalidToolDefinition, d.Name, d.Type)
	}
	return nil
}
