// Package server implements the HTTP API server for the workflow engine
//
// This package provides REST endpoints for defining graphs, executing and
// inspecting runs, registering script tools, and running the AuroraText
// condenser
package server
