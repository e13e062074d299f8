// Package nebula is a workflow engine that drives graphs of named tools
// against a shared state bag
package nebula

const (
	Name    = "nebula-engine"
	Version = "1.0.0"
)
