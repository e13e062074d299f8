package api

import "errors"

var (
	ErrGraphNotFound         = errors.New("graph not found")
	ErrRunNotFound           = errors.New("run not found")
	ErrToolNotFound          = errors.New("tool not found")
	ErrToolFailed            = errors.New("tool failed")
	ErrInvalidToolDefinition = errors.New("invalid tool definition")
)
