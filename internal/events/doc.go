// Package events forwards engine run events to a Redis stream
package events
