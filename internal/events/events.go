package events

import "github.com/kode4food/nebula/pkg/api"

// Filter selects the run events an observer should receive
type Filter func(*api.RunEvent) bool

// FilterTypes accepts events of the given types
func FilterTypes(types ...api.EventType) Filter {
	lookup := map[api.EventType]bool{}
	for _, et := range types {
		lookup[et] = true
	}
	return func(ev *api.RunEvent) bool {
		return lookup[ev.Type]
	}
}

// AllEvents accepts every event
func AllEvents(*api.RunEvent) bool {
	return true
}
