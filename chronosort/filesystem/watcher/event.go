// Package watcher keeps a root directory organized continuously. It watches
// the root itself, not its bucket subtree, debounces bursts of file events
// and triggers an organize pass once the directory settles.
package watcher

import "time"

// EventType classifies a filesystem change.
type EventType int

const (
	EventCreate EventType = iota
	EventWrite
	EventRemove
	EventRename
	EventChmod
)

func (t EventType) String() string {
	switch t {
	case EventCreate:
		return "create"
	case EventWrite:
		return "write"
	case EventRemove:
		return "remove"
	case EventRename:
		return "rename"
	case EventChmod:
		return "chmod"
	default:
		return "unknown"
	}
}

// Event is a single filesystem change under the watched root.
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}
