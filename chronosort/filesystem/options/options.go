package options

import (
	"runtime"
	"time"
)

// OrganizeOptions configures a single organize or reverse-organize run.
type OrganizeOptions struct {
	DryRun      bool   // Preview operations without executing
	WorkerCount int    // Upper bound on concurrent file tasks
	UseEXIF     bool   // Prefer EXIF capture dates over modification times
	IgnoreFile  string // Name of the skip-pattern file looked up in the root
}

// WatchOptions configures watch mode on top of the organize options.
type WatchOptions struct {
	Organize         OrganizeOptions
	DebounceDelay    time.Duration // Quiet period before a changed path is organized
	MaxDebounceDelay time.Duration // Hard cap so a busy path is never starved
	QueueCapacity    int           // Buffered events between watcher and organizer
}

// DefaultWorkerCount sizes the pool for I/O bound file moves: twice the CPU
// count, with floors and ceilings to stay responsive without exhausting file
// descriptors.
func DefaultWorkerCount() int {
	return min(max(runtime.NumCPU()*2, 4), 32)
}

// DefaultOrganizeOptions returns sensible defaults for organize operations
func DefaultOrganizeOptions() OrganizeOptions {
	return OrganizeOptions{
		DryRun:      false,
		WorkerCount: DefaultWorkerCount(),
		UseEXIF:     false,
	}
}

// DefaultWatchOptions returns sensible defaults for watch mode
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		Organize:         DefaultOrganizeOptions(),
		DebounceDelay:    500 * time.Millisecond,
		MaxDebounceDelay: 5 * time.Second,
		QueueCapacity:    100,
	}
}
