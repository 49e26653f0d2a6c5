package types

import (
	"time"

	"github.com/google/uuid"
)

// Direction identifies which way an operation moved files.
type Direction string

const (
	DirectionOrganize Direction = "organize"
	DirectionReverse  Direction = "reverse"
)

// FileMove records a single file relocation performed (or previewed) during
// an operation.
type FileMove struct {
	SourcePath string    `json:"source_path"`
	TargetPath string    `json:"target_path"`
	Bucket     string    `json:"bucket,omitempty"` // relative bucket path, organize direction only
	Timestamp  time.Time `json:"timestamp"`        // timestamp the bucket was derived from
	DryRun     bool      `json:"dry_run"`
}

// OrganizeResult is the complete record of one organize or reverse run.
type OrganizeResult struct {
	OperationID uuid.UUID     `json:"operation_id"`
	Direction   Direction     `json:"direction"`
	RootPath    string        `json:"root_path"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Duration    time.Duration `json:"duration"`
	DryRun      bool          `json:"dry_run"`
	Moves       []FileMove    `json:"moves"`
	SkippedDirs int           `json:"skipped_dirs"` // organize direction: root entries left untouched
	Success     bool          `json:"success"`
}

// NewOrganizeResult starts a result record for a run against rootPath.
func NewOrganizeResult(direction Direction, rootPath string, dryRun bool) *OrganizeResult {
	return &OrganizeResult{
		OperationID: uuid.New(),
		Direction:   direction,
		RootPath:    rootPath,
		StartTime:   time.Now(),
		DryRun:      dryRun,
	}
}

// Finish stamps the end time and success flag and returns the result for
// chaining.
func (r *OrganizeResult) Finish(success bool) *OrganizeResult {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success
	return r
}
