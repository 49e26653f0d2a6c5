// Package filesystem implements the traversal-and-placement engine: the
// forward pass that moves the files directly under a root into time-bucketed
// week folders, and the reverse pass that flattens the bucketed hierarchy
// back into the root.
package filesystem

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/sourcegraph/conc/pool"

	internal "github.com/tidyfiles/chronosort/chronosort"
	"github.com/tidyfiles/chronosort/chronosort/bucket"
	"github.com/tidyfiles/chronosort/chronosort/filesystem/common"
	"github.com/tidyfiles/chronosort/chronosort/filesystem/options"
	"github.com/tidyfiles/chronosort/chronosort/filesystem/types"
	"github.com/tidyfiles/chronosort/chronosort/trees"
)

// Organizer moves files between a flat root directory and the bucketed
// hierarchy beneath it. Both directions fail fast: the first error cancels
// every outstanding task and aborts the run, leaving the tree in whatever
// partial state it reached.
type Organizer struct {
	opts       options.OrganizeOptions
	timeSource TimeSource
	pathUtils  *common.PathUtils
}

// New creates an Organizer for the given options.
func New(opts options.OrganizeOptions) *Organizer {
	if opts.WorkerCount <= 0 {
		opts.WorkerCount = options.DefaultWorkerCount()
	}
	if opts.IgnoreFile == "" {
		opts.IgnoreFile = internal.DefaultIgnoreFile
	}

	var source TimeSource = ModTimeSource{}
	if opts.UseEXIF {
		source = EXIFTimeSource{}
	}

	return &Organizer{
		opts:       opts,
		timeSource: source,
		pathUtils:  common.NewPathUtils(),
	}
}

// Organize moves every regular file directly under rootDir into its bucket
// folder. Only immediate children are considered: sub-directories are never
// descended into or touched. Each file is processed as an independent
// concurrent task; Organize returns once every task has finished or the
// first failure has cancelled the rest.
func (o *Organizer) Organize(ctx context.Context, rootDir string) (*types.OrganizeResult, error) {
	if err := o.pathUtils.ValidateDirectory(rootDir); err != nil {
		return nil, err
	}

	result := types.NewOrganizeResult(types.DirectionOrganize, rootDir, o.opts.DryRun)

	slog.Info("starting organize",
		"operation_id", result.OperationID,
		"root", rootDir,
		"workers", o.opts.WorkerCount,
		"dry_run", o.opts.DryRun)

	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return result.Finish(false), fmt.Errorf("failed to read directory %s: %w", rootDir, err)
	}

	ignored := o.loadIgnorePatterns(rootDir)

	// Scoped to this pass: a bucket directory removed between watch-mode
	// passes must be created again on the next one.
	created := trees.NewPathIndex()

	var mu sync.Mutex
	p := pool.New().
		WithMaxGoroutines(o.opts.WorkerCount).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for _, entry := range entries {
		path := filepath.Join(rootDir, entry.Name())

		if entry.IsDir() {
			result.SkippedDirs++
			continue
		}
		if !entry.Type().IsRegular() {
			slog.Debug("skipping non-regular file", "path", path)
			continue
		}
		// The ignore file governs this run; moving it into a bucket would
		// strip its patterns from every later run.
		if entry.Name() == o.opts.IgnoreFile {
			continue
		}
		if ignored != nil && ignored.MatchesPath(path) {
			slog.Debug("skipping ignored file", "path", path)
			continue
		}

		p.Go(func(ctx context.Context) error {
			return o.organizeFile(ctx, rootDir, path, created, result, &mu)
		})
	}

	if err := p.Wait(); err != nil {
		result.Finish(false)
		return result, err
	}

	result.Finish(true)
	slog.Info("organize completed",
		"operation_id", result.OperationID,
		"moved", len(result.Moves),
		"skipped_dirs", result.SkippedDirs,
		"duration", result.Duration)

	return result, nil
}

// organizeFile relocates a single root-level file into its bucket folder.
func (o *Organizer) organizeFile(ctx context.Context, rootDir, path string, created *trees.PathIndex, result *types.OrganizeResult, mu *sync.Mutex) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to read metadata for %s: %w", path, err)
	}

	node := trees.NewFileNode(path, info)
	ts := o.timeSource.Timestamp(node)

	relBucket := bucket.Path(ts)
	destDir := filepath.Join(rootDir, relBucket)
	destPath := filepath.Join(destDir, node.Name)

	move := types.FileMove{
		SourcePath: path,
		TargetPath: destPath,
		Bucket:     relBucket,
		Timestamp:  ts,
		DryRun:     o.opts.DryRun,
	}

	if o.opts.DryRun {
		slog.Info("dry run: would move file", "source", path, "dest", destPath)
		mu.Lock()
		result.Moves = append(result.Moves, move)
		mu.Unlock()
		return nil
	}

	if err := ensureBucketDir(created, destDir); err != nil {
		return err
	}

	// Rename is atomic on a single filesystem; a same-named file already at
	// the destination keeps whatever semantics the OS gives it.
	if err := os.Rename(path, destPath); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", path, destPath, err)
	}

	slog.Debug("moved file", "source", path, "dest", destPath, "bucket", relBucket)

	mu.Lock()
	result.Moves = append(result.Moves, move)
	mu.Unlock()

	return nil
}

// ensureBucketDir creates destDir with all intermediate segments. The path
// index short-circuits the many files that share a week folder; MkdirAll
// itself stays idempotent, so two tasks racing past the index both succeed.
func ensureBucketDir(created *trees.PathIndex, destDir string) error {
	if created.Contains(destDir) {
		return nil
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to create bucket directory %s: %w", destDir, err)
	}
	created.MarkCreated(destDir)
	return nil
}

// ReverseOrganize walks the entire subtree under rootDir and moves every
// regular file, at any depth, directly back into rootDir. Directories at the
// same depth are processed concurrently, level by level, the whole level
// joining before the next begins. Emptied bucket directories are left in
// place.
func (o *Organizer) ReverseOrganize(ctx context.Context, rootDir string) (*types.OrganizeResult, error) {
	if err := o.pathUtils.ValidateDirectory(rootDir); err != nil {
		return nil, err
	}

	// The flatten target never changes during a run; every task reads the
	// same immutable value captured here.
	targetRoot := rootDir

	result := types.NewOrganizeResult(types.DirectionReverse, rootDir, o.opts.DryRun)

	slog.Info("starting reverse organize",
		"operation_id", result.OperationID,
		"root", rootDir,
		"workers", o.opts.WorkerCount,
		"dry_run", o.opts.DryRun)

	var mu sync.Mutex
	currentLevel := []string{rootDir}

	for len(currentLevel) > 0 {
		var nextLevel []string
		var nextMu sync.Mutex

		levelPool := pool.New().
			WithMaxGoroutines(o.opts.WorkerCount).
			WithContext(ctx).
			WithCancelOnError().
			WithFirstError()

		for _, dir := range currentLevel {
			levelPool.Go(func(ctx context.Context) error {
				children, err := o.flattenDirectory(ctx, dir, targetRoot, result, &mu)
				if err != nil {
					return err
				}
				nextMu.Lock()
				nextLevel = append(nextLevel, children...)
				nextMu.Unlock()
				return nil
			})
		}

		if err := levelPool.Wait(); err != nil {
			result.Finish(false)
			return result, err
		}

		currentLevel = nextLevel
	}

	result.Finish(true)
	slog.Info("reverse organize completed",
		"operation_id", result.OperationID,
		"moved", len(result.Moves),
		"duration", result.Duration)

	return result, nil
}

// flattenDirectory moves the regular files of one directory into targetRoot
// and returns the sub-directories to recurse into. The level pool is the
// only concurrency bound, so files within one directory move sequentially
// inside its task.
func (o *Organizer) flattenDirectory(ctx context.Context, dir, targetRoot string, result *types.OrganizeResult, mu *sync.Mutex) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var children []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			children = append(children, path)
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		// Files already directly in the root would rename onto themselves.
		if dir == targetRoot {
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := o.flattenFile(path, entry.Name(), targetRoot, result, mu); err != nil {
			return nil, err
		}
	}

	return children, nil
}

// flattenFile moves one nested file into targetRoot, preserving its base name.
func (o *Organizer) flattenFile(path, name, targetRoot string, result *types.OrganizeResult, mu *sync.Mutex) error {
	destPath := filepath.Join(targetRoot, name)

	move := types.FileMove{
		SourcePath: path,
		TargetPath: destPath,
		DryRun:     o.opts.DryRun,
	}

	if o.opts.DryRun {
		slog.Info("dry run: would move file", "source", path, "dest", destPath)
	} else {
		if err := os.Rename(path, destPath); err != nil {
			return fmt.Errorf("failed to move %s to %s: %w", path, destPath, err)
		}
		slog.Debug("moved file", "source", path, "dest", destPath)
	}

	mu.Lock()
	result.Moves = append(result.Moves, move)
	mu.Unlock()

	return nil
}

// loadIgnorePatterns compiles the root's skip-pattern file if one exists.
// A missing file simply means nothing is skipped.
func (o *Organizer) loadIgnorePatterns(rootDir string) *ignore.GitIgnore {
	ignorePath := filepath.Join(rootDir, o.opts.IgnoreFile)

	if _, err := os.Stat(ignorePath); err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to check ignore file", "path", ignorePath, "error", err)
		}
		return nil
	}

	ignored, err := ignore.CompileIgnoreFile(ignorePath)
	if err != nil {
		slog.Warn("failed to compile ignore file", "path", ignorePath, "error", err)
		return nil
	}
	return ignored
}
