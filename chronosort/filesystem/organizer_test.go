package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidyfiles/chronosort/chronosort/filesystem/options"
	"github.com/tidyfiles/chronosort/chronosort/filesystem/types"
)

func newTestOrganizer() *Organizer {
	opts := options.DefaultOrganizeOptions()
	return New(opts)
}

func writeFileWithMtime(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("content of "+filepath.Base(path)), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

// collectFiles returns the relative paths of every regular file under root.
func collectFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return relErr
			}
			files = append(files, rel)
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files
}

func TestOrganize_BucketsByModTime(t *testing.T) {
	tempDir := t.TempDir()
	base := time.Date(2024, time.March, 6, 12, 0, 0, 0, time.Local) // Wednesday

	writeFileWithMtime(t, filepath.Join(tempDir, "a.txt"), base)
	writeFileWithMtime(t, filepath.Join(tempDir, "b.txt"), base.AddDate(0, 0, 1))
	writeFileWithMtime(t, filepath.Join(tempDir, "c.txt"), base.AddDate(0, 0, 7))

	org := newTestOrganizer()
	result, err := org.Organize(context.Background(), tempDir)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Len(t, result.Moves, 3)

	// a and b land in the week of Sunday 2024-03-03, c a week later.
	assert.FileExists(t, filepath.Join(tempDir, "2024", "March", "week of 2024-03-03", "a.txt"))
	assert.FileExists(t, filepath.Join(tempDir, "2024", "March", "week of 2024-03-03", "b.txt"))
	assert.FileExists(t, filepath.Join(tempDir, "2024", "March", "week of 2024-03-10", "c.txt"))

	assert.NoFileExists(t, filepath.Join(tempDir, "a.txt"))
	assert.NoFileExists(t, filepath.Join(tempDir, "b.txt"))
	assert.NoFileExists(t, filepath.Join(tempDir, "c.txt"))
}

func TestOrganize_MonthNameFollowsFileDate(t *testing.T) {
	tempDir := t.TempDir()

	// Monday April 1st belongs to the week of Sunday March 31st, yet keeps
	// an April month folder.
	mtime := time.Date(2024, time.April, 1, 9, 0, 0, 0, time.Local)
	writeFileWithMtime(t, filepath.Join(tempDir, "april.txt"), mtime)

	org := newTestOrganizer()
	_, err := org.Organize(context.Background(), tempDir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(tempDir, "2024", "April", "week of 2024-03-31", "april.txt"))
}

func TestOrganize_DoesNotRecurse(t *testing.T) {
	tempDir := t.TempDir()
	mtime := time.Date(2024, time.March, 6, 12, 0, 0, 0, time.Local)

	nested := filepath.Join(tempDir, "keep", "deeper")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	writeFileWithMtime(t, filepath.Join(nested, "nested.txt"), mtime)
	writeFileWithMtime(t, filepath.Join(tempDir, "top.txt"), mtime)

	org := newTestOrganizer()
	result, err := org.Organize(context.Background(), tempDir)
	require.NoError(t, err)
	assert.Len(t, result.Moves, 1)
	assert.Equal(t, 1, result.SkippedDirs)

	// The nested file stays exactly where it was.
	assert.FileExists(t, filepath.Join(nested, "nested.txt"))
	assert.FileExists(t, filepath.Join(tempDir, "2024", "March", "week of 2024-03-03", "top.txt"))
}

func TestOrganize_EmptyDirectory(t *testing.T) {
	tempDir := t.TempDir()

	org := newTestOrganizer()
	result, err := org.Organize(context.Background(), tempDir)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Moves)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOrganize_MissingDirectory(t *testing.T) {
	org := newTestOrganizer()
	_, err := org.Organize(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestOrganize_DryRunMovesNothing(t *testing.T) {
	tempDir := t.TempDir()
	mtime := time.Date(2024, time.March, 6, 12, 0, 0, 0, time.Local)
	writeFileWithMtime(t, filepath.Join(tempDir, "a.txt"), mtime)

	opts := options.DefaultOrganizeOptions()
	opts.DryRun = true
	org := New(opts)

	result, err := org.Organize(context.Background(), tempDir)
	require.NoError(t, err)
	assert.Len(t, result.Moves, 1)
	assert.True(t, result.Moves[0].DryRun)
	assert.Equal(t, "2024/March/week of 2024-03-03", filepath.ToSlash(result.Moves[0].Bucket))

	// Nothing on disk changed.
	assert.FileExists(t, filepath.Join(tempDir, "a.txt"))
	assert.NoDirExists(t, filepath.Join(tempDir, "2024"))
}

func TestOrganize_IgnorePatterns(t *testing.T) {
	tempDir := t.TempDir()
	mtime := time.Date(2024, time.March, 6, 12, 0, 0, 0, time.Local)

	require.NoError(t, os.WriteFile(filepath.Join(tempDir, ".chronosort-ignore"), []byte("*.log\n"), 0o644))
	writeFileWithMtime(t, filepath.Join(tempDir, "keep.txt"), mtime)
	writeFileWithMtime(t, filepath.Join(tempDir, "skip.log"), mtime)

	org := newTestOrganizer()
	result, err := org.Organize(context.Background(), tempDir)
	require.NoError(t, err)
	assert.Len(t, result.Moves, 1)

	assert.FileExists(t, filepath.Join(tempDir, "skip.log"))
	assert.FileExists(t, filepath.Join(tempDir, ".chronosort-ignore"))
	assert.FileExists(t, filepath.Join(tempDir, "2024", "March", "week of 2024-03-03", "keep.txt"))
}

func TestOrganize_FailFastOnMoveError(t *testing.T) {
	tempDir := t.TempDir()
	mtime := time.Date(2024, time.March, 6, 12, 0, 0, 0, time.Local)

	// A regular file squatting on the year segment makes every bucket
	// MkdirAll fail with ENOTDIR.
	writeFileWithMtime(t, filepath.Join(tempDir, "2024"), mtime)
	writeFileWithMtime(t, filepath.Join(tempDir, "a.txt"), mtime)

	org := newTestOrganizer()
	result, err := org.Organize(context.Background(), tempDir)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Success)

	// The failed file stays where it was.
	assert.FileExists(t, filepath.Join(tempDir, "a.txt"))
}

func TestOrganize_RecreatesBucketRemovedBetweenRuns(t *testing.T) {
	tempDir := t.TempDir()
	mtime := time.Date(2024, time.March, 6, 12, 0, 0, 0, time.Local)
	weekDir := filepath.Join(tempDir, "2024", "March", "week of 2024-03-03")

	org := newTestOrganizer()

	writeFileWithMtime(t, filepath.Join(tempDir, "a.txt"), mtime)
	_, err := org.Organize(context.Background(), tempDir)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(weekDir, "a.txt"))

	// Someone deletes the bucket tree between two passes of the same
	// organizer, as happens in watch mode.
	require.NoError(t, os.RemoveAll(filepath.Join(tempDir, "2024")))

	writeFileWithMtime(t, filepath.Join(tempDir, "b.txt"), mtime)
	result, err := org.Organize(context.Background(), tempDir)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.FileExists(t, filepath.Join(weekDir, "b.txt"))
}

func TestReverseOrganize_FlattensAllDepths(t *testing.T) {
	tempDir := t.TempDir()

	deep := filepath.Join(tempDir, "2024", "March", "week of 2024-03-03")
	require.NoError(t, os.MkdirAll(deep, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(deep, "deep.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "2024", "mid.txt"), []byte("y"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "root.txt"), []byte("z"), 0o644))

	org := newTestOrganizer()
	result, err := org.ReverseOrganize(context.Background(), tempDir)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.Moves, 2)

	assert.FileExists(t, filepath.Join(tempDir, "deep.txt"))
	assert.FileExists(t, filepath.Join(tempDir, "mid.txt"))
	assert.FileExists(t, filepath.Join(tempDir, "root.txt"))

	// Emptied bucket directories stay behind.
	assert.DirExists(t, deep)
}

func TestReverseOrganize_EmptyDirectory(t *testing.T) {
	tempDir := t.TempDir()

	org := newTestOrganizer()
	result, err := org.ReverseOrganize(context.Background(), tempDir)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Moves)
}

func TestOrganize_RoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	base := time.Date(2024, time.March, 3, 8, 0, 0, 0, time.Local) // Sunday

	names := []string{"one.txt", "two.pdf", "three.jpg", "four"}
	for i, name := range names {
		writeFileWithMtime(t, filepath.Join(tempDir, name), base.AddDate(0, 0, i*3))
	}
	before := collectFiles(t, tempDir)

	org := newTestOrganizer()
	_, err := org.Organize(context.Background(), tempDir)
	require.NoError(t, err)

	// Everything left the root.
	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.True(t, entry.IsDir())
	}

	_, err = org.ReverseOrganize(context.Background(), tempDir)
	require.NoError(t, err)

	var after []string
	rootEntries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	for _, entry := range rootEntries {
		if !entry.IsDir() {
			after = append(after, entry.Name())
		}
	}
	sort.Strings(after)
	assert.Equal(t, before, after)
}

func TestReverseOrganize_SingleWorkerBound(t *testing.T) {
	tempDir := t.TempDir()

	// Several sibling directories with several files each, so the level
	// pool is the only source of parallelism.
	for _, month := range []string{"January", "February", "March"} {
		dir := filepath.Join(tempDir, "2024", month, "week of 2024-01-07")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		for _, name := range []string{"a", "b", "c"} {
			file := filepath.Join(dir, month+"_"+name+".txt")
			require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
		}
	}

	opts := options.DefaultOrganizeOptions()
	opts.WorkerCount = 1
	org := New(opts)

	result, err := org.ReverseOrganize(context.Background(), tempDir)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.Moves, 9)

	for _, month := range []string{"January", "February", "March"} {
		for _, name := range []string{"a", "b", "c"} {
			assert.FileExists(t, filepath.Join(tempDir, month+"_"+name+".txt"))
		}
	}
}

func TestReverseOrganize_ResultDirection(t *testing.T) {
	tempDir := t.TempDir()

	org := newTestOrganizer()
	result, err := org.ReverseOrganize(context.Background(), tempDir)
	require.NoError(t, err)
	assert.Equal(t, types.DirectionReverse, result.Direction)
	assert.Equal(t, tempDir, result.RootPath)
	assert.NotEqual(t, "", result.OperationID.String())
}

func TestOrganize_ManyFilesConcurrently(t *testing.T) {
	tempDir := t.TempDir()
	base := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.Local)

	const fileCount = 200
	for i := 0; i < fileCount; i++ {
		name := filepath.Join(tempDir, fmt.Sprintf("file_%03d.txt", i))
		writeFileWithMtime(t, name, base.AddDate(0, 0, i%21))
	}

	org := newTestOrganizer()
	result, err := org.Organize(context.Background(), tempDir)
	require.NoError(t, err)
	assert.Len(t, result.Moves, fileCount)
	assert.Len(t, collectFiles(t, tempDir), fileCount)
}
