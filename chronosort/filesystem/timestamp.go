package filesystem

import (
	"log/slog"
	"os"
	"time"

	exiflib "github.com/rwcarlsen/goexif/exif"

	"github.com/tidyfiles/chronosort/chronosort/trees"
)

// TimeSource decides which timestamp a file is bucketed by.
type TimeSource interface {
	Timestamp(node *trees.FileNode) time.Time
}

// ModTimeSource buckets files by their last-modified time. This is the
// default and the only source whose value is already in hand after the
// metadata read.
type ModTimeSource struct{}

func (ModTimeSource) Timestamp(node *trees.FileNode) time.Time {
	return node.Metadata.ModifiedAt
}

// EXIFTimeSource buckets image files by their EXIF capture date when one can
// be decoded, falling back to the modification time for everything else.
type EXIFTimeSource struct{}

// exifExtensions are the formats goexif can carry a capture date in. Other
// files skip the decode attempt entirely.
var exifExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
}

func (EXIFTimeSource) Timestamp(node *trees.FileNode) time.Time {
	if !exifExtensions[node.Extension] {
		return node.Metadata.ModifiedAt
	}

	captured, ok := exifCaptureDate(node.Path)
	if !ok {
		slog.Debug("no EXIF capture date, using modification time", "path", node.Path)
		return node.Metadata.ModifiedAt
	}
	return captured
}

// exifCaptureDate returns the EXIF capture date of the image at path. On any
// error (unreadable file, missing or malformed EXIF) it reports false.
func exifCaptureDate(path string) (time.Time, bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	x, err := exiflib.Decode(f)
	if err != nil {
		return time.Time{}, false
	}

	captured, err := x.DateTime()
	if err != nil {
		return time.Time{}, false
	}
	return captured, true
}
