// Package bucket maps timestamps onto the relative folder hierarchy used by
// the organizer: one folder per calendar year, one per month, and one per
// Sunday-to-Saturday week inside it. The computation is pure; callers decide
// where the timestamps come from and what to do with the resulting path.
package bucket

import (
	"fmt"
	"path/filepath"
	"time"
)

// Segments is the decomposed bucket path for a single timestamp.
type Segments struct {
	Year      int       // four-digit calendar year of the timestamp
	MonthName string    // full English month name of the timestamp itself
	WeekStart time.Time // most recent Sunday on or before the timestamp
}

// WeekStart returns the most recent Sunday on or before t, in t's location.
// A timestamp that already falls on a Sunday is its own week start.
func WeekStart(t time.Time) time.Time {
	// time.Weekday numbers Sunday as 0, so the weekday value is exactly the
	// number of days since the last Sunday.
	return t.AddDate(0, 0, -int(t.Weekday()))
}

// For returns the bucket segments for t.
//
// The month segment is derived from t itself, not from the week-start Sunday:
// a file modified on the first days of a month whose week began in the prior
// month is filed under the later month while the week folder carries the
// earlier month's date. Callers rely on this staying stable.
func For(t time.Time) Segments {
	return Segments{
		Year:      t.Year(),
		MonthName: t.Month().String(),
		WeekStart: WeekStart(t),
	}
}

// Path returns the relative bucket path for t, of the form
// "2024/March/week of 2024-03-03".
func Path(t time.Time) string {
	s := For(t)
	return filepath.Join(
		fmt.Sprintf("%d", s.Year),
		s.MonthName,
		fmt.Sprintf("week of %s", s.WeekStart.Format("2006-01-02")),
	)
}

// WeekFolder returns just the week segment of the bucket path for t.
func (s Segments) WeekFolder() string {
	return fmt.Sprintf("week of %s", s.WeekStart.Format("2006-01-02"))
}
