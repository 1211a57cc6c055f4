// Package snapshot holds the per-commit classified state of a source
// tree and the incremental builder that derives each commit's state from
// the previous one plus a tree diff.
package snapshot

import (
	"strings"
	"time"
)

// LineStats is an additive triple of line counts for one file.
type LineStats struct {
	Code     uint64
	Comments uint64
	Blanks   uint64
}

// Add merges another triple into this one.
func (s *LineStats) Add(other LineStats) {
	s.Code += other.Code
	s.Comments += other.Comments
	s.Blanks += other.Blanks
}

// FileRecord is the classification of one path inside a Snapshot.
type FileRecord struct {
	Language string
	Stats    LineStats
}

// Snapshot is the complete classified state of the tree at one commit.
// Once written to an archive a Snapshot is never mutated again.
type Snapshot struct {
	Timestamp time.Time
	Files     map[string]FileRecord
}

// SeriesPoint is one date-stamped (code, comments) total used for
// charting. Points are emitted one per Snapshot, not deduplicated by
// date.
type SeriesPoint struct {
	Date     time.Time
	Code     uint64
	Comments uint64
}

// LanguageFilter is a case-insensitive set of language names. The empty
// filter matches every language.
type LanguageFilter map[string]bool

// NewLanguageFilter builds a filter from raw language names.
func NewLanguageFilter(languages []string) LanguageFilter {
	filter := make(LanguageFilter, len(languages))
	for _, language := range languages {
		name := strings.ToLower(strings.TrimSpace(language))
		if name != "" {
			filter[name] = true
		}
	}

	return filter
}

// Match reports whether the language passes the filter.
func (f LanguageFilter) Match(language string) bool {
	if len(f) == 0 {
		return true
	}

	return f[strings.ToLower(language)]
}

// Point reduces the snapshot to a single series point under the given
// language filter. The date keeps the snapshot's original fixed offset.
func (s *Snapshot) Point(filter LanguageFilter) SeriesPoint {
	point := SeriesPoint{Date: s.Timestamp}

	for _, record := range s.Files {
		if filter.Match(record.Language) {
			point.Code += record.Stats.Code
			point.Comments += record.Stats.Comments
		}
	}

	return point
}
