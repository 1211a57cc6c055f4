// Package linecount classifies repository files by programming language
// and counts code, comment and blank lines. Detection uses enry (the Go
// port of github's linguist); counting uses a per-language comment
// syntax table. Files with embedded sub-language blocks (e.g. fenced
// code in Markdown) report those blocks separately, and Summarize
// flattens the whole report into a single additive triple.
package linecount

import (
	"bytes"
	"path"
	"sort"

	"github.com/src-d/enry/v2"
	"github.com/src-d/enry/v2/data"
)

// binarySniffLength is the number of bytes scanned for null bytes when
// detecting binary content.
const binarySniffLength = 8000

// Stats is an additive triple of line counts for one file or aggregate.
type Stats struct {
	Code     uint64
	Comments uint64
	Blanks   uint64
}

// Add merges another triple into this one.
func (s *Stats) Add(other Stats) {
	s.Code += other.Code
	s.Comments += other.Comments
	s.Blanks += other.Blanks
}

// Report is the classification result for one file. Blocks holds the
// line counts of embedded sub-language blocks; they are never propagated
// past Summarize.
type Report struct {
	Language string
	Stats    Stats
	Blocks   []Stats
}

// Summarize flattens the hierarchical report into one triple by
// summation.
func (r Report) Summarize() Stats {
	total := r.Stats
	for _, block := range r.Blocks {
		total.Add(block)
	}

	return total
}

// Classify detects the language of a file and counts its lines. The
// second return value is false when the content is binary or no language
// is recognized; such files are excluded from snapshots.
func Classify(name string, content []byte) (Report, bool) {
	if isBinary(content) {
		return Report{}, false
	}

	language := enry.GetLanguage(path.Base(name), content)
	if language == "" {
		return Report{}, false
	}

	report := countLines(language, content)
	report.Language = language

	return report, true
}

// KnownLanguages returns the sorted list of languages that can appear as
// filter values, taken from the linguist extension tables.
func KnownLanguages() []string {
	languages := make([]string, 0, len(data.ExtensionsByLanguage))
	for language := range data.ExtensionsByLanguage {
		languages = append(languages, language)
	}

	sort.Strings(languages)

	return languages
}

// isBinary reports whether the content looks binary (null byte in the
// sniff window).
func isBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}

	sniff := content
	if len(sniff) > binarySniffLength {
		sniff = sniff[:binarySniffLength]
	}

	return bytes.IndexByte(sniff, 0) >= 0
}
