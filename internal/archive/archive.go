// Package archive persists per-commit snapshots in a zip container of
// independently LZ4-compressed entries. Entry 0 ("info") carries the
// total record count; every other entry ("stats-NNN") carries one
// chunk's records in commit order. Independent entries let both the
// writer and the reader work chunk-parallel.
package archive

import (
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// ErrCorrupt indicates the container violates the format contract:
// wrong first entry, record count mismatch, trailing bytes, or an
// implausible frame length.
var ErrCorrupt = errors.New("corrupt archive")

const (
	infoEntryName    = "info"
	chunkEntryPrefix = "stats-"

	// minEntryDigits keeps names at least three digits wide so small
	// archives still sort lexicographically.
	minEntryDigits = 3
)

// compressionLevels maps the user-facing 0-9 scale onto lz4 levels.
var compressionLevels = []lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

// Level translates a 0-9 compression level to the lz4 constant.
func Level(level int) (lz4.CompressionLevel, error) {
	if level < 0 || level >= len(compressionLevels) {
		return lz4.Fast, fmt.Errorf("compression level %d out of range 0-%d", level, len(compressionLevels)-1)
	}

	return compressionLevels[level], nil
}

// entryWidth returns the zero-pad width for chunk entry names. The
// width follows the realized chunk count so any number of chunks sorts
// correctly by name.
func entryWidth(chunkCount int) int {
	width := 1
	for n := chunkCount - 1; n >= 10; n /= 10 {
		width++
	}

	if width < minEntryDigits {
		width = minEntryDigits
	}

	return width
}

// entryName formats the archive entry name for one chunk index.
func entryName(index, width int) string {
	return fmt.Sprintf("%s%0*d", chunkEntryPrefix, width, index)
}
