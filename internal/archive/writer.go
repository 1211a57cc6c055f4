package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/linestat/internal/snapshot"
)

// Writer stages compressed entries as files in a scratch directory and
// assembles them into the final container once every chunk is done.
// ChunkEncoders for distinct chunks may run concurrently; Writer itself
// performs no locking because each encoder owns its own file.
type Writer struct {
	dir   string
	width int
	level lz4.CompressionLevel
}

// NewWriter creates a writer staging entries under dir. chunkCount
// fixes the entry-name padding; level is the 0-9 compression level.
func NewWriter(dir string, chunkCount, level int) (*Writer, error) {
	lz4Level, err := Level(level)
	if err != nil {
		return nil, err
	}

	return &Writer{
		dir:   dir,
		width: entryWidth(chunkCount),
		level: lz4Level,
	}, nil
}

// WriteInfo stages the info entry carrying the total record count.
// Call before assembling; the count is known up front from the plan.
func (w *Writer) WriteInfo(total uint64) error {
	file, createErr := os.Create(filepath.Join(w.dir, infoEntryName))
	if createErr != nil {
		return fmt.Errorf("stage info entry: %w", createErr)
	}

	compressor := lz4.NewWriter(file)

	applyErr := compressor.Apply(lz4.CompressionLevelOption(w.level))
	if applyErr != nil {
		_ = file.Close()

		return fmt.Errorf("stage info entry: %w", applyErr)
	}

	writeErr := writeUint64(compressor, total)
	if writeErr == nil {
		writeErr = compressor.Close()
	} else {
		_ = compressor.Close()
	}

	closeErr := file.Close()

	if writeErr != nil {
		return fmt.Errorf("stage info entry: %w", writeErr)
	}

	if closeErr != nil {
		return fmt.Errorf("stage info entry: %w", closeErr)
	}

	return nil
}

// ChunkEncoder streams one chunk's records through an LZ4 writer into
// a staged entry file. Not safe for concurrent use; one per goroutine.
type ChunkEncoder struct {
	file       *os.File
	compressor *lz4.Writer
	expected   uint64
	written    uint64
}

// NewChunkEncoder opens the staged entry for chunk index and writes the
// record-count header. count is the exact number of records the caller
// will encode; Close enforces it.
func (w *Writer) NewChunkEncoder(index int, count uint64) (*ChunkEncoder, error) {
	name := entryName(index, w.width)

	file, createErr := os.Create(filepath.Join(w.dir, name))
	if createErr != nil {
		return nil, fmt.Errorf("stage chunk %s: %w", name, createErr)
	}

	compressor := lz4.NewWriter(file)

	applyErr := compressor.Apply(lz4.CompressionLevelOption(w.level))
	if applyErr != nil {
		_ = file.Close()

		return nil, fmt.Errorf("stage chunk %s: %w", name, applyErr)
	}

	countErr := writeUint64(compressor, count)
	if countErr != nil {
		_ = compressor.Close()
		_ = file.Close()

		return nil, fmt.Errorf("stage chunk %s: %w", name, countErr)
	}

	return &ChunkEncoder{
		file:       file,
		compressor: compressor,
		expected:   count,
	}, nil
}

// Encode appends one record to the chunk.
func (e *ChunkEncoder) Encode(snap *snapshot.Snapshot) error {
	err := writeRecord(e.compressor, snap)
	if err != nil {
		return err
	}

	e.written++

	return nil
}

// Close flushes the compressor and verifies the record count matches
// the header written at open time.
func (e *ChunkEncoder) Close() error {
	flushErr := e.compressor.Close()
	closeErr := e.file.Close()

	if e.written != e.expected {
		return fmt.Errorf("chunk record count: wrote %d, declared %d", e.written, e.expected)
	}

	if flushErr != nil {
		return fmt.Errorf("flush chunk: %w", flushErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close chunk: %w", closeErr)
	}

	return nil
}

// Assemble packs the staged entries into the container at outputPath.
// The info entry goes first, then the chunk entries in name order. The
// container itself uses method Store: each entry is already compressed
// and a second pass would only waste cycles.
func (w *Writer) Assemble(outputPath string) error {
	staged, readErr := os.ReadDir(w.dir)
	if readErr != nil {
		return fmt.Errorf("assemble: %w", readErr)
	}

	names := make([]string, 0, len(staged))
	hasInfo := false

	for _, entry := range staged {
		if entry.Name() == infoEntryName {
			hasInfo = true

			continue
		}

		names = append(names, entry.Name())
	}

	if !hasInfo {
		return fmt.Errorf("assemble: info entry was never staged")
	}

	sort.Strings(names)

	output, createErr := os.Create(outputPath)
	if createErr != nil {
		return fmt.Errorf("assemble: %w", createErr)
	}

	container := zip.NewWriter(output)

	packErr := w.packEntry(container, infoEntryName)

	for _, name := range names {
		if packErr != nil {
			break
		}

		packErr = w.packEntry(container, name)
	}

	if packErr != nil {
		_ = container.Close()
		_ = output.Close()

		return packErr
	}

	closeErr := container.Close()
	if closeErr != nil {
		_ = output.Close()

		return fmt.Errorf("assemble: %w", closeErr)
	}

	syncErr := output.Close()
	if syncErr != nil {
		return fmt.Errorf("assemble: %w", syncErr)
	}

	return nil
}

func (w *Writer) packEntry(container *zip.Writer, name string) error {
	source, openErr := os.Open(filepath.Join(w.dir, name))
	if openErr != nil {
		return fmt.Errorf("pack %s: %w", name, openErr)
	}
	defer func() { _ = source.Close() }()

	dest, headerErr := container.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zip.Store,
	})
	if headerErr != nil {
		return fmt.Errorf("pack %s: %w", name, headerErr)
	}

	_, copyErr := io.Copy(dest, source)
	if copyErr != nil {
		return fmt.Errorf("pack %s: %w", name, copyErr)
	}

	return nil
}
