package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/linestat/internal/progress"
	"github.com/Sumatoshi-tech/linestat/internal/snapshot"
)

// Reader opens a stats container for decoding. Chunk entries may be
// decoded from multiple goroutines; the underlying zip reader hands
// each open entry its own decompression stream.
type Reader struct {
	container *zip.ReadCloser
	total     uint64
	chunks    []*zip.File
}

// Open validates the container layout and reads the total record count
// from the info entry. The total sizes progress reporting; decoding
// trusts only the per-chunk counts.
func Open(path string) (*Reader, error) {
	container, openErr := zip.OpenReader(path)
	if openErr != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, openErr)
	}

	if len(container.File) == 0 || container.File[0].Name != infoEntryName {
		_ = container.Close()

		return nil, fmt.Errorf("%w: first entry must be %q", ErrCorrupt, infoEntryName)
	}

	total, infoErr := readInfo(container.File[0])
	if infoErr != nil {
		_ = container.Close()

		return nil, infoErr
	}

	chunks := make([]*zip.File, 0, len(container.File)-1)

	for _, file := range container.File[1:] {
		if !strings.HasPrefix(file.Name, chunkEntryPrefix) {
			_ = container.Close()

			return nil, fmt.Errorf("%w: unexpected entry %q", ErrCorrupt, file.Name)
		}

		chunks = append(chunks, file)
	}

	return &Reader{
		container: container,
		total:     total,
		chunks:    chunks,
	}, nil
}

func readInfo(file *zip.File) (uint64, error) {
	entry, openErr := file.Open()
	if openErr != nil {
		return 0, fmt.Errorf("read info entry: %w", openErr)
	}
	defer func() { _ = entry.Close() }()

	total, readErr := readUint64(lz4.NewReader(entry))
	if readErr != nil {
		return 0, fmt.Errorf("%w: info entry: %v", ErrCorrupt, readErr)
	}

	return total, nil
}

// Total returns the record count declared by the info entry.
func (r *Reader) Total() uint64 {
	return r.total
}

// ChunkCount returns the number of chunk entries.
func (r *Reader) ChunkCount() int {
	return len(r.chunks)
}

// Close releases the container.
func (r *Reader) Close() error {
	return r.container.Close()
}

// DecodeChunk decodes every record of one chunk entry, in stored
// order. Trailing bytes after the declared record count mean the entry
// was not produced by the writer and fail as corruption.
func (r *Reader) DecodeChunk(index int) ([]*snapshot.Snapshot, error) {
	name := r.chunks[index].Name

	entry, openErr := r.chunks[index].Open()
	if openErr != nil {
		return nil, fmt.Errorf("open chunk %s: %w", name, openErr)
	}
	defer func() { _ = entry.Close() }()

	stream := lz4.NewReader(entry)

	count, countErr := readUint64(stream)
	if countErr != nil {
		return nil, fmt.Errorf("%w: chunk %s header: %v", ErrCorrupt, name, countErr)
	}

	records := make([]*snapshot.Snapshot, 0, count)

	for range count {
		snap, recordErr := readRecord(stream)
		if recordErr != nil {
			return nil, fmt.Errorf("chunk %s: %w", name, recordErr)
		}

		records = append(records, snap)
	}

	// ReadFull retries short reads, so only a clean zero-byte EOF
	// passes; a reader handing back the last byte together with io.EOF
	// still counts as trailing data.
	var scratch [1]byte
	if _, err := io.ReadFull(stream, scratch[:]); err != io.EOF {
		return nil, fmt.Errorf("%w: chunk %s has bytes past record %d", ErrCorrupt, name, count)
	}

	return records, nil
}

// LoadSeries decodes all chunks with the given worker count and reduces
// each snapshot to one series point under the language filter. Chunks
// are decoded in whatever order workers pick them up, but the result is
// always in chunk order, so the series stays chronological. counter
// (optional) is incremented once per record.
func (r *Reader) LoadSeries(ctx context.Context, filter snapshot.LanguageFilter, workers int, counter progress.Counter) ([]snapshot.SeriesPoint, error) {
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)

	go func() {
		defer close(jobs)

		for index := range r.chunks {
			select {
			case jobs <- index:
			case <-ctx.Done():
				return
			}
		}
	}()

	perChunk := make([][]snapshot.SeriesPoint, len(r.chunks))

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err

			cancel()
		})
	}

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for index := range jobs {
				points, err := r.reduceChunk(index, filter, counter)
				if err != nil {
					fail(err)

					return
				}

				perChunk[index] = points
			}
		}()
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	series := make([]snapshot.SeriesPoint, 0, r.total)
	for _, points := range perChunk {
		series = append(series, points...)
	}

	return series, nil
}

func (r *Reader) reduceChunk(index int, filter snapshot.LanguageFilter, counter progress.Counter) ([]snapshot.SeriesPoint, error) {
	records, err := r.DecodeChunk(index)
	if err != nil {
		return nil, err
	}

	points := make([]snapshot.SeriesPoint, 0, len(records))

	for _, snap := range records {
		points = append(points, snap.Point(filter))

		if counter != nil {
			counter.Inc(1)
		}
	}

	return points, nil
}
