package archive_test

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/linestat/internal/archive"
	"github.com/Sumatoshi-tech/linestat/internal/snapshot"
)

const testLevel = 4

// fakeSnapshot builds a snapshot whose single file carries seq in its
// code count, so ordering is visible in the loaded series.
func fakeSnapshot(seq uint64, language string) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Timestamp: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(seq) * time.Hour),
		Files: map[string]snapshot.FileRecord{
			"file": {
				Language: language,
				Stats:    snapshot.LineStats{Code: seq, Comments: seq * 10},
			},
		},
	}
}

// writeTestArchive stages chunkSizes[i] sequential records into chunk i
// and assembles the container, returning its path.
func writeTestArchive(t *testing.T, chunkSizes []int, language string) string {
	t.Helper()

	stageDir := t.TempDir()
	outPath := filepath.Join(t.TempDir(), "stats.zip")

	total := 0
	for _, size := range chunkSizes {
		total += size
	}

	writer, err := archive.NewWriter(stageDir, len(chunkSizes), testLevel)
	require.NoError(t, err)
	require.NoError(t, writer.WriteInfo(uint64(total)))

	seq := uint64(0)

	for index, size := range chunkSizes {
		encoder, encErr := writer.NewChunkEncoder(index, uint64(size))
		require.NoError(t, encErr)

		for range size {
			require.NoError(t, encoder.Encode(fakeSnapshot(seq, language)))

			seq++
		}

		require.NoError(t, encoder.Close())
	}

	require.NoError(t, writer.Assemble(outPath))

	return outPath
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	path := writeTestArchive(t, []int{3, 2, 4}, "Go")

	reader, err := archive.Open(path)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	assert.Equal(t, uint64(9), reader.Total())
	assert.Equal(t, 3, reader.ChunkCount())

	records, decErr := reader.DecodeChunk(1)
	require.NoError(t, decErr)
	require.Len(t, records, 2)
	assert.Equal(t, uint64(3), records[0].Files["file"].Stats.Code)
	assert.Equal(t, uint64(4), records[1].Files["file"].Stats.Code)
}

func TestLoadSeries_PreservesOrderAcrossWorkerCounts(t *testing.T) {
	t.Parallel()

	path := writeTestArchive(t, []int{5, 1, 7, 3}, "Go")

	for _, workers := range []int{1, 4, 16} {
		reader, err := archive.Open(path)
		require.NoError(t, err)

		series, loadErr := reader.LoadSeries(context.Background(), nil, workers, nil)
		require.NoError(t, loadErr)
		require.Len(t, series, 16)

		for i, point := range series {
			assert.Equal(t, uint64(i), point.Code, "workers=%d index=%d", workers, i)
			assert.Equal(t, uint64(i*10), point.Comments)
		}

		require.NoError(t, reader.Close())
	}
}

func TestLoadSeries_LanguageFilter(t *testing.T) {
	t.Parallel()

	path := writeTestArchive(t, []int{4}, "Python")

	reader, err := archive.Open(path)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	// Empty filter matches everything.
	series, loadErr := reader.LoadSeries(context.Background(), nil, 2, nil)
	require.NoError(t, loadErr)
	assert.Equal(t, uint64(3), series[3].Code)

	// Matching filter keeps the counts.
	match := snapshot.NewLanguageFilter([]string{"python"})
	series, loadErr = reader.LoadSeries(context.Background(), match, 2, nil)
	require.NoError(t, loadErr)
	assert.Equal(t, uint64(3), series[3].Code)

	// Non-matching filter still yields one point per record, zeroed.
	miss := snapshot.NewLanguageFilter([]string{"Rust"})
	series, loadErr = reader.LoadSeries(context.Background(), miss, 2, nil)
	require.NoError(t, loadErr)
	require.Len(t, series, 4)
	assert.Equal(t, uint64(0), series[3].Code)
}

func TestLoadSeries_CancelledContext(t *testing.T) {
	t.Parallel()

	path := writeTestArchive(t, []int{2, 2}, "Go")

	reader, err := archive.Open(path)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, loadErr := reader.LoadSeries(ctx, nil, 2, nil)
	assert.ErrorIs(t, loadErr, context.Canceled)
}

func TestOpen_RejectsMissingInfoEntry(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bogus.zip")

	out, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(out)
	entry, err := zw.Create("stats-000")
	require.NoError(t, err)
	_, err = entry.Write([]byte("not a chunk"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())

	_, openErr := archive.Open(path)
	assert.ErrorIs(t, openErr, archive.ErrCorrupt)
}

func TestOpen_RejectsNonZipFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "garbage.zip")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))

	_, err := archive.Open(path)
	assert.Error(t, err)
}

func TestChunkEncoder_CountMismatch(t *testing.T) {
	t.Parallel()

	writer, err := archive.NewWriter(t.TempDir(), 1, testLevel)
	require.NoError(t, err)

	encoder, err := writer.NewChunkEncoder(0, 2)
	require.NoError(t, err)
	require.NoError(t, encoder.Encode(fakeSnapshot(0, "Go")))

	assert.Error(t, encoder.Close())
}

func TestAssemble_RequiresInfoEntry(t *testing.T) {
	t.Parallel()

	writer, err := archive.NewWriter(t.TempDir(), 1, testLevel)
	require.NoError(t, err)

	encoder, err := writer.NewChunkEncoder(0, 0)
	require.NoError(t, err)
	require.NoError(t, encoder.Close())

	assert.Error(t, writer.Assemble(filepath.Join(t.TempDir(), "out.zip")))
}
