package scan

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/Sumatoshi-tech/linestat/internal/archive"
	"github.com/Sumatoshi-tech/linestat/internal/gitlib"
	"github.com/Sumatoshi-tech/linestat/internal/progress"
	"github.com/Sumatoshi-tech/linestat/internal/snapshot"
)

// Options configures one scan run.
type Options struct {
	RepoPath     string
	OutputPath   string
	TargetChunks int
	MinChunkSize int
	Level        int
	Workers      int
}

// Result summarizes a completed scan.
type Result struct {
	Commits      int
	Chunks       int
	ArchiveBytes int64
}

// Scanner walks history chunk-parallel and writes the stats archive.
type Scanner struct {
	opts Options
}

// NewScanner creates a scanner. Options are taken as given; validation
// belongs to the config layer.
func NewScanner(opts Options) *Scanner {
	return &Scanner{opts: opts}
}

// History extracts the commit hashes to scan, oldest first. The
// repository handle used here is private to the call; workers open
// their own.
func (s *Scanner) History() ([]gitlib.Hash, error) {
	repo, err := gitlib.OpenRepository(s.opts.RepoPath)
	if err != nil {
		return nil, err
	}
	defer repo.Free()

	return repo.HistoryOldestFirst()
}

// Run scans every chunk and assembles the archive at the configured
// output path. Entries are staged in a scratch directory that is
// removed on return; the output file only appears on success. The
// first worker error cancels the rest.
func (s *Scanner) Run(ctx context.Context, chunks []Chunk, counter progress.Counter) (Result, error) {
	stageDir, tmpErr := os.MkdirTemp("", "linestat-scan-*")
	if tmpErr != nil {
		return Result{}, fmt.Errorf("scan: stage dir: %w", tmpErr)
	}
	defer func() { _ = os.RemoveAll(stageDir) }()

	writer, writerErr := archive.NewWriter(stageDir, len(chunks), s.opts.Level)
	if writerErr != nil {
		return Result{}, fmt.Errorf("scan: %w", writerErr)
	}

	commits := 0
	for _, chunk := range chunks {
		commits += len(chunk.Hashes)
	}

	infoErr := writer.WriteInfo(uint64(commits))
	if infoErr != nil {
		return Result{}, fmt.Errorf("scan: %w", infoErr)
	}

	runErr := s.runWorkers(ctx, chunks, writer, counter)
	if runErr != nil {
		return Result{}, runErr
	}

	assembleErr := writer.Assemble(s.opts.OutputPath)
	if assembleErr != nil {
		_ = os.Remove(s.opts.OutputPath)

		return Result{}, fmt.Errorf("scan: %w", assembleErr)
	}

	info, statErr := os.Stat(s.opts.OutputPath)
	if statErr != nil {
		return Result{}, fmt.Errorf("scan: %w", statErr)
	}

	return Result{
		Commits:      commits,
		Chunks:       len(chunks),
		ArchiveBytes: info.Size(),
	}, nil
}

func (s *Scanner) runWorkers(ctx context.Context, chunks []Chunk, writer *archive.Writer, counter progress.Counter) error {
	workers := s.opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	if workers > len(chunks) {
		workers = len(chunks)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan Chunk)

	go func() {
		defer close(jobs)

		for _, chunk := range chunks {
			select {
			case jobs <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()

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

			// One repository handle per worker: libgit2 handles must
			// not cross goroutines.
			repo, openErr := gitlib.OpenRepository(s.opts.RepoPath)
			if openErr != nil {
				fail(openErr)

				return
			}
			defer repo.Free()

			builder := snapshot.NewBuilder(repo)

			for chunk := range jobs {
				chunkErr := scanChunk(ctx, builder, writer, chunk, counter)
				if chunkErr != nil {
					fail(chunkErr)

					return
				}
			}
		}()
	}

	wg.Wait()

	if firstErr != nil {
		return fmt.Errorf("scan: %w", firstErr)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("scan: %w", ctxErr)
	}

	return nil
}

// scanChunk replays one chunk from scratch: the first commit diffs
// against the empty tree, each following commit against its
// predecessor's tree.
func scanChunk(ctx context.Context, builder *snapshot.Builder, writer *archive.Writer, chunk Chunk, counter progress.Counter) error {
	encoder, encErr := writer.NewChunkEncoder(chunk.Index, uint64(len(chunk.Hashes)))
	if encErr != nil {
		return encErr
	}

	var (
		prev     *snapshot.Snapshot
		prevTree *gitlib.Tree
	)

	freeTree := func() {
		if prevTree != nil {
			prevTree.Free()

			prevTree = nil
		}
	}
	defer freeTree()

	for _, hash := range chunk.Hashes {
		select {
		case <-ctx.Done():
			_ = encoder.Close()

			return ctx.Err()
		default:
		}

		snap, tree, advErr := builder.Advance(hash, prev, prevTree)
		if advErr != nil {
			_ = encoder.Close()

			return advErr
		}

		freeTree()

		writeErr := encoder.Encode(snap)
		if writeErr != nil {
			tree.Free()
			_ = encoder.Close()

			return writeErr
		}

		prev, prevTree = snap, tree

		if counter != nil {
			counter.Inc(1)
		}
	}

	return encoder.Close()
}
