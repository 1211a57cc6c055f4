package snapshot

import (
	"errors"
	"fmt"
	"maps"

	"github.com/Sumatoshi-tech/linestat/internal/gitlib"
	"github.com/Sumatoshi-tech/linestat/internal/linecount"
)

// ErrInvariant indicates a diff referenced a path the in-memory snapshot
// does not have: the tree/diff consistency assumptions are broken and
// the scan must abort.
var ErrInvariant = errors.New("snapshot invariant violation")

// BlobReader loads the raw content of a blob by hash.
type BlobReader func(hash gitlib.Hash) ([]byte, error)

// ClassifyFunc classifies a file by path and content. A false return
// excludes the file from the snapshot.
type ClassifyFunc func(name string, content []byte) (linecount.Report, bool)

// Builder derives snapshots incrementally. Reusing the previous snapshot
// keeps classification cost proportional to the diff size instead of the
// repository size for every commit after the first one of a chunk.
type Builder struct {
	repo     *gitlib.Repository
	classify ClassifyFunc
}

// NewBuilder creates a builder over one repository handle. The handle
// must not be shared with other goroutines.
func NewBuilder(repo *gitlib.Repository) *Builder {
	return &Builder{repo: repo, classify: linecount.Classify}
}

// Advance produces the snapshot for one commit from the previous
// snapshot and tree. Both may be nil, in which case the commit is
// reconstructed from a full-tree diff (everything added). The commit's
// tree is returned to seed the next call; the caller owns freeing it.
func (b *Builder) Advance(hash gitlib.Hash, prev *Snapshot, prevTree *gitlib.Tree) (*Snapshot, *gitlib.Tree, error) {
	commit, err := b.repo.LookupCommit(hash)
	if err != nil {
		return nil, nil, err
	}
	defer commit.Free()

	tree, treeErr := commit.Tree()
	if treeErr != nil {
		return nil, nil, treeErr
	}

	changes, diffErr := gitlib.TreeDiff(b.repo, prevTree, tree)
	if diffErr != nil {
		tree.Free()

		return nil, nil, diffErr
	}

	files := make(map[string]FileRecord)
	if prev != nil {
		files = maps.Clone(prev.Files)
	}

	applyErr := Apply(files, changes, b.readBlob, b.classify)
	if applyErr != nil {
		tree.Free()

		return nil, nil, applyErr
	}

	snap := &Snapshot{
		Timestamp: commit.Author().When,
		Files:     files,
	}

	return snap, tree, nil
}

func (b *Builder) readBlob(hash gitlib.Hash) ([]byte, error) {
	blob, err := b.repo.LookupBlob(hash)
	if err != nil {
		return nil, err
	}
	defer blob.Free()

	return blob.Contents(), nil
}

// Apply mutates files in place by replaying every change. The delta set
// is closed over five kinds; each has an exhaustive handler.
func Apply(files map[string]FileRecord, changes gitlib.Changes, read BlobReader, classify ClassifyFunc) error {
	for _, change := range changes {
		var err error

		switch change.Action {
		case gitlib.Insert, gitlib.Modify:
			err = applyUpsert(files, change, read, classify)
		case gitlib.Delete:
			// Deleting an already-absent path is the single documented
			// silent no-op.
			delete(files, change.From.Name)
		case gitlib.Rename:
			err = applyRename(files, change, read, classify)
		case gitlib.Copy:
			err = applyCopy(files, change, read, classify)
		default:
			err = fmt.Errorf("%w: unhandled %s delta for %q", ErrInvariant, change.Action, change.To.Name)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// applyUpsert re-reads and reclassifies the changed blob. Unrecognized
// files are dropped from the mapping, which also removes a previously
// recognized record whose new content no longer classifies.
func applyUpsert(files map[string]FileRecord, change *gitlib.Change, read BlobReader, classify ClassifyFunc) error {
	if change.To.IsSubmodule() {
		return nil
	}

	content, err := read(change.To.Hash)
	if err != nil {
		return err
	}

	report, ok := classify(change.To.Name, content)
	if !ok {
		delete(files, change.To.Name)

		return nil
	}

	stats := report.Summarize()

	files[change.To.Name] = FileRecord{
		Language: report.Language,
		Stats: LineStats{
			Code:     stats.Code,
			Comments: stats.Comments,
			Blanks:   stats.Blanks,
		},
	}

	return nil
}

// applyRename moves the record without recomputation: renames are
// detected on exact content matches only, so the source's stats stay
// valid for the new path. Classification keys on the path, so the new
// name is reclassified when the source was never in the snapshot or the
// extension changed meaning.
func applyRename(files map[string]FileRecord, change *gitlib.Change, read BlobReader, classify ClassifyFunc) error {
	record, ok := files[change.From.Name]
	if !ok {
		// The source was unrecognized (binary or unknown language); the
		// new path may still classify, e.g. extension gained on rename.
		return applyUpsert(files, change, read, classify)
	}

	delete(files, change.From.Name)
	files[change.To.Name] = record

	return nil
}

// applyCopy duplicates the record under the new path, retaining the old
// path's record unchanged.
func applyCopy(files map[string]FileRecord, change *gitlib.Change, read BlobReader, classify ClassifyFunc) error {
	record, ok := files[change.From.Name]
	if !ok {
		return applyUpsert(files, change, read, classify)
	}

	files[change.To.Name] = record

	return nil
}
