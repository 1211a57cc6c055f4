package gitlib

import (
	"errors"
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// ErrUnexpectedDelta is returned when the diff engine emits a delta kind
// outside the five the pipeline handles. Normal tree-to-tree output never
// produces one, so hitting this means corrupted diff assumptions.
var ErrUnexpectedDelta = errors.New("unexpected delta kind")

// filemodeGitlink is the tree entry mode for submodule pointers.
const filemodeGitlink = 0o160000

// ChangeAction is the kind of a single file-level delta.
type ChangeAction int

const (
	// Insert indicates a new file was added.
	Insert ChangeAction = iota
	// Modify indicates a file's content changed in place.
	Modify
	// Delete indicates a file was removed.
	Delete
	// Rename indicates a file moved from From.Name to To.Name.
	Rename
	// Copy indicates To.Name was created as a copy of From.Name.
	Copy
)

// String returns the action name for error messages.
func (a ChangeAction) String() string {
	switch a {
	case Insert:
		return "insert"
	case Modify:
		return "modify"
	case Delete:
		return "delete"
	case Rename:
		return "rename"
	case Copy:
		return "copy"
	default:
		return "unknown"
	}
}

// Change represents a single file change between two trees.
type Change struct {
	Action ChangeAction
	From   ChangeEntry
	To     ChangeEntry
}

// ChangeEntry represents one side of a change (old or new file).
type ChangeEntry struct {
	Name string
	Hash Hash
	Mode uint16
}

// IsSubmodule reports whether the entry points at a submodule commit
// rather than a blob.
func (e ChangeEntry) IsSubmodule() bool {
	return e.Mode == filemodeGitlink
}

// Changes is a collection of Change objects.
type Changes []*Change

// TreeDiff computes the file-level changes between two trees with rename
// and copy detection enabled. A nil oldTree means the empty tree, so the
// first commit of a chunk comes back as pure insertions.
func TreeDiff(repo *Repository, oldTree, newTree *Tree) (Changes, error) {
	if oldTree != nil && newTree != nil && oldTree.Hash() == newTree.Hash() {
		return make(Changes, 0), nil
	}

	diff, err := repo.DiffTreeToTree(oldTree, newTree)
	if err != nil {
		return nil, err
	}

	defer func() { _ = diff.Free() }()

	findOpts, optsErr := git2go.DefaultDiffFindOptions()
	if optsErr != nil {
		return nil, fmt.Errorf("%w: diff find options: %v", ErrRepository, optsErr)
	}

	// Exact matches only: a rename or copy must carry identical content,
	// so downstream may reuse the source's statistics without
	// recomputation. Renames with edits surface as delete+add pairs.
	findOpts.Flags = git2go.DiffFindRenames | git2go.DiffFindCopies | git2go.DiffFindExactMatchOnly

	findErr := diff.FindSimilar(&findOpts)
	if findErr != nil {
		return nil, fmt.Errorf("%w: rename detection: %v", ErrRepository, findErr)
	}

	numDeltas, numErr := diff.NumDeltas()
	if numErr != nil {
		return nil, fmt.Errorf("%w: num deltas: %v", ErrRepository, numErr)
	}

	changes := make(Changes, 0, numDeltas)

	for i := range numDeltas {
		delta, deltaErr := diff.Delta(i)
		if deltaErr != nil {
			return nil, fmt.Errorf("%w: delta %d: %v", ErrRepository, i, deltaErr)
		}

		change, convErr := convertDelta(delta)
		if convErr != nil {
			return nil, convErr
		}

		changes = append(changes, change)
	}

	return changes, nil
}

// convertDelta maps a libgit2 delta onto the closed five-kind change set.
func convertDelta(delta git2go.DiffDelta) (*Change, error) {
	from := ChangeEntry{
		Name: delta.OldFile.Path,
		Hash: HashFromOid(delta.OldFile.Oid),
		Mode: delta.OldFile.Mode,
	}
	to := ChangeEntry{
		Name: delta.NewFile.Path,
		Hash: HashFromOid(delta.NewFile.Oid),
		Mode: delta.NewFile.Mode,
	}

	switch delta.Status {
	case git2go.DeltaAdded:
		return &Change{Action: Insert, To: to}, nil
	case git2go.DeltaModified:
		return &Change{Action: Modify, From: from, To: to}, nil
	case git2go.DeltaDeleted:
		return &Change{Action: Delete, From: from}, nil
	case git2go.DeltaRenamed:
		return &Change{Action: Rename, From: from, To: to}, nil
	case git2go.DeltaCopied:
		return &Change{Action: Copy, From: from, To: to}, nil
	default:
		return nil, fmt.Errorf("%w: status %d on %q", ErrUnexpectedDelta, delta.Status, to.Name)
	}
}
