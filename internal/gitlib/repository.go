package gitlib

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// Repository wraps a libgit2 repository. Handles are not safe for
// concurrent use; each goroutine must open its own.
type Repository struct {
	repo *git2go.Repository
}

// OpenRepository opens a git repository at the given path.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrRepository, path, err)
	}

	return &Repository{repo: repo}, nil
}

// Free releases the repository resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// LookupCommit returns the commit with the given hash.
func (r *Repository) LookupCommit(hash Hash) (*Commit, error) {
	commit, err := r.repo.LookupCommit(hash.ToOid())
	if err != nil {
		return nil, fmt.Errorf("%w: lookup commit %s: %v", ErrRepository, hash, err)
	}

	return &Commit{commit: commit}, nil
}

// LookupBlob returns the blob with the given hash.
func (r *Repository) LookupBlob(hash Hash) (*Blob, error) {
	blob, err := r.repo.LookupBlob(hash.ToOid())
	if err != nil {
		return nil, fmt.Errorf("%w: lookup blob %s: %v", ErrRepository, hash, err)
	}

	return &Blob{blob: blob}, nil
}

// HistoryOldestFirst returns every commit reachable from HEAD in
// chronological ascending order. The returned sequence is the only
// ordering the rest of the pipeline relies on.
func (r *Repository) HistoryOldestFirst() ([]Hash, error) {
	walk, err := r.repo.Walk()
	if err != nil {
		return nil, fmt.Errorf("%w: create revwalk: %v", ErrRepository, err)
	}
	defer walk.Free()

	pushErr := walk.PushHead()
	if pushErr != nil {
		return nil, fmt.Errorf("%w: push HEAD: %v", ErrRepository, pushErr)
	}

	walk.Sorting(git2go.SortTime | git2go.SortReverse)

	hashes := make([]Hash, 0)

	iterErr := walk.Iterate(func(commit *git2go.Commit) bool {
		hashes = append(hashes, HashFromOid(commit.Id()))
		commit.Free()

		return true
	})
	if iterErr != nil {
		return nil, fmt.Errorf("%w: walk history: %v", ErrRepository, iterErr)
	}

	return hashes, nil
}

// DiffTreeToTree computes the diff between two trees. A nil oldTree is
// treated as the empty tree, so every file appears as an insertion.
func (r *Repository) DiffTreeToTree(oldTree, newTree *Tree) (*git2go.Diff, error) {
	opts, err := git2go.DefaultDiffOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: diff options: %v", ErrRepository, err)
	}

	var oldT, newT *git2go.Tree
	if oldTree != nil {
		oldT = oldTree.tree
	}

	if newTree != nil {
		newT = newTree.tree
	}

	diff, err := r.repo.DiffTreeToTree(oldT, newT, &opts)
	if err != nil {
		return nil, fmt.Errorf("%w: diff trees: %v", ErrRepository, err)
	}

	return diff, nil
}
