package git

import (
	"context"
	"fmt"

	"github.com/treeverse/metastore/pkg/metastore"
	"github.com/treeverse/metastore/pkg/metastore/lfs"
)

// commitFiles writes files on top of the current branch head and moves the branch to the new
// commit. Reading the head and moving the branch are separate calls: a concurrent writer
// moving the branch in between makes the host reject the move as not fast forward.
func (s *Store) commitFiles(ctx context.Context, repo Repo, files []lfs.File, author *metastore.Author, message string) (*Commit, error) {
	head, err := s.host.GetRef(ctx, repo, s.branchRef())
	if err != nil {
		return nil, fmt.Errorf("get branch %s: %w", s.cfg.DefaultBranch, err)
	}
	parent, err := s.host.GetCommit(ctx, repo, head.SHA)
	if err != nil {
		return nil, fmt.Errorf("get head commit %s: %w", head.SHA, err)
	}

	entries := make([]TreeEntry, 0, len(files))
	for _, f := range files {
		sha, err := s.host.CreateBlob(ctx, repo, []byte(f.Content))
		if err != nil {
			return nil, fmt.Errorf("create blob %s: %w", f.Path, err)
		}
		entries = append(entries, TreeEntry{Path: f.Path, BlobSHA: sha})
	}
	tree, err := s.host.CreateTree(ctx, repo, parent.TreeSHA, entries)
	if err != nil {
		return nil, fmt.Errorf("create tree: %w", err)
	}
	commit, err := s.host.CreateCommit(ctx, repo, NewCommit{
		Message: message,
		TreeSHA: tree,
		Parents: []string{parent.SHA},
		Author:  s.signature(author),
	})
	if err != nil {
		return nil, fmt.Errorf("create commit: %w", err)
	}
	if err := s.host.UpdateRef(ctx, repo, s.branchRef(), commit.SHA, false); err != nil {
		return nil, fmt.Errorf("update branch %s: %w", s.cfg.DefaultBranch, err)
	}
	return commit, nil
}

// signature returns the author to write with: author when it has a name or an email, else the
// configured default author, else nil leaving it to the host
func (s *Store) signature(author *metastore.Author) *Signature {
	switch {
	case author != nil && !author.IsEmpty():
		return &Signature{Name: author.Name, Email: author.Email}
	case s.cfg.DefaultAuthor != nil && !s.cfg.DefaultAuthor.IsEmpty():
		return &Signature{Name: s.cfg.DefaultAuthor.Name, Email: s.cfg.DefaultAuthor.Email}
	default:
		return nil
	}
}

func signatureAuthor(sig *Signature) *metastore.Author {
	if sig == nil {
		return nil
	}
	return &metastore.Author{Name: sig.Name, Email: sig.Email}
}
