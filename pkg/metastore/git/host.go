package git

//go:generate mockgen -source=host.go -destination=mock/host.go -package=mock

import (
	"context"
	"errors"
	"time"
)

// Host errors. Implementations return them (possibly wrapped) only when the remote response
// is unambiguous, any other failure is returned as is.
var (
	ErrObjectNotFound   = errors.New("object not found")
	ErrRepositoryExists = errors.New("repository already exists")
	ErrRefExists        = errors.New("reference already exists")
	ErrRefRejected      = errors.New("reference rejected")
	ErrTagRejected      = errors.New("tag rejected")
)

const (
	ObjectTypeCommit = "commit"
	ObjectTypeTag    = "tag"
)

// Owner is the account scope a repository is created under
type Owner struct {
	Login string
	// Authenticated is set when Login is the identity the host is accessed with, as opposed to
	// an organization
	Authenticated bool
}

// Repo addresses a repository on the host
type Repo struct {
	Owner string
	Name  string
}

func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}

// Signature identifies the author of a commit or the tagger of a tag. A zero Date lets the host
// use the current time.
type Signature struct {
	Name  string
	Email string
	Date  time.Time
}

type Ref struct {
	// Name is the full reference name, ex: refs/heads/master
	Name string
	SHA  string
	// Type is the type of the object the reference points to: commit or tag
	Type string
}

type TreeEntry struct {
	Path    string
	BlobSHA string
}

type Commit struct {
	SHA     string
	TreeSHA string
	Parents []string
	Author  *Signature
	Message string
}

type NewCommit struct {
	Message string
	TreeSHA string
	Parents []string
	// Author is optional, the host sets the authenticated identity when nil
	Author *Signature
}

// Tag is an annotated tag object
type Tag struct {
	SHA       string
	Name      string
	Message   string
	Tagger    *Signature
	ObjectSHA string
}

type NewTag struct {
	Name      string
	Message   string
	ObjectSHA string
	// Tagger is optional, the host sets the authenticated identity when nil
	Tagger *Signature
}

// Host is the set of remote primitives of a Git hosting service the store is built on.
// Reference names are given without the "refs/" prefix, ex: heads/master or tags/v1.
type Host interface {
	// AuthenticatedLogin returns the login of the identity the host is accessed with
	AuthenticatedLogin(ctx context.Context) (string, error)
	// CreateRepository creates an empty repository, ErrRepositoryExists if the name is taken
	CreateRepository(ctx context.Context, owner Owner, name string) error
	// GetRepository checks the repository exists, ErrObjectNotFound if it does not
	GetRepository(ctx context.Context, repo Repo) error
	DeleteRepository(ctx context.Context, repo Repo) error
	// CreateFile commits a single file on top of the repository default branch, creating the
	// branch on an empty repository
	CreateFile(ctx context.Context, repo Repo, path, message string, content []byte) error

	GetRef(ctx context.Context, repo Repo, ref string) (*Ref, error)
	// CreateRef fails with ErrRefExists when ref exists and ErrRefRejected on an invalid name
	CreateRef(ctx context.Context, repo Repo, ref, sha string) error
	UpdateRef(ctx context.Context, repo Repo, ref, sha string, force bool) error
	DeleteRef(ctx context.Context, repo Repo, ref string) error
	ListMatchingRefs(ctx context.Context, repo Repo, prefix string) ([]*Ref, error)

	CreateBlob(ctx context.Context, repo Repo, content []byte) (string, error)
	// CreateTree creates a tree holding entries on top of baseTree
	CreateTree(ctx context.Context, repo Repo, baseTree string, entries []TreeEntry) (string, error)
	GetCommit(ctx context.Context, repo Repo, sha string) (*Commit, error)
	CreateCommit(ctx context.Context, repo Repo, commit NewCommit) (*Commit, error)
	// CreateTag creates an annotated tag object, ErrTagRejected when the host refuses it
	CreateTag(ctx context.Context, repo Repo, tag NewTag) (*Tag, error)
	GetTag(ctx context.Context, repo Repo, sha string) (*Tag, error)

	// GetFileContents returns the content of path as of ref (a commit sha or reference name)
	GetFileContents(ctx context.Context, repo Repo, path, ref string) ([]byte, error)
	// ListCommits returns the first parent history of the default branch, newest first
	ListCommits(ctx context.Context, repo Repo) ([]*Commit, error)
}
