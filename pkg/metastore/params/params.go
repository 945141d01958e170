package params

import (
	"time"
)

type Params struct {
	Type          string
	DefaultAuthor *Author
	GitHub        *GitHub
	GitMem        *GitMem
	Filesystem    *Filesystem
}

type Author struct {
	Name  string
	Email string
}

type GitHub struct {
	// Token is the personal access token used to authenticate against the API
	Token string
	// BaseURL of the API, empty for github.com. Used for GitHub Enterprise.
	BaseURL string
	// DefaultOwner is the user or organization used for package ids without an owner part
	DefaultOwner  string
	DefaultBranch string
	// LFSServerURL enables LFS pointer files generation when set
	LFSServerURL   string
	OwnerCacheSize int
	OwnerCacheTTL  time.Duration
	// RequestsPerSecond limits the API request rate, unlimited when zero
	RequestsPerSecond int
}

// GitMem configures the Git backend over an in-memory Git host
type GitMem struct {
	Login         string
	DefaultOwner  string
	DefaultBranch string
	LFSServerURL  string
}

type Filesystem struct {
	// Path of the root directory, in-memory storage when empty
	Path string
}
