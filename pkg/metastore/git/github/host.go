// Package github implements the Git host primitives over the GitHub REST API
package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v55/github"
	"github.com/treeverse/metastore/pkg/metastore/git"
	"github.com/treeverse/metastore/pkg/version"
	"go.uber.org/ratelimit"
	"golang.org/x/oauth2"
)

const (
	DefaultBranch = git.DefaultBranch
	// listPageSize is the maximum page size the API accepts
	listPageSize = 100

	blobEncoding  = "base64"
	blobEntryMode = "100644"
	blobEntryType = "blob"

	// unprocessable entity messages identifying conflicts
	repositoryExistsMessage = "name already exists on this account"
	refExistsMessage        = "Reference already exists"
)

var ErrInvalidBaseURL = errors.New("invalid base url")

type Config struct {
	// Token is the personal access token, anonymous access when empty
	Token string
	// BaseURL of the REST API, ex: https://github.example.com/api/v3/
	BaseURL string
	// DefaultBranch is the branch files are committed to on new repositories
	DefaultBranch string
	// HTTPClient is the transport used for API requests, wrapped with the token when set
	HTTPClient *http.Client
	// RequestsPerSecond limits the API request rate, unlimited when zero
	RequestsPerSecond int
}

// Host accesses repositories through the GitHub API
type Host struct {
	client  *github.Client
	branch  string
	limiter ratelimit.Limiter
}

func NewHost(ctx context.Context, cfg Config) (*Host, error) {
	httpClient := cfg.HTTPClient
	if cfg.Token != "" {
		if httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		}
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	}
	client := github.NewClient(httpClient)
	client.UserAgent = version.UserAgent()
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidBaseURL, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%w: %s", ErrInvalidBaseURL, cfg.BaseURL)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		client.BaseURL = u
	}
	branch := cfg.DefaultBranch
	if branch == "" {
		branch = DefaultBranch
	}
	limiter := ratelimit.NewUnlimited()
	if cfg.RequestsPerSecond > 0 {
		limiter = ratelimit.New(cfg.RequestsPerSecond)
	}
	return &Host{client: client, branch: branch, limiter: limiter}, nil
}

// responseError maps API error responses on to the host errors. Only the response status and
// messages are examined, err is kept in the chain.
func responseError(err error, unprocessable error) error {
	if err == nil {
		return nil
	}
	var errResp *github.ErrorResponse
	if !errors.As(err, &errResp) || errResp.Response == nil {
		return err
	}
	switch errResp.Response.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", git.ErrObjectNotFound, err)
	case http.StatusUnprocessableEntity:
		if unprocessable != nil {
			return fmt.Errorf("%w: %w", unprocessable, err)
		}
	}
	return err
}

func hasMessage(err error, msg string) bool {
	var errResp *github.ErrorResponse
	if !errors.As(err, &errResp) {
		return false
	}
	if strings.Contains(errResp.Message, msg) {
		return true
	}
	for _, e := range errResp.Errors {
		if strings.Contains(e.Message, msg) {
			return true
		}
	}
	return false
}

func (h *Host) AuthenticatedLogin(ctx context.Context) (string, error) {
	var login string
	err := h.observe("get_user", func() error {
		user, _, err := h.client.Users.Get(ctx, "")
		if err != nil {
			return responseError(err, nil)
		}
		login = user.GetLogin()
		return nil
	})
	return login, err
}

func (h *Host) CreateRepository(ctx context.Context, owner git.Owner, name string) error {
	org := owner.Login
	if owner.Authenticated {
		// empty organization creates the repository for the authenticated user
		org = ""
	}
	return h.observe("create_repository", func() error {
		_, _, err := h.client.Repositories.Create(ctx, org, &github.Repository{
			Name:     github.String(name),
			AutoInit: github.Bool(false),
		})
		if err != nil && hasMessage(err, repositoryExistsMessage) {
			return fmt.Errorf("%w: %w", git.ErrRepositoryExists, err)
		}
		return responseError(err, nil)
	})
}

func (h *Host) GetRepository(ctx context.Context, repo git.Repo) error {
	return h.observe("get_repository", func() error {
		_, _, err := h.client.Repositories.Get(ctx, repo.Owner, repo.Name)
		return responseError(err, nil)
	})
}

func (h *Host) DeleteRepository(ctx context.Context, repo git.Repo) error {
	return h.observe("delete_repository", func() error {
		_, err := h.client.Repositories.Delete(ctx, repo.Owner, repo.Name)
		return responseError(err, nil)
	})
}

func (h *Host) CreateFile(ctx context.Context, repo git.Repo, path, message string, content []byte) error {
	return h.observe("create_file", func() error {
		_, _, err := h.client.Repositories.CreateFile(ctx, repo.Owner, repo.Name, path, &github.RepositoryContentFileOptions{
			Message: github.String(message),
			Content: content,
			Branch:  github.String(h.branch),
		})
		return responseError(err, nil)
	})
}

func toRef(r *github.Reference) *git.Ref {
	return &git.Ref{
		Name: r.GetRef(),
		SHA:  r.GetObject().GetSHA(),
		Type: r.GetObject().GetType(),
	}
}

func (h *Host) GetRef(ctx context.Context, repo git.Repo, ref string) (*git.Ref, error) {
	var res *git.Ref
	err := h.observe("get_ref", func() error {
		r, _, err := h.client.Git.GetRef(ctx, repo.Owner, repo.Name, ref)
		if err != nil {
			return responseError(err, nil)
		}
		res = toRef(r)
		return nil
	})
	return res, err
}

func (h *Host) CreateRef(ctx context.Context, repo git.Repo, ref, sha string) error {
	return h.observe("create_ref", func() error {
		_, _, err := h.client.Git.CreateRef(ctx, repo.Owner, repo.Name, &github.Reference{
			Ref:    github.String("refs/" + ref),
			Object: &github.GitObject{SHA: github.String(sha)},
		})
		if err != nil && hasMessage(err, refExistsMessage) {
			return fmt.Errorf("%w: %w", git.ErrRefExists, err)
		}
		return responseError(err, git.ErrRefRejected)
	})
}

func (h *Host) UpdateRef(ctx context.Context, repo git.Repo, ref, sha string, force bool) error {
	return h.observe("update_ref", func() error {
		_, _, err := h.client.Git.UpdateRef(ctx, repo.Owner, repo.Name, &github.Reference{
			Ref:    github.String("refs/" + ref),
			Object: &github.GitObject{SHA: github.String(sha)},
		}, force)
		return responseError(err, git.ErrRefRejected)
	})
}

func (h *Host) DeleteRef(ctx context.Context, repo git.Repo, ref string) error {
	return h.observe("delete_ref", func() error {
		_, err := h.client.Git.DeleteRef(ctx, repo.Owner, repo.Name, ref)
		// deleting a missing reference answers 422
		return responseError(err, git.ErrObjectNotFound)
	})
}

func (h *Host) ListMatchingRefs(ctx context.Context, repo git.Repo, prefix string) ([]*git.Ref, error) {
	var res []*git.Ref
	err := h.observe("list_matching_refs", func() error {
		opts := &github.ReferenceListOptions{
			Ref:         prefix,
			ListOptions: github.ListOptions{PerPage: listPageSize},
		}
		for {
			refs, resp, err := h.client.Git.ListMatchingRefs(ctx, repo.Owner, repo.Name, opts)
			if err != nil {
				return responseError(err, nil)
			}
			for _, r := range refs {
				res = append(res, toRef(r))
			}
			if resp.NextPage == 0 {
				return nil
			}
			opts.Page = resp.NextPage
		}
	})
	return res, err
}

func (h *Host) CreateBlob(ctx context.Context, repo git.Repo, content []byte) (string, error) {
	var sha string
	err := h.observe("create_blob", func() error {
		blob, _, err := h.client.Git.CreateBlob(ctx, repo.Owner, repo.Name, &github.Blob{
			Content:  github.String(base64.StdEncoding.EncodeToString(content)),
			Encoding: github.String(blobEncoding),
		})
		if err != nil {
			return responseError(err, nil)
		}
		sha = blob.GetSHA()
		return nil
	})
	return sha, err
}

func (h *Host) CreateTree(ctx context.Context, repo git.Repo, baseTree string, entries []git.TreeEntry) (string, error) {
	treeEntries := make([]*github.TreeEntry, 0, len(entries))
	for _, e := range entries {
		treeEntries = append(treeEntries, &github.TreeEntry{
			Path: github.String(e.Path),
			Mode: github.String(blobEntryMode),
			Type: github.String(blobEntryType),
			SHA:  github.String(e.BlobSHA),
		})
	}
	var sha string
	err := h.observe("create_tree", func() error {
		tree, _, err := h.client.Git.CreateTree(ctx, repo.Owner, repo.Name, baseTree, treeEntries)
		if err != nil {
			return responseError(err, nil)
		}
		sha = tree.GetSHA()
		return nil
	})
	return sha, err
}

func toSignature(a *github.CommitAuthor) *git.Signature {
	if a == nil {
		return nil
	}
	return &git.Signature{
		Name:  a.GetName(),
		Email: a.GetEmail(),
		Date:  a.GetDate().Time,
	}
}

func fromSignature(s *git.Signature) *github.CommitAuthor {
	if s == nil {
		return nil
	}
	a := &github.CommitAuthor{
		Name:  github.String(s.Name),
		Email: github.String(s.Email),
	}
	if !s.Date.IsZero() {
		a.Date = &github.Timestamp{Time: s.Date}
	}
	return a
}

func toCommit(c *github.Commit) *git.Commit {
	if c == nil {
		return &git.Commit{}
	}
	parents := make([]string, 0, len(c.Parents))
	for _, p := range c.Parents {
		parents = append(parents, p.GetSHA())
	}
	return &git.Commit{
		SHA:     c.GetSHA(),
		TreeSHA: c.GetTree().GetSHA(),
		Parents: parents,
		Author:  toSignature(c.GetAuthor()),
		Message: c.GetMessage(),
	}
}

func (h *Host) GetCommit(ctx context.Context, repo git.Repo, sha string) (*git.Commit, error) {
	var res *git.Commit
	err := h.observe("get_commit", func() error {
		c, _, err := h.client.Git.GetCommit(ctx, repo.Owner, repo.Name, sha)
		if err != nil {
			// malformed shas answer 422
			return responseError(err, git.ErrObjectNotFound)
		}
		res = toCommit(c)
		return nil
	})
	return res, err
}

func (h *Host) CreateCommit(ctx context.Context, repo git.Repo, commit git.NewCommit) (*git.Commit, error) {
	parents := make([]*github.Commit, 0, len(commit.Parents))
	for _, p := range commit.Parents {
		parents = append(parents, &github.Commit{SHA: github.String(p)})
	}
	var res *git.Commit
	err := h.observe("create_commit", func() error {
		c, _, err := h.client.Git.CreateCommit(ctx, repo.Owner, repo.Name, &github.Commit{
			Message: github.String(commit.Message),
			Tree:    &github.Tree{SHA: github.String(commit.TreeSHA)},
			Parents: parents,
			Author:  fromSignature(commit.Author),
		})
		if err != nil {
			return responseError(err, nil)
		}
		res = toCommit(c)
		return nil
	})
	return res, err
}

func toTag(t *github.Tag) *git.Tag {
	return &git.Tag{
		SHA:       t.GetSHA(),
		Name:      t.GetTag(),
		Message:   t.GetMessage(),
		Tagger:    toSignature(t.GetTagger()),
		ObjectSHA: t.GetObject().GetSHA(),
	}
}

func (h *Host) CreateTag(ctx context.Context, repo git.Repo, tag git.NewTag) (*git.Tag, error) {
	var res *git.Tag
	err := h.observe("create_tag", func() error {
		t, _, err := h.client.Git.CreateTag(ctx, repo.Owner, repo.Name, &github.Tag{
			Tag:     github.String(tag.Name),
			Message: github.String(tag.Message),
			Object: &github.GitObject{
				Type: github.String(git.ObjectTypeCommit),
				SHA:  github.String(tag.ObjectSHA),
			},
			Tagger: fromSignature(tag.Tagger),
		})
		if err != nil {
			return responseError(err, git.ErrTagRejected)
		}
		res = toTag(t)
		return nil
	})
	return res, err
}

func (h *Host) GetTag(ctx context.Context, repo git.Repo, sha string) (*git.Tag, error) {
	var res *git.Tag
	err := h.observe("get_tag", func() error {
		t, _, err := h.client.Git.GetTag(ctx, repo.Owner, repo.Name, sha)
		if err != nil {
			return responseError(err, nil)
		}
		res = toTag(t)
		return nil
	})
	return res, err
}

func (h *Host) GetFileContents(ctx context.Context, repo git.Repo, path, ref string) ([]byte, error) {
	var res []byte
	err := h.observe("get_contents", func() error {
		file, _, _, err := h.client.Repositories.GetContents(ctx, repo.Owner, repo.Name, path, &github.RepositoryContentGetOptions{Ref: ref})
		if err != nil {
			return responseError(err, nil)
		}
		if file == nil {
			return fmt.Errorf("%s is a directory: %w", path, git.ErrObjectNotFound)
		}
		content, err := file.GetContent()
		if err != nil {
			return err
		}
		res = []byte(content)
		return nil
	})
	return res, err
}

func (h *Host) ListCommits(ctx context.Context, repo git.Repo) ([]*git.Commit, error) {
	var res []*git.Commit
	err := h.observe("list_commits", func() error {
		opts := &github.CommitsListOptions{
			SHA:         h.branch,
			ListOptions: github.ListOptions{PerPage: listPageSize},
		}
		for {
			commits, resp, err := h.client.Repositories.ListCommits(ctx, repo.Owner, repo.Name, opts)
			if err != nil {
				return responseError(err, nil)
			}
			for _, rc := range commits {
				c := toCommit(rc.GetCommit())
				c.SHA = rc.GetSHA()
				if len(c.Parents) == 0 {
					for _, p := range rc.Parents {
						c.Parents = append(c.Parents, p.GetSHA())
					}
				}
				res = append(res, c)
			}
			if resp.NextPage == 0 {
				return nil
			}
			opts.Page = resp.NextPage
		}
	})
	return res, err
}

var _ git.Host = (*Host)(nil)
