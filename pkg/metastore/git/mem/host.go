// Package mem is an in-memory git.Host. Objects are content addressed with SHA-1 over the Git
// object encoding, references follow the fast forward rules of a Git hosting service.
package mem

import (
	"context"
	"crypto/sha1" //nolint:gosec
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/treeverse/metastore/pkg/metastore/git"
)

const (
	DefaultLogin  = "metastore"
	DefaultBranch = "master"

	objectTypeBlob = "blob"
	objectTypeTree = "tree"
	refsPrefix     = "refs/"
	headsPrefix    = "heads/"
)

type repository struct {
	blobs   map[string][]byte
	trees   map[string]map[string]string // path => blob sha
	commits map[string]*git.Commit
	tags    map[string]*git.Tag
	refs    map[string]string // name without refs/ => sha
}

func newRepository() *repository {
	return &repository{
		blobs:   make(map[string][]byte),
		trees:   make(map[string]map[string]string),
		commits: make(map[string]*git.Commit),
		tags:    make(map[string]*git.Tag),
		refs:    make(map[string]string),
	}
}

func (r *repository) objectType(sha string) string {
	switch {
	case r.commits[sha] != nil:
		return git.ObjectTypeCommit
	case r.tags[sha] != nil:
		return git.ObjectTypeTag
	case r.trees[sha] != nil:
		return objectTypeTree
	case r.blobs[sha] != nil:
		return objectTypeBlob
	default:
		return ""
	}
}

type Host struct {
	mu            sync.Mutex
	login         string
	defaultBranch string
	now           func() time.Time
	repos         map[git.Repo]*repository
}

type Option func(h *Host)

func WithLogin(login string) Option {
	return func(h *Host) {
		h.login = login
	}
}

func WithDefaultBranch(branch string) Option {
	return func(h *Host) {
		h.defaultBranch = branch
	}
}

// WithClock sets the source of commit and tag dates
func WithClock(now func() time.Time) Option {
	return func(h *Host) {
		h.now = now
	}
}

func New(opts ...Option) *Host {
	h := &Host{
		login:         DefaultLogin,
		defaultBranch: DefaultBranch,
		now:           time.Now,
		repos:         make(map[git.Repo]*repository),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func hashObject(kind string, content []byte) string {
	h := sha1.New() //nolint:gosec
	_, _ = fmt.Fprintf(h, "%s %d\x00", kind, len(content))
	_, _ = h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func (h *Host) sign(sig *git.Signature) *git.Signature {
	res := git.Signature{Name: h.login, Email: h.login + "@users.noreply.local"}
	if sig != nil {
		res.Name, res.Email, res.Date = sig.Name, sig.Email, sig.Date
	}
	if res.Date.IsZero() {
		res.Date = h.now()
	}
	return &res
}

func formatSignature(sig *git.Signature) string {
	return fmt.Sprintf("%s <%s> %d +0000", sig.Name, sig.Email, sig.Date.UnixNano())
}

func (h *Host) repo(r git.Repo) (*repository, error) {
	repo, ok := h.repos[r]
	if !ok {
		return nil, fmt.Errorf("repository %s: %w", r, git.ErrObjectNotFound)
	}
	return repo, nil
}

func (h *Host) AuthenticatedLogin(_ context.Context) (string, error) {
	return h.login, nil
}

func (h *Host) CreateRepository(_ context.Context, owner git.Owner, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := git.Repo{Owner: owner.Login, Name: name}
	if _, ok := h.repos[key]; ok {
		return fmt.Errorf("%s: %w", key, git.ErrRepositoryExists)
	}
	h.repos[key] = newRepository()
	return nil
}

func (h *Host) GetRepository(_ context.Context, r git.Repo) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.repo(r)
	return err
}

func (h *Host) DeleteRepository(_ context.Context, r git.Repo) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.repo(r); err != nil {
		return err
	}
	delete(h.repos, r)
	return nil
}

func (h *Host) CreateFile(_ context.Context, r git.Repo, path, message string, content []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	repo, err := h.repo(r)
	if err != nil {
		return err
	}
	branch := headsPrefix + h.defaultBranch
	files := map[string]string{}
	var parents []string
	if head, ok := repo.refs[branch]; ok {
		commit := repo.commits[head]
		for p, sha := range repo.trees[commit.TreeSHA] {
			files[p] = sha
		}
		parents = []string{head}
	}
	files[path] = repo.writeBlob(content)
	commit := repo.writeCommit(repo.writeTree(files), parents, h.sign(nil), message)
	repo.refs[branch] = commit.SHA
	return nil
}

func (r *repository) writeBlob(content []byte) string {
	sha := hashObject(objectTypeBlob, content)
	r.blobs[sha] = append([]byte(nil), content...)
	return sha
}

func (r *repository) writeTree(files map[string]string) string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "100644 %s %s\t%s\n", objectTypeBlob, files[p], p)
	}
	sha := hashObject(objectTypeTree, []byte(b.String()))
	r.trees[sha] = files
	return sha
}

func (r *repository) writeCommit(tree string, parents []string, author *git.Signature, message string) *git.Commit {
	var b strings.Builder
	fmt.Fprintf(&b, "tree %s\n", tree)
	for _, p := range parents {
		fmt.Fprintf(&b, "parent %s\n", p)
	}
	fmt.Fprintf(&b, "author %s\ncommitter %s\n\n%s", formatSignature(author), formatSignature(author), message)
	commit := &git.Commit{
		SHA:     hashObject(git.ObjectTypeCommit, []byte(b.String())),
		TreeSHA: tree,
		Parents: append([]string(nil), parents...),
		Author:  author,
		Message: message,
	}
	r.commits[commit.SHA] = commit
	return commit
}

func copyCommit(c *git.Commit) *git.Commit {
	res := *c
	res.Parents = append([]string(nil), c.Parents...)
	if c.Author != nil {
		author := *c.Author
		res.Author = &author
	}
	return &res
}

func copyTag(t *git.Tag) *git.Tag {
	res := *t
	if t.Tagger != nil {
		tagger := *t.Tagger
		res.Tagger = &tagger
	}
	return &res
}

func (h *Host) GetRef(_ context.Context, r git.Repo, ref string) (*git.Ref, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	repo, err := h.repo(r)
	if err != nil {
		return nil, err
	}
	name := strings.TrimPrefix(ref, refsPrefix)
	sha, ok := repo.refs[name]
	if !ok {
		return nil, fmt.Errorf("ref %s: %w", ref, git.ErrObjectNotFound)
	}
	return &git.Ref{Name: refsPrefix + name, SHA: sha, Type: repo.objectType(sha)}, nil
}

// validRefName is a subset of the git check-ref-format rules
func validRefName(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") ||
		strings.HasSuffix(name, ".") || strings.HasSuffix(name, ".lock") ||
		strings.Contains(name, "..") || strings.Contains(name, "//") || strings.Contains(name, "@{") {
		return false
	}
	for _, c := range name {
		if c <= ' ' || c == 0x7f || strings.ContainsRune("~^:?*[\\", c) {
			return false
		}
	}
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return false
		}
	}
	return true
}

func (h *Host) CreateRef(_ context.Context, r git.Repo, ref, sha string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	repo, err := h.repo(r)
	if err != nil {
		return err
	}
	name := strings.TrimPrefix(ref, refsPrefix)
	if !validRefName(name) {
		return fmt.Errorf("ref %q is not a valid ref name: %w", ref, git.ErrRefRejected)
	}
	if _, ok := repo.refs[name]; ok {
		return fmt.Errorf("ref %s: %w", ref, git.ErrRefExists)
	}
	if repo.objectType(sha) == "" {
		return fmt.Errorf("object %s: %w", sha, git.ErrRefRejected)
	}
	repo.refs[name] = sha
	return nil
}

// isAncestor reports whether ancestor is reachable from sha
func (r *repository) isAncestor(ancestor, sha string) bool {
	pending := []string{sha}
	seen := map[string]struct{}{}
	for len(pending) > 0 {
		current := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if current == ancestor {
			return true
		}
		if _, ok := seen[current]; ok {
			continue
		}
		seen[current] = struct{}{}
		if c := r.commits[current]; c != nil {
			pending = append(pending, c.Parents...)
		}
	}
	return false
}

func (h *Host) UpdateRef(_ context.Context, r git.Repo, ref, sha string, force bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	repo, err := h.repo(r)
	if err != nil {
		return err
	}
	name := strings.TrimPrefix(ref, refsPrefix)
	current, ok := repo.refs[name]
	if !ok {
		return fmt.Errorf("ref %s: %w", ref, git.ErrObjectNotFound)
	}
	if repo.objectType(sha) == "" {
		return fmt.Errorf("object %s: %w", sha, git.ErrRefRejected)
	}
	if !force && strings.HasPrefix(name, headsPrefix) && !repo.isAncestor(current, sha) {
		return fmt.Errorf("update %s to %s is not a fast forward: %w", ref, sha, git.ErrRefRejected)
	}
	repo.refs[name] = sha
	return nil
}

func (h *Host) DeleteRef(_ context.Context, r git.Repo, ref string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	repo, err := h.repo(r)
	if err != nil {
		return err
	}
	name := strings.TrimPrefix(ref, refsPrefix)
	if _, ok := repo.refs[name]; !ok {
		return fmt.Errorf("ref %s: %w", ref, git.ErrObjectNotFound)
	}
	delete(repo.refs, name)
	return nil
}

func (h *Host) ListMatchingRefs(_ context.Context, r git.Repo, prefix string) ([]*git.Ref, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	repo, err := h.repo(r)
	if err != nil {
		return nil, err
	}
	prefix = strings.TrimPrefix(prefix, refsPrefix)
	var refs []*git.Ref
	for name, sha := range repo.refs {
		if strings.HasPrefix(name, prefix) {
			refs = append(refs, &git.Ref{Name: refsPrefix + name, SHA: sha, Type: repo.objectType(sha)})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

func (h *Host) CreateBlob(_ context.Context, r git.Repo, content []byte) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	repo, err := h.repo(r)
	if err != nil {
		return "", err
	}
	return repo.writeBlob(content), nil
}

func (h *Host) CreateTree(_ context.Context, r git.Repo, baseTree string, entries []git.TreeEntry) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	repo, err := h.repo(r)
	if err != nil {
		return "", err
	}
	files := map[string]string{}
	if baseTree != "" {
		base, ok := repo.trees[baseTree]
		if !ok {
			return "", fmt.Errorf("tree %s: %w", baseTree, git.ErrObjectNotFound)
		}
		for p, sha := range base {
			files[p] = sha
		}
	}
	for _, e := range entries {
		if _, ok := repo.blobs[e.BlobSHA]; !ok {
			return "", fmt.Errorf("blob %s: %w", e.BlobSHA, git.ErrObjectNotFound)
		}
		files[e.Path] = e.BlobSHA
	}
	return repo.writeTree(files), nil
}

func (h *Host) GetCommit(_ context.Context, r git.Repo, sha string) (*git.Commit, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	repo, err := h.repo(r)
	if err != nil {
		return nil, err
	}
	c, ok := repo.commits[sha]
	if !ok {
		return nil, fmt.Errorf("commit %s: %w", sha, git.ErrObjectNotFound)
	}
	return copyCommit(c), nil
}

func (h *Host) CreateCommit(_ context.Context, r git.Repo, commit git.NewCommit) (*git.Commit, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	repo, err := h.repo(r)
	if err != nil {
		return nil, err
	}
	if _, ok := repo.trees[commit.TreeSHA]; !ok {
		return nil, fmt.Errorf("tree %s: %w", commit.TreeSHA, git.ErrObjectNotFound)
	}
	for _, p := range commit.Parents {
		if _, ok := repo.commits[p]; !ok {
			return nil, fmt.Errorf("parent %s: %w", p, git.ErrObjectNotFound)
		}
	}
	c := repo.writeCommit(commit.TreeSHA, commit.Parents, h.sign(commit.Author), commit.Message)
	return copyCommit(c), nil
}

func (h *Host) CreateTag(_ context.Context, r git.Repo, tag git.NewTag) (*git.Tag, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	repo, err := h.repo(r)
	if err != nil {
		return nil, err
	}
	if !validRefName("tags/" + tag.Name) {
		return nil, fmt.Errorf("tag name %q: %w", tag.Name, git.ErrTagRejected)
	}
	objectType := repo.objectType(tag.ObjectSHA)
	if objectType == "" {
		return nil, fmt.Errorf("object %s: %w", tag.ObjectSHA, git.ErrObjectNotFound)
	}
	tagger := h.sign(tag.Tagger)
	content := fmt.Sprintf("object %s\ntype %s\ntag %s\ntagger %s\n\n%s",
		tag.ObjectSHA, objectType, tag.Name, formatSignature(tagger), tag.Message)
	t := &git.Tag{
		SHA:       hashObject(git.ObjectTypeTag, []byte(content)),
		Name:      tag.Name,
		Message:   tag.Message,
		Tagger:    tagger,
		ObjectSHA: tag.ObjectSHA,
	}
	repo.tags[t.SHA] = t
	return copyTag(t), nil
}

func (h *Host) GetTag(_ context.Context, r git.Repo, sha string) (*git.Tag, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	repo, err := h.repo(r)
	if err != nil {
		return nil, err
	}
	t, ok := repo.tags[sha]
	if !ok {
		return nil, fmt.Errorf("tag %s: %w", sha, git.ErrObjectNotFound)
	}
	return copyTag(t), nil
}

// resolveCommit returns the commit ref names: a commit sha or a branch or tag reference
func (r *repository) resolveCommit(ref string) (*git.Commit, bool) {
	sha := ref
	if target, ok := r.refs[strings.TrimPrefix(ref, refsPrefix)]; ok {
		sha = target
	} else if target, ok := r.refs[headsPrefix+ref]; ok {
		sha = target
	}
	if t := r.tags[sha]; t != nil {
		sha = t.ObjectSHA
	}
	c, ok := r.commits[sha]
	return c, ok
}

func (h *Host) GetFileContents(_ context.Context, r git.Repo, path, ref string) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	repo, err := h.repo(r)
	if err != nil {
		return nil, err
	}
	commit, ok := repo.resolveCommit(ref)
	if !ok {
		return nil, fmt.Errorf("ref %s: %w", ref, git.ErrObjectNotFound)
	}
	blob, ok := repo.trees[commit.TreeSHA][path]
	if !ok {
		return nil, fmt.Errorf("%s@%s: %w", path, ref, git.ErrObjectNotFound)
	}
	return append([]byte(nil), repo.blobs[blob]...), nil
}

func (h *Host) ListCommits(_ context.Context, r git.Repo) ([]*git.Commit, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	repo, err := h.repo(r)
	if err != nil {
		return nil, err
	}
	head, ok := repo.refs[headsPrefix+h.defaultBranch]
	if !ok {
		return nil, nil
	}
	var commits []*git.Commit
	for c := repo.commits[head]; c != nil; {
		commits = append(commits, copyCommit(c))
		if len(c.Parents) == 0 {
			break
		}
		c = repo.commits[c.Parents[0]]
	}
	return commits, nil
}
