// Package filesystem implements a metastore.Store over a plain file tree. Each package is a
// directory named after the hash of its id holding one JSON file per revision, an append-only
// revisions log and one file per tag.
//
// Writes are serialized by a process-local lock: a tree shared by several processes is not
// supported.
package filesystem

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/treeverse/metastore/pkg/logging"
	"github.com/treeverse/metastore/pkg/metastore"
)

const (
	// RevisionLength is the length of a revision id, a hex encoded random uuid
	RevisionLength = 32

	DefaultTagDescription = "Tagging revision"

	packagesDir     = "/p"
	revisionsLog    = "revisions.csv"
	tagsDir         = "tags"
	recordSeparator = ","
	recordFields    = 3

	dirPerm  = 0o755
	filePerm = 0o644
)

var tagNameRegexp = regexp.MustCompile(`^[\w\-+.]+$`)

type Store struct {
	fs  afero.Fs
	mu  sync.RWMutex
	now func() time.Time
}

// New returns a store over fs, over a fresh in-memory file system when fs is nil
func New(fs afero.Fs) *Store {
	if fs == nil {
		fs = afero.NewMemMapFs()
	}
	return &Store{
		fs:  fs,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func packagePath(packageID string) string {
	h := sha256.Sum256([]byte(packageID))
	return path.Join(packagesDir, hex.EncodeToString(h[:]))
}

func newRevisionID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

func validateTagName(name string) error {
	if err := metastore.ValidateTagName(name); err != nil {
		return err
	}
	if !tagNameRegexp.MatchString(name) {
		return fmt.Errorf("%q: %w", name, metastore.ErrInvalidTagName)
	}
	return nil
}

func encodeDescription(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func decodeDescription(s string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("description: %w", metastore.ErrStorageFault)
	}
	return string(b), nil
}

func fsError(op, p string, err error) error {
	return fmt.Errorf("%s %s: %s: %w", op, p, err, metastore.ErrStorageFault)
}

func (s *Store) log(ctx context.Context, packageID string) logging.Logger {
	return logging.FromContext(ctx).WithField(logging.PackageIDFieldKey, packageID)
}

// packageDir returns the directory of an existing package
func (s *Store) packageDir(packageID string) (string, error) {
	if packageID == "" {
		return "", fmt.Errorf("empty id: %w", metastore.ErrInvalidPackageID)
	}
	dir := packagePath(packageID)
	exists, err := afero.DirExists(s.fs, dir)
	if err != nil {
		return "", fsError("stat", dir, err)
	}
	if !exists {
		return "", fmt.Errorf("%s: %w", packageID, metastore.ErrPackageNotFound)
	}
	return dir, nil
}

// normalize encodes metadata the way it is stored and decodes it back, so returned payloads
// hold the same types as fetched ones
func normalize(metadata metastore.Package) ([]byte, metastore.Package, error) {
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, nil, fmt.Errorf("encode package metadata: %s: %w", err, metastore.ErrInvalidArgument)
	}
	var pkg metastore.Package
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, nil, fmt.Errorf("decode package metadata: %w", err)
	}
	return data, pkg, nil
}

// writeRevision stores data as a new revision of the package in dir and appends it to the
// revisions log. Caller holds the write lock.
func (s *Store) writeRevision(packageID, dir string, data []byte, author *metastore.Author, description string) (*metastore.PackageRevisionInfo, error) {
	revision := newRevisionID()
	p := path.Join(dir, revision)
	if err := afero.WriteFile(s.fs, p, data, filePerm); err != nil {
		return nil, fsError("write", p, err)
	}
	created := s.now()
	logPath := path.Join(dir, revisionsLog)
	f, err := s.fs.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return nil, fsError("open", logPath, err)
	}
	record := strings.Join([]string{revision, created.Format(time.RFC3339Nano), encodeDescription(description)}, recordSeparator)
	_, err = f.WriteString(record + "\n")
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fsError("append", logPath, err)
	}
	return &metastore.PackageRevisionInfo{
		PackageID:   packageID,
		Revision:    revision,
		Created:     created,
		Author:      author,
		Description: description,
	}, nil
}

func parseRevisionRecord(packageID, line string) (*metastore.PackageRevisionInfo, error) {
	fields := strings.SplitN(line, recordSeparator, recordFields)
	if len(fields) != recordFields {
		return nil, fmt.Errorf("revision record %q: %w", line, metastore.ErrStorageFault)
	}
	created, err := time.Parse(time.RFC3339Nano, fields[1])
	if err != nil {
		return nil, fmt.Errorf("revision record %q: %s: %w", line, err, metastore.ErrStorageFault)
	}
	description, err := decodeDescription(fields[2])
	if err != nil {
		return nil, err
	}
	return &metastore.PackageRevisionInfo{
		PackageID:   packageID,
		Revision:    fields[0],
		Created:     created,
		Description: description,
	}, nil
}

// revisions reads the revisions log, oldest first
func (s *Store) revisions(packageID, dir string) ([]*metastore.PackageRevisionInfo, error) {
	logPath := path.Join(dir, revisionsLog)
	data, err := afero.ReadFile(s.fs, logPath)
	if err != nil {
		return nil, fsError("read", logPath, err)
	}
	var res []*metastore.PackageRevisionInfo
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		rev, err := parseRevisionRecord(packageID, line)
		if err != nil {
			return nil, err
		}
		res = append(res, rev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fsError("scan", logPath, err)
	}
	return res, nil
}

// resolve returns the revision info revisionRef points to: the latest revision when empty, a
// logged revision when revision like and otherwise the revision of the named tag
func (s *Store) resolve(packageID, dir, revisionRef string) (*metastore.PackageRevisionInfo, error) {
	if revisionRef != "" && !metastore.IsRevisionLike(revisionRef, RevisionLength) {
		tag, err := s.tagFetch(packageID, dir, revisionRef)
		if err != nil {
			return nil, err
		}
		return tag.Revision, nil
	}
	revisions, err := s.revisions(packageID, dir)
	if err != nil {
		return nil, err
	}
	if revisionRef == "" {
		if len(revisions) == 0 {
			return nil, fmt.Errorf("%s: no revisions: %w", packageID, metastore.ErrRevisionNotFound)
		}
		return revisions[len(revisions)-1], nil
	}
	revisionRef = strings.ToLower(revisionRef)
	for _, rev := range revisions {
		if rev.Revision == revisionRef {
			return rev, nil
		}
	}
	return nil, fmt.Errorf("%s@%s: %w", packageID, revisionRef, metastore.ErrRevisionNotFound)
}

func (s *Store) fetch(packageID, dir, revisionRef string) (*metastore.PackageRevisionInfo, error) {
	rev, err := s.resolve(packageID, dir, revisionRef)
	if err != nil {
		return nil, err
	}
	p := path.Join(dir, rev.Revision)
	data, err := afero.ReadFile(s.fs, p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s@%s: %w", packageID, rev.Revision, metastore.ErrMetadataNotFound)
	}
	if err != nil {
		return nil, fsError("read", p, err)
	}
	var pkg metastore.Package
	if err := json.Unmarshal(data, &pkg); err != nil || pkg == nil {
		return nil, fmt.Errorf("%s@%s: %w", packageID, rev.Revision, metastore.ErrCorruptMetadata)
	}
	res := *rev
	res.Package = pkg
	return &res, nil
}

func (s *Store) Create(ctx context.Context, packageID string, metadata metastore.Package, params metastore.CreateParams) (*metastore.PackageRevisionInfo, error) {
	if packageID == "" {
		return nil, fmt.Errorf("empty id: %w", metastore.ErrInvalidPackageID)
	}
	data, pkg, err := normalize(metadata)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	dir := packagePath(packageID)
	exists, err := afero.DirExists(s.fs, dir)
	if err != nil {
		return nil, fsError("stat", dir, err)
	}
	if exists {
		return nil, fmt.Errorf("%s: %w", packageID, metastore.ErrPackageExists)
	}
	if err := s.fs.MkdirAll(dir, dirPerm); err != nil {
		return nil, fsError("mkdir", dir, err)
	}
	rev, err := s.writeRevision(packageID, dir, data, params.Author, params.Message)
	if err != nil {
		if rmErr := s.fs.RemoveAll(dir); rmErr != nil {
			s.log(ctx, packageID).WithError(rmErr).Warn("Failed to remove partially created package")
		}
		return nil, err
	}
	rev.Package = pkg
	s.log(ctx, packageID).WithField(logging.RevisionFieldKey, rev.Revision).Debug("Package created")
	return rev, nil
}

func (s *Store) Fetch(_ context.Context, packageID, revisionRef string) (*metastore.PackageRevisionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dir, err := s.packageDir(packageID)
	if err != nil {
		return nil, err
	}
	return s.fetch(packageID, dir, revisionRef)
}

func (s *Store) Update(ctx context.Context, packageID string, metadata metastore.Package, params metastore.UpdateParams) (*metastore.PackageRevisionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dir, err := s.packageDir(packageID)
	if err != nil {
		return nil, err
	}
	base, err := s.fetch(packageID, dir, params.BaseRevisionRef)
	if err != nil {
		return nil, err
	}
	if params.Partial {
		metadata = metastore.MergePackage(base.Package, metadata)
	}
	data, pkg, err := normalize(metadata)
	if err != nil {
		return nil, err
	}
	rev, err := s.writeRevision(packageID, dir, data, params.Author, params.Message)
	if err != nil {
		return nil, err
	}
	rev.Package = pkg
	s.log(ctx, packageID).
		WithFields(logging.Fields{logging.RevisionFieldKey: rev.Revision, "base": base.Revision}).
		Debug("Package updated")
	return rev, nil
}

func (s *Store) Delete(ctx context.Context, packageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dir, err := s.packageDir(packageID)
	if err != nil {
		return err
	}
	if err := s.fs.RemoveAll(dir); err != nil {
		return fsError("remove", dir, err)
	}
	s.log(ctx, packageID).Debug("Package deleted")
	return nil
}

func (s *Store) RevisionList(_ context.Context, packageID string) ([]*metastore.PackageRevisionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dir, err := s.packageDir(packageID)
	if err != nil {
		return nil, err
	}
	revisions, err := s.revisions(packageID, dir)
	if err != nil {
		return nil, err
	}
	// newest first
	for i, j := 0, len(revisions)-1; i < j; i, j = i+1, j-1 {
		revisions[i], revisions[j] = revisions[j], revisions[i]
	}
	return revisions, nil
}

func (s *Store) RevisionFetch(_ context.Context, packageID, revisionRef string) (*metastore.PackageRevisionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dir, err := s.packageDir(packageID)
	if err != nil {
		return nil, err
	}
	return s.resolve(packageID, dir, revisionRef)
}

var _ metastore.Store = (*Store)(nil)

// sortTags orders tags by creation time, ties by name
func sortTags(tags []*metastore.TagInfo) {
	sort.SliceStable(tags, func(i, j int) bool {
		if tags[i].Created.Equal(tags[j].Created) {
			return tags[i].Name < tags[j].Name
		}
		return tags[i].Created.Before(tags[j].Created)
	})
}
