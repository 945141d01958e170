// Package lfs renders the Git LFS files describing a package's local resources: pointer files
// standing in for the resource data, the attributes file routing them through the LFS filter
// and the configuration file pointing at the LFS server.
package lfs

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/treeverse/metastore/pkg/metastore"
)

const (
	PointerVersion    = "version https://git-lfs.github.com/spec/v1"
	GitAttributesPath = ".gitattributes"
	ConfigPath        = ".lfsconfig"
	DefaultRemote     = "origin"
	sha256HexLength   = 64
	attributesSuffix  = " filter=lfs diff=lfs merge=lfs -text\n"
	resourcesKey      = "resources"
	resourcePathKey   = "path"
	resourceSHA256Key = "sha256"
	resourceBytesKey  = "bytes"
	parentDirSegment  = ".."
)

// File is a file to be written next to the package metadata
type File struct {
	Path    string
	Content string
}

// IsPosixPathResource tells if a resource represents a local file, that is its path is a
// single string which is not an HTTP(S) URL
func IsPosixPathResource(resource map[string]interface{}) bool {
	p, ok := resource[resourcePathKey].(string)
	if !ok {
		return false
	}
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https:/") {
		return false
	}
	return true
}

// HasLFSAttributes tells if a resource carries the sha256 and bytes attributes required
// for an LFS stored resource
func HasLFSAttributes(resource map[string]interface{}) bool {
	if _, ok := resource[resourceSHA256Key].(string); !ok {
		return false
	}
	_, ok := resourceSize(resource[resourceBytesKey])
	return ok
}

func resourceSize(v interface{}) (int64, bool) {
	var size int64
	switch n := v.(type) {
	case int:
		size = int64(n)
	case int64:
		size = n
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, which does not fit in an int64
		if n != math.Trunc(n) || n < 0 || n >= math.MaxInt64 {
			return 0, false
		}
		size = int64(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		size = i
	default:
		return 0, false
	}
	return size, size >= 0
}

func isUnsafePath(p string) bool {
	if strings.HasPrefix(p, "/") {
		return true
	}
	for _, segment := range strings.Split(p, "/") {
		if segment == parentDirSegment {
			return true
		}
	}
	return false
}

// PointerFile returns the content of an LFS pointer file
func PointerFile(sha256 string, size int64) (string, error) {
	if !metastore.IsRevisionLike(sha256, sha256HexLength) {
		return "", fmt.Errorf("sha256 value %q is not a valid sha256 hex string: %w", sha256, metastore.ErrInvalidResource)
	}
	return fmt.Sprintf("%s\noid sha256:%s\nsize %d\n", PointerVersion, sha256, size), nil
}

// GitAttributesFile returns the content of a .gitattributes file tracking paths with LFS
func GitAttributesFile(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString(p)
		b.WriteString(attributesSuffix)
	}
	return b.String()
}

// ConfigFile returns the content of a .lfsconfig file pointing remote to the LFS server
func ConfigFile(serverURL, remote string) string {
	if remote == "" {
		remote = DefaultRemote
	}
	return fmt.Sprintf("[remote %q]\n\tlfsurl = %s", remote, serverURL)
}

// Resources returns the package resources eligible for LFS storage
func Resources(pkg metastore.Package) []map[string]interface{} {
	list, ok := pkg[resourcesKey].([]interface{})
	if !ok {
		return nil
	}
	var res []map[string]interface{}
	for _, item := range list {
		resource, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if IsPosixPathResource(resource) && HasLFSAttributes(resource) {
			res = append(res, resource)
		}
	}
	return res
}

// Files returns the LFS pointer files for the package resources followed by the attributes and
// configuration files. Returns nil when serverURL is empty or the package has no LFS eligible
// resource. Conflicting or unsafe resource paths fail with ErrInvalidResource.
func Files(pkg metastore.Package, serverURL string) ([]File, error) {
	if serverURL == "" {
		return nil, nil
	}
	resources := Resources(pkg)
	if len(resources) == 0 {
		return nil, nil
	}

	var (
		errs    *multierror.Error
		seen    = make(map[string]struct{}, len(resources))
		pointer = make(map[string]string, len(resources))
	)
	for _, r := range resources {
		p := r[resourcePathKey].(string)
		if _, ok := seen[p]; ok {
			errs = multierror.Append(errs, fmt.Errorf("conflicting resource path %s", p))
			continue
		}
		seen[p] = struct{}{}
		if isUnsafePath(p) {
			errs = multierror.Append(errs, fmt.Errorf("resource path is absolute or contains parent dir references: %s", p))
			continue
		}
		size, _ := resourceSize(r[resourceBytesKey])
		content, err := PointerFile(r[resourceSHA256Key].(string), size)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("resource %s: %s", p, err.Error()))
			continue
		}
		pointer[p] = content
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("%w: %s", metastore.ErrInvalidResource, err)
	}

	paths := make([]string, 0, len(pointer))
	for p := range pointer {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	files := make([]File, 0, len(paths)+2)
	for _, p := range paths {
		files = append(files, File{Path: p, Content: pointer[p]})
	}
	files = append(files,
		File{Path: GitAttributesPath, Content: GitAttributesFile(paths)},
		File{Path: ConfigPath, Content: ConfigFile(serverURL, DefaultRemote)},
	)
	return files, nil
}
