package metastore

import (
	"time"
)

// Package is a JSON metadata document describing a dataset
type Package map[string]interface{}

// Author holds the provenance of a revision or a tag. Both fields are optional.
type Author struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// IsEmpty reports whether the author carries no name nor email
func (a *Author) IsEmpty() bool {
	return a == nil || (a.Name == "" && a.Email == "")
}

func (a *Author) String() string {
	if a == nil {
		return ""
	}
	if a.Email == "" {
		return a.Name
	}
	if a.Name == "" {
		return "<" + a.Email + ">"
	}
	return a.Name + " <" + a.Email + ">"
}

// PackageRevisionInfo describes a single immutable snapshot of a package.
// Package is nil when only the revision metadata was requested.
type PackageRevisionInfo struct {
	PackageID   string    `json:"package_id" yaml:"package_id"`
	Revision    string    `json:"revision" yaml:"revision"`
	Created     time.Time `json:"created" yaml:"created"`
	Author      *Author   `json:"author,omitempty" yaml:"author,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Package     Package   `json:"package,omitempty" yaml:"package,omitempty"`
}

// Equal compares revisions by their identity: package id and revision
func (r *PackageRevisionInfo) Equal(other *PackageRevisionInfo) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.PackageID == other.PackageID && r.Revision == other.Revision
}

// WithoutPackage returns a copy of the revision info with the payload dropped
func (r *PackageRevisionInfo) WithoutPackage() *PackageRevisionInfo {
	c := *r
	c.Package = nil
	return &c
}

// TagInfo describes a named, mutable pointer to a revision
type TagInfo struct {
	PackageID   string               `json:"package_id" yaml:"package_id"`
	Name        string               `json:"name" yaml:"name"`
	Created     time.Time            `json:"created" yaml:"created"`
	RevisionRef string               `json:"revision_ref" yaml:"revision_ref"`
	Author      *Author              `json:"author,omitempty" yaml:"author,omitempty"`
	Revision    *PackageRevisionInfo `json:"revision,omitempty" yaml:"revision,omitempty"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
}

// Equal compares tags by their identity: package id and name
func (t *TagInfo) Equal(other *TagInfo) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.PackageID == other.PackageID && t.Name == other.Name
}

// MergePackage returns a new package holding base's keys overwritten by delta's keys.
// The merge is shallow: nested values in delta replace the base value as a whole.
func MergePackage(base, delta Package) Package {
	merged := make(Package, len(base)+len(delta))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range delta {
		merged[k] = v
	}
	return merged
}
