package metastore_test

import (
	"errors"
	"testing"

	"github.com/treeverse/metastore/pkg/metastore"
)

func TestIsRevisionLike(t *testing.T) {
	cases := []struct {
		name   string
		ref    string
		length int
		want   bool
	}{
		{"sha1", "3f786850e387550fdab836ed7e6dc881de23001b", 40, true},
		{"upper", "3F786850E387550FDAB836ED7E6DC881DE23001B", 40, true},
		{"short", "3f786850", 40, false},
		{"uuid_hex", "9a1f4c2b7d3e4f5a8b6c0d1e2f3a4b5c", 32, true},
		{"uuid_hex_as_sha1", "9a1f4c2b7d3e4f5a8b6c0d1e2f3a4b5c", 40, false},
		{"tag", "v1.0", 40, false},
		{"non_hex", "zzzz6850e387550fdab836ed7e6dc881de23001b", 40, false},
		{"empty", "", 40, false},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := metastore.IsRevisionLike(tt.ref, tt.length); got != tt.want {
				t.Fatalf("IsRevisionLike(%q, %d)=%t, expected %t", tt.ref, tt.length, got, tt.want)
			}
		})
	}
}

func TestValidateTagName(t *testing.T) {
	valid := []string{"v1", "v1.0.0", "release-2021_01", "latest+1"}
	for _, name := range valid {
		if err := metastore.ValidateTagName(name); err != nil {
			t.Errorf("ValidateTagName(%q) unexpected error: %s", name, err)
		}
	}
	invalid := []string{"", "with space", "with\n", "tab\there", "bell\a"}
	for _, name := range invalid {
		err := metastore.ValidateTagName(name)
		if !errors.Is(err, metastore.ErrInvalidArgument) {
			t.Errorf("ValidateTagName(%q) err=%v, expected invalid argument", name, err)
		}
	}
}
