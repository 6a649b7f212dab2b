package model

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	version "github.com/hashicorp/go-version"
)

// Bucket is the coarse class of a category. Buckets sort in declaration
// order.
type Bucket int

const (
	BucketCore       Bucket = iota // core versions, keyed by name
	BucketARB                      // ARB extensions, keyed by number
	BucketNumbered                 // other numbered extensions, keyed by number
	BucketUnnumbered               // everything else, keyed by name
)

func (b Bucket) String() string {
	switch b {
	case BucketCore:
		return "core"
	case BucketARB:
		return "arb"
	case BucketNumbered:
		return "numbered"
	case BucketUnnumbered:
		return "unnumbered"
	}
	return fmt.Sprintf("Bucket(%d)", int(b))
}

// VersionOrder selects how core-version keys compare.
type VersionOrder int

const (
	// NumericOrder sorts "3.2" before "10.0".
	NumericOrder VersionOrder = iota
	// LexicalOrder compares core versions as plain strings.
	LexicalOrder
)

// ParseVersionOrder accepts "numeric" or "lexical"; the empty string means
// numeric.
func ParseVersionOrder(s string) (VersionOrder, error) {
	switch s {
	case "", "numeric":
		return NumericOrder, nil
	case "lexical":
		return LexicalOrder, nil
	}
	return NumericOrder, fmt.Errorf("%w: core version order %q", ErrInvalidAttribute, s)
}

var arbPrefixes = []string{"GL_ARB_", "GLX_ARB_", "WGL_ARB_"}

// CategoryKey is the sort key of a category.
type CategoryKey struct {
	Bucket Bucket
	Name   string
	Number int // -1 when the category has no number
}

// Classify places a category in its bucket. It depends only on its
// arguments.
func Classify(name string, number *int) CategoryKey {
	k := CategoryKey{Name: name, Number: -1}
	if number != nil {
		k.Number = *number
	}

	if v, err := strconv.ParseFloat(name, 64); err == nil && v > 0 {
		k.Bucket = BucketCore
		return k
	}
	for _, p := range arbPrefixes {
		if strings.HasPrefix(name, p) {
			k.Bucket = BucketARB
			return k
		}
	}
	if number != nil {
		k.Bucket = BucketNumbered
	} else {
		k.Bucket = BucketUnnumbered
	}
	return k
}

// Key returns the value the category is ordered by within its bucket: the
// name for core and unnumbered categories, the number otherwise.
func (k CategoryKey) Key() any {
	switch k.Bucket {
	case BucketARB, BucketNumbered:
		return k.Number
	default:
		return k.Name
	}
}

// Compare orders two keys: by bucket, then by key, then by name.
func (k CategoryKey) Compare(o CategoryKey, order VersionOrder) int {
	if c := cmp.Compare(k.Bucket, o.Bucket); c != 0 {
		return c
	}

	var c int
	switch k.Bucket {
	case BucketCore:
		c = compareVersions(k.Name, o.Name, order)
	case BucketARB, BucketNumbered:
		c = cmp.Compare(k.Number, o.Number)
	default:
		c = strings.Compare(k.Name, o.Name)
	}
	if c != 0 {
		return c
	}
	return strings.Compare(k.Name, o.Name)
}

// compareVersions orders core version names. Numeric order uses
// go-version when both names are plain release versions and their float
// value otherwise, so names like "1e1" still sort by magnitude.
func compareVersions(a, b string, order VersionOrder) int {
	if order == LexicalOrder {
		return strings.Compare(a, b)
	}
	va, vb := releaseVersion(a), releaseVersion(b)
	if va != nil && vb != nil {
		return va.Compare(vb)
	}
	fa, _ := strconv.ParseFloat(a, 64)
	fb, _ := strconv.ParseFloat(b, 64)
	return cmp.Compare(fa, fb)
}

// releaseVersion parses s as a version without prerelease or metadata
// parts; go-version reads "1e1" as 1.0.0-e1.
func releaseVersion(s string) *version.Version {
	v, err := version.NewVersion(s)
	if err != nil || v.Prerelease() != "" || v.Metadata() != "" {
		return nil
	}
	return v
}

var coreVersionRe = regexp.MustCompile(`^[1-9][0-9]*[.][0-9]+`)

// RealCategoryName turns a core version such as "1.5" into the name of its
// C guard, "GL_VERSION_1_5". Extension names are returned unchanged.
func RealCategoryName(name string) string {
	if coreVersionRe.MatchString(name) {
		return "GL_VERSION_" + strings.ReplaceAll(name, ".", "_")
	}
	return name
}
