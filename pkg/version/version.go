// Package version provides device document format version parsing and
// comparison.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Current is the document format version this library reads.
const Current = "0.4.0"

// ErrUnsupported is returned for documents written in an incompatible
// format version.
var ErrUnsupported = errors.New("unsupported document format version")

// FormatVersion represents a parsed "major.minor[.patch]" format version.
type FormatVersion struct {
	Major uint16
	Minor uint16
	Patch uint16
}

// Parse parses a "major.minor" or "major.minor.patch" version string.
func Parse(s string) (FormatVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return FormatVersion{}, fmt.Errorf("invalid version %q: expected major.minor[.patch]", s)
	}

	var nums [3]uint16
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 16)
		if err != nil || part == "" {
			return FormatVersion{}, fmt.Errorf("invalid version %q: bad %s component", s, componentNames[i])
		}
		nums[i] = uint16(n)
	}

	return FormatVersion{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

var componentNames = [3]string{"major", "minor", "patch"}

// MustParse is like Parse but panics on error.
func MustParse(s string) FormatVersion {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version as "major.minor.patch".
func (v FormatVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or +1 depending on whether v is older than, equal
// to or newer than other.
func (v FormatVersion) Compare(other FormatVersion) int {
	for _, d := range [3][2]uint16{
		{v.Major, other.Major},
		{v.Minor, other.Minor},
		{v.Patch, other.Patch},
	} {
		switch {
		case d[0] < d[1]:
			return -1
		case d[0] > d[1]:
			return 1
		}
	}
	return 0
}

// Compatible reports whether a reader of version v can read documents of
// version other. Versions share a major version; below 1.0 the minor
// version must match too. Patch versions never break compatibility.
func (v FormatVersion) Compatible(other FormatVersion) bool {
	if v.Major != other.Major {
		return false
	}
	if v.Major == 0 {
		return v.Minor == other.Minor
	}
	return other.Minor <= v.Minor
}

// Check verifies that a document declaring version s can be read.
func Check(s string) error {
	v, err := Parse(s)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	if !MustParse(Current).Compatible(v) {
		return fmt.Errorf("%w: %s (reader is %s)", ErrUnsupported, v, Current)
	}
	return nil
}
