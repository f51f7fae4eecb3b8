// Package version implements the ordering and derivation rules for Nushell
// version strings: dot-separated non-negative integers with an optional "v"
// prefix. Every function is total; malformed input degrades to the zero
// version instead of failing, so a bad version string can never halt the
// pipeline.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Fallback is returned when no usable version can be derived.
const Fallback = "0.90.0"

// tuple parses a version string into its integer components. Any component
// that fails to parse collapses the whole string to the zero version.
func tuple(v string) []int {
	parts := strings.Split(strings.TrimPrefix(v, "v"), ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return []int{0, 0, 0}
		}
		out[i] = n
	}
	return out
}

// Compare orders two version strings. It returns -1 when a is before b,
// 0 when they are equal, and 1 when a is after b. Tuples of unequal length
// are zero-padded, so "0.97" and "0.97.0" compare equal.
func Compare(a, b string) int {
	ta, tb := tuple(a), tuple(b)
	n := len(ta)
	if len(tb) > n {
		n = len(tb)
	}
	for i := 0; i < n; i++ {
		var va, vb int
		if i < len(ta) {
			va = ta[i]
		}
		if i < len(tb) {
			vb = tb[i]
		}
		switch {
		case va < vb:
			return -1
		case va > vb:
			return 1
		}
	}
	return 0
}

// IsAfter reports whether v is strictly newer than reference.
func IsAfter(v, reference string) bool {
	return Compare(v, reference) > 0
}

// IsSameOrAfter reports whether v is at least as new as reference.
func IsSameOrAfter(v, reference string) bool {
	return Compare(v, reference) >= 0
}

// Earliest returns the minimum of the given versions, keeping the first of
// any ties. An empty input yields the fallback version.
func Earliest(versions []string) string {
	if len(versions) == 0 {
		return Fallback
	}
	earliest := versions[0]
	for _, v := range versions[1:] {
		if Compare(v, earliest) < 0 {
			earliest = v
		}
	}
	return earliest
}

// DefaultVersion derives the assumed known-compatible version for scripts
// that carry no explicit marker: six minor versions behind current, clamped
// at minor zero. Unparseable input yields the fallback.
func DefaultVersion(current string) string {
	parts := strings.Split(strings.TrimPrefix(current, "v"), ".")
	if len(parts) < 2 {
		return Fallback
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Fallback
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Fallback
	}
	minor -= 6
	if minor < 0 {
		minor = 0
	}
	return fmt.Sprintf("%d.%d.0", major, minor)
}

// IsPatchRelease reports whether v is a patch release: at least three
// dot-separated components with a nonzero third component. Patch releases
// are assumed not to carry breaking changes.
func IsPatchRelease(v string) bool {
	parts := strings.Split(strings.TrimPrefix(v, "v"), ".")
	if len(parts) < 3 {
		return false
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return false
	}
	return n > 0
}
