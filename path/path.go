// Package path implements a single path utility: splitting a path into its
// first component and the remainder, treating both '/' and '\' as
// separators and collapsing runs of them.
package path

import "strings"

// SplitRoot splits `p` into its first path component and the remainder.
// Leading and repeated separators (either '/' or '\') are collapsed.
// `hasRemainder` is false when there is nothing left after the root
// component (including the case of a bare "/").
func SplitRoot(p string) (root string, remainder string, hasRemainder bool) {
	trimmed := strings.TrimLeft(p, `/\`)
	if trimmed == "" {
		return "", "", false
	}

	idx := strings.IndexAny(trimmed, `/\`)
	if idx < 0 {
		return trimmed, "", false
	}

	root = trimmed[:idx]
	rest := strings.TrimLeft(trimmed[idx:], `/\`)
	if rest == "" {
		return root, "", false
	}
	return root, rest, true
}
