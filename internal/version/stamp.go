package version

import (
	"regexp"
	"strings"
)

// CommentPattern matches the in-file compatibility marker comment. The
// captured group is the version string.
var CommentPattern = regexp.MustCompile(`^\s*#\s*nushell-compatible-with:\s*(\S+)`)

// UpdateComment rewrites the compatibility marker in a script's lines to
// newVersion, returning the updated lines. Lines carry no trailing newline.
//
// An existing marker in the comment header is replaced in place. Otherwise a
// new marker is inserted at the top of the file, after the shebang when one
// is present, with a blank line on either side so the header stays readable.
func UpdateComment(lines []string, newVersion string) []string {
	comment := "# nushell-compatible-with: " + newVersion

	updated := make([]string, len(lines))
	copy(updated, lines)

	existing := -1
	for i, line := range lines {
		if CommentPattern.MatchString(line) {
			existing = i
			break
		}
		stripped := strings.TrimSpace(line)
		if stripped != "" && !strings.HasPrefix(stripped, "#") {
			break
		}
	}

	if existing >= 0 {
		updated[existing] = comment
		return updated
	}

	insertAt := 0
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "#!") {
		if len(lines) > 1 && strings.TrimSpace(lines[1]) == "" {
			insertAt = 2
		} else {
			updated = insert(updated, 1, "")
			insertAt = 2
		}
	}

	updated = insert(updated, insertAt, comment)

	if insertAt+1 < len(updated) && strings.TrimSpace(updated[insertAt+1]) != "" {
		updated = insert(updated, insertAt+1, "")
	}

	return updated
}

func insert(lines []string, at int, line string) []string {
	if at >= len(lines) {
		return append(lines, line)
	}
	lines = append(lines, "")
	copy(lines[at+1:], lines[at:])
	lines[at] = line
	return lines
}
