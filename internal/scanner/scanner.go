// Package scanner discovers Nushell scripts and resolves each file's
// known-compatible version.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"nuverify/internal/version"
)

// Method records how a script's known-compatible version was determined.
type Method string

const (
	// MethodCommentHeader means an explicit in-file marker comment.
	MethodCommentHeader Method = "comment_header"
	// MethodDirectoryFile means a marker file in the directory hierarchy.
	MethodDirectoryFile Method = "directory_file"
	// MethodDefaultAssumption means the computed default; the version is
	// recalculated once the target version is known.
	MethodDefaultAssumption Method = "default_assumption"
)

// MarkerFileName is the directory-level marker, shared by every script under
// that directory. It is never rewritten by the verifier.
const MarkerFileName = ".compatible-nushell-version"

// headerScanLimit bounds how far into a file the marker comment is searched.
const headerScanLimit = 20

var shebangPattern = regexp.MustCompile(`^#!\s*.*nu(?:shell)?(?:\s|$)`)

// ScriptFile is one discovered script with its resolved version provenance.
type ScriptFile struct {
	Path              string
	CompatibleVersion string
	Method            Method
	HasShebang        bool
}

// Scanner walks configured directories for Nushell scripts.
type Scanner struct {
	directories []string
	logger      *zap.Logger
}

// New creates a scanner over the given directories. A leading "~/" in a
// directory is expanded to the user's home.
func New(directories []string, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	expanded := make([]string, 0, len(directories))
	for _, d := range directories {
		expanded = append(expanded, ExpandHome(d))
	}
	return &Scanner{directories: expanded, logger: logger}
}

// ExpandHome rewrites a leading "~" to the current user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// ScanAll walks every configured directory and returns the discovered
// scripts in lexical walk order. Missing directories are skipped.
func (s *Scanner) ScanAll() []ScriptFile {
	var scripts []ScriptFile
	for _, dir := range s.directories {
		if _, err := os.Stat(dir); err != nil {
			s.logger.Debug("skipping missing scan directory", zap.String("dir", dir))
			continue
		}
		scripts = append(scripts, s.scanDirectory(dir)...)
	}
	return scripts
}

func (s *Scanner) scanDirectory(dir string) []ScriptFile {
	var scripts []ScriptFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("scan error", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() || !s.isNushellFile(path) {
			return nil
		}
		if script, ok := s.analyzeScriptFile(path); ok {
			scripts = append(scripts, script)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("scan aborted", zap.String("dir", dir), zap.Error(err))
	}
	return scripts
}

// isNushellFile recognizes scripts by the .nu extension, or for extensionless
// files by a nu shebang on the first line.
func (s *Scanner) isNushellFile(path string) bool {
	ext := filepath.Ext(path)
	if ext == ".nu" {
		return true
	}
	if ext != "" {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 256)
	n, _ := f.Read(buf)
	firstLine := string(buf[:n])
	if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
		firstLine = firstLine[:idx]
	}
	return shebangPattern.MatchString(strings.TrimSpace(firstLine))
}

func (s *Scanner) analyzeScriptFile(path string) (ScriptFile, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("could not read script", zap.String("path", path), zap.Error(err))
		return ScriptFile{}, false
	}
	lines := strings.Split(string(data), "\n")

	hasShebang := len(lines) > 0 && shebangPattern.MatchString(strings.TrimSpace(lines[0]))
	ver, method := s.findCompatibleVersion(path, lines)

	return ScriptFile{
		Path:              path,
		CompatibleVersion: ver,
		Method:            method,
		HasShebang:        hasShebang,
	}, true
}

// findCompatibleVersion resolves the known-compatible version by priority:
// header comment, then directory marker file, then the default assumption.
func (s *Scanner) findCompatibleVersion(path string, lines []string) (string, Method) {
	limit := headerScanLimit
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		stripped := strings.TrimSpace(line)
		if stripped != "" && !strings.HasPrefix(stripped, "#") {
			break
		}
		if m := version.CommentPattern.FindStringSubmatch(line); m != nil {
			return m[1], MethodCommentHeader
		}
	}

	if v, ok := s.findDirectoryMarker(filepath.Dir(path)); ok {
		return v, MethodDirectoryFile
	}

	// Placeholder; recalculated against the actual target version after scan.
	return version.Fallback, MethodDefaultAssumption
}

// findDirectoryMarker searches for the marker file upward from dir to the
// nearest configured scan root.
func (s *Scanner) findDirectoryMarker(dir string) (string, bool) {
	for _, root := range s.directories {
		rel, err := filepath.Rel(root, dir)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		current := dir
		for {
			data, err := os.ReadFile(filepath.Join(current, MarkerFileName))
			if err == nil {
				if v := strings.TrimSpace(string(data)); v != "" {
					return v, true
				}
			}
			if current == root {
				break
			}
			parent := filepath.Dir(current)
			if parent == current {
				break
			}
			current = parent
		}
	}
	return "", false
}
