package filesystem

import (
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

const ignoreFileName = ".pteroignore"

// ignoreSet wraps the compiled .pteroignore matcher for a sandbox.
type ignoreSet struct {
	matcher *gitignore.GitIgnore
}

func (s *Sandbox) loadIgnore() error {
	path := filepath.Join(s.root, ignoreFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.ignore = &ignoreSet{}
			return nil
		}
		return err
	}

	lines := strings.Split(string(data), "\n")
	s.ignore = &ignoreSet{matcher: gitignore.CompileIgnoreLines(lines...)}
	return nil
}

// IsIgnored reports whether rel (relative to the sandbox root) matches the
// server's .pteroignore rules (SPEC_FULL.md §4.2).
func (s *Sandbox) IsIgnored(rel string, isDir bool) bool {
	if s.ignore == nil || s.ignore.matcher == nil {
		return false
	}
	rel = filepath.ToSlash(strings.TrimPrefix(rel, string(filepath.Separator)))
	if isDir && !strings.HasSuffix(rel, "/") {
		rel += "/"
	}
	return s.ignore.matcher.MatchesPath(rel)
}
