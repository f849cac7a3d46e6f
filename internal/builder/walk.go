package builder

import (
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// defaultIgnoredDirs are skipped regardless of .gitignore contents:
// vendored trees, build output, VCS metadata, and docs. Benchmark
// artifacts live under the dot-prefixed .benchmark-artifacts directory and
// are skipped by the dot-prefix rule.
var defaultIgnoredDirs = map[string]bool{
	"docs":         true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"out":          true,
	".git":         true,
	".hg":          true,
	".svn":         true,
	"coverage":     true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
}

// walker enumerates parseable files under a root, honoring the root's
// .gitignore when present and always skipping defaultIgnoredDirs and
// dot-prefixed entries.
type walker struct {
	root   string
	ignore *gitignore.GitIgnore
}

func newWalker(root string) *walker {
	w := &walker{root: root}
	if gi, err := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		w.ignore = gi
	}
	return w
}

// Walk calls fn for every file under the root whose extension maps to a
// known Language.
func (w *walker) Walk(fn func(path string, lang Language) error) error {
	return filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			rel = path
		}
		name := d.Name()
		if d.IsDir() {
			if name != "." && (strings.HasPrefix(name, ".") || defaultIgnoredDirs[name]) {
				return filepath.SkipDir
			}
			if w.ignore != nil && w.ignore.MatchesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if w.ignore != nil && w.ignore.MatchesPath(rel) {
			return nil
		}
		lang, ok := LanguageForPath(path)
		if !ok {
			return nil
		}
		return fn(rel, lang)
	})
}
