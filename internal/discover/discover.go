// Package discover finds Python source files in a project tree.
package discover

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

var skipDirs = map[string]struct{}{
	"__pycache__":   {},
	"node_modules":  {},
	".git":          {},
	"venv":          {},
	".venv":         {},
	"env":           {},
	"build":         {},
	"dist":          {},
	".tox":          {},
	".mypy_cache":   {},
	".ruff_cache":   {},
	".pytest_cache": {},
}

// PythonFiles returns the .py files under root, sorted, as paths relative
// to root. Inside a git checkout, git ls-files is authoritative (it
// honors .gitignore and exclude files); otherwise the tree is walked with
// root's .gitignore applied, skipping hidden and tooling directories.
// Extra exclude entries are directory paths relative to root.
func PythonFiles(root string, exclude ...string) ([]string, error) {
	if files := gitLsFiles(root); files != nil {
		files = dropExcluded(files, exclude)
		sort.Strings(files)
		return files, nil
	}

	gi := loadGitignore(root)

	var results []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		name := d.Name()
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if isExcluded(rel, exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, ".py") || strings.HasPrefix(name, ".") {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		results = append(results, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(results)
	return results, nil
}

// gitLsFiles lists tracked and untracked-but-not-ignored .py files via
// git. Returns nil when root is not a git work tree or git is missing.
func gitLsFiles(root string) []string {
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil
	}

	var files []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasSuffix(line, ".py") {
			continue
		}
		files = append(files, filepath.FromSlash(line))
	}
	return files
}

// isExcluded reports whether rel is one of the excluded directories or
// sits beneath one.
func isExcluded(rel string, exclude []string) bool {
	rel = filepath.ToSlash(rel)
	for _, e := range exclude {
		e = strings.TrimSuffix(filepath.ToSlash(e), "/")
		if e == "" {
			continue
		}
		if rel == e || strings.HasPrefix(rel, e+"/") {
			return true
		}
	}
	return false
}

func dropExcluded(files []string, exclude []string) []string {
	if len(exclude) == 0 {
		return files
	}
	kept := files[:0]
	for _, f := range files {
		if !isExcluded(f, exclude) {
			kept = append(kept, f)
		}
	}
	return kept
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
