// Package scan detects workspace layout: candidate repositories, monorepo
// tooling, and the overall workspace mode.
package scan

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// Mode classifies a workspace layout.
type Mode string

const (
	ModeSingle    Mode = "single"
	ModeMultiRepo Mode = "multi-repo"
	ModeMonorepo  Mode = "monorepo"
)

// MarkerDirs are the directory names whose presence marks a configured
// project: the current one and the legacy alias.
var MarkerDirs = []string{".codesync", ".vibesync"}

// HasSetup reports whether dir contains either marker directory.
func HasSetup(dir string) bool {
	for _, m := range MarkerDirs {
		if info, err := os.Stat(filepath.Join(dir, m)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// Repository describes one candidate project directory found under a root.
type Repository struct {
	Name     string
	Path     string // absolute
	RelPath  string // relative to the scanned root
	HasSetup bool
	HasGit   bool
	Module   string // Go module path when a go.mod is present
}

// skipDirs are never considered repository candidates.
var skipDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	"dist":         {},
	"build":        {},
	".next":        {},
	"coverage":     {},
}

// manifestFiles mark a directory as a project even without a VCS checkout.
var manifestFiles = []string{
	"package.json",
	"go.mod",
	"Cargo.toml",
	"pom.xml",
	"requirements.txt",
	"build.gradle",
	"pubspec.yaml",
}

// Repositories scans the immediate children of root and returns every
// directory that looks like a project: a manifest file, a .git directory,
// or a src/ layout.
func Repositories(root string) ([]Repository, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scan: read root: %w", err)
	}

	var out []Repository
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, skip := skipDirs[e.Name()]; skip {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if !isProjectDir(dir) {
			continue
		}
		out = append(out, Repository{
			Name:     e.Name(),
			Path:     dir,
			RelPath:  e.Name(),
			HasSetup: HasSetup(dir),
			HasGit:   exists(filepath.Join(dir, ".git")),
			Module:   goModulePath(dir),
		})
	}
	return out, nil
}

func isProjectDir(dir string) bool {
	for _, f := range manifestFiles {
		if exists(filepath.Join(dir, f)) {
			return true
		}
	}
	if exists(filepath.Join(dir, ".git")) {
		return true
	}
	return exists(filepath.Join(dir, "src"))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// goModulePath returns the module path declared in dir's go.mod, or empty.
func goModulePath(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}

// WorkspaceMode classifies root: monorepo when workspace tooling is
// configured, multi-repo when at least two child projects have their own
// git checkouts, single otherwise.
func WorkspaceMode(root string) (Mode, error) {
	if _, ok := DetectMonorepo(root); ok {
		return ModeMonorepo, nil
	}
	repos, err := Repositories(root)
	if err != nil {
		return ModeSingle, err
	}
	gitRepos := 0
	for _, r := range repos {
		if r.HasGit {
			gitRepos++
		}
	}
	if gitRepos >= 2 {
		return ModeMultiRepo, nil
	}
	return ModeSingle, nil
}
