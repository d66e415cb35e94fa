package template

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/starford/codesync/internal/storage"
)

// UpgradeResult reports the outcome of upgrading one managed file.
type UpgradeResult struct {
	Path       string
	BackupPath string // empty when no backup was taken (new file or dry run)
	Merged     bool   // true when a section merge was applied instead of a full replace
	Err        error
}

// Backup copies path to a dated sibling (name.backup.YYYY-MM-DD, with a
// numeric suffix when that already exists) and returns the backup path.
func Backup(store storage.Provider, path string) (string, error) {
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	today := time.Now().Format("2006-01-02")

	backup := filepath.Join(dir, fmt.Sprintf("%s.backup.%s", name, today))
	for counter := 1; store.Exists(backup); counter++ {
		backup = filepath.Join(dir, fmt.Sprintf("%s.backup.%s.%d", name, today, counter))
	}

	if err := store.Copy(path, backup); err != nil {
		return "", fmt.Errorf("template: backup %s: %w", path, err)
	}
	return backup, nil
}

// Upgrade brings one managed file up to the current release. Existing files
// are backed up first; files whose current content carries section markers
// are merged so user edits outside the sections survive, anything else is
// replaced outright. With dryRun set nothing is written.
func Upgrade(store storage.Provider, st Status, vars map[string]string, dryRun bool) UpgradeResult {
	res := UpgradeResult{Path: st.Path}

	rendered, err := Render(st.Template, vars)
	if err != nil {
		res.Err = err
		return res
	}

	if dryRun {
		res.Merged = false
		if data, err := store.Read(st.Path); err == nil {
			res.Merged = SupportsMerge(string(data))
		}
		return res
	}

	existing, err := store.Read(st.Path)
	if err != nil {
		// Nothing on disk yet: write the rendered template as-is.
		if werr := store.Write(st.Path, []byte(rendered)); werr != nil {
			res.Err = fmt.Errorf("template: write %s: %w", st.Path, werr)
		}
		return res
	}

	backup, err := Backup(store, st.Path)
	if err != nil {
		res.Err = err
		return res
	}
	res.BackupPath = backup

	content := rendered
	if SupportsMerge(string(existing)) {
		content = Merge(string(existing), rendered)
		res.Merged = true
	}

	if err := store.Write(st.Path, []byte(content)); err != nil {
		res.Err = fmt.Errorf("template: write %s: %w", st.Path, err)
		return res
	}
	return res
}

// UpgradeAll upgrades every status in order and returns one result each.
func UpgradeAll(store storage.Provider, statuses []Status, vars map[string]string, dryRun bool) []UpgradeResult {
	out := make([]UpgradeResult, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, Upgrade(store, st, vars, dryRun))
	}
	return out
}
