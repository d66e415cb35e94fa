// Package decisions records extracted tags in a DECISIONS.md log file.
package decisions

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/codesync/internal/storage"
	"github.com/starford/codesync/internal/tags"
)

// LogFileName is the fixed name of the decision log.
const LogFileName = "DECISIONS.md"

// header is written once when a log file is created.
const header = `# DECISIONS.md

> Auto-synced by codesync watch mode

---

## Decisions Log

`

// Exists reports whether tag is already recorded in the log at logPath
// (relative to the workspace root). A missing or unreadable log reports
// false. The check is deliberately coarse: a lower-cased substring match on
// the tag text, then a literal "basename:line" match on the source
// location. Substring matching means a tag whose text is contained in a
// longer recorded title is reported as existing; callers accept that.
func Exists(store storage.Provider, logPath string, tag tags.Tag) bool {
	if !store.Exists(logPath) {
		return false
	}
	data, err := store.Read(logPath)
	if err != nil {
		return false
	}
	content := string(data)

	text := strings.ToLower(strings.TrimSpace(tag.Text))
	if strings.Contains(strings.ToLower(content), text) {
		return true
	}

	source := fmt.Sprintf("%s:%d", filepath.Base(tag.File), tag.Line)
	return strings.Contains(content, source)
}

// Append records tag in the log at logPath unless it already exists.
// The log file is created with its fixed header when absent. Returns true
// when a new entry was written. Append is not transactional; the watch
// session serializes calls per log path.
func Append(store storage.Provider, logPath string, tag tags.Tag) (bool, error) {
	if Exists(store, logPath, tag) {
		return false, nil
	}

	if !store.Exists(logPath) {
		if err := store.Write(logPath, []byte(header)); err != nil {
			return false, fmt.Errorf("decisions: create log: %w", err)
		}
	}

	entry := formatEntry(tag, store.Rel(tag.File))
	if err := store.Append(logPath, []byte(entry)); err != nil {
		return false, fmt.Errorf("decisions: append: %w", err)
	}
	return true, nil
}

// formatEntry renders one markdown block for a tag: heading, kind, source
// location, timestamp, and the originating token including its namespace.
func formatEntry(tag tags.Tag, relFile string) string {
	now := time.Now()
	return fmt.Sprintf(`
### %s

- **Type**: %s
- **Source**: `+"`%s:%d`"+`
- **Added**: %s (via Watch Mode)
- **Tag**: `+"`%s`"+`
`,
		tag.Text, tag.Kind, relFile, tag.Line,
		now.Format("2006-01-02 15:04"), tag.Token())
}
