package template

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/codesync/internal/storage"
	"github.com/starford/codesync/internal/version"
)

var versionValueRe = regexp.MustCompile(`<!--\s*codesync-version:\s*([\d.]+)\s*-->`)

// managedFiles maps the markdown files codesync manages inside a marker
// directory to their embedded template names, in scan order.
var managedFiles = []struct {
	File     string
	Template string
}{
	{"SETUP_GUIDE.md", "setup_guide"},
	{"ARCHITECTURE.md", "architecture"},
	{"DECISIONS.md", "decisions"},
}

// Status describes one managed file's version relative to the release.
type Status struct {
	Path           string // workspace-relative path of the managed file
	Template       string // embedded template name
	CurrentVersion string // empty when the file carries no version marker
	LatestVersion  string
	Outdated       bool
}

// ExtractVersion returns the version recorded in a managed file's marker
// comment, or false when no marker is present.
func ExtractVersion(content string) (string, bool) {
	m := versionValueRe.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// CompareVersions compares dotted numeric versions: -1 when a < b, 0 when
// equal, 1 when a > b. Missing components count as zero.
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
	}
	return 0
}

// CheckFile reports the version status of the managed file at path. A file
// without a version marker predates versioning and counts as outdated; an
// unreadable file is reported as current so the upgrade pass skips it.
func CheckFile(store storage.Provider, path, templateName string) Status {
	st := Status{Path: path, Template: templateName, LatestVersion: version.Current}

	data, err := store.Read(path)
	if err != nil {
		return st
	}
	if v, ok := ExtractVersion(string(data)); ok {
		st.CurrentVersion = v
		st.Outdated = CompareVersions(v, version.Current) < 0
	} else {
		st.Outdated = true
	}
	return st
}

// Scan checks every managed file present under markerDir and returns their
// statuses in scan order.
func Scan(store storage.Provider, markerDir string) []Status {
	var out []Status
	for _, m := range managedFiles {
		path := filepath.Join(markerDir, m.File)
		if !store.Exists(path) {
			continue
		}
		out = append(out, CheckFile(store, path, m.Template))
	}
	return out
}

// Outdated returns only the managed files under markerDir that need an
// upgrade.
func Outdated(store storage.Provider, markerDir string) []Status {
	var out []Status
	for _, st := range Scan(store, markerDir) {
		if st.Outdated {
			out = append(out, st)
		}
	}
	return out
}
