// Package tags extracts inline @codesync-* / @vibesync-* annotations from
// source text.
package tags

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/starford/codesync/internal/checksum"
)

// Kind is the annotation category carried by a tag.
type Kind string

// The fixed set of tag kinds.
const (
	KindRule      Kind = "rule"
	KindInference Kind = "inference"
	KindDecision  Kind = "decision"
	KindTodo      Kind = "todo"
	KindContext   Kind = "context"
)

// Kinds lists every kind in scan order.
var Kinds = []Kind{KindRule, KindInference, KindDecision, KindTodo, KindContext}

// Namespace is the marker-token prefix a tag was written with. The legacy
// namespace is a fully interchangeable alias of the primary one, kept so
// workspaces annotated by earlier releases keep syncing.
type Namespace string

const (
	NamespacePrimary Namespace = "codesync"
	NamespaceLegacy  Namespace = "vibesync"
)

// Namespaces lists both accepted namespaces, primary first.
var Namespaces = []Namespace{NamespacePrimary, NamespaceLegacy}

// Tag is a single annotation discovered in source text. It is immutable
// once created.
type Tag struct {
	Kind      Kind
	Text      string // trimmed payload, never empty
	File      string // path the tag was found in
	Line      int    // 1-based
	Namespace Namespace
	DedupKey  string
}

// Token returns the marker token as written in source, e.g.
// "@codesync-decision".
func (t Tag) Token() string {
	return fmt.Sprintf("@%s-%s", t.Namespace, t.Kind)
}

// patterns holds one compiled pattern per namespace×kind, all built from a
// single template: marker token, optional colon-or-space separator, then an
// optionally quoted payload running to end of line.
var patterns = compilePatterns()

type tagPattern struct {
	kind Kind
	ns   Namespace
	re   *regexp.Regexp
}

func compilePatterns() []tagPattern {
	out := make([]tagPattern, 0, len(Kinds)*len(Namespaces))
	for _, kind := range Kinds {
		for _, ns := range Namespaces {
			expr := fmt.Sprintf(`(?i)@%s-%s\s*[:\s]?\s*["']?([^"'\n]+)["']?`, ns, kind)
			out = append(out, tagPattern{kind: kind, ns: ns, re: regexp.MustCompile(expr)})
		}
	}
	return out
}

// Extract scans content line by line and returns every tag found. The file
// argument is recorded on each tag and feeds the dedup key; content with no
// matches yields an empty result.
func Extract(content, file string) []Tag {
	var out []Tag
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lineNumber := i + 1
		for _, p := range patterns {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			text := strings.TrimSpace(m[1])
			if text == "" {
				continue
			}
			out = append(out, Tag{
				Kind:      p.kind,
				Text:      text,
				File:      file,
				Line:      lineNumber,
				Namespace: p.ns,
				DedupKey:  dedupKey(file, lineNumber, p.kind, text),
			})
		}
	}
	return out
}

// ExtractFile reads path and extracts its tags. Unreadable files yield an
// empty result, not an error; the caller decides whether that is worth a
// log line.
func ExtractFile(path string) []Tag {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return Extract(string(data), path)
}

// dedupKey builds the stable identifier used by the decision log to avoid
// recording the same tag twice: basename, line, kind, and a short content
// hash so two same-line same-kind tags with different text stay distinct.
func dedupKey(file string, line int, kind Kind, text string) string {
	return fmt.Sprintf("%s:%d:%s:%s", filepath.Base(file), line, kind, checksum.Short(text))
}

// supportedExtensions is the fixed allow-list of file types scanned for
// tags: the common scripting, compiled, and markup ecosystems plus markdown
// for tags embedded in prose.
var supportedExtensions = map[string]struct{}{
	".ts": {}, ".tsx": {}, ".js": {}, ".jsx": {},
	".py": {}, ".java": {}, ".kt": {}, ".go": {},
	".rs": {}, ".rb": {}, ".php": {}, ".swift": {},
	".c": {}, ".cpp": {}, ".h": {}, ".hpp": {},
	".cs": {}, ".vue": {}, ".svelte": {}, ".md": {},
}

// ShouldParse reports whether path has an extension in the supported set.
func ShouldParse(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := supportedExtensions[ext]
	return ok
}
