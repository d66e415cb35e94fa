package tags

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/codesync/internal/testutil"
)

func TestExtract_PrimaryNamespace(t *testing.T) {
	content := "// @codesync-decision \"Use React for frontend\"\nconst app = 'test';\n"
	got := Extract(content, "test.ts")
	if len(got) != 1 {
		t.Fatalf("len(tags) = %d, want 1", len(got))
	}
	if got[0].Kind != KindDecision {
		t.Errorf("kind = %q, want %q", got[0].Kind, KindDecision)
	}
	if got[0].Text != "Use React for frontend" {
		t.Errorf("text = %q, want %q", got[0].Text, "Use React for frontend")
	}
	if got[0].Namespace != NamespacePrimary {
		t.Errorf("namespace = %q, want %q", got[0].Namespace, NamespacePrimary)
	}
	if got[0].Line != 1 {
		t.Errorf("line = %d, want 1", got[0].Line)
	}
}

func TestExtract_LegacyNamespace(t *testing.T) {
	content := "// @vibesync-rule \"Always use strict mode\"\n"
	got := Extract(content, "test.ts")
	if len(got) != 1 {
		t.Fatalf("len(tags) = %d, want 1", len(got))
	}
	if got[0].Kind != KindRule {
		t.Errorf("kind = %q, want %q", got[0].Kind, KindRule)
	}
	if got[0].Namespace != NamespaceLegacy {
		t.Errorf("namespace = %q, want %q", got[0].Namespace, NamespaceLegacy)
	}
	if got[0].Token() != "@vibesync-rule" {
		t.Errorf("token = %q, want %q", got[0].Token(), "@vibesync-rule")
	}
}

func TestExtract_ColonSyntax(t *testing.T) {
	content := "// @codesync-decision: Use bcrypt for hashing\n"
	got := Extract(content, "auth.go")
	if len(got) != 1 {
		t.Fatalf("len(tags) = %d, want 1", len(got))
	}
	if got[0].Text != "Use bcrypt for hashing" {
		t.Errorf("text = %q, want %q", got[0].Text, "Use bcrypt for hashing")
	}
}

func TestExtract_MultipleTagsAcrossLines(t *testing.T) {
	content := strings.Join([]string{
		`// @codesync-decision "Decision 1"`,
		`// @codesync-rule "Rule 1"`,
		`// @codesync-todo "Todo 1"`,
		`const x = 1;`,
	}, "\n")
	got := Extract(content, "test.ts")
	if len(got) != 3 {
		t.Fatalf("len(tags) = %d, want 3", len(got))
	}
	kinds := map[Kind]bool{}
	for _, tag := range got {
		kinds[tag.Kind] = true
	}
	for _, want := range []Kind{KindDecision, KindRule, KindTodo} {
		if !kinds[want] {
			t.Errorf("missing kind %q in %v", want, got)
		}
	}
}

func TestExtract_NoMatches(t *testing.T) {
	if got := Extract("const x = 1;\n", "test.ts"); len(got) != 0 {
		t.Errorf("len(tags) = %d, want 0", len(got))
	}
}

func TestExtract_EmptyPayloadSkipped(t *testing.T) {
	// Whitespace-only payloads must not produce a tag.
	if got := Extract(`// @codesync-todo ""`+"\n", "test.ts"); len(got) != 0 {
		t.Errorf("len(tags) = %d, want 0 for empty payload", len(got))
	}
}

func TestExtractFile_Unreadable(t *testing.T) {
	if got := ExtractFile(filepath.Join(t.TempDir(), "missing.ts")); len(got) != 0 {
		t.Errorf("len(tags) = %d, want 0 for missing file", len(got))
	}
}

func TestExtractFile_ReadsTags(t *testing.T) {
	root, _ := testutil.TestWorkspace(t)
	path := testutil.WriteFile(t, root, "src/db.ts", `// @codesync-context "DB layer"`+"\n")
	got := ExtractFile(path)
	if len(got) != 1 {
		t.Fatalf("len(tags) = %d, want 1", len(got))
	}
	if got[0].File != path {
		t.Errorf("file = %q, want %q", got[0].File, path)
	}
}

func TestDedupKey_Stable(t *testing.T) {
	content := `// @codesync-decision "Use PostgreSQL"` + "\n"
	a := Extract(content, "src/db.ts")
	b := Extract(content, "src/db.ts")
	if a[0].DedupKey != b[0].DedupKey {
		t.Errorf("dedup key not stable: %q vs %q", a[0].DedupKey, b[0].DedupKey)
	}
	if !strings.HasPrefix(a[0].DedupKey, "db.ts:1:decision:") {
		t.Errorf("dedup key = %q, want db.ts:1:decision: prefix", a[0].DedupKey)
	}
}

func TestDedupKey_ChangesWithText(t *testing.T) {
	a := Extract(`// @codesync-decision "Use PostgreSQL"`+"\n", "db.ts")
	b := Extract(`// @codesync-decision "Use MySQL"`+"\n", "db.ts")
	if a[0].DedupKey == b[0].DedupKey {
		t.Errorf("dedup key should differ for different text: %q", a[0].DedupKey)
	}
}

func TestShouldParse(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"src/app.ts", true},
		{"main.go", true},
		{"README.md", true},
		{"lib/mod.RS", true}, // extension check is case-insensitive
		{"photo.png", false},
		{"archive.tar.gz", false},
		{"Makefile", false},
	}
	for _, c := range cases {
		if got := ShouldParse(c.path); got != c.want {
			t.Errorf("ShouldParse(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}
