package decisions

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/codesync/internal/tags"
	"github.com/starford/codesync/internal/testutil"
)

func testTag(root, rel string, line int, text string) tags.Tag {
	return tags.Tag{
		Kind:      tags.KindDecision,
		Text:      text,
		File:      filepath.Join(root, rel),
		Line:      line,
		Namespace: tags.NamespacePrimary,
	}
}

func TestExists_MissingLog(t *testing.T) {
	root, store := testutil.TestWorkspace(t)
	tag := testTag(root, "src/db.ts", 1, "Use PostgreSQL")
	if Exists(store, "DECISIONS.md", tag) {
		t.Error("Exists = true for missing log file")
	}
}

func TestExists_ContentMatch(t *testing.T) {
	root, store := testutil.TestWorkspace(t)
	testutil.WriteFile(t, root, "DECISIONS.md", "# Decisions\n\n### Use MySQL for database\n\n- **Type**: decision\n")

	tag := testTag(root, "test.ts", 1, "Use MySQL for database")
	if !Exists(store, "DECISIONS.md", tag) {
		t.Error("Exists = false for recorded content")
	}
}

func TestExists_SubstringIsCoarse(t *testing.T) {
	// The existence check is a documented substring match: "mysql" is
	// literally contained in "MySQL5" after lower-casing, so it reports
	// as existing even though the titles differ.
	root, store := testutil.TestWorkspace(t)
	testutil.WriteFile(t, root, "DECISIONS.md", "# Decisions\n\n### Use MySQL5 for legacy support\n")

	tag := testTag(root, "test.ts", 1, "mysql")
	if !Exists(store, "DECISIONS.md", tag) {
		t.Error("Exists = false, want true via substring containment")
	}
}

func TestExists_AbsentContentAndLocation(t *testing.T) {
	root, store := testutil.TestWorkspace(t)
	testutil.WriteFile(t, root, "DECISIONS.md", "# Decisions\n\n### Use Redis for caching\n\n- **Source**: `cache.ts:9`\n")

	tag := testTag(root, "test.ts", 1, "mongodb")
	if Exists(store, "DECISIONS.md", tag) {
		t.Error("Exists = true for content absent from log")
	}
}

func TestExists_SourceLocationMatch(t *testing.T) {
	root, store := testutil.TestWorkspace(t)
	testutil.WriteFile(t, root, "DECISIONS.md", "# Decisions\n\n### Something different\n\n- **Source**: `test.ts:5`\n")

	tag := testTag(root, "test.ts", 5, "completely new wording")
	if !Exists(store, "DECISIONS.md", tag) {
		t.Error("Exists = false, want true via source location")
	}
}

func TestAppend_CreatesLogWithHeader(t *testing.T) {
	root, store := testutil.TestWorkspace(t)
	tag := testTag(root, "src/db.ts", 42, "Use PostgreSQL")

	added, err := Append(store, "DECISIONS.md", tag)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !added {
		t.Fatal("added = false on first append")
	}

	data, err := store.Read("DECISIONS.md")
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	for _, want := range []string{
		"# DECISIONS.md",
		"## Decisions Log",
		"### Use PostgreSQL",
		"- **Type**: decision",
		"`" + filepath.Join("src", "db.ts") + ":42`",
		"`@codesync-decision`",
		"(via Watch Mode)",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log missing %q:\n%s", want, content)
		}
	}
}

func TestAppend_Idempotent(t *testing.T) {
	root, store := testutil.TestWorkspace(t)
	tag := testTag(root, "src/db.ts", 42, "Use PostgreSQL")

	if added, err := Append(store, "DECISIONS.md", tag); err != nil || !added {
		t.Fatalf("first append: added=%v err=%v", added, err)
	}
	if added, err := Append(store, "DECISIONS.md", tag); err != nil || added {
		t.Fatalf("second append: added=%v err=%v, want false nil", added, err)
	}

	data, _ := store.Read("DECISIONS.md")
	if got := strings.Count(string(data), "### Use PostgreSQL"); got != 1 {
		t.Errorf("entry count = %d, want 1", got)
	}
}

func TestAppend_PreservesExistingEntries(t *testing.T) {
	root, store := testutil.TestWorkspace(t)

	first := testTag(root, "a.go", 3, "Adopt errgroup for shutdown")
	second := testTag(root, "b.go", 7, "Keep logs as flat markdown")

	if _, err := Append(store, "DECISIONS.md", first); err != nil {
		t.Fatal(err)
	}
	if _, err := Append(store, "DECISIONS.md", second); err != nil {
		t.Fatal(err)
	}

	data, _ := store.Read("DECISIONS.md")
	content := string(data)
	if !strings.Contains(content, "### Adopt errgroup for shutdown") ||
		!strings.Contains(content, "### Keep logs as flat markdown") {
		t.Errorf("expected both entries in log:\n%s", content)
	}
	if got := strings.Count(content, "# DECISIONS.md"); got != 1 {
		t.Errorf("header count = %d, want 1", got)
	}
}
