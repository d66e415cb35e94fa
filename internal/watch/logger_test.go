package watch

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/starford/codesync/internal/tags"
)

func TestLogger_Counters(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(t.TempDir(), &buf, false)

	l.SetFilesWatched(12)
	l.Change("src/db.ts", "change")
	l.Change("src/new.ts", "add")
	l.TagSynced(tags.Tag{Kind: tags.KindDecision}, ".codesync/DECISIONS.md")
	l.Error("sync failed", nil)

	st := l.Stats()
	if st.FilesWatched != 12 {
		t.Errorf("FilesWatched = %d", st.FilesWatched)
	}
	if st.ChangesDetected != 2 {
		t.Errorf("ChangesDetected = %d", st.ChangesDetected)
	}
	if st.TagsSynced != 1 {
		t.Errorf("TagsSynced = %d", st.TagsSynced)
	}
	if st.Errors != 1 {
		t.Errorf("Errors = %d", st.Errors)
	}

	out := buf.String()
	for _, want := range []string{"src/db.ts", "src/new.ts", ".codesync/DECISIONS.md", "sync failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLogger_ShutdownSummary(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(t.TempDir(), &buf, false)
	l.SetFilesWatched(3)
	l.Shutdown()

	out := buf.String()
	if !strings.Contains(out, "session summary") {
		t.Errorf("missing summary header:\n%s", out)
	}
	if !strings.Contains(out, "files watched") {
		t.Errorf("missing files line:\n%s", out)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{42 * time.Second, "42s"},
		{95 * time.Second, "1m 35s"},
		{2*time.Hour + 3*time.Minute + 4*time.Second, "2h 3m 4s"},
	}
	for _, c := range cases {
		if got := formatDuration(c.d); got != c.want {
			t.Errorf("formatDuration(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}
