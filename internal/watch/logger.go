package watch

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/starford/codesync/internal/tags"
)

// Stats holds the cumulative counters of one watch session.
type Stats struct {
	StartTime       time.Time
	FilesWatched    int
	ChangesDetected int
	TagsSynced      int
	Errors          int
}

var (
	styleBanner  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleAdded   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleChanged = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleRemoved = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleErr     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// Logger renders the watch session's console output and accumulates its
// counters. Every discrete outcome produces exactly one console line.
// When file logging is enabled the same events go to a rotating log under
// the marker directory.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	file  io.WriteCloser // nil unless file logging is on
	root  string
	stats Stats
}

// NewLogger creates a session logger writing console lines to out.
// With logToFile set, events are also appended to .codesync/watch.log
// (rotated at 5 MB, three backups kept).
func NewLogger(root string, out io.Writer, logToFile bool) *Logger {
	l := &Logger{
		out:   out,
		root:  root,
		stats: Stats{StartTime: time.Now()},
	}
	if logToFile {
		l.file = &lumberjack.Logger{
			Filename:   filepath.Join(root, ".codesync", "watch.log"),
			MaxSize:    5,
			MaxBackups: 3,
		}
	}
	return l
}

func (l *Logger) console(line string) {
	fmt.Fprintln(l.out, line)
}

func (l *Logger) logFile(format string, args ...any) {
	if l.file == nil {
		return
	}
	ts := time.Now().Format("15:04:05")
	fmt.Fprintf(l.file, "[%s] "+format+"\n", append([]any{ts}, args...)...)
}

func (l *Logger) timestamp() string {
	return styleDim.Render("[" + time.Now().Format("15:04:05") + "]")
}

// Startup prints the session banner with watch root, patterns, and the
// exclude list.
func (l *Logger) Startup(patterns, excluded []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.console("")
	l.console(styleBanner.Render("codesync watch") + styleDim.Render("  (ctrl+c to stop)"))
	l.console(styleDim.Render("  root:     ") + l.root)
	for i, p := range patterns {
		label := "  patterns: "
		if i > 0 {
			label = "            "
		}
		l.console(styleDim.Render(label) + p)
	}
	l.console(styleDim.Render("  excluded: ") + fmt.Sprintf("%v", excluded))
	l.console(styleDim.Render(`  tip:      add // @codesync-decision "why" to any source file`))
	l.console("")

	l.logFile("session started root=%s", l.root)
}

// Waiting prints the post-crawl idle line.
func (l *Logger) Waiting() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console(fmt.Sprintf("%s watching %d files for changes...", l.timestamp(), l.stats.FilesWatched))
}

// Change records one filesystem event. kind is "add", "change", or
// "unlink".
func (l *Logger) Change(rel, kind string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stats.ChangesDetected++

	var label string
	switch kind {
	case "add":
		label = styleAdded.Render("new")
	case "unlink":
		label = styleRemoved.Render("deleted")
	default:
		label = styleChanged.Render("changed")
	}
	l.console(fmt.Sprintf("%s %s: %s", l.timestamp(), label, rel))
	l.logFile("%s %s", kind, rel)
}

// TagFound reports one extracted tag.
func (l *Logger) TagFound(tag tags.Tag, rel string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console(styleDim.Render(fmt.Sprintf("  └─ found %s: %q", tag.Token(), tag.Text)))
	l.logFile("tag_found %s:%d %s %q", rel, tag.Line, tag.Token(), tag.Text)
}

// TagSynced reports a successful append to the decision log at logRel.
func (l *Logger) TagSynced(tag tags.Tag, logRel string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stats.TagsSynced++
	l.console(styleAdded.Render(fmt.Sprintf("  └─ synced to %s", logRel)))
	l.logFile("synced %s (%s)", logRel, tag.Kind)
}

// TagExists reports that the tag was already recorded.
func (l *Logger) TagExists() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console(styleDim.Render("  └─ already recorded"))
}

// NoTags reports a processed file with nothing to sync.
func (l *Logger) NoTags() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console(styleDim.Render("  └─ no tags"))
}

// NoTagsWarning is the variant for modified (not newly added) files, a
// nudge that an edited file carries no annotations.
func (l *Logger) NoTagsWarning(rel string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console(styleDim.Render(fmt.Sprintf("  └─ changed but no tags in %s", rel)))
	l.logFile("no_tags %s", rel)
}

// NewDirectory reports a directory created while watching.
func (l *Logger) NewDirectory(rel string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console(fmt.Sprintf("%s %s: %s/", l.timestamp(), styleAdded.Render("new dir"), rel))
	l.logFile("new_dir %s", rel)
}

// Error records a non-fatal session error.
func (l *Logger) Error(msg string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stats.Errors++
	line := fmt.Sprintf("%s %s %s", l.timestamp(), styleErr.Render("error:"), msg)
	if err != nil {
		line += styleDim.Render(" (" + err.Error() + ")")
	}
	l.console(line)
	l.logFile("error %s: %v", msg, err)
}

// SetFilesWatched records the initial crawl's matched-file count.
func (l *Logger) SetFilesWatched(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stats.FilesWatched = n
}

// Stats returns a copy of the current counters.
func (l *Logger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Shutdown prints the session summary and closes the file log.
func (l *Logger) Shutdown() {
	l.mu.Lock()
	defer l.mu.Unlock()

	d := formatDuration(time.Since(l.stats.StartTime))

	l.console("")
	l.console(styleBanner.Render("session summary"))
	l.console(styleDim.Render("  duration:      ") + d)
	l.console(styleDim.Render("  files watched: ") + fmt.Sprint(l.stats.FilesWatched))
	l.console(styleDim.Render("  changes:       ") + fmt.Sprint(l.stats.ChangesDetected))
	l.console(styleDim.Render("  tags synced:   ") + styleAdded.Render(fmt.Sprint(l.stats.TagsSynced)))
	if l.stats.Errors > 0 {
		l.console(styleDim.Render("  errors:        ") + styleErr.Render(fmt.Sprint(l.stats.Errors)))
	}
	l.console("")

	l.logFile("session ended duration=%s changes=%d synced=%d errors=%d",
		d, l.stats.ChangesDetected, l.stats.TagsSynced, l.stats.Errors)
	if l.file != nil {
		_ = l.file.Close()
	}
}

func formatDuration(d time.Duration) string {
	s := int(d.Seconds())
	switch {
	case s >= 3600:
		return fmt.Sprintf("%dh %dm %ds", s/3600, (s%3600)/60, s%60)
	case s >= 60:
		return fmt.Sprintf("%dm %ds", s/60, s%60)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
