// Package watch runs the file-watching session that feeds saved source
// files through tag extraction into the decision log.
package watch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/codesync/internal/apperr"
	"github.com/starford/codesync/internal/decisions"
	"github.com/starford/codesync/internal/scan"
	"github.com/starford/codesync/internal/storage"
	"github.com/starford/codesync/internal/tags"
)

// excludedDirs are path segments never watched: dependency and build
// output, VCS metadata, and codesync's own marker directories.
var excludedDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	"dist":         {},
	"build":        {},
	".next":        {},
	"coverage":     {},
	"__pycache__":  {},
	".cache":       {},
	"vendor":       {},
	"target":       {},
	".codesync":    {},
	".vibesync":    {},
}

// displayPatterns is the condensed pattern list shown in the banner.
var displayPatterns = []string{
	"**/*.{ts,tsx,js,jsx}",
	"**/*.{py,java,go,rs,rb,php,swift,kt}",
	"**/*.{c,cpp,h,hpp,cs,vue,svelte,md}",
}

// Options configures a watch session.
type Options struct {
	Debounce  time.Duration // per-path quiet period; 500ms when zero
	LogToFile bool
	Out       io.Writer // console output; os.Stdout when nil
}

type fireEvent struct {
	path string
	kind string // "add" or "change"
}

// Session is one watch run: the fsnotify watcher, the per-path debounce
// timer table, and the session counters. Sessions are single-use; state is
// held on the session so tests can run several independently.
type Session struct {
	store    storage.Provider
	logger   *slog.Logger
	ui       *Logger
	debounce time.Duration

	watcher *fsnotify.Watcher
	fired   chan fireEvent
	done    chan struct{}

	mu     sync.Mutex
	timers map[string]*time.Timer
	ready  bool
}

// NewSession validates the setup precondition and builds a session.
// A root without a marker directory returns apperr.ErrMissingSetup: watch
// mode must not start before `codesync init` has run.
func NewSession(store storage.Provider, opts Options, logger *slog.Logger) (*Session, error) {
	if !scan.HasSetup(store.Root()) {
		return nil, fmt.Errorf("watch: %w (run `codesync init` first)", apperr.ErrMissingSetup)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Session{
		store:    store,
		logger:   logger,
		ui:       NewLogger(store.Root(), out, opts.LogToFile),
		debounce: opts.Debounce,
		fired:    make(chan fireEvent, 64),
		done:     make(chan struct{}),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Stats returns the session counters.
func (s *Session) Stats() Stats { return s.ui.Stats() }

// Run watches the workspace until ctx is cancelled. The initial crawl
// registers every non-excluded directory and counts matching files without
// emitting events; only transitions after that are observable. On return
// all pending debounce timers are cancelled (edits still inside their quiet
// period are dropped) and the session summary is printed.
func (s *Session) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	s.watcher = w
	defer w.Close()

	s.ui.Startup(displayPatterns, excludedList())

	count, err := s.registerTree(s.store.Root())
	if err != nil {
		return fmt.Errorf("watch: initial crawl: %w", err)
	}
	s.ui.SetFilesWatched(count)
	s.ui.Waiting()

	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()

	s.logger.Info("watch: started",
		slog.String("root", s.store.Root()),
		slog.Int("files", count))

	defer func() {
		s.cancelTimers()
		close(s.done)
		s.ui.Shutdown()
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("watch: stopped")
			return nil

		case fe := <-s.fired:
			s.process(fe.path, fe.kind)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			s.handleEvent(ev)

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.ui.Error("watcher error", werr)
			s.logger.Warn("watch: error", slog.String("error", werr.Error()))
		}
	}
}

// handleEvent maps one fsnotify event to the session's event kinds.
// Deletions are reported immediately; creates and writes go through the
// per-path debounce so editor save bursts coalesce into one pipeline run.
func (s *Session) handleEvent(ev fsnotify.Event) {
	path := ev.Name

	if ev.Op&fsnotify.Create != 0 {
		if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
			s.handleNewDir(path)
			return
		}
		s.schedule(path, "add")
		return
	}
	if ev.Op&fsnotify.Write != 0 {
		s.schedule(path, "change")
		return
	}
	if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		s.ui.Change(s.store.Rel(path), "unlink")
	}
}

// handleNewDir registers a directory created at runtime and emits the
// informational notice. Hidden and excluded directories are ignored.
func (s *Session) handleNewDir(path string) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || isExcluded(name) {
		return
	}
	if _, err := s.registerTree(path); err != nil {
		s.logger.Warn("watch: add new dir failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return
	}
	s.mu.Lock()
	ready := s.ready
	s.mu.Unlock()
	if ready {
		s.ui.NewDirectory(s.store.Rel(path))
	}
}

// schedule (re)arms the debounce timer for path. A pending timer for the
// same path is cancelled first, so only the last event within the quiet
// period survives. The fired timer removes itself from the table before
// handing the path to the session loop, keeping pipeline runs serialized.
func (s *Session) schedule(path, kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[path]; ok {
		t.Stop()
	}
	s.timers[path] = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		delete(s.timers, path)
		s.mu.Unlock()

		select {
		case s.fired <- fireEvent{path: path, kind: kind}:
		case <-s.done:
		}
	})
}

// cancelTimers stops every pending debounce timer.
func (s *Session) cancelTimers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for path, t := range s.timers {
		t.Stop()
		delete(s.timers, path)
	}
}

// process runs the pipeline for one debounced add/change event: extension
// gate, tag extraction, nearest-log resolution, and append. Read failures
// surface as zero tags; append failures are counted and the session
// continues.
func (s *Session) process(path, kind string) {
	rel := s.store.Rel(path)
	s.ui.Change(rel, kind)

	if !tags.ShouldParse(path) {
		s.ui.NoTags()
		return
	}

	found := tags.ExtractFile(path)
	if len(found) == 0 {
		if kind == "change" {
			s.ui.NoTagsWarning(rel)
		} else {
			s.ui.NoTags()
		}
		return
	}

	for _, tag := range found {
		s.ui.TagFound(tag, rel)

		logRel := s.resolveLogPath(path)
		added, err := decisions.Append(s.store, logRel, tag)
		switch {
		case err != nil:
			s.ui.Error("sync failed", err)
			s.logger.Warn("watch: append failed",
				slog.String("log", logRel),
				slog.String("error", err.Error()))
		case added:
			s.ui.TagSynced(tag, logRel)
		default:
			s.ui.TagExists()
		}
	}
}

// resolveLogPath finds the decision log for a changed file: walk from the
// file's directory up to the workspace root, preferring a marker
// directory's log over a bare one at each level. With no log anywhere the
// fallback is a marker-directory log at the root when that directory
// exists, else a bare root-level log; either is created on first append.
func (s *Session) resolveLogPath(file string) string {
	root := s.store.Root()
	dir := filepath.Dir(file)

	for strings.HasPrefix(dir, root) {
		rel := s.store.Rel(dir)
		for _, m := range scan.MarkerDirs {
			p := filepath.Join(rel, m, decisions.LogFileName)
			if s.store.Exists(p) {
				return p
			}
		}
		p := filepath.Join(rel, decisions.LogFileName)
		if s.store.Exists(p) {
			return p
		}
		if dir == root {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	for _, m := range scan.MarkerDirs {
		if s.store.Exists(m) {
			return filepath.Join(m, decisions.LogFileName)
		}
	}
	return decisions.LogFileName
}

// registerTree adds dir and all non-excluded subdirectories to the watcher
// and returns the number of watchable source files seen. Unreadable
// subtrees are skipped, not fatal.
func (s *Session) registerTree(dir string) (int, error) {
	count := 0
	root := s.store.Root()
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			s.logger.Warn("watch: crawl skip",
				slog.String("path", p),
				slog.String("error", walkErr.Error()))
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if p != root && p != dir && (strings.HasPrefix(name, ".") || isExcluded(name)) {
				return filepath.SkipDir
			}
			if addErr := s.watcher.Add(p); addErr != nil {
				s.logger.Warn("watch: add dir failed",
					slog.String("path", p),
					slog.String("error", addErr.Error()))
			}
			return nil
		}
		if tags.ShouldParse(p) {
			count++
		}
		return nil
	})
	return count, err
}

func isExcluded(name string) bool {
	_, ok := excludedDirs[name]
	return ok
}

func excludedList() []string {
	out := make([]string, 0, len(excludedDirs))
	for name := range excludedDirs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
