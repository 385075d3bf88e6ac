// Package watch re-resolves a project whenever its descriptors, settings or
// sources change
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/cratekit/cratekit/internal/engine"
	"github.com/cratekit/cratekit/pkg/artifact"
	"github.com/cratekit/cratekit/pkg/config"
	"github.com/cratekit/cratekit/pkg/logger"
	"github.com/cratekit/cratekit/pkg/manifest"
	"github.com/cratekit/cratekit/pkg/subcommand"
	"github.com/cratekit/cratekit/pkg/utils"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for events to settle
const DefaultDebounce = 300 * time.Millisecond

// Resolver produces a fresh resolution of the project
type Resolver func(ctx context.Context) (*subcommand.Subcommand, error)

// Event reports the outcome of one resolution
type Event struct {
	Project   *subcommand.Subcommand
	Err       error
	Trigger   string // the changed path, empty for the initial resolution
	Timestamp time.Time
}

// Callback receives every resolution, successful or not. It runs on the
// watcher's resolve goroutine, so events are delivered in order.
type Callback func(Event)

// Watcher drives a Resolver from file system notifications
type Watcher struct {
	workDir  string
	resolve  Resolver
	callback Callback
	logger   logger.Logger
	debounce time.Duration

	fs      *fsnotify.Watcher
	watched map[string]bool
}

// New creates a watcher. workDir is always watched, so a project that fails
// to resolve at first is picked up once it is fixed.
func New(workDir string, resolve Resolver, callback Callback, log logger.Logger) *Watcher {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Watcher{
		workDir:  workDir,
		resolve:  resolve,
		callback: callback,
		logger:   log,
		debounce: DefaultDebounce,
		watched:  make(map[string]bool),
	}
}

// SetDebounce changes the settling delay. It must be called before Run.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run resolves once, then again after every relevant change, until ctx is
// cancelled
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fs = fsw
	defer fsw.Close()

	w.resolveAndNotify(ctx, "")

	triggers := make(chan string, 1)
	group, gctx := engine.NewSafeGroup(ctx, w.logger)

	group.Go("event-pump", func() error {
		return w.pump(gctx, triggers)
	})
	group.Go("resolver", func() error {
		return w.resolveLoop(gctx, triggers)
	})

	if err := group.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// pump forwards relevant notifications, coalescing them while the resolver
// is busy
func (w *Watcher) pump(ctx context.Context, triggers chan<- string) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !isRelevant(event) {
				continue
			}
			w.logger.Debug("File event", logger.WithField("event", event.String()))
			select {
			case triggers <- event.Name:
			default:
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", logger.WithField("error", err))
		}
	}
}

func (w *Watcher) resolveLoop(ctx context.Context, triggers <-chan string) error {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := ""

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case path := <-triggers:
			pending = path
			timer.Reset(w.debounce)

		case <-timer.C:
			w.resolveAndNotify(ctx, pending)
			pending = ""
		}
	}
}

func (w *Watcher) resolveAndNotify(ctx context.Context, trigger string) {
	if trigger != "" {
		w.logger.Info("Change detected, resolving", logger.WithField("path", trigger))
	}

	project, err := w.resolve(ctx)
	if err != nil {
		w.logger.Error("Resolution failed", logger.WithField("error", err))
	}

	w.sync(project)

	if w.callback != nil {
		w.callback(Event{
			Project:   project,
			Err:       err,
			Trigger:   trigger,
			Timestamp: time.Now(),
		})
	}
}

// sync adds watches for the directories the resolution depends on. Stale
// directories stay watched; fsnotify drops them itself once removed.
func (w *Watcher) sync(project *subcommand.Subcommand) {
	for _, dir := range Dirs(w.workDir, project) {
		if w.watched[dir] {
			continue
		}
		if err := w.fs.Add(dir); err != nil {
			w.logger.Debug("Cannot watch directory",
				logger.WithField("path", dir),
				logger.WithField("error", err))
			continue
		}
		w.watched[dir] = true
		w.logger.Debug("Watching directory", logger.WithField("path", dir))
	}
}

// Dirs lists the existing directories whose contents affect the resolution
// of project, plus workDir
func Dirs(workDir string, project *subcommand.Subcommand) []string {
	candidates := []string{workDir}

	if project != nil {
		root := filepath.Dir(project.Manifest())
		candidates = append(candidates,
			root,
			filepath.Join(root, filepath.Dir(artifact.MainBinPath)),
			filepath.Join(root, filepath.FromSlash(artifact.BinDir)),
			filepath.Join(root, artifact.ExampleDir),
			filepath.Join(root, config.DirName),
		)
		// Declared targets may live outside the conventional directories
		for _, a := range project.Artifacts().All() {
			candidates = append(candidates, filepath.Dir(a.SourcePath(root)))
		}
		if ws := project.WorkspaceManifest(); ws != "" {
			candidates = append(candidates, filepath.Dir(ws), filepath.Join(filepath.Dir(ws), config.DirName))
		}
		if cfg := project.Config(); cfg != nil {
			candidates = append(candidates, filepath.Dir(cfg.Path))
		}
	}

	seen := make(map[string]bool)
	var dirs []string
	for _, dir := range candidates {
		if dir == "" || seen[dir] || !utils.DirectoryExists(dir) {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

func isRelevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	switch {
	case base == manifest.FileName,
		base == config.FileName,
		base == config.LegacyFileName,
		filepath.Ext(base) == utils.SourceExtension:
		return true
	}
	// New or removed directories may hold `<name>/main.rs` sources
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
