package orchestrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/oarkflow/muuk/internal/modules"
)

// skipDir names directories Watch never descends into: generated build
// output and the fetched-dependency cache churn on every rebuild and
// would otherwise retrigger themselves.
var skipDirs = map[string]bool{
	"build": true, ".muuk": true, ".git": true, "deps": true,
}

// Watch re-runs Build whenever the project's manifest or any file under
// its source tree changes, implementing `muuk build --watch` (spec.md §9
// "supplemented feature": the original has no incremental watch mode of
// its own, but a Ninja-backed build system is a natural fit for one).
//
// Watch blocks until ctx is cancelled. Each triggered rebuild's error is
// reported to onError rather than stopping the watch loop, since one bad
// edit shouldn't require restarting `muuk build --watch`.
func (p *Project) Watch(ctx context.Context, scanner *modules.Scanner, onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addProjectDirs(watcher, p.Base.BasePath); err != nil {
		return err
	}

	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := false

	rebuild := func() {
		log.Info("rebuilding", "reason", "manifest or source changed")
		base, err := Load(p.Options)
		if err != nil {
			onError(err)
			return
		}
		p.Base = base.Base
		if err := p.Install(ctx); err != nil {
			onError(err)
			return
		}
		if err := p.Build(ctx, scanner); err != nil {
			onError(err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !pending {
				pending = true
				debounce.Reset(200 * time.Millisecond)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			onError(err)
		case <-debounce.C:
			pending = false
			rebuild()
		}
	}
}

// addProjectDirs walks root and registers every directory (fsnotify
// watches are non-recursive, so each one needs its own Add call), skipping
// generated/cache directories that would otherwise retrigger themselves.
func addProjectDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		name := filepath.Base(path)
		if strings.HasPrefix(name, ".") && path != root {
			return filepath.SkipDir
		}
		if skipDirs[name] {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
