package plan

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// FileWatcher polls modification times under a set of roots and calls
// onChange with each file that changed. Directories are walked for *.yaml.
type FileWatcher struct {
	Roots    []string
	Interval time.Duration

	onChange func(string)
	log      *zap.Logger
	seen     map[string]time.Time
}

// NewFileWatcher creates a watcher. A nil logger discards output.
func NewFileWatcher(roots []string, interval time.Duration, log *zap.Logger, onChange func(string)) *FileWatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileWatcher{
		Roots:    roots,
		Interval: interval,
		onChange: onChange,
		log:      log,
		seen:     make(map[string]time.Time),
	}
}

// Run polls until ctx is done. The first scan only records mtimes.
func (w *FileWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	w.scan(true)
	for {
		select {
		case <-ticker.C:
			w.scan(false)
		case <-ctx.Done():
			return
		}
	}
}

func (w *FileWatcher) scan(prime bool) {
	current := make(map[string]time.Time, len(w.seen))
	for _, root := range w.Roots {
		_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				// missing roots are fine; they may appear later
				return nil
			}
			if d.IsDir() || (path != root && filepath.Ext(path) != ".yaml") {
				return nil
			}
			fi, err := d.Info()
			if err != nil {
				return nil
			}
			current[path] = fi.ModTime()
			return nil
		})
	}

	for path, mt := range current {
		last, ok := w.seen[path]
		if prime || (ok && !mt.After(last)) {
			continue
		}
		w.log.Info("plan file changed", zap.String("path", path))
		if w.onChange != nil {
			w.onChange(path)
		}
	}
	for path := range w.seen {
		if _, ok := current[path]; !ok && !prime {
			w.log.Info("plan file removed", zap.String("path", path))
			if w.onChange != nil {
				w.onChange(path)
			}
		}
	}
	w.seen = current
}
