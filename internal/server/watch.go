package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ydsf-surabaya/aidboard/internal/model"
)

// startWatcher watches every directory that holds a program extract.
func (s *Service) startWatcher() (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	dirs := make(map[string]struct{})
	for _, p := range model.Programs {
		dirs[filepath.Dir(filepath.Clean(s.cfg.Loader.Path(p)))] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	s.mu.Lock()
	s.watching = true
	s.mu.Unlock()
	return w, nil
}

func (s *Service) watch(ctx context.Context, w *fsnotify.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			s.handleFSEvent(ev)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("watch error", "err", err)
			s.setError(err)
		}
	}
}

// programForPath returns the program whose extract lives at path.
func (s *Service) programForPath(path string) (model.Program, bool) {
	path = filepath.Clean(path)
	for _, p := range model.Programs {
		if filepath.Clean(s.cfg.Loader.Path(p)) == path {
			return p, true
		}
	}
	return "", false
}

// handleFSEvent drops the cached dataset of a changed extract and publishes
// an invalidation event. Changes to unrelated files are ignored.
func (s *Service) handleFSEvent(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	p, ok := s.programForPath(ev.Name)
	if !ok {
		return
	}

	if s.cfg.Memory != nil {
		s.cfg.Memory.Remove(s.cfg.Loader.Path(p))
	}
	s.metrics.invalidations.Inc()

	now := time.Now()
	s.mu.Lock()
	s.invalidations++
	s.lastInvalidation = now
	s.mu.Unlock()

	s.log.Debug("extract changed", "program", p, "op", ev.Op.String())
	s.publishEvent(Event{
		Type:      "invalidated",
		Timestamp: now,
		Program:   p,
		Path:      ev.Name,
		Op:        ev.Op.String(),
	})
}
