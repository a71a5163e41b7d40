package server

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watch invalidates the store and notifies the hub whenever the registry
// file is written, created, renamed or removed. It watches the parent
// directory so atomic rename-into-place writes are seen.
func (s *Server) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	file, err := filepath.Abs(s.store.Path())
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(file)); err != nil {
		return err
	}
	s.logger.Info("watching registry", zap.String("file", file))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != file || ev.Op == fsnotify.Chmod {
				continue
			}
			s.reload(ev.Op.String())
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// reload drops the cached registry and tells clients about the new one.
func (s *Server) reload(reason string) {
	s.store.Invalidate()
	reg := s.store.Get()
	s.metrics.reloads.Inc()
	s.logger.Info("registry reloaded",
		zap.String("reason", reason),
		zap.String("version", reg.Version),
		zap.Int("items", len(reg.Items)))
	s.hub.Broadcast(Message{
		Type:    MessageRegistryUpdated,
		Version: reg.Version,
		Items:   len(reg.Items),
	})
}
