package server

import (
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/flowtomic/zoo/internal/registry"
)

const registryKey = "registry"

// Store holds the parsed registry. A missing or unreadable file yields the
// empty registry so the server keeps answering.
type Store struct {
	path   string
	cache  *cache.Cache
	logger *zap.Logger
	loads  atomic.Int64
}

// NewStore creates a Store reading path, caching the parse for ttl.
func NewStore(path string, ttl time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		path:   path,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// Get returns the current registry.
func (s *Store) Get() *registry.Registry {
	if v, ok := s.cache.Get(registryKey); ok {
		return v.(*registry.Registry)
	}

	s.loads.Add(1)
	reg, err := registry.Load(s.path)
	if err != nil {
		s.logger.Warn("serving empty registry", zap.String("file", s.path), zap.Error(err))
		reg = registry.Empty()
	}
	s.cache.SetDefault(registryKey, reg)
	return reg
}

// Invalidate drops the cached registry; the next Get re-reads the file.
func (s *Store) Invalidate() {
	s.cache.Delete(registryKey)
}

// Path returns the file the store reads.
func (s *Store) Path() string {
	return s.path
}

// Loads returns how many times the file has been read.
func (s *Store) Loads() int64 {
	return s.loads.Load()
}
