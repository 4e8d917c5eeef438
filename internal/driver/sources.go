package driver

import (
	"sync"

	"downlevel/internal/source"
)

// lockedSources lets parallel decoders register text in one FileSet, so
// every diagnostic of a run resolves against the same ids.
type lockedSources struct {
	mu sync.Mutex
	fs *source.FileSet
}

func (s *lockedSources) Add(path string, content []byte, flags source.FileFlags) source.FileID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fs.Add(path, content, flags)
}

func (s *lockedSources) Get(id source.FileID) *source.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fs.Get(id)
}
