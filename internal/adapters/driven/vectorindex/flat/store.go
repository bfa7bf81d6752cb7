package flat

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/core/ports/driven"
	"github.com/custodia-labs/kassist/internal/logger"
)

// File names inside the data directory.
const (
	IndexFileName = "vectors.idx"
	IDMapFileName = "idmap.bin"
	LockFileName  = "index.lock"
)

// lockRetryDelay is how often a held file lock is retried.
const lockRetryDelay = 50 * time.Millisecond

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// Store persists a flat index and its identifier map on disk.
type Store struct {
	mu        sync.Mutex
	fileLock  *flock.Flock
	indexPath string
	idMapPath string
}

// NewStore creates a store rooted at dataDir, creating the directory if needed.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{
		fileLock:  flock.New(filepath.Join(dataDir, LockFileName)),
		indexPath: filepath.Join(dataDir, IndexFileName),
		idMapPath: filepath.Join(dataDir, IDMapFileName),
	}, nil
}

// Lock acquires the ingestion lock. Goroutines of this Store queue on a
// mutex; other Stores and processes on the same directory queue on an
// exclusive lock of index.lock.
func (s *Store) Lock(ctx context.Context) error {
	s.mu.Lock()
	locked, err := s.fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		s.mu.Unlock()
		if err == nil {
			err = ctx.Err()
		}
		return fmt.Errorf("acquire index lock %s: %w", s.fileLock.Path(), err)
	}
	return nil
}

// Unlock releases the ingestion lock.
func (s *Store) Unlock() {
	if err := s.fileLock.Unlock(); err != nil {
		logger.Warn("release index lock %s: %v", s.fileLock.Path(), err)
	}
	s.mu.Unlock()
}

// IndexPath returns the path of the index file.
func (s *Store) IndexPath() string { return s.indexPath }

// IDMapPath returns the path of the identifier map file.
func (s *Store) IDMapPath() string { return s.idMapPath }

// Stat reads the index header. Returns nil, nil when no index is persisted.
func (s *Store) Stat(_ context.Context) (*domain.IndexInfo, error) {
	f, err := os.Open(s.indexPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	defer f.Close()

	head := make([]byte, headerFixedSize)
	if _, err := io.ReadFull(f, head); err != nil {
		return nil, fmt.Errorf("read index header: %w", err)
	}
	modelLen := int(binary.LittleEndian.Uint32(head[headerFixedSize-4:]))
	if modelLen > maxModelNameLen {
		return nil, errors.New("flat: index header model name too long")
	}
	model := make([]byte, modelLen)
	if _, err := io.ReadFull(f, model); err != nil {
		return nil, fmt.Errorf("read index header: %w", err)
	}

	info, _, err := decodeHeader(append(head, model...))
	if err != nil {
		return nil, err
	}
	return info, nil
}

// NewIndex returns an empty index.
func (s *Store) NewIndex(dimension int, model string) driven.VectorIndex {
	return New(dimension, model)
}

// Load returns the persisted index if it exists and matches dimension.
// Any other outcome yields an empty index.
func (s *Store) Load(_ context.Context, dimension int, model string) driven.VectorIndex {
	data, err := os.ReadFile(s.indexPath)
	if errors.Is(err, fs.ErrNotExist) {
		return New(dimension, model)
	}
	if err != nil {
		logger.Warn("vector index unreadable, starting empty: %v", err)
		return New(dimension, model)
	}

	idx := &Index{}
	if err := idx.UnmarshalBinary(data); err != nil {
		logger.Warn("vector index corrupt, starting empty: %v", err)
		return New(dimension, model)
	}
	if idx.Dimension() != dimension {
		logger.Warn("vector index has dimension %d, expected %d; starting empty", idx.Dimension(), dimension)
		return New(dimension, model)
	}
	logger.Debug("loaded vector index: %d vectors, dim=%d, gen=%d", idx.Len(), idx.Dimension(), idx.Generation())
	return idx
}

// Save atomically replaces the persisted index.
func (s *Store) Save(_ context.Context, index driven.VectorIndex) error {
	idx, ok := index.(*Index)
	if !ok {
		return fmt.Errorf("flat: cannot save %T", index)
	}
	data, err := idx.MarshalBinary()
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.indexPath, data); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	return nil
}

// LoadIDMap returns the persisted identifier map, or an empty map if none exists.
func (s *Store) LoadIDMap(_ context.Context) (*domain.IDMap, error) {
	data, err := os.ReadFile(s.idMapPath)
	if errors.Is(err, fs.ErrNotExist) {
		return &domain.IDMap{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read id map: %w", err)
	}
	m, err := decodeIDMap(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexInconsistency, err)
	}
	return m, nil
}

// SaveIDMap atomically replaces the persisted identifier map.
func (s *Store) SaveIDMap(_ context.Context, m *domain.IDMap) error {
	if err := writeFileAtomic(s.idMapPath, encodeIDMap(m)); err != nil {
		return fmt.Errorf("save id map: %w", err)
	}
	return nil
}

// writeFileAtomic writes data to a temp file in the target directory,
// syncs it and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
