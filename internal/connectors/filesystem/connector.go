// Package filesystem reads documents from local files and watches
// directories for new ones.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/logger"
)

// DefaultMaxFileSize caps the size of a single document.
const DefaultMaxFileSize int64 = 64 << 20

// ErrFileTooLarge is returned for files above the size limit.
var ErrFileTooLarge = errors.New("file too large")

// kindsByExt maps lower-case file extensions to source kinds.
var kindsByExt = map[string]domain.SourceKind{
	".pdf":      domain.SourceKindPDF,
	".md":       domain.SourceKindMarkdown,
	".markdown": domain.SourceKindMarkdown,
	".txt":      domain.SourceKindPlaintext,
	".text":     domain.SourceKindPlaintext,
}

// KindFromPath returns the source kind for a file name.
// Returns domain.ErrUnsupportedType for unknown extensions.
func KindFromPath(path string) (domain.SourceKind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if kind, ok := kindsByExt[ext]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedType, filepath.Base(path))
}

// ReadFile reads a single file as a raw document.
func ReadFile(path string) (*domain.RawDocument, error) {
	return readFile(path, DefaultMaxFileSize)
}

func readFile(path string, maxSize int64) (*domain.RawDocument, error) {
	kind, err := KindFromPath(path)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, abs)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, fmt.Errorf("%w: %s (%d bytes)", ErrFileTooLarge, abs, info.Size())
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}

	return &domain.RawDocument{
		URI:     abs,
		Kind:    kind,
		Content: content,
		Metadata: map[string]any{
			"size":     info.Size(),
			"modified": info.ModTime(),
		},
	}, nil
}

// ChangeType describes what happened to a watched file.
type ChangeType string

// Change types reported by Watch.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// Change is a file event in a watched directory.
type Change struct {
	Type ChangeType
	Path string
}

// Connector reads supported documents below a root directory.
type Connector struct {
	rootPath string
	maxSize  int64

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// New creates a connector rooted at rootPath.
func New(rootPath string) *Connector {
	return &Connector{rootPath: rootPath, maxSize: DefaultMaxFileSize}
}

// Root returns the directory the connector reads from.
func (c *Connector) Root() string {
	return c.rootPath
}

// Validate checks that the root exists and is a directory.
func (c *Connector) Validate() error {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, c.rootPath)
	}
	return nil
}

// Scan returns every supported, non-hidden file below the root, sorted.
func (c *Connector) Scan(ctx context.Context) ([]string, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var paths []string
	err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("scan %s: %v", path, err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != c.rootPath && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, err := KindFromPath(path); err == nil {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// Read reads one file under the connector's size limit.
func (c *Connector) Read(path string) (*domain.RawDocument, error) {
	return readFile(path, c.maxSize)
}

// Watch reports changes to supported files below the root until ctx is done.
func (c *Connector) Watch(ctx context.Context) (<-chan Change, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := c.addDirs(watcher, c.rootPath); err != nil {
		watcher.Close()
		return nil, err
	}

	c.mu.Lock()
	c.watcher = watcher
	c.mu.Unlock()

	changes := make(chan Change, 64)
	go func() {
		defer close(changes)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Create) && isDir(event.Name) && !isHidden(filepath.Base(event.Name)) {
					if err := c.addDirs(watcher, event.Name); err != nil {
						logger.Warn("watch %s: %v", event.Name, err)
					}
					continue
				}
				change := c.handleFsEvent(event)
				if change == nil {
					continue
				}
				select {
				case changes <- *change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watcher error: %v", err)
			}
		}
	}()

	return changes, nil
}

// Close stops an active watch.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	c.watcher = nil
	return err
}

// addDirs watches dir and every non-hidden directory below it.
func (c *Connector) addDirs(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// handleFsEvent converts an fsnotify event into a change.
// Directories, hidden paths and unsupported files yield nil.
func (c *Connector) handleFsEvent(event fsnotify.Event) *Change {
	rel, err := filepath.Rel(c.rootPath, event.Name)
	if err != nil || isHidden(rel) {
		return nil
	}
	if _, err := KindFromPath(event.Name); err != nil {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &Change{Type: ChangeDeleted, Path: event.Name}
	case event.Has(fsnotify.Create):
		if isDir(event.Name) {
			return nil
		}
		return &Change{Type: ChangeCreated, Path: event.Name}
	case event.Has(fsnotify.Write):
		if isDir(event.Name) {
			return nil
		}
		return &Change{Type: ChangeUpdated, Path: event.Name}
	default:
		return nil
	}
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "." || part == ".." || part == "" {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
