// Package watcher ingests new files dropped into a watched folder.
//
// Each supported file is submitted once. Edits and deletions of files that
// are already in the knowledge base are reported but not applied, since
// documents are immutable once created.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/kassist/internal/connectors/filesystem"
	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/core/ports/driving"
	"github.com/custodia-labs/kassist/internal/logger"
)

// DefaultSettleDelay is how long a file must stay quiet before it is read.
// Editors and copy tools write files in several steps.
const DefaultSettleDelay = 500 * time.Millisecond

// Source lists and watches files. filesystem.Connector implements it.
type Source interface {
	Scan(ctx context.Context) ([]string, error)
	Watch(ctx context.Context) (<-chan filesystem.Change, error)
	Read(path string) (*domain.RawDocument, error)
}

// Event reports the outcome of submitting one file.
type Event struct {
	Path     string
	Document *domain.Document
	Report   *domain.IngestReport
	Err      error
}

// Options configures a Watcher.
type Options struct {
	// ScanExisting submits files already present when Run starts.
	ScanExisting bool

	// SettleDelay overrides DefaultSettleDelay when positive.
	SettleDelay time.Duration

	// OnEvent is called after every submission attempt. Optional.
	OnEvent func(Event)
}

// Watcher submits new files from a Source to the document service.
type Watcher struct {
	source    Source
	documents driving.DocumentService
	opts      Options

	mu      sync.Mutex
	known   map[string]bool
	pending map[string]*time.Timer
}

// New creates a watcher.
func New(source Source, documents driving.DocumentService, opts Options) *Watcher {
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	return &Watcher{
		source:    source,
		documents: documents,
		opts:      opts,
		known:     make(map[string]bool),
		pending:   make(map[string]*time.Timer),
	}
}

// Run blocks until ctx is done or the source stops.
// Files whose URI already belongs to a document are never resubmitted.
func (w *Watcher) Run(ctx context.Context) error {
	docs, err := w.documents.List(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	for i := range docs {
		if docs[i].URI != "" {
			w.known[docs[i].URI] = true
		}
	}

	changes, err := w.source.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	if w.opts.ScanExisting {
		paths, err := w.source.Scan(ctx)
		if err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		for _, path := range paths {
			w.submit(ctx, path)
		}
	}

	ready := make(chan string, 16)
	defer w.stopPending()

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			w.handle(ctx, change, ready)
		case path := <-ready:
			w.mu.Lock()
			delete(w.pending, path)
			w.mu.Unlock()
			w.submit(ctx, path)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, change filesystem.Change, ready chan<- string) {
	path := absPath(change.Path)

	w.mu.Lock()
	known := w.known[path]
	w.mu.Unlock()

	switch change.Type {
	case filesystem.ChangeDeleted:
		w.cancelPending(path)
		if known {
			logger.Info("%s was removed; its document stays in the knowledge base", path)
		}
	case filesystem.ChangeCreated, filesystem.ChangeUpdated:
		if known {
			logger.Info("%s changed; edits to ingested documents are not re-embedded", path)
			return
		}
		w.schedule(ctx, path, ready)
	}
}

// schedule (re)starts the settle timer for path.
func (w *Watcher) schedule(ctx context.Context, path string, ready chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(w.opts.SettleDelay)
		return
	}
	w.pending[path] = time.AfterFunc(w.opts.SettleDelay, func() {
		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

// submit reads and submits path unless it is already known.
func (w *Watcher) submit(ctx context.Context, path string) {
	path = absPath(path)

	w.mu.Lock()
	if w.known[path] {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	event := Event{Path: path}
	raw, err := w.source.Read(path)
	if err != nil {
		event.Err = fmt.Errorf("read %s: %w", path, err)
		w.emit(event)
		return
	}

	event.Document, event.Report, event.Err = w.documents.Submit(ctx, raw)
	if event.Document != nil {
		w.mu.Lock()
		w.known[path] = true
		w.mu.Unlock()
	}
	w.emit(event)
}

func (w *Watcher) emit(event Event) {
	if event.Err != nil {
		logger.Warn("%v", event.Err)
	} else if event.Report != nil {
		logger.Info("ingested %s: %d passages, %d indexed", event.Path, event.Report.Passages, event.Report.Indexed)
	}
	if w.opts.OnEvent != nil {
		w.opts.OnEvent(event)
	}
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
