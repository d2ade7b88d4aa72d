// Package watch observes a local drop directory and turns new files into
// optimistic document creations.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docbridge/internal/core/domain"
	"github.com/custodia-labs/docbridge/internal/core/ports/driving"
	"github.com/custodia-labs/docbridge/internal/logger"
)

// Watcher observes one directory, non-recursively. Each file created in it
// is registered as an optimistic document create; the backend does the
// actual ingestion once the operation arrives.
type Watcher struct {
	dir     string
	mutator driving.DocumentMutator
}

// NewWatcher creates a watcher for the given directory.
func NewWatcher(dir string, mutator driving.DocumentMutator) *Watcher {
	return &Watcher{dir: dir, mutator: mutator}
}

// Run watches until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("watching %s for new documents", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) {
				w.ingest(event.Name)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: %v", err)
		}
	}
}

// ingest registers one new file. Directories and dotfiles are skipped.
func (w *Watcher) ingest(path string) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	doc := domain.Document{
		FileName:     name,
		OriginalName: name,
		DocType:      docType(name),
		Size:         info.Size(),
	}
	opID, err := w.mutator.CreateOptimistically(doc)
	if err != nil {
		logger.Warn("ingest %s: %v", name, err)
		return
	}
	logger.Info("ingested %s as operation %s", name, opID)
}

// docType derives the document type from the file extension.
func docType(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	switch ext {
	case "":
		return "unknown"
	case "markdown":
		return "md"
	case "jpeg":
		return "jpg"
	}
	return ext
}
