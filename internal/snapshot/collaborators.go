package snapshot

import (
	"context"

	"github.com/roach88/docsnap/internal/model"
)

// Collector is implemented by the host: it reports the document's current
// bytes and the flattened list of files the document depends on.
type Collector interface {
	Collect(ctx context.Context, doc model.Document) (model.Capture, error)
}

// CollectorFunc adapts a function to Collector.
type CollectorFunc func(ctx context.Context, doc model.Document) (model.Capture, error)

// Collect calls f.
func (f CollectorFunc) Collect(ctx context.Context, doc model.Document) (model.Capture, error) {
	return f(ctx, doc)
}

// Reloader is implemented by the host: it re-reads the document from disk
// after a restore. It is notified once, after every file was written.
type Reloader interface {
	Reload(docPath string)
}

// ReloaderFunc adapts a function to Reloader.
type ReloaderFunc func(docPath string)

// Reload calls f.
func (f ReloaderFunc) Reload(docPath string) {
	f(docPath)
}
