package document

import (
	"context"
	"log/slog"
	"os"
)

// Load reads a snapshot saved with SaveFile and parses it exactly like a fetched page.
func Load(ctx context.Context, path string) (Document, error) {
	_, span := tracer.Start(ctx, "Load")
	defer span.End()

	raw, err := os.ReadFile(path)
	if err != nil {
		loadErr := &LoadError{Path: path, Err: err}
		span.RecordError(loadErr)
		return Document{}, loadErr
	}
	doc, err := Parse(raw)
	if err != nil {
		return Document{}, &LoadError{Path: path, Err: err}
	}
	slog.InfoContext(ctx, "document loaded from file", "path", path, "bytes", len(raw))
	return doc, nil
}
