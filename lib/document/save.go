package document

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Save writes the raw markup of the document to w verbatim.
func Save(ctx context.Context, doc Document, w io.Writer) error {
	_, err := w.Write(doc.Raw())
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func SaveStdout(ctx context.Context, doc Document) error {
	err := Save(ctx, doc, os.Stdout)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "document saved to stdout")
	return nil
}

// SaveFile writes the document to path and syncs it to disk before returning.
func SaveFile(ctx context.Context, doc Document, path string) error {
	_, span := tracer.Start(ctx, "SaveFile")
	defer span.End()

	f, err := os.Create(path)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("save document: %w", err)
	}
	err = Save(ctx, doc, f)
	if err != nil {
		f.Close()
		return err
	}
	err = f.Sync()
	if err != nil {
		f.Close()
		return fmt.Errorf("save document: sync: %w", err)
	}
	err = f.Close()
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	slog.InfoContext(ctx, "document saved to file", "path", path)
	return nil
}
