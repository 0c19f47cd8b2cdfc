package document

import "context"

// Source supplies the document a single ingestion cycle works on.
type Source interface {
	Document(ctx context.Context) (Document, error)
}

// URLSource fetches a fresh document on every call.
type URLSource struct {
	Fetcher Fetcher
	Url     string
}

func (s URLSource) Document(ctx context.Context) (Document, error) {
	return s.Fetcher.Fetch(ctx, s.Url)
}

// FileSource loads the same snapshot on every call.
type FileSource struct {
	Path string
}

func (s FileSource) Document(ctx context.Context) (Document, error) {
	return Load(ctx, s.Path)
}

// StaticSource always returns the same already parsed document.
type StaticSource struct {
	Doc Document
}

func (s StaticSource) Document(context.Context) (Document, error) {
	return s.Doc, nil
}
