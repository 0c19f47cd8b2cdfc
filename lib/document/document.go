// Package document supplies parsed price list pages, either fetched over the
// network or loaded from a previously saved snapshot.
package document

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("refuel.lib.document")

// Document is a parsed html page that still holds the exact bytes it was
// parsed from, so it can be saved again without re-rendering.
type Document struct {
	raw []byte
	doc *goquery.Document
}

// Parse parses raw markup into a Document. The html parser is lenient,
// so this only fails on read errors.
func Parse(raw []byte) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return Document{}, fmt.Errorf("parse document: %w", err)
	}
	return Document{raw: raw, doc: doc}, nil
}

// Raw returns the markup the document was parsed from.
func (d Document) Raw() []byte {
	return d.raw
}

// Find runs a css selector against the whole document.
func (d Document) Find(selector string) *goquery.Selection {
	if d.doc == nil {
		return &goquery.Selection{}
	}
	return d.doc.Find(selector)
}
