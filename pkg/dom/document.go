// Package dom is the document model adapter: it loads a content file into a
// mutable, queryable XML tree and serializes it back. Every repair strategy
// mutates documents through this package.
package dom

import (
	"fmt"

	"github.com/beevik/etree"
)

// Document is one parsed content file (XHTML, OPF, NCX, SVG).
type Document struct {
	Path     string
	Modified bool

	tree *etree.Document
}

// Parse builds a Document from raw file bytes.
func Parse(path string, data []byte) (*Document, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if tree.Root() == nil {
		return nil, fmt.Errorf("parse %s: no root element", path)
	}
	return &Document{Path: path, tree: tree}, nil
}

// Root returns the document's root element.
func (d *Document) Root() *etree.Element {
	return d.tree.Root()
}

// Find returns the first element matching the etree path expression, or nil.
func (d *Document) Find(path string) *etree.Element {
	return d.tree.FindElement(path)
}

// FindAll returns every element matching the etree path expression.
func (d *Document) FindAll(path string) []*etree.Element {
	return d.tree.FindElements(path)
}

// MarkModified flags the document as needing re-serialization.
func (d *Document) MarkModified() {
	d.Modified = true
}

// Serialize writes the current tree back to bytes. The original XML
// declaration is preserved by etree; no re-indentation is applied so
// untouched regions round-trip byte-stable.
func (d *Document) Serialize() ([]byte, error) {
	out, err := d.tree.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", d.Path, err)
	}
	return out, nil
}
