package models

import (
	"strings"

	"github.com/crdjm/epub-accessibility-fixer/pkg/dom"
)

// ContentFile is one entry of the EPUB container loaded for repair. XML
// entries carry a parsed Doc; other entries (images, fonts, stylesheets)
// carry raw Data and flag Modified directly when a strategy rewrites them.
type ContentFile struct {
	Path      string
	MediaType string
	Doc       *dom.Document
	Data      []byte
	Modified  bool
}

// IsModified reports whether the entry needs re-serialization.
func (cf *ContentFile) IsModified() bool {
	if cf.Modified {
		return true
	}
	return cf.Doc != nil && cf.Doc.Modified
}

// Metadata is the publication metadata accumulated while loading the OPF.
type Metadata struct {
	Title      string `json:"title,omitempty"`
	Language   string `json:"language,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	Creator    string `json:"creator,omitempty"`
}

// ProcessingContext is the mutable unit of work for one EPUB. It is created
// once before resolution begins, shared by reference with every strategy for
// the duration of the run, and consumed by reporting afterward. The engine
// does not own its creation or destruction.
type ProcessingContext struct {
	EpubPath string
	OpfPath  string

	contents []*ContentFile
	byPath   map[string]*ContentFile

	Metadata  Metadata
	Issues    []*Issue
	Fixes     []*FixResult
	Artifacts []*Artifact
}

// NewProcessingContext creates an empty context for one EPUB.
func NewProcessingContext(epubPath string) *ProcessingContext {
	return &ProcessingContext{
		EpubPath: epubPath,
		byPath:   make(map[string]*ContentFile),
	}
}

// AddContent registers a loaded content file, preserving insertion order.
// A second entry with the same path replaces the first in the index but not
// in the ordered list.
func (pc *ProcessingContext) AddContent(cf *ContentFile) {
	pc.contents = append(pc.contents, cf)
	pc.byPath[cf.Path] = cf
}

// FindContentByPath resolves a content file by container path. Issue
// locations sometimes carry only a base name or a path relative to the OPF
// directory, so an exact match is tried first and a unique suffix match
// second.
func (pc *ProcessingContext) FindContentByPath(path string) *ContentFile {
	if path == "" {
		return nil
	}
	if cf, ok := pc.byPath[path]; ok {
		return cf
	}
	var match *ContentFile
	for _, cf := range pc.contents {
		if strings.HasSuffix(cf.Path, "/"+path) || strings.HasSuffix(path, "/"+cf.Path) {
			if match != nil {
				return nil // ambiguous
			}
			match = cf
		}
	}
	return match
}

// AllContentFiles returns the content files in container order.
func (pc *ProcessingContext) AllContentFiles() []*ContentFile {
	return pc.contents
}

// ContentDocuments returns the content files whose media type is an XHTML
// content document.
func (pc *ProcessingContext) ContentDocuments() []*ContentFile {
	var out []*ContentFile
	for _, cf := range pc.contents {
		if cf.MediaType == "application/xhtml+xml" {
			out = append(out, cf)
		}
	}
	return out
}

// Opf returns the package document entry, or nil if it was not loaded.
func (pc *ProcessingContext) Opf() *ContentFile {
	return pc.FindContentByPath(pc.OpfPath)
}

// AddFix appends a completed fix to the accumulated list.
func (pc *ProcessingContext) AddFix(r *FixResult) {
	pc.Fixes = append(pc.Fixes, r)
}

// AddArtifact records a side-channel analysis product for later review.
func (pc *ProcessingContext) AddArtifact(a *Artifact) {
	pc.Artifacts = append(pc.Artifacts, a)
}

// ModifiedFiles returns the paths of all content files mutated so far.
func (pc *ProcessingContext) ModifiedFiles() []string {
	var out []string
	for _, cf := range pc.contents {
		if cf.IsModified() {
			out = append(out, cf.Path)
		}
	}
	return out
}
