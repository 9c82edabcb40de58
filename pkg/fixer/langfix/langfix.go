// Package langfix repairs missing or invalid document language
// declarations. The repair is document-wide by construction: one pass sets
// the language on the package metadata and on every content document, which
// is why the engine's suppression treats language issues as a global
// equivalence class.
package langfix

import (
	"context"
	"fmt"
	"strings"

	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

// Fixer adds xml:lang/lang attributes and dc:language metadata.
type Fixer struct {
	defaultLanguage string
}

// Option configures the Fixer.
type Option func(*Fixer)

// WithDefaultLanguage sets the language tag used when none can be detected
// from the publication. Defaults to "en".
func WithDefaultLanguage(tag string) Option {
	return func(f *Fixer) {
		if tag != "" {
			f.defaultLanguage = tag
		}
	}
}

// New creates the language fixer.
func New(opts ...Option) *Fixer {
	f := &Fixer{defaultLanguage: "en"}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fixer) Name() string { return "language" }

func (f *Fixer) HandledCodes() []string {
	return []string{"missing-lang", "html-has-lang", "valid-lang", "epub-lang"}
}

// CanFix claims all lang-flavored codes plus generic structural issues whose
// message concerns the document language.
func (f *Fixer) CanFix(issue *models.Issue) bool {
	if strings.Contains(strings.ToLower(issue.Code), "lang") {
		return true
	}
	if issue.Code != "RSC-005" {
		return false
	}
	m := strings.ToLower(issue.Message)
	return strings.Contains(m, "language") || strings.Contains(m, "xml:lang")
}

// Fix declares the publication language everywhere at once: dc:language in
// the package document and xml:lang/lang on every content document's root.
func (f *Fixer) Fix(_ context.Context, issue *models.Issue, pc *models.ProcessingContext) (*models.FixResult, error) {
	lang := f.resolveLanguage(pc)

	var changed []string

	if opf := pc.Opf(); opf != nil && opf.Doc != nil {
		if meta := opf.Doc.Find("//metadata"); meta != nil {
			langEl := meta.FindElement("dc:language")
			if langEl == nil {
				langEl = meta.CreateElement("dc:language")
			}
			if strings.TrimSpace(langEl.Text()) == "" {
				langEl.SetText(lang)
				opf.Doc.MarkModified()
				changed = append(changed, opf.Path)
			}
		}
	}

	for _, cf := range pc.ContentDocuments() {
		root := cf.Doc.Root()
		if root == nil || root.Tag != "html" {
			continue
		}
		touched := false
		if strings.TrimSpace(root.SelectAttrValue("xml:lang", "")) == "" {
			root.CreateAttr("xml:lang", lang)
			touched = true
		}
		if strings.TrimSpace(root.SelectAttrValue("lang", "")) == "" {
			root.CreateAttr("lang", lang)
			touched = true
		}
		if touched {
			cf.Doc.MarkModified()
			changed = append(changed, cf.Path)
		}
	}

	if len(changed) == 0 {
		return &models.FixResult{
			Success: false,
			Message: fmt.Sprintf("language already declared everywhere; nothing to change for %s", issue.Code),
		}, nil
	}

	pc.Metadata.Language = lang
	return &models.FixResult{
		Success:      true,
		Message:      fmt.Sprintf("declared publication language %q on %d file(s)", lang, len(changed)),
		ChangedFiles: changed,
		Details:      map[string]string{"language": lang},
	}, nil
}

// resolveLanguage picks the language tag: accumulated metadata first, then
// the package document, then the configured default.
func (f *Fixer) resolveLanguage(pc *models.ProcessingContext) string {
	if pc.Metadata.Language != "" {
		return pc.Metadata.Language
	}
	if opf := pc.Opf(); opf != nil && opf.Doc != nil {
		if el := opf.Doc.Find("//metadata/dc:language"); el != nil {
			if tag := strings.TrimSpace(el.Text()); tag != "" {
				return tag
			}
		}
	}
	return f.defaultLanguage
}
