// Package titlefix ensures content documents carry a non-empty head title
// and the package document carries dc:title.
package titlefix

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

// Fixer adds document and package titles.
type Fixer struct{}

// New creates the title fixer.
func New() *Fixer { return &Fixer{} }

func (f *Fixer) Name() string { return "title" }

func (f *Fixer) HandledCodes() []string {
	return []string{"document-title", "epub-title"}
}

func (f *Fixer) CanFix(issue *models.Issue) bool {
	switch issue.Code {
	case "document-title", "epub-title":
		return true
	}
	return false
}

func (f *Fixer) Fix(_ context.Context, issue *models.Issue, pc *models.ProcessingContext) (*models.FixResult, error) {
	if issue.Code == "epub-title" {
		return f.fixPackageTitle(pc)
	}
	return f.fixDocumentTitle(issue, pc)
}

func (f *Fixer) fixPackageTitle(pc *models.ProcessingContext) (*models.FixResult, error) {
	opf := pc.Opf()
	if opf == nil || opf.Doc == nil {
		return &models.FixResult{Success: false, Message: "package document not loaded"}, nil
	}
	meta := opf.Doc.Find("//metadata")
	if meta == nil {
		return &models.FixResult{Success: false, Message: "no metadata element in package document"}, nil
	}

	title := pc.Metadata.Title
	if title == "" {
		title = titleFromContent(pc)
	}
	if title == "" {
		title = "Untitled Publication"
	}

	el := meta.FindElement("dc:title")
	if el == nil {
		el = meta.CreateElement("dc:title")
	}
	if strings.TrimSpace(el.Text()) != "" {
		return &models.FixResult{Success: false, Message: "package title already present"}, nil
	}
	el.SetText(title)
	opf.Doc.MarkModified()
	pc.Metadata.Title = title

	return &models.FixResult{
		Success:      true,
		Message:      fmt.Sprintf("set package title %q", title),
		ChangedFiles: []string{opf.Path},
		Details:      map[string]string{"title": title},
	}, nil
}

func (f *Fixer) fixDocumentTitle(issue *models.Issue, pc *models.ProcessingContext) (*models.FixResult, error) {
	cf := pc.FindContentByPath(issue.File())
	if cf == nil || cf.Doc == nil {
		return &models.FixResult{
			Success: false,
			Message: fmt.Sprintf("content file %q not loaded", issue.File()),
		}, nil
	}

	head := cf.Doc.Find("//head")
	if head == nil {
		root := cf.Doc.Root()
		if root == nil {
			return &models.FixResult{Success: false, Message: "document has no root element"}, nil
		}
		head = root.CreateElement("head")
	}

	title := head.FindElement("title")
	if title != nil && strings.TrimSpace(title.Text()) != "" {
		return &models.FixResult{Success: false, Message: fmt.Sprintf("%s already has a title", cf.Path)}, nil
	}
	if title == nil {
		title = head.CreateElement("title")
	}

	text := firstHeadingText(cf)
	if text == "" {
		text = pc.Metadata.Title
	}
	if text == "" {
		text = humanizeFilename(cf.Path)
	}
	title.SetText(text)
	cf.Doc.MarkModified()

	return &models.FixResult{
		Success:      true,
		Message:      fmt.Sprintf("set document title %q in %s", text, cf.Path),
		ChangedFiles: []string{cf.Path},
		Details:      map[string]string{"title": text},
	}, nil
}

func firstHeadingText(cf *models.ContentFile) string {
	for _, tag := range []string{"h1", "h2", "h3", "h4", "h5", "h6"} {
		if el := cf.Doc.Find("//" + tag); el != nil {
			if t := strings.TrimSpace(el.Text()); t != "" {
				return t
			}
		}
	}
	return ""
}

// titleFromContent derives a publication title from the first content
// document that has a usable heading or title.
func titleFromContent(pc *models.ProcessingContext) string {
	for _, cf := range pc.ContentDocuments() {
		if el := cf.Doc.Find("//head/title"); el != nil {
			if t := strings.TrimSpace(el.Text()); t != "" {
				return t
			}
		}
		if t := firstHeadingText(cf); t != "" {
			return t
		}
	}
	return ""
}

func humanizeFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.TrimSpace(base)
}
