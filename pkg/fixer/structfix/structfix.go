// Package structfix repairs the file-scoped structural defects that
// EPUBCheck reports under its generic parse code: obsolete http-equiv meta
// declarations, invalid role attribute values, and obsolete xsi:type
// attributes. The concrete defect lives in the message text, not the code,
// so the capability predicate classifies messages and declines anything it
// cannot place, including language-flavored messages owned by the language
// fixer further down the registry.
package structfix

import (
	"context"
	"fmt"
	"strings"

	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

// Fixer repairs http-equiv / role / xsi:type attribute defects.
type Fixer struct{}

// New creates the structural attribute fixer.
func New() *Fixer { return &Fixer{} }

func (f *Fixer) Name() string { return "structure" }

func (f *Fixer) HandledCodes() []string {
	return []string{"RSC-005"}
}

// CanFix claims only the message sub-types this fixer knows how to repair.
// Language-flavored messages are declined so the language fixer gets them.
func (f *Fixer) CanFix(issue *models.Issue) bool {
	if issue.Code != "RSC-005" {
		return false
	}
	m := strings.ToLower(issue.Message)
	if strings.Contains(m, "language") || strings.Contains(m, "xml:lang") {
		return false
	}
	return classify(issue.Message) != ""
}

// classify maps a generic structural message onto the defect it describes,
// in fixed priority: http-equiv, then role, then xsi:type.
func classify(message string) string {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "http-equiv"):
		return "http-equiv"
	case strings.Contains(m, "role"):
		return "role"
	case strings.Contains(m, "xsi:type"):
		return "xsi:type"
	default:
		return ""
	}
}

func (f *Fixer) Fix(_ context.Context, issue *models.Issue, pc *models.ProcessingContext) (*models.FixResult, error) {
	cf := pc.FindContentByPath(issue.File())
	if cf == nil || cf.Doc == nil {
		return &models.FixResult{
			Success: false,
			Message: fmt.Sprintf("content file %q not loaded", issue.File()),
		}, nil
	}

	subtype := classify(issue.Message)
	var count int
	switch subtype {
	case "http-equiv":
		count = fixHTTPEquiv(cf)
	case "role":
		count = fixRoles(cf)
	case "xsi:type":
		count = fixXsiType(cf)
	}

	if count == 0 {
		return &models.FixResult{
			Success: false,
			Message: fmt.Sprintf("no %s defect found in %s", subtype, cf.Path),
		}, nil
	}

	cf.Doc.MarkModified()
	return &models.FixResult{
		Success:      true,
		Message:      fmt.Sprintf("repaired %d %s attribute(s) in %s", count, subtype, cf.Path),
		ChangedFiles: []string{cf.Path},
		Details:      map[string]string{"subtype": subtype},
	}, nil
}

// fixHTTPEquiv replaces content-type meta declarations with the charset
// form EPUB 3 requires.
func fixHTTPEquiv(cf *models.ContentFile) int {
	count := 0
	for _, meta := range cf.Doc.FindAll("//meta") {
		equiv := meta.SelectAttrValue("http-equiv", "")
		if equiv == "" {
			continue
		}
		if strings.EqualFold(equiv, "content-type") {
			meta.RemoveAttr("http-equiv")
			meta.RemoveAttr("content")
			meta.CreateAttr("charset", "utf-8")
		} else {
			meta.RemoveAttr("http-equiv")
			meta.RemoveAttr("content")
		}
		count++
	}
	return count
}

// allowedRoles is the subset of ARIA and DPUB-ARIA roles valid in EPUB
// content documents. Values outside it are removed rather than guessed at.
var allowedRoles = map[string]bool{
	"doc-abstract": true, "doc-acknowledgments": true, "doc-afterword": true,
	"doc-appendix": true, "doc-backlink": true, "doc-biblioentry": true,
	"doc-bibliography": true, "doc-biblioref": true, "doc-chapter": true,
	"doc-colophon": true, "doc-conclusion": true, "doc-cover": true,
	"doc-credit": true, "doc-credits": true, "doc-dedication": true,
	"doc-endnote": true, "doc-endnotes": true, "doc-epigraph": true,
	"doc-epilogue": true, "doc-errata": true, "doc-example": true,
	"doc-footnote": true, "doc-foreword": true, "doc-glossary": true,
	"doc-glossref": true, "doc-index": true, "doc-introduction": true,
	"doc-noteref": true, "doc-notice": true, "doc-pagebreak": true,
	"doc-pagelist": true, "doc-part": true, "doc-preface": true,
	"doc-prologue": true, "doc-pullquote": true, "doc-qna": true,
	"doc-subtitle": true, "doc-tip": true, "doc-toc": true,
	"banner": true, "complementary": true, "contentinfo": true,
	"figure": true, "img": true, "list": true, "listitem": true,
	"main": true, "navigation": true, "note": true, "presentation": true,
	"region": true, "search": true, "separator": true,
}

func fixRoles(cf *models.ContentFile) int {
	count := 0
	for _, el := range cf.Doc.FindAll("//*[@role]") {
		role := strings.TrimSpace(el.SelectAttrValue("role", ""))
		if role == "" || !allowedRoles[role] {
			el.RemoveAttr("role")
			count++
		}
	}
	return count
}

func fixXsiType(cf *models.ContentFile) int {
	count := 0
	for _, el := range cf.Doc.FindAll("//*[@xsi:type]") {
		el.RemoveAttr("xsi:type")
		count++
	}
	return count
}
