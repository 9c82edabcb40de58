// Package headingfix repairs heading structure defects: empty headings,
// skipped heading levels, and pages without a level-one heading.
package headingfix

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

// Fixer normalizes heading structure within one content document.
type Fixer struct{}

// New creates the heading fixer.
func New() *Fixer { return &Fixer{} }

func (f *Fixer) Name() string { return "headings" }

func (f *Fixer) HandledCodes() []string {
	return []string{"empty-heading", "heading-order", "page-has-heading-one"}
}

func (f *Fixer) CanFix(issue *models.Issue) bool {
	switch issue.Code {
	case "empty-heading", "heading-order", "page-has-heading-one":
		return issue.File() != ""
	}
	return false
}

func (f *Fixer) Fix(_ context.Context, issue *models.Issue, pc *models.ProcessingContext) (*models.FixResult, error) {
	cf := pc.FindContentByPath(issue.File())
	if cf == nil || cf.Doc == nil {
		return &models.FixResult{
			Success: false,
			Message: fmt.Sprintf("content file %q not loaded", issue.File()),
		}, nil
	}

	var count int
	switch issue.Code {
	case "empty-heading":
		count = fixEmptyHeadings(cf)
	case "heading-order":
		count = fixHeadingOrder(cf)
	case "page-has-heading-one":
		count = fixMissingH1(cf)
	}

	if count == 0 {
		return &models.FixResult{
			Success: false,
			Message: fmt.Sprintf("no repairable heading defect (%s) in %s", issue.Code, cf.Path),
		}, nil
	}

	cf.Doc.MarkModified()
	return &models.FixResult{
		Success:      true,
		Message:      fmt.Sprintf("adjusted %d heading(s) in %s", count, cf.Path),
		ChangedFiles: []string{cf.Path},
	}, nil
}

func headings(cf *models.ContentFile) []*etree.Element {
	var out []*etree.Element
	for _, el := range cf.Doc.FindAll("//*") {
		if headingLevel(el.Tag) > 0 {
			out = append(out, el)
		}
	}
	return out
}

func headingLevel(tag string) int {
	if len(tag) != 2 || tag[0] != 'h' {
		return 0
	}
	n, err := strconv.Atoi(tag[1:])
	if err != nil || n < 1 || n > 6 {
		return 0
	}
	return n
}

// fixEmptyHeadings fills an empty heading from its aria-label or a child
// image's alt text; a heading with no recoverable text is removed outright.
func fixEmptyHeadings(cf *models.ContentFile) int {
	count := 0
	for _, h := range headings(cf) {
		if strings.TrimSpace(allText(h)) != "" {
			continue
		}
		text := strings.TrimSpace(h.SelectAttrValue("aria-label", ""))
		if text == "" {
			if img := h.FindElement(".//img"); img != nil {
				text = strings.TrimSpace(img.SelectAttrValue("alt", ""))
			}
		}
		if text != "" {
			h.SetText(text)
		} else if parent := h.Parent(); parent != nil {
			parent.RemoveChild(h)
		}
		count++
	}
	return count
}

// fixHeadingOrder clamps skipped levels: each heading may be at most one
// level deeper than the previous one.
func fixHeadingOrder(cf *models.ContentFile) int {
	count := 0
	prev := 0
	for _, h := range headings(cf) {
		level := headingLevel(h.Tag)
		if prev > 0 && level > prev+1 {
			h.Tag = fmt.Sprintf("h%d", prev+1)
			level = prev + 1
			count++
		}
		prev = level
	}
	return count
}

// fixMissingH1 promotes the first heading to h1 when the page has headings
// but no level-one heading.
func fixMissingH1(cf *models.ContentFile) int {
	hs := headings(cf)
	if len(hs) == 0 {
		return 0
	}
	for _, h := range hs {
		if headingLevel(h.Tag) == 1 {
			return 0
		}
	}
	hs[0].Tag = "h1"
	return 1
}

func allText(el *etree.Element) string {
	var b strings.Builder
	b.WriteString(el.Text())
	for _, child := range el.ChildElements() {
		b.WriteString(allText(child))
	}
	return b.String()
}
