// Package linkfix repairs links without a discernible accessible name.
package linkfix

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/beevik/etree"

	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

// Fixer labels anchors that expose no text to assistive technology.
type Fixer struct{}

// New creates the link name fixer.
func New() *Fixer { return &Fixer{} }

func (f *Fixer) Name() string { return "links" }

func (f *Fixer) HandledCodes() []string {
	return []string{"link-name", "link-in-text-block"}
}

func (f *Fixer) CanFix(issue *models.Issue) bool {
	switch issue.Code {
	case "link-name", "link-in-text-block":
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

	count := 0
	for _, a := range cf.Doc.FindAll("//a") {
		if accessibleName(a) != "" {
			continue
		}
		label := labelFor(a)
		if label == "" {
			continue
		}
		a.CreateAttr("aria-label", label)
		count++
	}

	if count == 0 {
		return &models.FixResult{
			Success: false,
			Message: fmt.Sprintf("no unlabeled link found in %s", cf.Path),
		}, nil
	}

	cf.Doc.MarkModified()
	return &models.FixResult{
		Success:      true,
		Message:      fmt.Sprintf("labeled %d link(s) in %s", count, cf.Path),
		ChangedFiles: []string{cf.Path},
	}, nil
}

// accessibleName approximates the accessible name computation: aria-label,
// then text content, then a child image's alt.
func accessibleName(a *etree.Element) string {
	if label := strings.TrimSpace(a.SelectAttrValue("aria-label", "")); label != "" {
		return label
	}
	if text := strings.TrimSpace(deepText(a)); text != "" {
		return text
	}
	if img := a.FindElement(".//img"); img != nil {
		return strings.TrimSpace(img.SelectAttrValue("alt", ""))
	}
	return ""
}

// labelFor derives a label from the link target. Fragment-only and empty
// targets yield nothing; those need a human.
func labelFor(a *etree.Element) string {
	href := strings.TrimSpace(a.SelectAttrValue("href", ""))
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		trimmed := strings.TrimPrefix(strings.TrimPrefix(href, "https://"), "http://")
		if host, _, ok := strings.Cut(trimmed, "/"); ok && host != "" {
			return "Link to " + host
		}
		return "Link to " + trimmed
	}
	base := path.Base(href)
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	return "Go to " + base
}

func deepText(el *etree.Element) string {
	var b strings.Builder
	b.WriteString(el.Text())
	for _, child := range el.ChildElements() {
		b.WriteString(deepText(child))
	}
	return b.String()
}
