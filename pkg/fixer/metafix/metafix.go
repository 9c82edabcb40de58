// Package metafix writes the schema.org accessibility metadata block into
// the package document. The block is always written as a whole: it is not
// meaningful to fix one accessibility property without considering the
// others, which is what lets the engine suppress every metadata issue in the
// file after one pass.
package metafix

import (
	"context"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

// Fixer adds schema:accessMode, accessModeSufficient, accessibilityFeature,
// accessibilityHazard and accessibilitySummary to the OPF metadata.
type Fixer struct{}

// New creates the accessibility metadata fixer.
func New() *Fixer { return &Fixer{} }

func (f *Fixer) Name() string { return "accessibility-metadata" }

func (f *Fixer) HandledCodes() []string {
	return []string{
		"metadata-accessmode",
		"metadata-accessmodesufficient",
		"metadata-accessibilityfeature",
		"metadata-accessibilityhazard",
		"metadata-accessibilitysummary",
	}
}

func (f *Fixer) CanFix(issue *models.Issue) bool {
	if strings.HasPrefix(strings.ToLower(issue.Code), "metadata-access") {
		return true
	}
	return strings.Contains(strings.ToLower(issue.Message), "schema:access")
}

// Fix replaces any partial schema:access* properties with a complete block
// derived from the publication's actual content.
func (f *Fixer) Fix(_ context.Context, issue *models.Issue, pc *models.ProcessingContext) (*models.FixResult, error) {
	opf := pc.Opf()
	if opf == nil || opf.Doc == nil {
		return &models.FixResult{
			Success: false,
			Message: "package document not loaded; cannot write accessibility metadata",
		}, nil
	}
	meta := opf.Doc.Find("//metadata")
	if meta == nil {
		return &models.FixResult{
			Success: false,
			Message: fmt.Sprintf("no metadata element in %s", opf.Path),
		}, nil
	}

	// Drop stale partial properties so the block stays consistent.
	for _, el := range meta.ChildElements() {
		if strings.HasPrefix(el.SelectAttrValue("property", ""), "schema:access") {
			meta.RemoveChild(el)
		}
	}

	hasImages := publicationHasImages(pc)

	props := [][2]string{
		{"schema:accessMode", "textual"},
	}
	if hasImages {
		props = append(props, [2]string{"schema:accessMode", "visual"})
	}
	props = append(props,
		[2]string{"schema:accessModeSufficient", "textual"},
		[2]string{"schema:accessibilityFeature", "structuralNavigation"},
	)
	if hasImages {
		props = append(props, [2]string{"schema:accessibilityFeature", "alternativeText"})
	}
	props = append(props,
		[2]string{"schema:accessibilityHazard", "none"},
		[2]string{"schema:accessibilitySummary", buildSummary(pc, hasImages)},
	)

	for _, p := range props {
		writeProperty(meta, p[0], p[1])
	}
	opf.Doc.MarkModified()

	summary := props[len(props)-1][1]
	pc.AddArtifact(&models.Artifact{
		Kind:    models.ArtifactMetadataSuggestion,
		File:    opf.Path,
		Source:  "generated",
		Content: summary,
		Applied: true,
	})

	return &models.FixResult{
		Success:      true,
		Message:      fmt.Sprintf("wrote %d schema.org accessibility properties", len(props)),
		ChangedFiles: []string{opf.Path},
		Details: map[string]string{
			"trigger_code": issue.Code,
			"properties":   fmt.Sprintf("%d", len(props)),
		},
	}, nil
}

func writeProperty(meta *etree.Element, property, value string) {
	el := meta.CreateElement("meta")
	el.CreateAttr("property", property)
	el.SetText(value)
}

func publicationHasImages(pc *models.ProcessingContext) bool {
	for _, cf := range pc.AllContentFiles() {
		if strings.HasPrefix(cf.MediaType, "image/") {
			return true
		}
	}
	for _, cf := range pc.ContentDocuments() {
		if len(cf.Doc.FindAll("//img")) > 0 {
			return true
		}
	}
	return false
}

func buildSummary(pc *models.ProcessingContext, hasImages bool) string {
	var b strings.Builder
	b.WriteString("This publication provides structural navigation")
	if pc.Metadata.Language != "" {
		fmt.Fprintf(&b, " and declares its language (%s)", pc.Metadata.Language)
	}
	if hasImages {
		b.WriteString(". Images carry text alternatives")
	}
	b.WriteString(".")
	return b.String()
}
