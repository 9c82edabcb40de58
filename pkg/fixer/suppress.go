package fixer

import (
	"strings"

	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

// A single repair often resolves many reported issue instances at once:
// adding a document-wide language attribute satisfies every missing-lang
// issue in every file, and one accessibility metadata block satisfies
// several DAISY codes simultaneously. Re-dispatching those duplicates would
// clobber an already-correct repair with an inconsistent second one, while
// over-aggressive suppression hides real unresolved defects. The equivalence
// rules below therefore differ per defect category, evaluated in priority
// order against the just-fixed anchor:
//
//  1. Language-family issues: global. Language fixes are document-wide by
//     construction.
//  2. Structural codes with a file-scoped defect: same code, same file, same
//     message-derived sub-type (http-equiv, role, xsi:type, exact-message
//     fallback).
//  3. Accessibility metadata: same file, all metadata codes. The metadata
//     fixer always writes the complete block in one pass.
//  4. Default: same code and same file.
//  5. Anchor without a file location: no suppression beyond itself.
//
// Suppression reads sibling issues' code/message/location only; flipping the
// Fixed flags is left to the caller so this selection stays pure and
// testable apart from document mutation.

// structuralCodes are validator codes generic enough that the concrete
// defect lives in the message text, not the code.
var structuralCodes = map[string]bool{
	"RSC-005": true,
}

// EquivalentIssues returns the unfixed issues in the batch that the
// anchor's successful repair also resolves. The anchor itself is never
// included. No strategy is invoked and nothing is mutated.
func EquivalentIssues(anchor *models.Issue, batch []*models.Issue) []*models.Issue {
	var out []*models.Issue
	match := equivalenceRule(anchor)
	if match == nil {
		return nil
	}
	for _, issue := range batch {
		if issue == anchor || issue.Fixed {
			continue
		}
		if match(issue) {
			out = append(out, issue)
		}
	}
	return out
}

// equivalenceRule selects the predicate for the anchor's defect category,
// or nil when no suppression applies.
func equivalenceRule(anchor *models.Issue) func(*models.Issue) bool {
	if isLanguageIssue(anchor) {
		return isLanguageIssue
	}

	file := anchor.File()
	if file == "" {
		// Ambiguous scope: treated conservatively as no suppression.
		return nil
	}

	if structuralCodes[anchor.Code] {
		subtype := structuralSubtype(anchor.Message)
		return func(i *models.Issue) bool {
			if i.Code != anchor.Code || i.File() != file {
				return false
			}
			if subtype == "" {
				return i.Message == anchor.Message
			}
			return structuralSubtype(i.Message) == subtype
		}
	}

	if isAccessMetadataIssue(anchor) {
		return func(i *models.Issue) bool {
			return isAccessMetadataIssue(i) && i.File() == file
		}
	}

	return func(i *models.Issue) bool {
		return i.Code == anchor.Code && i.File() == file
	}
}

// isLanguageIssue reports whether the issue belongs to the language family:
// any lang-flavored code (missing-lang, html-has-lang, valid-lang,
// epub-lang, OPF language codes) or a generic structural code whose message
// mentions the document language.
func isLanguageIssue(i *models.Issue) bool {
	if strings.Contains(strings.ToLower(i.Code), "lang") {
		return true
	}
	if structuralCodes[i.Code] {
		m := strings.ToLower(i.Message)
		return strings.Contains(m, "language") || strings.Contains(m, "xml:lang")
	}
	return false
}

// structuralSubtype classifies a generic structural message into the
// concrete defect it describes. Tested in fixed priority; a message matching
// several sub-types takes the first, which is the documented (if broad)
// behavior.
func structuralSubtype(message string) string {
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

// isAccessMetadataIssue reports whether the issue concerns schema.org
// accessibility metadata (the DAISY ACE metadata-* codes, or any message
// naming a schema:access* property).
func isAccessMetadataIssue(i *models.Issue) bool {
	if strings.HasPrefix(strings.ToLower(i.Code), "metadata-access") {
		return true
	}
	return strings.Contains(strings.ToLower(i.Message), "schema:access")
}
