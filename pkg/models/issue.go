package models

import "fmt"

// IssueType represents the severity class reported by the upstream validator.
type IssueType string

const (
	IssueTypeError   IssueType = "error"
	IssueTypeWarning IssueType = "warning"
	IssueTypeInfo    IssueType = "info"
)

// IssueCategory distinguishes structural validation findings (EPUBCheck)
// from accessibility findings (DAISY ACE).
type IssueCategory string

const (
	CategoryValidation    IssueCategory = "validation"
	CategoryAccessibility IssueCategory = "accessibility"
)

// Location points at the content file (and optionally the line) an issue
// was reported against. Not every issue carries one; package-level issues
// such as missing metadata often do not.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line,omitempty"`
}

// Issue is a single reported defect from the upstream validator.
//
// Code is a category identifier, not globally unique in meaning: the same
// code can denote different concrete defects depending on Message, which is
// why capability predicates and suppression rules parse the message text.
//
// Fixed is the engine's own bookkeeping. It starts false and transitions to
// true exactly once, either when a strategy repairs the issue or when
// suppression judges an equivalent repair complete. It is never reversed.
type Issue struct {
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Type     IssueType     `json:"type"`
	Category IssueCategory `json:"category"`
	Location *Location     `json:"location,omitempty"`
	Fixable  bool          `json:"fixable"`
	Fixed    bool          `json:"fixed"`
}

// File returns the file path of the issue's location, or "" when the issue
// carries no location.
func (i *Issue) File() string {
	if i.Location == nil {
		return ""
	}
	return i.Location.File
}

// Key returns a stable human-readable identifier for reporting.
func (i *Issue) Key() string {
	if i.Location == nil {
		return i.Code
	}
	if i.Location.Line > 0 {
		return fmt.Sprintf("%s@%s:%d", i.Code, i.Location.File, i.Location.Line)
	}
	return fmt.Sprintf("%s@%s", i.Code, i.Location.File)
}
