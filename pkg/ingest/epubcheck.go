package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

const epubcheckSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["messages"],
  "properties": {
    "messages": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["ID", "severity", "message"],
        "properties": {
          "ID": {"type": "string"},
          "severity": {"type": "string"},
          "message": {"type": "string"},
          "locations": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "path": {"type": "string"},
                "line": {"type": "integer"}
              }
            }
          }
        }
      }
    }
  }
}`

type epubcheckReport struct {
	Messages []epubcheckMessage `json:"messages"`
}

type epubcheckMessage struct {
	ID        string              `json:"ID"`
	Severity  string              `json:"severity"`
	Message   string              `json:"message"`
	Locations []epubcheckLocation `json:"locations"`
}

type epubcheckLocation struct {
	Path string `json:"path"`
	Line int    `json:"line"`
}

// ParseEPUBCheck converts an EPUBCheck JSON report into issues. A message
// with several locations becomes one issue per location; a message with no
// location becomes a single publication-level issue.
func ParseEPUBCheck(data []byte, fixable CodeSet) ([]*models.Issue, error) {
	if err := validateShape(data, "epubcheck.schema.json", epubcheckSchema); err != nil {
		return nil, fmt.Errorf("epubcheck: %w", err)
	}
	var rep epubcheckReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("epubcheck: %w", err)
	}

	var issues []*models.Issue
	for _, msg := range rep.Messages {
		base := models.Issue{
			Code:     msg.ID,
			Message:  msg.Message,
			Type:     epubcheckSeverity(msg.Severity),
			Category: models.CategoryValidation,
			Fixable:  fixable.Contains(msg.ID),
		}
		if len(msg.Locations) == 0 {
			issue := base
			issues = append(issues, &issue)
			continue
		}
		for _, loc := range msg.Locations {
			issue := base
			issue.Location = &models.Location{File: loc.Path, Line: loc.Line}
			issues = append(issues, &issue)
		}
	}
	return issues, nil
}

func epubcheckSeverity(s string) models.IssueType {
	switch strings.ToUpper(s) {
	case "FATAL", "ERROR":
		return models.IssueTypeError
	case "WARNING":
		return models.IssueTypeWarning
	default:
		return models.IssueTypeInfo
	}
}
