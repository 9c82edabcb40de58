package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

const aceSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["assertions"],
  "properties": {
    "assertions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["earl:testSubject"],
        "properties": {
          "earl:testSubject": {
            "type": "object",
            "properties": {"url": {"type": "string"}}
          },
          "assertions": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["earl:test"],
              "properties": {
                "earl:test": {
                  "type": "object",
                  "required": ["dct:title"],
                  "properties": {
                    "dct:title": {"type": "string"},
                    "earl:impact": {"type": "string"}
                  }
                },
                "earl:result": {
                  "type": "object",
                  "properties": {"dct:description": {"type": "string"}}
                }
              }
            }
          }
        }
      }
    }
  }
}`

type aceReport struct {
	Assertions []aceSubjectAssertion `json:"assertions"`
}

type aceSubjectAssertion struct {
	Subject    aceTestSubject `json:"earl:testSubject"`
	Assertions []aceAssertion `json:"assertions"`
}

type aceTestSubject struct {
	URL string `json:"url"`
}

type aceAssertion struct {
	Test   aceTest   `json:"earl:test"`
	Result aceResult `json:"earl:result"`
}

type aceTest struct {
	Title  string `json:"dct:title"`
	Impact string `json:"earl:impact"`
}

type aceResult struct {
	Description string `json:"dct:description"`
}

// ParseAce converts a DAISY ACE JSON report into issues. Each nested
// assertion becomes one issue located at the test subject's content document;
// the ACE rule title is the issue code.
func ParseAce(data []byte, fixable CodeSet) ([]*models.Issue, error) {
	if err := validateShape(data, "ace.schema.json", aceSchema); err != nil {
		return nil, fmt.Errorf("ace: %w", err)
	}
	var rep aceReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("ace: %w", err)
	}

	var issues []*models.Issue
	for _, subject := range rep.Assertions {
		for _, a := range subject.Assertions {
			message := a.Result.Description
			if message == "" {
				message = a.Test.Title
			}
			issue := &models.Issue{
				Code:     a.Test.Title,
				Message:  message,
				Type:     aceImpact(a.Test.Impact),
				Category: models.CategoryAccessibility,
				Fixable:  fixable.Contains(a.Test.Title),
			}
			if subject.Subject.URL != "" {
				issue.Location = &models.Location{File: subject.Subject.URL}
			}
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

// aceImpact maps ACE's axe-derived impact levels onto issue severities.
func aceImpact(impact string) models.IssueType {
	switch impact {
	case "critical", "serious":
		return models.IssueTypeError
	case "moderate":
		return models.IssueTypeWarning
	default:
		return models.IssueTypeInfo
	}
}
