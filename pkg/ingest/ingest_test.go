package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

const epubcheckReportJSON = `{
  "messages": [
    {
      "ID": "RSC-005",
      "severity": "ERROR",
      "message": "Error while parsing file: value of attribute \"http-equiv\" is invalid",
      "locations": [
        {"path": "OEBPS/c1.xhtml", "line": 4},
        {"path": "OEBPS/c2.xhtml", "line": 9}
      ]
    },
    {
      "ID": "OPF-025",
      "severity": "WARNING",
      "message": "Dates must be in ISO 8601 format",
      "locations": [{"path": "OEBPS/content.opf", "line": 7}]
    },
    {
      "ID": "PKG-012",
      "severity": "USAGE",
      "message": "File name contains non-ASCII characters",
      "locations": []
    }
  ]
}`

func TestParseEPUBCheck(t *testing.T) {
	fixable := NewCodeSet("RSC-005")
	issues, err := ParseEPUBCheck([]byte(epubcheckReportJSON), fixable)
	require.NoError(t, err)
	require.Len(t, issues, 4, "one issue per location, one for the unlocated message")

	first := issues[0]
	assert.Equal(t, "RSC-005", first.Code)
	assert.Equal(t, models.IssueTypeError, first.Type)
	assert.Equal(t, models.CategoryValidation, first.Category)
	assert.True(t, first.Fixable)
	require.NotNil(t, first.Location)
	assert.Equal(t, "OEBPS/c1.xhtml", first.Location.File)
	assert.Equal(t, 4, first.Location.Line)

	assert.Equal(t, "OEBPS/c2.xhtml", issues[1].File(), "second location fans out to its own issue")

	warn := issues[2]
	assert.Equal(t, models.IssueTypeWarning, warn.Type)
	assert.False(t, warn.Fixable, "unhandled code stays unfixable")

	pub := issues[3]
	assert.Equal(t, models.IssueTypeInfo, pub.Type)
	assert.Nil(t, pub.Location, "no location means publication-level issue")
}

func TestParseEPUBCheck_RejectsWrongShape(t *testing.T) {
	cases := map[string]string{
		"not json":         `{"messages": [`,
		"missing messages": `{"items": []}`,
		"message not obj":  `{"messages": ["RSC-005"]}`,
		"missing severity": `{"messages": [{"ID": "RSC-005", "message": "x"}]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseEPUBCheck([]byte(raw), nil)
			assert.Error(t, err)
		})
	}
}

const aceReportJSON = `{
  "assertions": [
    {
      "earl:testSubject": {"url": "OEBPS/c1.xhtml"},
      "assertions": [
        {
          "earl:test": {"dct:title": "image-alt", "earl:impact": "critical"},
          "earl:result": {"dct:description": "Images must have alternate text"}
        },
        {
          "earl:test": {"dct:title": "color-contrast", "earl:impact": "serious"},
          "earl:result": {"dct:description": "Elements must have sufficient color contrast"}
        }
      ]
    },
    {
      "earl:testSubject": {"url": "OEBPS/c2.xhtml"},
      "assertions": [
        {
          "earl:test": {"dct:title": "heading-order", "earl:impact": "moderate"},
          "earl:result": {}
        },
        {
          "earl:test": {"dct:title": "region", "earl:impact": "minor"}
        }
      ]
    }
  ]
}`

func TestParseAce(t *testing.T) {
	fixable := NewCodeSet("image-alt", "color-contrast", "heading-order")
	issues, err := ParseAce([]byte(aceReportJSON), fixable)
	require.NoError(t, err)
	require.Len(t, issues, 4)

	alt := issues[0]
	assert.Equal(t, "image-alt", alt.Code)
	assert.Equal(t, "Images must have alternate text", alt.Message)
	assert.Equal(t, models.IssueTypeError, alt.Type)
	assert.Equal(t, models.CategoryAccessibility, alt.Category)
	assert.True(t, alt.Fixable)
	assert.Equal(t, "OEBPS/c1.xhtml", alt.File())

	assert.Equal(t, models.IssueTypeError, issues[1].Type, "serious maps to error")
	assert.Equal(t, models.IssueTypeWarning, issues[2].Type, "moderate maps to warning")
	assert.Equal(t, "heading-order", issues[2].Message, "missing description falls back to rule title")

	minor := issues[3]
	assert.Equal(t, models.IssueTypeInfo, minor.Type)
	assert.False(t, minor.Fixable)
}

func TestParseAce_RejectsWrongShape(t *testing.T) {
	_, err := ParseAce([]byte(`{"assertions": [{"assertions": []}]}`), nil)
	assert.Error(t, err, "subject without earl:testSubject is rejected")

	_, err = ParseAce([]byte(`{}`), nil)
	assert.Error(t, err)
}

func TestCodeSet(t *testing.T) {
	s := NewCodeSet("a", "b")
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("c"))
	assert.False(t, CodeSet(nil).Contains("a"))
}
