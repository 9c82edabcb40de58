package linkfix

import (
	"context"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crdjm/epub-accessibility-fixer/pkg/dom"
	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

func docContext(t *testing.T, xml string) *models.ProcessingContext {
	t.Helper()
	pc := models.NewProcessingContext("book.epub")
	doc, err := dom.Parse("OEBPS/c1.xhtml", []byte(xml))
	require.NoError(t, err)
	pc.AddContent(&models.ContentFile{Path: "OEBPS/c1.xhtml", MediaType: "application/xhtml+xml", Doc: doc})
	return pc
}

func linkIssue() *models.Issue {
	return &models.Issue{Code: "link-name", Location: &models.Location{File: "OEBPS/c1.xhtml"}, Fixable: true}
}

func TestFix_LabelsUnnamedLinks(t *testing.T) {
	pc := docContext(t, `<?xml version="1.0"?>
<html xmlns="http://www.w3.org/1999/xhtml">
  <body>
    <a href="chapter-two.xhtml"></a>
    <a href="notes.xhtml">Notes</a>
    <a href="https://example.org/page"></a>
  </body>
</html>`)

	f := New()
	result, err := f.Fix(context.Background(), linkIssue(), pc)
	require.NoError(t, err)
	require.True(t, result.Success, result.Message)

	links := pc.FindContentByPath("OEBPS/c1.xhtml").Doc.FindAll("//a")
	assert.Equal(t, "Go to chapter two", links[0].SelectAttrValue("aria-label", ""))
	assert.Equal(t, "", links[1].SelectAttrValue("aria-label", ""), "link with text untouched")
	assert.Equal(t, "Link to example.org", links[2].SelectAttrValue("aria-label", ""))
}

func TestFix_ImageAltCountsAsName(t *testing.T) {
	pc := docContext(t, `<?xml version="1.0"?>
<html xmlns="http://www.w3.org/1999/xhtml">
  <body><a href="cover.xhtml"><img src="c.png" alt="Cover"/></a></body>
</html>`)

	f := New()
	result, err := f.Fix(context.Background(), linkIssue(), pc)
	require.NoError(t, err)
	assert.False(t, result.Success, "image alt provides the accessible name already")
}

func TestFix_FragmentOnlyLinkLeftForHumans(t *testing.T) {
	pc := docContext(t, `<?xml version="1.0"?>
<html xmlns="http://www.w3.org/1999/xhtml">
  <body><a href="#fn1"></a></body>
</html>`)

	f := New()
	result, err := f.Fix(context.Background(), linkIssue(), pc)
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestLabelFor(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"chapter_one.xhtml", "Go to chapter one"},
		{"ch2.xhtml#s3", "Go to ch2"},
		{"https://example.org/a/b", "Link to example.org"},
		{"http://example.org", "Link to example.org"},
		{"#local", ""},
		{"", ""},
	}
	for _, tt := range tests {
		a := mustAnchor(t, tt.href)
		assert.Equal(t, tt.want, labelFor(a), tt.href)
	}
}

func mustAnchor(t *testing.T, href string) *etree.Element {
	t.Helper()
	doc, err := dom.Parse("x.xhtml", []byte(`<?xml version="1.0"?>
<html xmlns="http://www.w3.org/1999/xhtml"><body><a href="`+href+`"/></body></html>`))
	require.NoError(t, err)
	return doc.Find("//a")
}
