package metafix

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crdjm/epub-accessibility-fixer/pkg/dom"
	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

const opfXML = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:identifier id="uid">urn:uuid:0001</dc:identifier>
    <dc:title>Sample Book</dc:title>
    <meta property="schema:accessMode">visual</meta>
  </metadata>
</package>`

const chapterXML = `<?xml version="1.0"?>
<html xmlns="http://www.w3.org/1999/xhtml">
  <head><title>C</title></head>
  <body><p>text</p><img src="fig.png" alt="figure"/></body>
</html>`

func buildContext(t *testing.T) *models.ProcessingContext {
	t.Helper()
	pc := models.NewProcessingContext("book.epub")
	pc.OpfPath = "OEBPS/content.opf"

	opf, err := dom.Parse(pc.OpfPath, []byte(opfXML))
	require.NoError(t, err)
	pc.AddContent(&models.ContentFile{Path: pc.OpfPath, MediaType: "application/oebps-package+xml", Doc: opf})

	ch, err := dom.Parse("OEBPS/c1.xhtml", []byte(chapterXML))
	require.NoError(t, err)
	pc.AddContent(&models.ContentFile{Path: "OEBPS/c1.xhtml", MediaType: "application/xhtml+xml", Doc: ch})
	return pc
}

func TestCanFix(t *testing.T) {
	f := New()

	assert.True(t, f.CanFix(&models.Issue{Code: "metadata-accessmode"}))
	assert.True(t, f.CanFix(&models.Issue{Code: "metadata-accessibilitysummary"}))
	assert.True(t, f.CanFix(&models.Issue{Code: "ACC-001", Message: "missing schema:accessModeSufficient"}))
	assert.False(t, f.CanFix(&models.Issue{Code: "image-alt"}))
	assert.False(t, f.CanFix(&models.Issue{Code: "metadata-other"}))
}

func TestFix_WritesCompleteBlock(t *testing.T) {
	pc := buildContext(t)
	f := New()

	result, err := f.Fix(context.Background(), &models.Issue{Code: "metadata-accessmode"}, pc)
	require.NoError(t, err)
	require.True(t, result.Success, result.Message)

	opf := pc.Opf()
	assert.True(t, opf.Doc.Modified)

	byProp := map[string][]string{}
	for _, el := range opf.Doc.FindAll("//metadata/meta") {
		prop := el.SelectAttrValue("property", "")
		byProp[prop] = append(byProp[prop], el.Text())
	}

	assert.ElementsMatch(t, []string{"textual", "visual"}, byProp["schema:accessMode"],
		"stale partial property replaced, visual kept because the publication has images")
	assert.Equal(t, []string{"textual"}, byProp["schema:accessModeSufficient"])
	assert.ElementsMatch(t, []string{"structuralNavigation", "alternativeText"}, byProp["schema:accessibilityFeature"])
	assert.Equal(t, []string{"none"}, byProp["schema:accessibilityHazard"])
	require.Len(t, byProp["schema:accessibilitySummary"], 1)
	assert.NotEmpty(t, byProp["schema:accessibilitySummary"][0])

	// The generated summary is kept for human review.
	require.Len(t, pc.Artifacts, 1)
	assert.Equal(t, models.ArtifactMetadataSuggestion, pc.Artifacts[0].Kind)
	assert.True(t, pc.Artifacts[0].Applied)
}

func TestFix_NoPackageDocument(t *testing.T) {
	pc := models.NewProcessingContext("book.epub")
	f := New()

	result, err := f.Fix(context.Background(), &models.Issue{Code: "metadata-accessmode"}, pc)
	require.NoError(t, err)
	assert.False(t, result.Success)
}
