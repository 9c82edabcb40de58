package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXHTML = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
  <head><title>Sample</title></head>
  <body>
    <h1 id="top">Heading</h1>
    <p>first</p>
    <p>second</p>
  </body>
</html>`

func TestParse(t *testing.T) {
	doc, err := Parse("OEBPS/c1.xhtml", []byte(sampleXHTML))
	require.NoError(t, err)
	assert.Equal(t, "OEBPS/c1.xhtml", doc.Path)
	assert.False(t, doc.Modified)
	require.NotNil(t, doc.Root())
	assert.Equal(t, "html", doc.Root().Tag)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("bad.xhtml", []byte("<html><body></html>"))
	assert.Error(t, err, "mismatched tags do not parse")

	_, err = Parse("empty.xhtml", []byte("   "))
	assert.Error(t, err, "no root element")
}

func TestFind(t *testing.T) {
	doc, err := Parse("c1.xhtml", []byte(sampleXHTML))
	require.NoError(t, err)

	h1 := doc.Find("//h1")
	require.NotNil(t, h1)
	assert.Equal(t, "top", h1.SelectAttrValue("id", ""))

	assert.Nil(t, doc.Find("//table"))
	assert.Len(t, doc.FindAll("//p"), 2)
}

func TestSerialize_RoundTripsMutation(t *testing.T) {
	doc, err := Parse("c1.xhtml", []byte(sampleXHTML))
	require.NoError(t, err)

	doc.Root().CreateAttr("lang", "en")
	doc.MarkModified()
	assert.True(t, doc.Modified)

	out, err := doc.Serialize()
	require.NoError(t, err)

	reparsed, err := Parse("c1.xhtml", out)
	require.NoError(t, err)
	assert.Equal(t, "en", reparsed.Root().SelectAttrValue("lang", ""))
	assert.NotNil(t, reparsed.Find("//h1"), "existing content survives")
}
