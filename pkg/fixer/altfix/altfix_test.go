package altfix

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crdjm/epub-accessibility-fixer/pkg/dom"
	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

type fakeDescriber struct {
	desc  string
	err   error
	calls int
}

func (d *fakeDescriber) Describe(_ context.Context, _ string, _ []byte) (string, error) {
	d.calls++
	return d.desc, d.err
}

type memCache map[string]string

func (c memCache) Get(key string) (string, bool) {
	v, ok := c[key]
	return v, ok
}

func (c memCache) Set(key, desc string) error {
	c[key] = desc
	return nil
}

const pageXML = `<?xml version="1.0"?>
<html xmlns="http://www.w3.org/1999/xhtml">
  <body>
    <img src="images/cover_photo.png"/>
    <img src="images/deco.png" role="presentation"/>
    <img src="images/ok.png" alt="already described"/>
  </body>
</html>`

func buildContext(t *testing.T) *models.ProcessingContext {
	t.Helper()
	pc := models.NewProcessingContext("book.epub")
	doc, err := dom.Parse("OEBPS/c1.xhtml", []byte(pageXML))
	require.NoError(t, err)
	pc.AddContent(&models.ContentFile{Path: "OEBPS/c1.xhtml", MediaType: "application/xhtml+xml", Doc: doc})
	pc.AddContent(&models.ContentFile{
		Path:      "OEBPS/images/cover_photo.png",
		MediaType: "image/png",
		Data:      []byte{0x89, 'P', 'N', 'G', 1, 2, 3},
	})
	return pc
}

func altIssue() *models.Issue {
	return &models.Issue{Code: "image-alt", Location: &models.Location{File: "OEBPS/c1.xhtml"}, Fixable: true}
}

func TestFix_InferenceDescription(t *testing.T) {
	pc := buildContext(t)
	d := &fakeDescriber{desc: "A lighthouse at dusk"}
	cache := memCache{}
	f := New(WithDescriber(d), WithCache(cache))

	result, err := f.Fix(context.Background(), altIssue(), pc)
	require.NoError(t, err)
	require.True(t, result.Success, result.Message)

	doc := pc.FindContentByPath("OEBPS/c1.xhtml").Doc
	imgs := doc.FindAll("//img")
	assert.Equal(t, "A lighthouse at dusk", imgs[0].SelectAttrValue("alt", ""))
	assert.Equal(t, "", imgs[1].SelectAttrValue("alt", "-"), "decorative image gets explicit empty alt")
	assert.Equal(t, "already described", imgs[2].SelectAttrValue("alt", ""))

	assert.Equal(t, 1, d.calls)
	assert.Len(t, cache, 1, "generated description cached by content hash")

	// One artifact per description attempt, applied or not.
	var described []*models.Artifact
	for _, a := range pc.Artifacts {
		if a.Kind == models.ArtifactImageDescription {
			described = append(described, a)
		}
	}
	require.Len(t, described, 1)
	assert.Equal(t, "inference", described[0].Source)
	assert.Equal(t, "A lighthouse at dusk", described[0].Content)
}

func TestFix_CacheHitSkipsInference(t *testing.T) {
	pc := buildContext(t)
	img := pc.FindContentByPath("OEBPS/images/cover_photo.png")
	cache := memCache{hashKey(img.Data): "Cached description"}
	d := &fakeDescriber{desc: "should not be used"}
	f := New(WithDescriber(d), WithCache(cache))

	result, err := f.Fix(context.Background(), altIssue(), pc)
	require.NoError(t, err)
	require.True(t, result.Success)

	doc := pc.FindContentByPath("OEBPS/c1.xhtml").Doc
	assert.Equal(t, "Cached description", doc.FindAll("//img")[0].SelectAttrValue("alt", ""))
	assert.Zero(t, d.calls)
}

func TestFix_FallbackOnInferenceError(t *testing.T) {
	pc := buildContext(t)
	d := &fakeDescriber{err: errors.New("inference timeout")}
	f := New(WithDescriber(d))

	result, err := f.Fix(context.Background(), altIssue(), pc)
	require.NoError(t, err, "a slow or failing describer degrades to fallback text, never a fault")
	require.True(t, result.Success)

	doc := pc.FindContentByPath("OEBPS/c1.xhtml").Doc
	assert.Equal(t, "Image: cover photo", doc.FindAll("//img")[0].SelectAttrValue("alt", ""))

	require.NotEmpty(t, pc.Artifacts)
	assert.Equal(t, "fallback", pc.Artifacts[0].Source)
}

func TestFix_NoDescriberNoImageData(t *testing.T) {
	pc := models.NewProcessingContext("book.epub")
	doc, err := dom.Parse("c1.xhtml", []byte(`<?xml version="1.0"?>
<html xmlns="http://www.w3.org/1999/xhtml"><body><img src="missing.png"/></body></html>`))
	require.NoError(t, err)
	pc.AddContent(&models.ContentFile{Path: "c1.xhtml", MediaType: "application/xhtml+xml", Doc: doc})

	f := New()
	result, ferr := f.Fix(context.Background(), &models.Issue{Code: "image-alt", Location: &models.Location{File: "c1.xhtml"}}, pc)
	require.NoError(t, ferr)
	require.True(t, result.Success)
	assert.Equal(t, "Image: missing", doc.Find("//img").SelectAttrValue("alt", ""))
}

func TestFix_NothingToDo(t *testing.T) {
	pc := models.NewProcessingContext("book.epub")
	doc, err := dom.Parse("c1.xhtml", []byte(`<?xml version="1.0"?>
<html xmlns="http://www.w3.org/1999/xhtml"><body><img src="a.png" alt="fine"/></body></html>`))
	require.NoError(t, err)
	pc.AddContent(&models.ContentFile{Path: "c1.xhtml", MediaType: "application/xhtml+xml", Doc: doc})

	f := New()
	result, ferr := f.Fix(context.Background(), &models.Issue{Code: "image-alt", Location: &models.Location{File: "c1.xhtml"}}, pc)
	require.NoError(t, ferr)
	assert.False(t, result.Success)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "OEBPS/images/a.png", resolvePath("OEBPS/c1.xhtml", "images/a.png"))
	assert.Equal(t, "images/a.png", resolvePath("c1.xhtml", "images/a.png"))
	assert.Equal(t, "OEBPS/a.png", resolvePath("OEBPS/sub/c1.xhtml", "../a.png"))
	assert.Equal(t, "images/a.png", resolvePath("c1.xhtml", "/images/a.png"))
}
