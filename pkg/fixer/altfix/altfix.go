// Package altfix repairs images without text alternatives. Descriptions are
// requested from an optional image description service and cached by content
// hash; when neither yields anything, a filename-derived fallback is used.
// Every candidate description is recorded as a review artifact on the
// processing context, whether or not it was applied.
package altfix

import (
	"context"
	"encoding/hex"
	"fmt"
	"path"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

// Describer generates an image description from raw image bytes. A slow
// service must enforce its own timeout; an error surfaces as a fallback
// description, never as an engine fault.
type Describer interface {
	Describe(ctx context.Context, name string, data []byte) (string, error)
}

// Cache stores generated descriptions keyed by image content hash.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, description string) error
}

// Fixer sets alt attributes on images and area elements.
type Fixer struct {
	describer Describer
	cache     Cache
}

// Option configures the Fixer.
type Option func(*Fixer)

// WithDescriber attaches an image description service.
func WithDescriber(d Describer) Option {
	return func(f *Fixer) { f.describer = d }
}

// WithCache attaches a description cache.
func WithCache(c Cache) Option {
	return func(f *Fixer) { f.cache = c }
}

// New creates the alt text fixer.
func New(opts ...Option) *Fixer {
	f := &Fixer{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fixer) Name() string { return "alt-text" }

func (f *Fixer) HandledCodes() []string {
	return []string{"image-alt", "area-alt"}
}

func (f *Fixer) CanFix(issue *models.Issue) bool {
	switch issue.Code {
	case "image-alt", "area-alt":
		return issue.File() != ""
	}
	return false
}

func (f *Fixer) Fix(ctx context.Context, issue *models.Issue, pc *models.ProcessingContext) (*models.FixResult, error) {
	cf := pc.FindContentByPath(issue.File())
	if cf == nil || cf.Doc == nil {
		return &models.FixResult{
			Success: false,
			Message: fmt.Sprintf("content file %q not loaded", issue.File()),
		}, nil
	}

	tag := "img"
	if issue.Code == "area-alt" {
		tag = "area"
	}

	count := 0
	for _, el := range cf.Doc.FindAll("//" + tag) {
		if strings.TrimSpace(el.SelectAttrValue("alt", "")) != "" {
			continue
		}
		// Decorative images keep an explicit empty alt.
		if el.SelectAttrValue("role", "") == "presentation" {
			if el.SelectAttr("alt") == nil {
				el.CreateAttr("alt", "")
				count++
			}
			continue
		}

		src := el.SelectAttrValue("src", "")
		if tag == "area" {
			src = el.SelectAttrValue("href", "")
		}
		desc, source := f.describe(ctx, pc, cf.Path, src)
		el.CreateAttr("alt", desc)
		count++

		pc.AddArtifact(&models.Artifact{
			Kind:    models.ArtifactImageDescription,
			File:    cf.Path,
			Target:  src,
			Source:  source,
			Content: desc,
			Applied: true,
		})
	}

	if count == 0 {
		return &models.FixResult{
			Success: false,
			Message: fmt.Sprintf("no %s without alt text in %s", tag, cf.Path),
		}, nil
	}

	cf.Doc.MarkModified()
	return &models.FixResult{
		Success:      true,
		Message:      fmt.Sprintf("added alt text to %d %s element(s) in %s", count, tag, cf.Path),
		ChangedFiles: []string{cf.Path},
	}, nil
}

// describe resolves a description for one image: cache first, then the
// description service, then a filename-derived fallback.
func (f *Fixer) describe(ctx context.Context, pc *models.ProcessingContext, docPath, src string) (desc, source string) {
	fallback := humanizeFilename(src)

	imgPath := resolvePath(docPath, src)
	img := pc.FindContentByPath(imgPath)
	if img == nil || len(img.Data) == 0 {
		return fallback, "fallback"
	}

	key := hashKey(img.Data)
	if f.cache != nil {
		if cached, ok := f.cache.Get(key); ok {
			return cached, "cache"
		}
	}

	if f.describer != nil {
		if generated, err := f.describer.Describe(ctx, src, img.Data); err == nil && strings.TrimSpace(generated) != "" {
			if f.cache != nil {
				_ = f.cache.Set(key, generated)
			}
			return generated, "inference"
		}
	}
	return fallback, "fallback"
}

func hashKey(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// resolvePath resolves an image reference relative to its document.
func resolvePath(docPath, src string) string {
	if src == "" {
		return ""
	}
	if strings.HasPrefix(src, "/") {
		return strings.TrimPrefix(src, "/")
	}
	return path.Clean(path.Join(path.Dir(docPath), src))
}

func humanizeFilename(src string) string {
	base := path.Base(src)
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = strings.TrimSpace(base)
	if base == "" || base == "." {
		return "Image"
	}
	return "Image: " + base
}
