// Package contrastfix darkens or lightens foreground colors in stylesheet
// rules until they meet the WCAG AA contrast ratio against their declared
// background. It touches inline style elements of the reported document and
// any linked CSS entries in the container.
package contrastfix

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

// MinRatio is the WCAG AA contrast requirement for normal text.
const MinRatio = 4.5

// Fixer adjusts low-contrast color declarations.
type Fixer struct {
	minRatio float64
}

// Option configures the Fixer.
type Option func(*Fixer)

// WithMinRatio overrides the target contrast ratio.
func WithMinRatio(r float64) Option {
	return func(f *Fixer) {
		if r > 1 {
			f.minRatio = r
		}
	}
}

// New creates the contrast fixer.
func New(opts ...Option) *Fixer {
	f := &Fixer{minRatio: MinRatio}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fixer) Name() string { return "contrast" }

func (f *Fixer) HandledCodes() []string {
	return []string{"color-contrast"}
}

func (f *Fixer) CanFix(issue *models.Issue) bool {
	return issue.Code == "color-contrast" && issue.File() != ""
}

func (f *Fixer) Fix(_ context.Context, issue *models.Issue, pc *models.ProcessingContext) (*models.FixResult, error) {
	cf := pc.FindContentByPath(issue.File())
	if cf == nil || cf.Doc == nil {
		return &models.FixResult{
			Success: false,
			Message: fmt.Sprintf("content file %q not loaded", issue.File()),
		}, nil
	}

	var changed []string
	adjusted := 0

	for _, styleEl := range cf.Doc.FindAll("//style") {
		css, n := f.adjustCSS(styleEl.Text())
		if n > 0 {
			styleEl.SetText(css)
			adjusted += n
		}
	}
	if adjusted > 0 {
		cf.Doc.MarkModified()
		changed = append(changed, cf.Path)
	}

	// Linked stylesheets live as raw CSS entries in the container.
	for _, sheet := range pc.AllContentFiles() {
		if sheet.MediaType != "text/css" || len(sheet.Data) == 0 {
			continue
		}
		css, n := f.adjustCSS(string(sheet.Data))
		if n > 0 {
			sheet.Data = []byte(css)
			sheet.Modified = true
			adjusted += n
			changed = append(changed, sheet.Path)
		}
	}

	if adjusted == 0 {
		return &models.FixResult{
			Success: false,
			Message: fmt.Sprintf("no adjustable low-contrast declaration found for %s", cf.Path),
		}, nil
	}

	return &models.FixResult{
		Success:      true,
		Message:      fmt.Sprintf("adjusted %d color declaration(s) to reach %.1f:1", adjusted, f.minRatio),
		ChangedFiles: changed,
		Details:      map[string]string{"min_ratio": fmt.Sprintf("%.1f", f.minRatio)},
	}, nil
}

var ruleRe = regexp.MustCompile(`(?s)\{[^}]*\}`)
var colorRe = regexp.MustCompile(`(?i)(^|[;{\s])color\s*:\s*(#[0-9a-f]{3,6})`)
var bgRe = regexp.MustCompile(`(?i)background(?:-color)?\s*:\s*(#[0-9a-f]{3,6})`)

// adjustCSS rewrites each rule block whose color/background pair falls below
// the target ratio. Background colors are left alone; only the foreground
// moves, away from the background's luminance.
func (f *Fixer) adjustCSS(css string) (string, int) {
	count := 0
	out := ruleRe.ReplaceAllStringFunc(css, func(block string) string {
		cm := colorRe.FindStringSubmatch(block)
		if cm == nil {
			return block
		}
		fg, ok := parseHex(cm[2])
		if !ok {
			return block
		}
		bg := rgb{255, 255, 255}
		if bm := bgRe.FindStringSubmatch(block); bm != nil {
			if parsed, ok := parseHex(bm[1]); ok {
				bg = parsed
			}
		}
		if contrastRatio(fg, bg) >= f.minRatio {
			return block
		}
		fixed := adjustForeground(fg, bg, f.minRatio)
		count++
		return strings.Replace(block, cm[2], fixed.hex(), 1)
	})
	return out, count
}

type rgb struct{ r, g, b uint8 }

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}

func parseHex(s string) (rgb, bool) {
	s = strings.TrimPrefix(strings.ToLower(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return rgb{}, false
	}
	var c rgb
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &c.r, &c.g, &c.b); err != nil {
		return rgb{}, false
	}
	return c, true
}

// relativeLuminance implements the WCAG definition.
func relativeLuminance(c rgb) float64 {
	lin := func(v uint8) float64 {
		f := float64(v) / 255
		if f <= 0.03928 {
			return f / 12.92
		}
		return math.Pow((f+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.r) + 0.7152*lin(c.g) + 0.0722*lin(c.b)
}

func contrastRatio(a, b rgb) float64 {
	la, lb := relativeLuminance(a), relativeLuminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// adjustForeground steps the foreground toward black or white, whichever
// direction moves away from the background, until the ratio is met.
func adjustForeground(fg, bg rgb, minRatio float64) rgb {
	darken := relativeLuminance(bg) >= 0.5
	c := fg
	for i := 0; i < 20; i++ {
		if contrastRatio(c, bg) >= minRatio {
			return c
		}
		c = step(c, darken)
	}
	if darken {
		return rgb{0, 0, 0}
	}
	return rgb{255, 255, 255}
}

func step(c rgb, darken bool) rgb {
	adj := func(v uint8) uint8 {
		if darken {
			if v < 16 {
				return 0
			}
			return v - 16
		}
		if v > 239 {
			return 255
		}
		return v + 16
	}
	return rgb{adj(c.r), adj(c.g), adj(c.b)}
}
