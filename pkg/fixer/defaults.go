package fixer

import (
	"strings"

	"github.com/crdjm/epub-accessibility-fixer/pkg/fixer/altfix"
	"github.com/crdjm/epub-accessibility-fixer/pkg/fixer/contrastfix"
	"github.com/crdjm/epub-accessibility-fixer/pkg/fixer/headingfix"
	"github.com/crdjm/epub-accessibility-fixer/pkg/fixer/langfix"
	"github.com/crdjm/epub-accessibility-fixer/pkg/fixer/linkfix"
	"github.com/crdjm/epub-accessibility-fixer/pkg/fixer/metafix"
	"github.com/crdjm/epub-accessibility-fixer/pkg/fixer/structfix"
	"github.com/crdjm/epub-accessibility-fixer/pkg/fixer/titlefix"
)

// Compile-time checks that every shipped strategy satisfies the contract.
var (
	_ Strategy = (*structfix.Fixer)(nil)
	_ Strategy = (*metafix.Fixer)(nil)
	_ Strategy = (*langfix.Fixer)(nil)
	_ Strategy = (*titlefix.Fixer)(nil)
	_ Strategy = (*headingfix.Fixer)(nil)
	_ Strategy = (*altfix.Fixer)(nil)
	_ Strategy = (*contrastfix.Fixer)(nil)
	_ Strategy = (*linkfix.Fixer)(nil)
)

// DefaultsConfig carries the knobs the standard strategies take from the
// application configuration.
type DefaultsConfig struct {
	// DefaultLanguage is used when no publication language can be detected.
	DefaultLanguage string
	// MinContrastRatio overrides the WCAG AA target when > 1.
	MinContrastRatio float64
	// Describer generates image descriptions; nil disables inference.
	Describer altfix.Describer
	// DescriptionCache caches generated descriptions; nil disables caching.
	DescriptionCache altfix.Cache
	// Disabled lists strategy names to leave out of the registry.
	Disabled []string
}

// DefaultRegistry returns the standard strategies in their canonical order.
// Foundational repairs (structural validity, metadata, language, titles) run
// before presentational ones (headings, alt text, contrast, links), because
// the later strategies' heuristics depend on the earlier normalization;
// text-language heuristics are only meaningful once the language attribute
// exists. The order is behavioral contract; do not reorder casually.
func DefaultRegistry(cfg DefaultsConfig) *Registry {
	all := []Strategy{
		structfix.New(),
		metafix.New(),
		langfix.New(langfix.WithDefaultLanguage(cfg.DefaultLanguage)),
		titlefix.New(),
		headingfix.New(),
		altfix.New(
			altfix.WithDescriber(cfg.Describer),
			altfix.WithCache(cfg.DescriptionCache),
		),
		contrastfix.New(contrastfix.WithMinRatio(cfg.MinContrastRatio)),
		linkfix.New(),
	}

	disabled := make(map[string]bool, len(cfg.Disabled))
	for _, name := range cfg.Disabled {
		disabled[strings.ToLower(name)] = true
	}

	kept := all[:0]
	for _, s := range all {
		if disabled[strings.ToLower(s.Name())] {
			continue
		}
		kept = append(kept, s)
	}
	return NewRegistry(kept...)
}
