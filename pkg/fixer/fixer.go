// Package fixer contains the issue resolution engine: it matches each
// reported issue to exactly one capable repair strategy, applies that
// strategy exactly once, and propagates the resulting fixed state to every
// other issue in the batch that represents the same underlying defect.
package fixer

import (
	"context"
	"sort"

	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

// Strategy is a capability-scoped repair unit. Implementations must keep
// CanFix a pure function of the issue and must be conservative about
// overlapping codes: an issue that looks like theirs but is owned by a more
// specific strategy lower in the registry must be declined, or that strategy
// is starved.
//
// Fix may mutate any document in the processing context and may append
// side-channel artifacts, but must never set Issue.Fixed itself; that is the
// engine's exclusive responsibility. Expected failure conditions are
// reported through FixResult.Success=false. A returned error is reserved for
// unexpected faults and is converted by the engine into a failed result.
type Strategy interface {
	Name() string
	HandledCodes() []string
	CanFix(issue *models.Issue) bool
	Fix(ctx context.Context, issue *models.Issue, pc *models.ProcessingContext) (*models.FixResult, error)
}

// Registry is a fixed, hand-ordered list of strategies. First match wins:
// registration order is policy, not an implementation detail. Foundational
// categories (structural validity, metadata, language) are registered before
// presentational ones (headings, alt text, contrast, links) because later
// strategies' heuristics depend on earlier normalization.
type Registry struct {
	strategies []Strategy
}

// NewRegistry builds a registry preserving the given order.
func NewRegistry(strategies ...Strategy) *Registry {
	return &Registry{strategies: strategies}
}

// FindStrategy returns the first registered strategy claiming the issue, or
// nil when no strategy does. A nil return is an expected terminal outcome
// for issues requiring manual remediation, not an error.
func (r *Registry) FindStrategy(issue *models.Issue) Strategy {
	for _, s := range r.strategies {
		if s.CanFix(issue) {
			return s
		}
	}
	return nil
}

// Strategies returns the registered strategies in registration order.
func (r *Registry) Strategies() []Strategy {
	return r.strategies
}

// Names returns the strategy names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for _, s := range r.strategies {
		names = append(names, s.Name())
	}
	return names
}

// HandledCodes returns the union of all declared codes, deduplicated and
// sorted. Used for introspection and CLI help text only; CanFix remains the
// authoritative capability predicate.
func (r *Registry) HandledCodes() []string {
	seen := make(map[string]bool)
	var codes []string
	for _, s := range r.strategies {
		for _, c := range s.HandledCodes() {
			if !seen[c] {
				seen[c] = true
				codes = append(codes, c)
			}
		}
	}
	sort.Strings(codes)
	return codes
}
