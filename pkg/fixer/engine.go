package fixer

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

// Engine drives issue resolution for one EPUB. The dispatch loop is strictly
// sequential: ordering of side effects is part of the observable contract,
// because suppression decisions and later strategies' heuristics depend on
// earlier mutations.
type Engine struct {
	registry   *Registry
	verbose    bool
	onDispatch func(*models.Issue)
}

// Option configures an Engine.
type Option func(*Engine)

// WithVerbose enables per-dispatch diagnostics on stderr.
func WithVerbose() Option {
	return func(e *Engine) {
		e.verbose = true
	}
}

// WithProgress registers a callback invoked once per dispatched issue,
// before the strategy runs. Suppressed issues do not trigger it.
func WithProgress(fn func(*models.Issue)) Option {
	return func(e *Engine) {
		e.onDispatch = fn
	}
}

// New creates an engine over the given strategy registry.
func New(registry *Registry, opts ...Option) *Engine {
	e := &Engine{registry: registry}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FixAllIssues dispatches every fixable, unfixed issue in the context in
// original report order. After each successful repair the suppression rules
// run with the fixed issue as anchor, so equivalent issues later in the
// batch are skipped without re-invoking their strategies. One strategy's
// fault never aborts the batch.
func (e *Engine) FixAllIssues(ctx context.Context, pc *models.ProcessingContext) []*models.FixResult {
	batch := make([]*models.Issue, 0, len(pc.Issues))
	for _, issue := range pc.Issues {
		if issue.Fixable && !issue.Fixed {
			batch = append(batch, issue)
		}
	}

	var results []*models.FixResult
	for _, issue := range batch {
		// Suppression from an earlier iteration may have resolved it.
		if issue.Fixed {
			continue
		}

		if e.onDispatch != nil {
			e.onDispatch(issue)
		}
		result := e.FixIssue(ctx, issue, pc)
		results = append(results, result)
		if !result.Success {
			continue
		}

		issue.Fixed = true
		pc.AddFix(result)

		suppressed := EquivalentIssues(issue, pc.Issues)
		for _, dup := range suppressed {
			dup.Fixed = true
		}
		if e.verbose && len(suppressed) > 0 {
			fmt.Fprintf(os.Stderr, "  %s resolved %d equivalent issue(s)\n", issue.Code, len(suppressed))
		}
	}

	if e.verbose {
		succeeded := 0
		for _, r := range results {
			if r.Success {
				succeeded++
			}
		}
		color.New(color.FgCyan).Fprintf(os.Stderr, "dispatched %d issue(s), %d repaired\n", len(results), succeeded)
	}
	return results
}

// FixIssue resolves a strategy for one issue and invokes it inside the
// engine's failure boundary. It performs no suppression and never sets the
// issue's Fixed flag; FixAllIssues owns that bookkeeping.
func (e *Engine) FixIssue(ctx context.Context, issue *models.Issue, pc *models.ProcessingContext) *models.FixResult {
	strategy := e.registry.FindStrategy(issue)
	if strategy == nil {
		return &models.FixResult{
			Success:   false,
			IssueCode: issue.Code,
			Message:   fmt.Sprintf("no registered fixer handles issue %s", issue.Code),
		}
	}

	if e.verbose {
		fmt.Fprintf(os.Stderr, "  %s -> %s\n", issue.Key(), strategy.Name())
	}

	result, err := safeFix(ctx, strategy, issue, pc)
	if err != nil {
		return &models.FixResult{
			Success:   false,
			Fixer:     strategy.Name(),
			IssueCode: issue.Code,
			Message:   fmt.Sprintf("fixer %s failed on %s: %v", strategy.Name(), issue.Code, err),
		}
	}
	if result.Fixer == "" {
		result.Fixer = strategy.Name()
	}
	if result.IssueCode == "" {
		result.IssueCode = issue.Code
	}
	return result
}

// safeFix invokes a strategy and converts panics and nil results into
// errors, so a single misbehaving strategy cannot abort the batch.
func safeFix(ctx context.Context, s Strategy, issue *models.Issue, pc *models.ProcessingContext) (result *models.FixResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	result, err = s.Fix(ctx, issue, pc)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("fixer returned no result")
	}
	return result, nil
}

// AvailableFixers returns the registered strategy names in order.
func (e *Engine) AvailableFixers() []string {
	return e.registry.Names()
}

// HandledCodes returns the deduplicated union of declared codes.
func (e *Engine) HandledCodes() []string {
	return e.registry.HandledCodes()
}
