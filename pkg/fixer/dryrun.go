package fixer

import "github.com/crdjm/epub-accessibility-fixer/pkg/models"

// Assignment records which strategy claims one issue during a dry run.
type Assignment struct {
	Issue *models.Issue `json:"issue"`
	Fixer string        `json:"fixer"`
}

// DryRunReport partitions the full issue set by whether a strategy claims
// each issue, without invoking any repair.
type DryRunReport struct {
	Fixable     []*models.Issue `json:"fixable"`
	Unfixable   []*models.Issue `json:"unfixable"`
	Assignments []Assignment    `json:"assignments"`
}

// PerformDryRun traverses every issue in the context (not just the
// pre-filtered fixable subset) and records whether a strategy claims it and
// which one. It uses the identical registry lookup as real dispatch so its
// predictions match what FixAllIssues would do. Nothing is mutated.
func (e *Engine) PerformDryRun(pc *models.ProcessingContext) *DryRunReport {
	report := &DryRunReport{}
	for _, issue := range pc.Issues {
		strategy := e.registry.FindStrategy(issue)
		if strategy == nil {
			report.Unfixable = append(report.Unfixable, issue)
			continue
		}
		report.Fixable = append(report.Fixable, issue)
		report.Assignments = append(report.Assignments, Assignment{
			Issue: issue,
			Fixer: strategy.Name(),
		})
	}
	return report
}
