package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crdjm/epub-accessibility-fixer/internal/output"
	"github.com/crdjm/epub-accessibility-fixer/internal/progress"
	"github.com/crdjm/epub-accessibility-fixer/pkg/epub"
	"github.com/crdjm/epub-accessibility-fixer/pkg/fixer"
	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

var fixCmd = &cobra.Command{
	Use:   "fix <epub>",
	Short: "Apply repairs and write a fixed copy of the publication",
	Args:  cobra.ExactArgs(1),
	RunE:  runFix,
}

func init() {
	fixCmd.Flags().String("epubcheck", "", "EPUBCheck JSON report to ingest")
	fixCmd.Flags().String("ace", "", "DAISY ACE JSON report to ingest")
	fixCmd.Flags().StringP("out", "O", "", "Destination path for the fixed EPUB (default <name>_fixed.epub)")

	rootCmd.AddCommand(fixCmd)
}

func runFix(cmd *cobra.Command, args []string) error {
	epubcheckPath, _ := cmd.Flags().GetString("epubcheck")
	acePath, _ := cmd.Flags().GetString("ace")
	if epubcheckPath == "" && acePath == "" {
		return fmt.Errorf("at least one of --epubcheck or --ace is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	container, err := epub.Open(args[0])
	if err != nil {
		return err
	}
	pc, err := container.Load()
	if err != nil {
		return err
	}

	n, err := loadIssues(pc, registry, epubcheckPath, acePath)
	if err != nil {
		return err
	}
	if n == 0 {
		color.Yellow("No issues reported; nothing to fix")
		return nil
	}

	fixable := countFixable(pc)
	if fixable == 0 {
		color.Yellow("%d issue(s) reported, none handled by a registered fixer", n)
		return renderFixReport(cmd, pc, nil, nil, "")
	}

	tracker := progress.NewTracker("Fixing issues...", fixable)
	opts := []fixer.Option{
		fixer.WithProgress(func(issue *models.Issue) {
			tracker.Describe("Fixing " + issue.Code + "...")
			tracker.Tick()
		}),
	}
	if verbose {
		opts = append(opts, fixer.WithVerbose())
	}

	engine := fixer.New(registry, opts...)
	results := engine.FixAllIssues(cmd.Context(), pc)
	tracker.FinishSuccess()

	validationErrs := epub.ValidateModified(pc)

	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		outPath = deriveOutPath(args[0])
	}
	if err := container.Write(pc, outPath); err != nil {
		return fmt.Errorf("write fixed epub: %w", err)
	}

	return renderFixReport(cmd, pc, results, validationErrs, outPath)
}

// renderFixReport triages dispatch results into fixed, attempted-and-failed,
// and no-handler sections and renders them in the configured format.
func renderFixReport(cmd *cobra.Command, pc *models.ProcessingContext, results []*models.FixResult, validationErrs []epub.ValidationError, outPath string) error {
	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), getOutputFile(cmd), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var fixed, failed, unhandled []*models.FixResult
	for _, r := range results {
		switch {
		case r.Success:
			fixed = append(fixed, r)
		case r.Fixer != "":
			failed = append(failed, r)
		default:
			unhandled = append(unhandled, r)
		}
	}

	var rows [][]string
	for _, r := range fixed {
		rows = append(rows, []string{r.IssueCode, r.Fixer, output.SeverityColor("fixed", "fixed"), truncate(r.Message, 60)})
	}
	for _, r := range failed {
		rows = append(rows, []string{r.IssueCode, r.Fixer, output.SeverityColor("error", "failed"), truncate(r.Message, 60)})
	}
	for _, r := range unhandled {
		rows = append(rows, []string{r.IssueCode, "-", output.SeverityColor("warning", "no handler"), truncate(r.Message, 60)})
	}

	report := &output.Report{
		Title: "Fix Session",
		Data: map[string]any{
			"output":            outPath,
			"results":           results,
			"fixes":             pc.Fixes,
			"artifacts":         pc.Artifacts,
			"validation_errors": validationErrs,
		},
	}

	report.Sections = append(report.Sections, output.NewTable(
		"Dispatch Results",
		[]string{"Code", "Fixer", "Status", "Message"},
		rows,
		[]string{
			fmt.Sprintf("Fixed: %d", len(fixed)),
			fmt.Sprintf("Failed: %d", len(failed)),
			fmt.Sprintf("No handler: %d", len(unhandled)),
		},
		nil,
	))

	if len(validationErrs) > 0 {
		var vrows [][]string
		for _, ve := range validationErrs {
			vrows = append(vrows, []string{ve.File, ve.Err.Error()})
		}
		report.Sections = append(report.Sections, output.NewTable(
			"Post-Fix Validation Failures",
			[]string{"File", "Error"},
			vrows,
			nil,
			nil,
		))
	}

	if len(pc.Artifacts) > 0 {
		var arows [][]string
		for _, a := range pc.Artifacts {
			applied := "no"
			if a.Applied {
				applied = "yes"
			}
			arows = append(arows, []string{string(a.Kind), a.Target, a.Source, applied, truncate(a.Content, 50)})
		}
		report.Sections = append(report.Sections, output.NewTable(
			"Review Artifacts",
			[]string{"Kind", "Target", "Source", "Applied", "Content"},
			arows,
			nil,
			nil,
		))
	}

	if err := formatter.Output(report); err != nil {
		return err
	}

	if outPath != "" && formatter.Format() == output.FormatText {
		formatter.Success("Fixed EPUB written to %s", outPath)
	}
	return nil
}
