package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crdjm/epub-accessibility-fixer/internal/output"
	"github.com/crdjm/epub-accessibility-fixer/pkg/epub"
	"github.com/crdjm/epub-accessibility-fixer/pkg/fixer"
)

var planCmd = &cobra.Command{
	Use:   "plan <epub>",
	Short: "Preview which fixer would claim each reported issue",
	Long: `Plan runs the same strategy lookup as fix but applies nothing. It shows,
per issue, the fixer that would handle it, and lists the issues no fixer
claims.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().String("epubcheck", "", "EPUBCheck JSON report to ingest")
	planCmd.Flags().String("ace", "", "DAISY ACE JSON report to ingest")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
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
		color.Yellow("No issues reported")
		return nil
	}

	engine := fixer.New(registry)
	plan := engine.PerformDryRun(pc)

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), getOutputFile(cmd), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var rows [][]string
	for _, a := range plan.Assignments {
		rows = append(rows, []string{
			a.Issue.Code,
			issueLocation(a.Issue),
			a.Fixer,
			truncate(a.Issue.Message, 60),
		})
	}

	report := &output.Report{
		Title: "Fix Plan",
		Data:  plan,
	}
	report.Sections = append(report.Sections, output.NewTable(
		"Planned Repairs",
		[]string{"Code", "Location", "Fixer", "Message"},
		rows,
		[]string{
			fmt.Sprintf("Claimable: %d", len(plan.Fixable)),
			fmt.Sprintf("Unclaimed: %d", len(plan.Unfixable)),
		},
		nil,
	))

	if len(plan.Unfixable) > 0 {
		var urows [][]string
		for _, issue := range plan.Unfixable {
			urows = append(urows, []string{
				issue.Code,
				issueLocation(issue),
				string(issue.Type),
				truncate(issue.Message, 60),
			})
		}
		report.Sections = append(report.Sections, output.NewTable(
			"Manual Remediation Needed",
			[]string{"Code", "Location", "Severity", "Message"},
			urows,
			nil,
			nil,
		))
	}

	return formatter.Output(report)
}
