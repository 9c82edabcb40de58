package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crdjm/epub-accessibility-fixer/internal/output"
	"github.com/crdjm/epub-accessibility-fixer/pkg/epub"
)

var validateCmd = &cobra.Command{
	Use:   "validate <epub>",
	Short: "Check that the container loads and its metadata is complete",
	Long: `Validate opens the container, parses every content document, and reports
missing publication metadata. It is a loader sanity check, not a replacement
for EPUBCheck.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), getOutputFile(cmd), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	container, err := epub.Open(args[0])
	if err != nil {
		return fmt.Errorf("open container: %w", err)
	}
	pc, err := container.Load()
	if err != nil {
		return fmt.Errorf("load container: %w", err)
	}

	var problems []string
	if pc.Metadata.Title == "" {
		problems = append(problems, "package has no dc:title")
	}
	if pc.Metadata.Language == "" {
		problems = append(problems, "package has no dc:language")
	}
	if pc.Metadata.Identifier == "" {
		problems = append(problems, "package has no dc:identifier")
	}
	if len(pc.ContentDocuments()) == 0 {
		problems = append(problems, "manifest lists no content documents")
	}

	rows := [][]string{
		{"Package document", container.OpfPath},
		{"Title", orDash(pc.Metadata.Title)},
		{"Language", orDash(pc.Metadata.Language)},
		{"Identifier", orDash(pc.Metadata.Identifier)},
		{"Content documents", fmt.Sprintf("%d", len(pc.ContentDocuments()))},
		{"Manifest entries", fmt.Sprintf("%d", len(pc.AllContentFiles()))},
	}

	report := &output.Report{
		Title: "Container Check",
		Data: map[string]any{
			"opf_path": container.OpfPath,
			"metadata": pc.Metadata,
			"problems": problems,
		},
	}
	report.Sections = append(report.Sections, output.NewTable("Publication", []string{"Field", "Value"}, rows, nil, nil))

	if len(problems) > 0 {
		content := ""
		for _, p := range problems {
			content += "- " + p + "\n"
		}
		report.Sections = append(report.Sections, &output.Section{Title: "Problems", Content: content})
	}

	if err := formatter.Output(report); err != nil {
		return err
	}

	if len(problems) > 0 {
		return fmt.Errorf("%d metadata problem(s) found", len(problems))
	}
	if formatter.Format() == output.FormatText {
		formatter.Success("All content documents parsed")
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
