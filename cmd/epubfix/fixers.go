package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/crdjm/epub-accessibility-fixer/internal/output"
)

var fixersCmd = &cobra.Command{
	Use:   "fixers",
	Short: "List registered fixers and the issue codes they handle",
	RunE:  runFixers,
}

func init() {
	rootCmd.AddCommand(fixersCmd)
}

func runFixers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), getOutputFile(cmd), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var rows [][]string
	data := make(map[string][]string)
	for _, s := range registry.Strategies() {
		rows = append(rows, []string{s.Name(), strings.Join(s.HandledCodes(), ", ")})
		data[s.Name()] = s.HandledCodes()
	}

	table := output.NewTable(
		"Registered Fixers",
		[]string{"Fixer", "Handled Codes"},
		rows,
		nil,
		data,
	)
	return formatter.Output(table)
}
