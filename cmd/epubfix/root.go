package main

import (
	"github.com/spf13/cobra"

	"github.com/crdjm/epub-accessibility-fixer/pkg/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "epubfix",
	Short: "EPUB accessibility and validation fixer",
	Long: `Epubfix repairs accessibility and structural validation defects in EPUB
publications: missing language declarations, accessibility metadata, document
titles, heading structure, image alt text, color contrast, and link names.

Feed it the JSON reports from EPUBCheck and DAISY ACE and it applies one
repair strategy per issue, writing a fixed copy of the publication.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "Output format: text, json, markdown, yaml")
	rootCmd.PersistentFlags().String("output", "", "Write report to file instead of stdout")
}

// loadConfig resolves the effective configuration, honoring --config.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadOrDefault(), nil
}
