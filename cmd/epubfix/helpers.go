package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crdjm/epub-accessibility-fixer/internal/cache"
	"github.com/crdjm/epub-accessibility-fixer/internal/describe"
	"github.com/crdjm/epub-accessibility-fixer/pkg/config"
	"github.com/crdjm/epub-accessibility-fixer/pkg/fixer"
	"github.com/crdjm/epub-accessibility-fixer/pkg/ingest"
	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

func getFormat(cmd *cobra.Command) string {
	f, _ := cmd.Flags().GetString("format")
	return f
}

func getOutputFile(cmd *cobra.Command) string {
	o, _ := cmd.Flags().GetString("output")
	return o
}

// buildRegistry assembles the strategy registry from configuration, wiring
// the description service and cache when enabled.
func buildRegistry(cfg *config.Config) (*fixer.Registry, error) {
	defaults := fixer.DefaultsConfig{
		DefaultLanguage:  cfg.Language.Default,
		MinContrastRatio: cfg.Contrast.MinRatio,
		Disabled:         cfg.Fixers.Disabled,
	}

	if cfg.Describe.Enabled {
		defaults.Describer = describe.New(cfg.Describe.Endpoint,
			describe.WithTimeout(time.Duration(cfg.Describe.TimeoutSeconds)*time.Second))
	}

	descCache, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled)
	if err != nil {
		return nil, fmt.Errorf("description cache: %w", err)
	}
	defaults.DescriptionCache = descCache

	return fixer.DefaultRegistry(defaults), nil
}

// loadIssues reads the validator reports named on the command line and
// appends their issues to the context. Fixability is classified against the
// registry's declared codes.
func loadIssues(pc *models.ProcessingContext, registry *fixer.Registry, epubcheckPath, acePath string) (int, error) {
	codes := ingest.NewCodeSet(registry.HandledCodes()...)
	before := len(pc.Issues)

	if epubcheckPath != "" {
		data, err := os.ReadFile(epubcheckPath)
		if err != nil {
			return 0, err
		}
		issues, err := ingest.ParseEPUBCheck(data, codes)
		if err != nil {
			return 0, err
		}
		pc.Issues = append(pc.Issues, issues...)
	}

	if acePath != "" {
		data, err := os.ReadFile(acePath)
		if err != nil {
			return 0, err
		}
		issues, err := ingest.ParseAce(data, codes)
		if err != nil {
			return 0, err
		}
		pc.Issues = append(pc.Issues, issues...)
	}

	return len(pc.Issues) - before, nil
}

// deriveOutPath produces the default destination for the fixed publication.
func deriveOutPath(in string) string {
	ext := filepath.Ext(in)
	base := strings.TrimSuffix(in, ext)
	if ext == "" {
		ext = ".epub"
	}
	return base + "_fixed" + ext
}

// countFixable returns the number of issues the engine will dispatch.
func countFixable(pc *models.ProcessingContext) int {
	n := 0
	for _, issue := range pc.Issues {
		if issue.Fixable && !issue.Fixed {
			n++
		}
	}
	return n
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// issueLocation renders a location for display.
func issueLocation(issue *models.Issue) string {
	if issue.Location == nil {
		return "-"
	}
	if issue.Location.Line > 0 {
		return fmt.Sprintf("%s:%d", issue.Location.File, issue.Location.Line)
	}
	return issue.Location.File
}
