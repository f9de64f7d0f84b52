package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/subreddit-filter/internal/compiler"
	"github.com/bnema/subreddit-filter/internal/fetcher"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the block-list as WebKit content blocker JSON",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "./output", "output directory")
	exportCmd.Flags().StringSlice("domain", compiler.DefaultDomains, "domains the rules apply to")
	exportCmd.Flags().Bool("css", false, "also write the suppression stylesheet")
	exportCmd.Flags().Bool("dry-run", false, "compile without writing files")
}

func runExport(cmd *cobra.Command, args []string) error {
	outputDir, _ := cmd.Flags().GetString("output")
	domains, _ := cmd.Flags().GetStringSlice("domain")
	withCSS, _ := cmd.Flags().GetBool("css")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	out := cmd.OutOrStdout()

	bl, err := loadBlockList(cmd.Context(), fetcher.New(cfg.HTTP))
	if err != nil {
		return err
	}
	if bl.Empty() {
		return fmt.Errorf("no blocked communities configured")
	}

	c := compiler.New()
	rules := compiler.Deduplicate(c.WebKitRules(bl, domains))
	stats := c.Stats()

	fmt.Fprintf(out, "Compiled %d rules for %d communities (skipped: %d)\n", len(rules), bl.Len(), stats.Skipped)
	for reason, count := range stats.SkipReasons {
		fmt.Fprintf(out, "  - %s: %d\n", reason, count)
	}
	if dryRun {
		fmt.Fprintln(out, "[DRY RUN] No files written")
		return nil
	}

	splitter := compiler.NewSplitter(cfg.Output.MaxRulesPerFile)
	parts := splitter.Split(rules, "subreddit-filter")
	var files []string
	for _, part := range parts {
		if err := writeJSON(outputDir, part.Name+".json", part.Rules); err != nil {
			return fmt.Errorf("writing %s: %w", part.Name, err)
		}
		files = append(files, part.Name+".json")
	}

	if withCSS {
		css := compiler.New().Compile(bl)
		if err := writeOutput(nil, filepath.Join(outputDir, "subreddit-filter.css"), css+"\n"); err != nil {
			return err
		}
		files = append(files, "subreddit-filter.css")
	}

	manifest := Manifest{
		Version:     time.Now().Format("2006.01.02"),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Communities: bl.Names(),
		TotalRules:  len(rules),
		Files:       files,
	}
	if err := writeJSON(outputDir, "manifest.json", manifest); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	fmt.Fprintf(out, "Wrote %d files to %s\n", len(files)+1, outputDir)
	return nil
}

// Manifest describes an export
type Manifest struct {
	Version     string   `json:"version"`
	GeneratedAt string   `json:"generated_at"`
	Communities []string `json:"communities"`
	TotalRules  int      `json:"total_rules"`
	Files       []string `json:"files"`
}
