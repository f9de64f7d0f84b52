package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/subreddit-filter/internal/dom"
	"github.com/bnema/subreddit-filter/internal/engine"
	"github.com/bnema/subreddit-filter/internal/fetcher"
	"github.com/bnema/subreddit-filter/internal/models"
	"github.com/bnema/subreddit-filter/internal/scheduler"
	"github.com/bnema/subreddit-filter/internal/sweep"
	"github.com/bnema/subreddit-filter/internal/watcher"
)

var filterCmd = &cobra.Command{
	Use:   "filter <page>",
	Short: "Filter a page (file or URL) once and write the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilter,
}

func init() {
	filterCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	filterCmd.Flags().Bool("strip", false, "remove hidden elements instead of leaving them styled")
}

func runFilter(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	strip := cfg.Output.Strip
	if cmd.Flags().Changed("strip") {
		strip, _ = cmd.Flags().GetBool("strip")
	}

	ctx := cmd.Context()
	f := fetcher.New(cfg.HTTP)

	bl, err := loadBlockList(ctx, f)
	if err != nil {
		return err
	}
	doc, err := loadDocument(ctx, f, args[0])
	if err != nil {
		return err
	}

	// One-shot: the whole startup cascade runs on a manual clock
	clock := scheduler.NewManualClock()
	exec := scheduler.NewInline(doc.Flush)
	eng, err := engine.New(doc, exec, clock, engineOptions(nil)...)
	if err != nil {
		return err
	}
	if err := exec.Post(func() { eng.Start(bl) }); err != nil {
		return err
	}
	clock.Advance(settleTime(cfg.Schedule))
	if err := exec.Post(eng.Stop); err != nil {
		return err
	}

	hidden := countHidden(doc)
	out, removed, err := render(doc, strip)
	if err != nil {
		return err
	}

	if err := writeOutput(cmd.OutOrStdout(), outputPath, out); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Blocked: %d communities, hidden: %d elements, removed: %d, sweeps: %d\n",
		bl.Len(), hidden, removed, eng.Sweeps())
	return nil
}

// newStore builds the settings store over the config file and the extra
// block-list sources it names
func newStore(f *fetcher.Fetcher) *watcher.FileStore {
	var sources []watcher.Source
	for _, path := range cfg.BlockListFiles {
		sources = append(sources, watcher.ListSource(f, path))
	}
	for _, url := range cfg.BlockListURLs {
		sources = append(sources, watcher.ListSource(f, url))
	}
	return watcher.NewFileStore(v, sources...)
}

func loadBlockList(ctx context.Context, f *fetcher.Fetcher) (models.BlockList, error) {
	names, err := newStore(f).Load(ctx)
	if err != nil {
		return models.BlockList{}, err
	}
	return models.NewBlockList(names), nil
}

func loadDocument(ctx context.Context, f *fetcher.Fetcher, src string) (*dom.Document, error) {
	data, err := f.Open(ctx, src)
	if err != nil {
		return nil, err
	}
	doc, err := dom.Parse(bytes.NewReader(data), dom.WithSelectorCache(dom.NewSelectorCache(cfg.Cache.Selectors)))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", src, err)
	}
	return doc, nil
}

func scheduleConfig(s models.ScheduleConfig) scheduler.Config {
	return scheduler.Config{
		Debounce:      s.Debounce,
		StartupDelays: s.StartupDelays,
		ScrollDelays:  s.ScrollDelays,
	}
}

// settleTime is long enough for every startup sweep and a pending debounce
func settleTime(s models.ScheduleConfig) time.Duration {
	longest := time.Duration(0)
	for _, d := range s.StartupDelays {
		longest = max(longest, d)
	}
	return longest + s.Debounce
}

func engineOptions(hook engine.SweepHook) []engine.Option {
	opts := []engine.Option{
		engine.WithSchedule(scheduleConfig(cfg.Schedule)),
		engine.WithTrackingCache(cfg.Cache.Tracking),
	}
	if hook != nil {
		opts = append(opts, engine.OnSweep(hook))
	}
	return opts
}

func countHidden(doc *dom.Document) int {
	nodes, err := doc.Select("[" + sweep.HiddenAttribute + "]")
	if err != nil {
		return 0
	}
	return len(nodes)
}

// render serializes doc. With strip, hidden elements are dropped from a
// copy so the live document keeps them.
func render(doc *dom.Document, strip bool) (string, int, error) {
	out := doc.String()
	if !strip {
		return out, 0, nil
	}
	cp, err := dom.ParseString(out)
	if err != nil {
		return "", 0, fmt.Errorf("re-parsing output: %w", err)
	}
	removed := cp.StripHidden()
	return cp.String(), removed, nil
}

func writeOutput(stdout io.Writer, path, content string) error {
	if path == "" {
		_, err := io.WriteString(stdout, content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
