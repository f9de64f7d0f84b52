package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/bnema/subreddit-filter/internal/dom"
	"github.com/bnema/subreddit-filter/internal/extractor"
	"github.com/bnema/subreddit-filter/internal/fetcher"
	"github.com/bnema/subreddit-filter/internal/sweep"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <page>",
	Short: "List candidate cards with their resolved community",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().Bool("blocked-only", false, "only show candidates of blocked communities")
	inspectCmd.Flags().Bool("any", false, "resolve every element with all strategies in priority order")
}

func runInspect(cmd *cobra.Command, args []string) error {
	blockedOnly, _ := cmd.Flags().GetBool("blocked-only")
	anyElement, _ := cmd.Flags().GetBool("any")

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
	categories := []sweep.Category{{Name: "any", Selector: "*"}}
	if !anyElement {
		filter, err := sweep.New(doc)
		if err != nil {
			return err
		}
		categories = filter.Categories()
	}
	ex := extractor.New()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tELEMENT\tCOMMUNITY\tSTRATEGY\tBLOCKED")

	total, blocked := 0, 0
	for _, c := range categories {
		if c.Strategy == nil && !anyElement {
			continue
		}
		nodes, err := doc.Select(c.Selector)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			var m extractor.Match
			var ok bool
			if anyElement {
				m, ok = ex.Extract(n)
			} else {
				m.Result, ok = c.Strategy.Extract(n)
				m.Strategy = c.Strategy.Name()
			}
			if !ok || m.Community == "" {
				continue
			}
			total++
			isBlocked := m.BlockedBy(bl)
			if isBlocked {
				blocked++
			} else if blockedOnly {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", c.Name, describe(n), m.Community, m.Strategy, isBlocked)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "\n%d candidates, %d blocked\n", total, blocked)
	return nil
}

// describe renders a short tag#id label for n
func describe(n *html.Node) string {
	label := n.Data
	if id, ok := dom.Attr(n, "id"); ok && id != "" {
		label += "#" + id
	}
	return label
}
