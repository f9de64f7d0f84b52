package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/bnema/subreddit-filter/internal/dom"
	"github.com/bnema/subreddit-filter/internal/engine"
	"github.com/bnema/subreddit-filter/internal/fetcher"
	"github.com/bnema/subreddit-filter/internal/log"
	"github.com/bnema/subreddit-filter/internal/scheduler"
	"github.com/bnema/subreddit-filter/internal/sweep"
	"github.com/bnema/subreddit-filter/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <page>",
	Short: "Keep a filtered copy of a page up to date",
	Long: `Filters the page and rewrites the output whenever the result changes:
after every sweep, when the config or a block-list changes, and when a local
input file is rewritten.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringP("output", "o", "", "output file")
	watchCmd.Flags().Bool("strip", false, "remove hidden elements instead of leaving them styled")
	_ = watchCmd.MarkFlagRequired("output")
}

func runWatch(cmd *cobra.Command, args []string) error {
	input := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	strip := cfg.Output.Strip
	if cmd.Flags().Changed("strip") {
		strip, _ = cmd.Flags().GetBool("strip")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f := fetcher.New(cfg.HTTP)
	doc, err := loadDocument(ctx, f, input)
	if err != nil {
		return err
	}

	loop := scheduler.NewLoop(scheduler.DefaultQueueSize, doc.Flush)

	// the hook runs on the loop, so last needs no lock
	var last string
	hook := func(t scheduler.Trigger, res sweep.Result) {
		out, _, err := render(doc, strip)
		if err != nil {
			log.Error(map[string]any{"error": err.Error()}, "rendering output")
			return
		}
		if out == last {
			return
		}
		last = out
		if err := writeOutput(nil, outputPath, out); err != nil {
			log.Error(map[string]any{"error": err.Error()}, "writing output")
			return
		}
		log.Info(map[string]any{"trigger": t.String(), "hidden": countHidden(doc), "output": outputPath}, "output updated")
	}

	eng, err := engine.New(doc, loop, scheduler.RealClock{}, engineOptions(hook)...)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	w := watcher.New(newStore(f), loop, eng)
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	if !fetcher.IsRemote(input) {
		closeInput, err := watchInput(input, loop, doc)
		if err != nil {
			return err
		}
		defer closeInput()
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s, writing %s (Ctrl+C to stop)\n", input, outputPath)

	err = <-done
	// the loop has exited, so the engine can be stopped from here
	eng.Stop()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watchInput reloads the body of doc whenever path is rewritten. The
// directory is watched so editors that replace the file are seen too.
func watchInput(path string, exec scheduler.Executor, doc *dom.Document) (func(), error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	target := filepath.Clean(path)
	if err := fw.Add(filepath.Dir(target)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	go func() {
		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				data, err := os.ReadFile(target)
				if err != nil {
					log.Warn(map[string]any{"file": target, "error": err.Error()}, "reading input")
					continue
				}
				if err := exec.Post(func() { reloadBody(doc, data) }); err != nil {
					return
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				log.Error(map[string]any{"error": err.Error()}, "file watcher")
			}
		}
	}()

	return func() { fw.Close() }, nil
}

// reloadBody swaps the body content of doc for the one in data. The
// insertion reaches the scheduler like any other mutation.
func reloadBody(doc *dom.Document, data []byte) {
	fresh, err := dom.Parse(bytes.NewReader(data))
	if err != nil {
		log.Warn(map[string]any{"error": err.Error()}, "parsing input")
		return
	}
	body, freshBody := doc.Body(), fresh.Body()
	if body == nil || freshBody == nil {
		return
	}

	var nodes []*html.Node
	for c := freshBody.FirstChild; c != nil; c = c.NextSibling {
		nodes = append(nodes, c)
	}
	doc.ReplaceChildren(body, nodes...)
	log.Info(map[string]any{"nodes": len(nodes)}, "input reloaded")
}
