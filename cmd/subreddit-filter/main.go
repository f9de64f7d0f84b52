package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bnema/subreddit-filter/internal/config"
	"github.com/bnema/subreddit-filter/internal/log"
	"github.com/bnema/subreddit-filter/internal/models"
)

var (
	cfgFile string
	verbose bool
	v       *viper.Viper
	cfg     models.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "subreddit-filter",
	Short: "Hide posts from blocked subreddits in Reddit pages",
	Long: `A tool that removes cards belonging to blocked communities from Reddit
pages: a suppression stylesheet is injected and a sweep hides whatever the
stylesheet cannot reach.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List blocked communities and block-list sources",
	RunE:  runList,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	// init must work without a readable config
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE:              runInit,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./configs/subreddit_filter.toml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")

	rootCmd.AddCommand(filterCmd, watchCmd, inspectCmd, exportCmd, listCmd, initCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	v = config.New(cfgFile)

	var err error
	cfg, err = config.Load(v)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return log.Configure(cfg.Log.Env, level)
}

func runList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Blocked communities (%d):\n\n", len(cfg.BlockedCommunities))
	for _, name := range models.NewBlockList(cfg.BlockedCommunities).Names() {
		fmt.Fprintf(out, "  %s%s\n", models.CommunityPrefix, name)
	}

	if len(cfg.BlockListFiles) > 0 || len(cfg.BlockListURLs) > 0 {
		fmt.Fprintf(out, "\nBlock-list sources:\n\n")
		for _, path := range cfg.BlockListFiles {
			fmt.Fprintf(out, "  [file] %s\n", path)
		}
		for _, url := range cfg.BlockListURLs {
			fmt.Fprintf(out, "  [url]  %s\n", url)
		}
	}
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := config.DefaultPath
	if cfgFile != "" {
		configPath = cfgFile
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	if err := os.WriteFile(configPath, []byte(config.Default), 0644); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", configPath)
	return nil
}

func writeJSON(dir, filename string, data any) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
