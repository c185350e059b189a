package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"skiff/browser"
	"skiff/clipboard"
	"skiff/config"
	"skiff/download"
	"skiff/fetch"
	"skiff/term"
)

var (
	flagProxy bool
	flagPrint bool
)

var rootCmd = &cobra.Command{
	Use:   "skiff [url]",
	Short: "A keyboard-driven terminal web browser",
	Long: `skiff renders web pages as styled text in the terminal, with vi-style
keys, tabs, in-page search and concurrent downloads. Requests can be routed
through a local proxy with a single toggle.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if flagProxy {
			cfg.Network.StartWithProxy = true
		}

		client, err := fetch.NewClient(fetch.Options{
			ProxyURL:          cfg.Network.ProxyURL,
			BrowseUserAgent:   cfg.Network.BrowseUserAgent,
			DownloadUserAgent: cfg.Network.DownloadUserAgent,
			BrowseTimeout:     time.Duration(cfg.Network.BrowseTimeoutSeconds) * time.Second,
			MaxPageSize:       cfg.Network.MaxPageSizeBytes,
		})
		if err != nil {
			return err
		}

		if flagPrint {
			if len(args) == 0 {
				return fmt.Errorf("--print needs a URL")
			}
			return browser.Print(cfg, client, args[0], cfg.Network.StartWithProxy, os.Stdout)
		}

		manager := download.NewManager(client, cfg.Downloads.Directory, cfg.Downloads.MaxConcurrent)
		app := browser.New(cfg, term.NewScreen(), client, manager, clipboard.System{})
		if len(args) > 0 {
			app.Open(args[0])
		}
		return app.Run()
	},
}

func init() {
	rootCmd.Flags().BoolVar(&flagProxy, "proxy", false, "route requests through the configured proxy")
	rootCmd.Flags().BoolVar(&flagPrint, "print", false, "render the page to stdout and exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "skiff:", err)
		os.Exit(1)
	}
}
