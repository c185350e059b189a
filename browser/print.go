package browser

import (
	"context"
	"fmt"
	"io"
	"time"

	"skiff/config"
	"skiff/fetch"
	"skiff/markup"
	"skiff/session"
)

// Print fetches one page, lays it out and writes the plain text to w. Used by
// the --print flag for piping pages into other tools.
func Print(cfg *config.Config, client *fetch.Client, rawURL string, proxy bool, w io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Network.BrowseTimeoutSeconds)*time.Second)
	defer cancel()

	page, err := client.FetchPage(ctx, rawURL, proxy)
	if err != nil {
		return err
	}
	parsed, err := markup.ParseString(page.Body)
	if err != nil {
		return fmt.Errorf("parsing page: %w", err)
	}

	width := cfg.Display.MaxContentWidth
	if width <= 0 {
		width = 80
	}
	doc := session.NewDocument(rawURL, parsed, page.Body)
	lines, _ := doc.Layout(width)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line.Text()); err != nil {
			return err
		}
	}
	return nil
}
