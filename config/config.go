// Package config provides configuration loading for skiff using TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// Network settings.
type Network struct {
	ProxyURL             string `toml:"proxy_url"`
	BrowseUserAgent      string `toml:"browse_user_agent"`
	DownloadUserAgent    string `toml:"download_user_agent"`
	BrowseTimeoutSeconds int    `toml:"browse_timeout_seconds"`
	MaxPageSizeBytes     int64  `toml:"max_page_size_bytes"`
	StartWithProxy       bool   `toml:"start_with_proxy"`
}

// Downloads settings.
type Downloads struct {
	Directory     string `toml:"directory"`
	MaxConcurrent int64  `toml:"max_concurrent"`
}

// Search settings.
type Search struct {
	DefaultProvider string `toml:"default_provider"`
}

// Display settings.
type Display struct {
	MaxContentWidth      int  `toml:"max_content_width"`
	ShowScrollPercentage bool `toml:"show_scroll_percentage"`
}

// Keybindings for Normal mode. Each value is a single key.
type Keybindings struct {
	Quit         string `toml:"quit"`
	ScrollDown   string `toml:"scroll_down"`
	ScrollUp     string `toml:"scroll_up"`
	HalfPageDown string `toml:"half_page_down"`
	HalfPageUp   string `toml:"half_page_up"`
	GoTop        string `toml:"go_top"`
	GoBottom     string `toml:"go_bottom"`

	NextLink     string `toml:"next_link"`
	PrevLink     string `toml:"prev_link"`
	FollowLink   string `toml:"follow_link"`
	Download     string `toml:"download"`
	EditAddress  string `toml:"edit_address"`
	Find         string `toml:"find"`
	Visual       string `toml:"visual"`
	Back         string `toml:"back"`
	Forward      string `toml:"forward"`
	Reload       string `toml:"reload"`
	SourceView   string `toml:"source_view"`
	ToggleProxy  string `toml:"toggle_proxy"`
	NewTab       string `toml:"new_tab"`
	CloseTab     string `toml:"close_tab"`
	NextTab      string `toml:"next_tab"`
	PrevTab      string `toml:"prev_tab"`
	Downloads    string `toml:"downloads"`
	CancelTask   string `toml:"cancel_task"`
	DismissTasks string `toml:"dismiss_tasks"`
}

// Config is the main configuration struct.
type Config struct {
	Network     Network     `toml:"network"`
	Downloads   Downloads   `toml:"downloads"`
	Search      Search      `toml:"search"`
	Display     Display     `toml:"display"`
	Keybindings Keybindings `toml:"keybindings"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Network: Network{
			ProxyURL:             "http://127.0.0.1:4444",
			BrowseUserAgent:      "Mozilla/5.0 (compatible; skiff/1.0)",
			DownloadUserAgent:    "Wget/1.21",
			BrowseTimeoutSeconds: 30,
			MaxPageSizeBytes:     10 * 1024 * 1024,
		},
		Downloads: Downloads{
			Directory:     filepath.Join(xdg.UserDirs.Download, "skiff"),
			MaxConcurrent: 3,
		},
		Search: Search{
			DefaultProvider: "duckduckgo",
		},
		Display: Display{
			MaxContentWidth:      100,
			ShowScrollPercentage: true,
		},
		Keybindings: Keybindings{
			Quit:         "q",
			ScrollDown:   "j",
			ScrollUp:     "k",
			HalfPageDown: "d",
			HalfPageUp:   "u",
			GoTop:        "g",
			GoBottom:     "G",
			NextLink:     "n",
			PrevLink:     "p",
			FollowLink:   "f",
			Download:     "D",
			EditAddress:  "e",
			Find:         "/",
			Visual:       "v",
			Back:         "b",
			Forward:      "F",
			Reload:       "r",
			SourceView:   "s",
			ToggleProxy:  "P",
			NewTab:       "t",
			CloseTab:     "x",
			NextTab:      "]",
			PrevTab:      "[",
			Downloads:    "o",
			CancelTask:   "c",
			DismissTasks: "X",
		},
	}
}

// Path returns the path to the user's config file under the XDG config home.
func Path() string {
	return filepath.Join(xdg.ConfigHome, "skiff", "config.toml")
}

// Load loads configuration, layering user config on top of defaults.
// Returns the default config if no user config exists.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile loads configuration from the given path on top of defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	user := &Config{}
	if _, err := toml.DecodeFile(path, user); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return merge(cfg, user), nil
}

// merge layers user config on top of defaults. Only non-zero values from the
// user config override; an intentional false/zero needs no override anyway.
func merge(defaults, user *Config) *Config {
	result := *defaults

	mergeString(&result.Network.ProxyURL, user.Network.ProxyURL)
	mergeString(&result.Network.BrowseUserAgent, user.Network.BrowseUserAgent)
	mergeString(&result.Network.DownloadUserAgent, user.Network.DownloadUserAgent)
	if user.Network.BrowseTimeoutSeconds != 0 {
		result.Network.BrowseTimeoutSeconds = user.Network.BrowseTimeoutSeconds
	}
	if user.Network.MaxPageSizeBytes != 0 {
		result.Network.MaxPageSizeBytes = user.Network.MaxPageSizeBytes
	}
	if user.Network.StartWithProxy {
		result.Network.StartWithProxy = true
	}

	mergeString(&result.Downloads.Directory, user.Downloads.Directory)
	if user.Downloads.MaxConcurrent != 0 {
		result.Downloads.MaxConcurrent = user.Downloads.MaxConcurrent
	}

	mergeString(&result.Search.DefaultProvider, user.Search.DefaultProvider)

	if user.Display.MaxContentWidth != 0 {
		result.Display.MaxContentWidth = user.Display.MaxContentWidth
	}
	if user.Display.ShowScrollPercentage {
		result.Display.ShowScrollPercentage = true
	}

	mergeString(&result.Keybindings.Quit, user.Keybindings.Quit)
	mergeString(&result.Keybindings.ScrollDown, user.Keybindings.ScrollDown)
	mergeString(&result.Keybindings.ScrollUp, user.Keybindings.ScrollUp)
	mergeString(&result.Keybindings.HalfPageDown, user.Keybindings.HalfPageDown)
	mergeString(&result.Keybindings.HalfPageUp, user.Keybindings.HalfPageUp)
	mergeString(&result.Keybindings.GoTop, user.Keybindings.GoTop)
	mergeString(&result.Keybindings.GoBottom, user.Keybindings.GoBottom)
	mergeString(&result.Keybindings.NextLink, user.Keybindings.NextLink)
	mergeString(&result.Keybindings.PrevLink, user.Keybindings.PrevLink)
	mergeString(&result.Keybindings.FollowLink, user.Keybindings.FollowLink)
	mergeString(&result.Keybindings.Download, user.Keybindings.Download)
	mergeString(&result.Keybindings.EditAddress, user.Keybindings.EditAddress)
	mergeString(&result.Keybindings.Find, user.Keybindings.Find)
	mergeString(&result.Keybindings.Visual, user.Keybindings.Visual)
	mergeString(&result.Keybindings.Back, user.Keybindings.Back)
	mergeString(&result.Keybindings.Forward, user.Keybindings.Forward)
	mergeString(&result.Keybindings.Reload, user.Keybindings.Reload)
	mergeString(&result.Keybindings.SourceView, user.Keybindings.SourceView)
	mergeString(&result.Keybindings.ToggleProxy, user.Keybindings.ToggleProxy)
	mergeString(&result.Keybindings.NewTab, user.Keybindings.NewTab)
	mergeString(&result.Keybindings.CloseTab, user.Keybindings.CloseTab)
	mergeString(&result.Keybindings.NextTab, user.Keybindings.NextTab)
	mergeString(&result.Keybindings.PrevTab, user.Keybindings.PrevTab)
	mergeString(&result.Keybindings.Downloads, user.Keybindings.Downloads)
	mergeString(&result.Keybindings.CancelTask, user.Keybindings.CancelTask)
	mergeString(&result.Keybindings.DismissTasks, user.Keybindings.DismissTasks)

	return &result
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
