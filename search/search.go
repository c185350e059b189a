// Package search builds web-search URLs for the address bar fallback.
package search

import (
	"fmt"
	"net/url"
	"strings"
)

// Provider is a web search engine the address bar can fall back to.
type Provider struct {
	Name string
	URL  string // query appended percent-encoded
}

var providers = []Provider{
	{Name: "duckduckgo", URL: "https://html.duckduckgo.com/html/?q="},
	{Name: "marginalia", URL: "https://search.marginalia.nu/search?query="},
}

// Default returns the provider used when the config names none.
func Default() Provider {
	return providers[0]
}

// ByName looks up a provider by its config name.
func ByName(name string) (Provider, error) {
	for _, p := range providers {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Provider{}, fmt.Errorf("unknown search provider %q", name)
}

// SearchURL returns the full URL for a query against this provider.
func (p Provider) SearchURL(query string) string {
	return p.URL + url.QueryEscape(query)
}
