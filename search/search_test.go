package search

import (
	"strings"
	"testing"
)

func TestSearchURLEncodesQuery(t *testing.T) {
	p := Default()
	got := p.SearchURL("terminal web browsers")
	if strings.Contains(got, " ") {
		t.Errorf("spaces not encoded: %q", got)
	}
	if !strings.HasPrefix(got, p.URL) {
		t.Errorf("URL = %q", got)
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"duckduckgo", "DuckDuckGo", "marginalia"} {
		if _, err := ByName(name); err != nil {
			t.Errorf("ByName(%q): %v", name, err)
		}
	}
	if _, err := ByName("askjeeves"); err == nil {
		t.Error("unknown provider accepted")
	}
}
