package hyperlink

import (
	"strings"
	"testing"

	"docforge/internal/docmodel"
)

func TestWeaveBasicSubstitution(t *testing.T) {
	text := `Please click here for details.<!--PageFooter="see https://b for more"-->`
	links := []docmodel.PageHyperlink{
		{LinkText: "click here", URL: "https://a"},
	}
	out := Weave(text, links)
	if !strings.Contains(out, "[click here](https://a)") {
		t.Fatalf("expected woven link, got %q", out)
	}
}

func TestWeaveFooterReferenceInserted(t *testing.T) {
	text := `Body with no urls.<!--PageFooter="see https://b for more"-->`
	out := Weave(text, nil)
	if !strings.Contains(out, "**Reference:** https://b") {
		t.Fatalf("expected inserted reference line, got %q", out)
	}
	footerIdx := strings.Index(out, `<!--PageFooter`)
	refIdx := strings.Index(out, "**Reference:**")
	if refIdx < 0 || refIdx > footerIdx {
		t.Fatalf("reference must precede footer marker: %q", out)
	}
}

func TestWeaveFooterReferenceSkippedIfURLVisible(t *testing.T) {
	text := `See https://b for more.<!--PageFooter="https://b"-->`
	out := Weave(text, nil)
	if strings.Contains(out, "**Reference:**") {
		t.Fatalf("should not insert reference when URL already visible: %q", out)
	}
}

func TestWeaveDoesNotReplaceInsideExistingLink(t *testing.T) {
	text := `[click here](https://existing) and click here again`
	links := []docmodel.PageHyperlink{
		{LinkText: "click here", URL: "https://a"},
	}
	out := Weave(text, links)
	if strings.Count(out, "[click here](https://existing)") != 1 {
		t.Fatalf("existing link corrupted: %q", out)
	}
	if !strings.Contains(out, "[click here](https://a) again") {
		t.Fatalf("second occurrence not woven: %q", out)
	}
}

func TestWeaveCombinesMultiLineLinkFragments(t *testing.T) {
	text := `Read the full re port here.`
	links := []docmodel.PageHyperlink{
		{LinkText: "re", URL: "https://a"},
		{LinkText: "port", URL: "https://a"},
	}
	out := Weave(text, links)
	if !strings.Contains(out, "[re port](https://a)") {
		t.Fatalf("expected combined link text, got %q", out)
	}
}

func TestWeaveFlexibleWhitespaceMatch(t *testing.T) {
	text := "Click  here\nfor info."
	links := []docmodel.PageHyperlink{{LinkText: "Click here", URL: "https://a"}}
	out := Weave(text, links)
	if !strings.Contains(out, "](https://a)") {
		t.Fatalf("expected flexible-whitespace match to succeed: %q", out)
	}
}
