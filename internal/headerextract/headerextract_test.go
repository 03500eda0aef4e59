package headerextract

import "testing"

func TestExtractFromPageHeaderMarker(t *testing.T) {
	in := `<!--PageHeader="CH-3 Overview Overview"--><!--PageNumber="12"-->Body text.`
	r := Extract(in)
	if r.PageHeader != "Overview" {
		t.Fatalf("PageHeader = %q, want %q", r.PageHeader, "Overview")
	}
	if r.Text != "Body text." {
		t.Fatalf("Text = %q, want markers stripped", r.Text)
	}
}

func TestExtractDedupCaseInsensitive(t *testing.T) {
	in := `<!--PageHeader="Intro"--><!--PageHeader="intro"-->text`
	r := Extract(in)
	if r.PageHeader != "Intro" {
		t.Fatalf("PageHeader = %q, want deduped %q", r.PageHeader, "Intro")
	}
}

func TestExtractFallsBackToMarkdownHeading(t *testing.T) {
	in := "# Too Short\n\n## A Sufficiently Long Heading\n\nbody"
	r := Extract(in)
	if r.PageHeader != "A Sufficiently Long Heading" {
		t.Fatalf("PageHeader = %q", r.PageHeader)
	}
}

func TestExtractFallsBackToTableCaption(t *testing.T) {
	in := `<figure id="table_1">Table 3: Quarterly revenue by region</figure>`
	r := Extract(in)
	if r.PageHeader != "Table: Quarterly revenue by region" {
		t.Fatalf("PageHeader = %q", r.PageHeader)
	}
}

func TestExtractNoHeaderFound(t *testing.T) {
	r := Extract("just some body text with nothing special")
	if r.PageHeader != "" {
		t.Fatalf("PageHeader = %q, want empty", r.PageHeader)
	}
}
