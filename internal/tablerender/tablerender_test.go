package tablerender

import (
	"strings"
	"testing"

	"docforge/internal/docmodel"
)

func sampleTable() docmodel.ExtractedTable {
	return docmodel.ExtractedTable{
		TableID:  "table_0",
		RowCount: 2,
		ColCount: 2,
		Cells: []docmodel.TableCell{
			{Row: 0, Col: 0, RowSpan: 1, ColSpan: 1, Content: "Name", Kind: docmodel.CellColumnHeader},
			{Row: 0, Col: 1, RowSpan: 1, ColSpan: 1, Content: "Age", Kind: docmodel.CellColumnHeader},
			{Row: 1, Col: 0, RowSpan: 1, ColSpan: 1, Content: "Ada", Kind: docmodel.CellContent},
			{Row: 1, Col: 1, RowSpan: 1, ColSpan: 1, Content: "36", Kind: docmodel.CellContent},
		},
	}
}

func TestRenderMarkdown(t *testing.T) {
	out := Render(sampleTable(), Markdown)
	if !strings.Contains(out, "| Name | Age |") {
		t.Fatalf("markdown header row missing: %q", out)
	}
	if !strings.Contains(out, "| --- | --- |") {
		t.Fatalf("markdown separator row missing: %q", out)
	}
	if !strings.Contains(out, "| Ada | 36 |") {
		t.Fatalf("markdown data row missing: %q", out)
	}
}

func TestRenderHTML(t *testing.T) {
	out := Render(sampleTable(), HTML)
	if !strings.Contains(out, "<th>Name</th>") || !strings.Contains(out, "<td>Ada</td>") {
		t.Fatalf("unexpected html: %q", out)
	}
}

func TestRenderPlainHasBoxDrawing(t *testing.T) {
	out := Render(sampleTable(), Plain)
	if !strings.HasPrefix(out, "+") {
		t.Fatalf("plain render should start with a separator line: %q", out)
	}
}

func TestRenderCaptionPrepended(t *testing.T) {
	tbl := sampleTable()
	tbl.Caption = "Table 1: Ages"
	out := Render(tbl, Markdown)
	if !strings.HasPrefix(out, "Table 1: Ages\n\n") {
		t.Fatalf("caption not prepended: %q", out)
	}
}

func TestRenderColSpanHTML(t *testing.T) {
	tbl := docmodel.ExtractedTable{
		RowCount: 1,
		ColCount: 2,
		Cells: []docmodel.TableCell{
			{Row: 0, Col: 0, RowSpan: 1, ColSpan: 2, Content: "Merged", Kind: docmodel.CellContent},
		},
	}
	out := Render(tbl, HTML)
	if !strings.Contains(out, `colspan="2"`) {
		t.Fatalf("expected colspan attribute: %q", out)
	}
}
