// Package docmodel holds the record types that flow through the ingestion
// pipeline: what an extractor produces, what the chunker consumes and emits,
// and what gets indexed into the vector store.
package docmodel

import "time"

// BBox is a four-float bounding box (x0, y0, x1, y1) in page coordinates.
type BBox [4]float64

// CellKind classifies a table cell's role.
type CellKind string

const (
	CellContent     CellKind = "content"
	CellColumnHeader CellKind = "columnHeader"
	CellRowHeader    CellKind = "rowHeader"
)

// ExtractedImage is a figure or equation cropped from a page by the extractor.
type ExtractedImage struct {
	FigureID    string
	PageNum     int // 0-based
	BBox        BBox
	ImageBytes  []byte
	Filename    string
	Title       string
	Placeholder string // e.g. `<figure id="fig_3"/>`
	MimeType    string

	// Set after construction.
	Description string // by C6
	URL         string // by C2

	// Equations only.
	FigureType         string // "equation" when applicable
	Latex              string
	EquationConfidence float64
}

// TableCell is one cell of an ExtractedTable's grid.
type TableCell struct {
	Row, Col         int
	RowSpan, ColSpan int
	Content          string
	Kind             CellKind
}

// ExtractedTable is a table detected by the extractor, prior to rendering.
type ExtractedTable struct {
	TableID      string
	ExtractorIdx int // index in the extractor's native table list
	Pages        []int
	Cells        []TableCell
	RowCount     int
	ColCount     int
	BBox         *BBox
	Caption      string
	Placeholder  string // e.g. `<figure id="table_7"/>`, mirrors ExtractedImage.Placeholder

	// Set later.
	RenderedText string // by C5
	Summary      string // by C6, when enabled
}

// PageHyperlink is a hyperlink rectangle detected on a page.
type PageHyperlink struct {
	PageNum  int
	BBox     BBox
	URL      string
	LinkText string
}

// ExtractedPage is one page (or slide) of a document as produced by C4.
//
// Invariant: every table in Tables and every figure in Figures has its
// placeholder appear exactly once in Text; Text never contains a raw
// page-break marker.
type ExtractedPage struct {
	PageNum    int // 0-based
	Text       string
	Tables     []ExtractedTable
	Figures    []ExtractedImage
	Hyperlinks []PageHyperlink
	Offset     int
}

// TextChunk is internal to the chunker (C7).
//
// Invariant: TokenCount == tokens(Text); Text is non-empty after stripping;
// if Text contains a <figure>...</figure> span, the span is complete.
type TextChunk struct {
	PageNum         int
	Text            string
	ChunkIndexOnPage int
	TokenCount      int
	Tables          []ExtractedTable
	Figures         []ExtractedImage
	PageHeader      string
}

// DocumentMeta describes the source document a chunk belongs to.
type DocumentMeta struct {
	SourceFile  string
	StorageURL  string
	ContentType string
	MD5         string
	IngestedAt  time.Time
}

// ChunkArtifact is the optional local/remote artifact backing a chunk record,
// written only in local-storage mode (see §6.1's persisted-state layout).
type ChunkArtifact struct {
	URL       string
	LocalPath string
}

// ChunkDocument is what C9 ingests: one row in the vector store.
type ChunkDocument struct {
	Document DocumentMeta

	PageNum       int // 1-based
	SourcePage    string // e.g. "report.pdf#page=3"
	PageBlobURL   string

	ChunkID          string
	ChunkIndexOnPage int
	Text             string
	Embedding        []float32
	TokenCount       int
	Title            string

	Artifact ChunkArtifact

	Tables  []ExtractedTable
	Figures []ExtractedImage
}

// HasFigures reports whether the chunk's text references any figure.
func (c ChunkDocument) HasFigures() bool { return len(c.Figures) > 0 }

// HasTables reports whether the chunk's text references any table.
func (c ChunkDocument) HasTables() bool { return len(c.Tables) > 0 }

// FigureURLs collects the artifact URL of every figure attached to the chunk.
func (c ChunkDocument) FigureURLs() []string {
	urls := make([]string, 0, len(c.Figures))
	for _, f := range c.Figures {
		if f.URL != "" {
			urls = append(urls, f.URL)
		}
	}
	return urls
}
