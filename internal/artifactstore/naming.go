// Package artifactstore implements C2, the artifact-persistence capability:
// per-page JSON/renderings, chunk JSON, cropped figures, manifests, and run
// status documents addressable by stable URLs.
package artifactstore

import (
	"fmt"
	"strings"

	"docforge/internal/ingest/pathutil"
)

// stem strips the extension from a document's filename, e.g. "report.pdf" -> "report".
func stem(docName string) string {
	return pathutil.Stem(docName)
}

// pageJSONKey is spec.md §6.1's bit-exact naming: {stem}/page-{1based:04d}.json.
func pageJSONKey(docName string, pageIdx1Based int) string {
	return fmt.Sprintf("%s/page-%04d.json", stem(docName), pageIdx1Based)
}

// pageRenderingKey is spec.md §6.1's bit-exact naming: {stem}_page_{1based:04d}.pdf.
func pageRenderingKey(docName string, pageIdx1Based int) string {
	return fmt.Sprintf("%s_page_%04d.pdf", stem(docName), pageIdx1Based)
}

// chunkJSONKey is spec.md §6.1's bit-exact naming:
// {stem}/page-{1based:04d}/chunk-{idx:06d}.json.
func chunkJSONKey(docName string, pageIdx1Based, chunkIdx int) string {
	return fmt.Sprintf("%s/page-%04d/chunk-%06d.json", stem(docName), pageIdx1Based, chunkIdx)
}

// imageKey is spec.md §6.1's bit-exact naming:
// {stem}/page_{1based:02d}_fig_{1based:02d}.{ext}.
func imageKey(docName string, pageIdx1Based, figureIdxOnPage int, ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	return fmt.Sprintf("%s/page_%02d_fig_%02d.%s", stem(docName), pageIdx1Based, figureIdxOnPage, ext)
}

// manifestKey places the manifest at the document stem's root.
func manifestKey(docName string) string {
	return stem(docName) + "/manifest.json"
}

// statusKey names one pipeline-run status document.
func statusKey(runName string) string {
	return "status/" + runName + ".json"
}
