// Package pathutil centralizes the filename stemming and slugification used
// by chunk-id generation (spec.md §4.2 step 8) and by the artifact naming
// convention (spec.md §6.1), so both call sites agree on one definition.
package pathutil

import (
	"path"
	"regexp"
	"strings"
)

// Stem strips a filename's extension, e.g. "Annual Report.pdf" -> "Annual Report".
func Stem(name string) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext)
}

var (
	nonSlugRe   = regexp.MustCompile(`[^a-z0-9]+`)
	trimDashesRe = regexp.MustCompile(`^-+|-+$`)
)

// Slugify lowercases s and collapses every run of non-alphanumeric
// characters into a single hyphen.
func Slugify(s string) string {
	lower := strings.ToLower(s)
	slug := nonSlugRe.ReplaceAllString(lower, "-")
	return trimDashesRe.ReplaceAllString(slug, "")
}

// Basename returns the filename without any directory components.
func Basename(name string) string {
	return path.Base(filepathToSlash(name))
}

func filepathToSlash(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}

// LastTwoPathParts returns the last two "/"-separated segments of a URL or
// path, joined by "/" — spec.md §4.2 step 8's sourcepage resolution for
// paginated documents with a cached page-artifact URL.
func LastTwoPathParts(url string) string {
	clean := strings.TrimRight(url, "/")
	parts := strings.Split(clean, "/")
	if len(parts) <= 2 {
		return clean
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
