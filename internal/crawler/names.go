package crawler

import (
	"strings"
	"unicode"
)

const maxSlugLen = 80

// Slug derives a filesystem-safe directory name for the announcement.
// Korean titles are kept as-is; only characters unsafe in paths are
// replaced.
func (a Announcement) Slug() string {
	base := a.Title
	if base == "" {
		base = a.ID
	}
	var sb strings.Builder
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			sb.WriteRune('_')
		}
	}
	slug := strings.Trim(sb.String(), "_")
	for strings.Contains(slug, "__") {
		slug = strings.ReplaceAll(slug, "__", "_")
	}
	if slug == "" {
		slug = "announcement"
	}
	if len(slug) > maxSlugLen {
		runes := []rune(slug)
		if len(runes) > maxSlugLen {
			slug = string(runes[:maxSlugLen])
		}
	}
	return slug
}

// sanitizeFilename strips path separators and control characters from
// a downloaded file name.
func sanitizeFilename(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' ||
			r == '"' || r == '<' || r == '>' || r == '|':
			sb.WriteRune('_')
		case unicode.IsControl(r):
		default:
			sb.WriteRune(r)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" || out == "." || out == ".." {
		return "attachment.pdf"
	}
	return out
}
