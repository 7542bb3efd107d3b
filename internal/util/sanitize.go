package util

import (
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/pkg/apierror"
)

const maxUploadNameRunes = 120

var (
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	repeatedSpace        = regexp.MustCompile(`\s+`)
)

// SanitizeUploadName turns a client supplied filename into a safe multipart
// filename for the backend. Directory parts and leading dots are dropped.
func SanitizeUploadName(name string) (string, error) {
	base := strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}

	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			continue
		}
		b.WriteRune(r)
	}

	cleaned := invalidFilenameChars.ReplaceAllString(b.String(), "_")
	cleaned = repeatedSpace.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimLeft(strings.TrimSpace(cleaned), ".")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return "", apierror.New("INVALID_FILENAME", "file name is invalid", name, http.StatusBadRequest)
	}

	return truncateKeepingExt(cleaned, maxUploadNameRunes), nil
}

func truncateKeepingExt(name string, limit int) string {
	runes := []rune(name)
	if len(runes) <= limit {
		return name
	}

	ext := []rune(filepath.Ext(name))
	if len(ext) >= limit {
		return string(runes[:limit])
	}

	stem := runes[:len(runes)-len(ext)]
	return string(stem[:limit-len(ext)]) + string(ext)
}
