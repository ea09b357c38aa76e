package sanitizer

import (
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const maxFileNameBytes = 255

var unsafeFileNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// FileName makes a user supplied name safe for storage keys and display:
// NFC normalization, unsafe characters replaced by "_", no leading or
// trailing dots and spaces, at most 255 bytes without splitting a rune.
// An empty result becomes "file".
func FileName(name string) string {
	name = norm.NFC.String(name)
	name = unsafeFileNameChars.ReplaceAllString(name, "_")
	name = SingleLine(name)
	name = strings.Trim(name, " .")

	if len(name) > maxFileNameBytes {
		cut := maxFileNameBytes
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut]
	}

	if name == "" {
		return "file"
	}
	return name
}

// SplitExtension returns the base name and the lowercased extension without the dot.
// Names starting with a dot and no other dot have no extension.
func SplitExtension(name string) (base, ext string) {
	e := path.Ext(name)
	if e == "" || e == name {
		return name, ""
	}
	return strings.TrimSuffix(name, e), strings.ToLower(strings.TrimPrefix(e, "."))
}
