package fiscal

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxFilenameLen limita o nome base (sem extensão) para não estourar limites
// de header/filesystem.
const maxFilenameLen = 80

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SanitizeFilename normaliza um nome para uso em Content-Disposition: remove
// acentos, troca separadores e caracteres proibidos por hífen, colapsa hífens
// repetidos e limita o tamanho.
func SanitizeFilename(name string) string {
	if stripped, _, err := transform.String(diacriticStripper, name); err == nil {
		name = stripped
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}

	out := b.String()
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	out = strings.Trim(out, "-.")
	if out == "" {
		out = "documento"
	}
	if len(out) > maxFilenameLen {
		out = strings.Trim(out[:maxFilenameLen], "-.")
	}
	return out
}
