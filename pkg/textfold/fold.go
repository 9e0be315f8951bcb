// Package textfold normaliza texto para búsquedas sin distinguir acentos ni mayúsculas.
package textfold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold devuelve s en minúsculas, sin marcas diacríticas y con espacios colapsados.
// "Jabón  de Avena" -> "jabon de avena".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// Contains informa si needle aparece en haystack ignorando acentos y mayúsculas.
func Contains(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

// Tokens separa el texto plegado en palabras de al menos minLen runas.
func Tokens(s string, minLen int) []string {
	words := strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := words[:0]
	for _, w := range words {
		if len([]rune(w)) >= minLen {
			out = append(out, w)
		}
	}
	return out
}
