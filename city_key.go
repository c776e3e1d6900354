package walkcover

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxCitySuggestions = 3

// NormalizeCityKey makes city name insensitive to case, diacritics, punctuation and whitespace.
// "  São Paulo, Brazil " and "sao paulo brazil" give the same key "sao_paulo_brazil".
func NormalizeCityKey(name string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(stripMarks, name)
	if err != nil {
		plain = name
	}
	folded := cases.Fold().String(plain)
	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, "_")
}

// overpassAreaName turns user query into value of the area `name` tag. Queries typed as keys ("new_york")
// are title cased, anything else is kept as given.
func overpassAreaName(query string) string {
	name := strings.TrimSpace(query)
	if name != NormalizeCityKey(name) {
		return name
	}
	return cases.Title(language.Und).String(strings.ReplaceAll(name, "_", " "))
}

// suggestCityKeys returns known keys closest to the query by edit distance
func suggestCityKeys(normalized string, known []string) []string {
	type candidate struct {
		key      string
		distance int
	}
	limit := len(normalized) / 3
	if limit < 2 {
		limit = 2
	}
	candidates := []candidate{}
	for _, key := range known {
		d := levenshtein(normalized, key)
		if d <= limit || (normalized != "" && (strings.HasPrefix(key, normalized) || strings.Contains(key, normalized))) {
			candidates = append(candidates, candidate{key: key, distance: d})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance == candidates[j].distance {
			return candidates[i].key < candidates[j].key
		}
		return candidates[i].distance < candidates[j].distance
	})
	suggestions := []string{}
	for i := 0; i < len(candidates) && i < maxCitySuggestions; i++ {
		suggestions = append(suggestions, candidates[i].key)
	}
	return suggestions
}

// levenshtein returns edit distance between two strings (by runes)
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = minInt(minInt(prev[j]+1, cur[j-1]+1), prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
