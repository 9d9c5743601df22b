// Package textsim holds the text metrics shared by every feature strategy,
// so that empty text and normalization are handled the same way everywhere.
//
// All metrics return 0 when either side is empty after normalization.
package textsim

import (
	"math"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// folder is safe for concurrent use.
var folder = cases.Fold()

// Normalize applies NFKC, case folding and whitespace collapsing.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = folder.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Tokens splits the normalized text into maximal runs of letters and digits.
func Tokens(s string) []string {
	return strings.FieldsFunc(Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Contains reports whether the tokens of needle appear as a contiguous run
// in the tokens of hay. An empty needle never matches.
func Contains(hay, needle string) bool {
	n := Tokens(needle)
	if len(n) == 0 {
		return false
	}
	h := Tokens(hay)
	for i := 0; i+len(n) <= len(h); i++ {
		if slices.Equal(h[i:i+len(n)], n) {
			return true
		}
	}
	return false
}

// Equal reports whether a and b are identical after normalization and are
// not empty.
func Equal(a, b string) bool {
	na := Normalize(a)
	return na != "" && na == Normalize(b)
}

// Dice is the Sørensen–Dice coefficient over character bigram multisets.
// A one-rune string is its own single gram.
func Dice(a, b string) float64 {
	ga, gb := bigrams(Normalize(a)), bigrams(Normalize(b))
	total := 0
	for _, c := range ga {
		total += c
	}
	sizeA := total
	for _, c := range gb {
		total += c
	}
	if sizeA == 0 || total == sizeA {
		return 0
	}
	shared := 0
	for g, ca := range ga {
		shared += min(ca, gb[g])
	}
	return 2 * float64(shared) / float64(total)
}

func bigrams(s string) map[string]int {
	r := []rune(s)
	out := make(map[string]int)
	switch len(r) {
	case 0:
	case 1:
		out[s]++
	default:
		for i := 0; i+1 < len(r); i++ {
			out[string(r[i:i+2])]++
		}
	}
	return out
}

// Jaccard is the token set Jaccard index.
func Jaccard(a, b string) float64 {
	sa, sb := tokenSet(a), tokenSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	inter := 0
	for t := range sa {
		if sb[t] {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, t := range Tokens(s) {
		out[t] = true
	}
	return out
}

// Cosine is the cosine similarity of token term-frequency vectors.
func Cosine(a, b string) float64 {
	ta, tb := termFreq(a), termFreq(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	var dot, na, nb float64
	// sorted keys keep the float sums bit-for-bit reproducible
	for _, t := range sortedKeys(ta) {
		va := float64(ta[t])
		na += va * va
		dot += va * float64(tb[t])
	}
	for _, t := range sortedKeys(tb) {
		vb := float64(tb[t])
		nb += vb * vb
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func termFreq(s string) map[string]int {
	out := make(map[string]int)
	for _, t := range Tokens(s) {
		out[t]++
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// TokenCount returns the number of tokens in s.
func TokenCount(s string) int {
	return len(Tokens(s))
}
