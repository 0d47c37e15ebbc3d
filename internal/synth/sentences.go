package synth

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
	sentenceEnd    = regexp.MustCompile(`[.!?]+["')\]]*(\s+|$)`)
)

// Words that end with a period without ending the sentence.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true, "sr": true, "jr": true,
	"st": true, "vs": true, "etc": true, "e.g": true, "i.e": true, "no": true, "vol": true,
	"fig": true, "inc": true, "ltd": true, "co": true, "corp": true, "approx": true,
	"jan": true, "feb": true, "mar": true, "apr": true, "jun": true, "jul": true,
	"aug": true, "sep": true, "sept": true, "oct": true, "nov": true, "dec": true,
}

// splitSentences breaks text into the chunks that are synthesized one at a
// time. Blank lines always end a chunk; runs of whitespace are collapsed.
func splitSentences(text string) []string {
	var out []string
	for _, para := range paragraphBreak.Split(text, -1) {
		para = strings.Join(strings.Fields(para), " ")
		if para == "" {
			continue
		}

		start := 0
		for _, loc := range sentenceEnd.FindAllStringIndex(para, -1) {
			if loc[1] < len(para) && strings.TrimSpace(para[loc[0]:loc[1]]) == "." &&
				endsWithAbbreviation(para[start:loc[0]]) {
				continue
			}
			if s := strings.TrimSpace(para[start:loc[1]]); s != "" {
				out = append(out, s)
			}
			start = loc[1]
		}
		if s := strings.TrimSpace(para[start:]); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func endsWithAbbreviation(s string) bool {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return false
	}
	w := strings.TrimLeft(fields[len(fields)-1], `"'([`)

	// Initials like "J. Smith".
	if r, size := utf8.DecodeRuneInString(w); size == len(w) && unicode.IsUpper(r) {
		return true
	}
	return abbreviations[strings.ToLower(w)]
}
