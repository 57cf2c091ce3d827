package pbpe

import "github.com/rivo/uniseg"

// grapheme is one grapheme cluster of a word plus its byte offsets in the
// original, unmarked word string.
type grapheme struct {
	text       string
	start, end int
}

// graphemes splits word into its grapheme clusters, the unit both training
// and encoding treat as an initial "character" symbol. Using grapheme
// clusters rather than raw runes keeps multi-codepoint glyphs (emoji with
// modifiers, combining accents) as single initial symbols.
func graphemes(word string) []grapheme {
	var out []grapheme
	g := uniseg.NewGraphemes(word)
	cursor := 0
	for g.Next() {
		str := g.Str()
		out = append(out, grapheme{text: str, start: cursor, end: cursor + len(str)})
		cursor += len(str)
	}
	return out
}

// initialSymbols decomposes word into the marked initial symbol strings:
// continuingSubwordPrefix on every symbol but the first, endOfWordSuffix
// appended to the last. Markers are synthetic and never affect the byte
// offsets reported for the underlying grapheme.
func initialSymbols(word, continuingSubwordPrefix, endOfWordSuffix string) []string {
	parts := graphemes(word)
	if len(parts) == 0 {
		return nil
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		text := p.text
		if i > 0 && continuingSubwordPrefix != "" {
			text = continuingSubwordPrefix + text
		}
		out[i] = text
	}
	if endOfWordSuffix != "" {
		out[len(out)-1] = out[len(out)-1] + endOfWordSuffix
	}
	return out
}
