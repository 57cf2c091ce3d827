package pbpe

import (
	"strings"
	"sync"
	"unicode/utf8"
)

// byteTokenIDs lazily indexes a Model's reserved byte-fallback token IDs by
// ID, for the Decoder's run-regrouping step. Built once per Model on first
// Decode call.
type byteTokenIDs struct {
	once    sync.Once
	byValue [256]int
	isByte  map[int]byte
}

func (m *Model) byteTokens() *byteTokenIDs {
	m.byteOnce.once.Do(func() {
		m.byteOnce.isByte = make(map[int]byte, 256)
		for b := 0; b < 256; b++ {
			if id, ok := m.Vocab.ByteTokenID(byte(b)); ok {
				m.byteOnce.byValue[b] = id
				m.byteOnce.isByte[id] = byte(b)
			}
		}
	})
	return &m.byteOnce
}

// Decode implements the Decoder (C9): the inverse of Encoder.EncodeWord.
func (m *Model) Decode(ids []int) string {
	bt := m.byteTokens()

	var sb strings.Builder
	i := 0
	for i < len(ids) {
		if _, ok := bt.isByte[ids[i]]; ok {
			var raw []byte
			for i < len(ids) {
				b, ok := bt.isByte[ids[i]]
				if !ok {
					break
				}
				raw = append(raw, b)
				i++
			}
			sb.WriteString(decodeUTF8Lenient(raw))
			continue
		}

		tok, ok := m.Vocab.String(ids[i])
		i++
		if !ok {
			continue
		}
		tok = stripMarkers(tok, m.ContinuingSubwordPrefix, "")
		if m.EndOfWordSuffix != "" && strings.HasSuffix(tok, m.EndOfWordSuffix) {
			tok = strings.TrimSuffix(tok, m.EndOfWordSuffix) + " "
		}
		sb.WriteString(tok)
	}
	return sb.String()
}

// decodeUTF8Lenient decodes raw as UTF-8, substituting the Unicode
// replacement character for any ill-formed byte run rather than failing,
// per §4.6.
func decodeUTF8Lenient(raw []byte) string {
	var sb strings.Builder
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		sb.WriteRune(r)
		raw = raw[size:]
	}
	return sb.String()
}
