package pbpe

import (
	"fmt"
	"sync"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Vocabulary is the bijection between token strings and integer IDs (C5).
// IDs are assigned strictly increasingly and are never reused once assigned.
// It is append-only after construction: every write path (reserving special
// tokens, seeding the initial alphabet, promoting a merge result) only ever
// grows it, which is why a single mutex is sufficient even under the
// concurrent training fan-out described in spec.md §5.
type Vocabulary struct {
	mu       sync.Mutex
	byID     []string
	byString map[string]int
	prefixes *patricia.Trie // token string -> id, for fast prefix queries
}

// NewVocabulary returns an empty Vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		byString: make(map[string]int),
		prefixes: patricia.NewTrie(),
	}
}

// Size returns the number of tokens currently registered.
func (v *Vocabulary) Size() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.byID)
}

// Lookup returns the ID for a token string, if registered.
func (v *Vocabulary) Lookup(token string) (int, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	id, ok := v.byString[token]
	return id, ok
}

// String returns the token string for an ID, if valid.
func (v *Vocabulary) String(id int) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if id < 0 || id >= len(v.byID) {
		return "", false
	}
	return v.byID[id], true
}

// Add registers token if not already present and returns its ID. Calling Add
// twice with the same token is a no-op that returns the existing ID — this
// is what lets the Trainer call it unconditionally while seeding the initial
// alphabet across many words.
func (v *Vocabulary) Add(token string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if id, ok := v.byString[token]; ok {
		return id
	}
	id := len(v.byID)
	v.byID = append(v.byID, token)
	v.byString[token] = id
	v.prefixes.Insert(patricia.Prefix(token), id)
	return id
}

// ReserveSpecialTokens registers tokens, in order, at the low end of the
// vocabulary. Must be called before any other token is added, so their IDs
// stay contiguous from 0.
func (v *Vocabulary) ReserveSpecialTokens(tokens []string) error {
	v.mu.Lock()
	if len(v.byID) != 0 {
		v.mu.Unlock()
		return NewModelError("reserve-special-tokens", fmt.Errorf("vocabulary already has %d entries", len(v.byID)))
	}
	v.mu.Unlock()

	for _, t := range tokens {
		v.Add(t)
	}
	return nil
}

// byteTokenString is the reserved token-string form for raw byte b, used by
// byte_fallback (spec.md §4.5). The format mirrors the `<0xHH>` convention
// seen across byte-fallback tokenizers in the retrieval pack.
func byteTokenString(b byte) string {
	return fmt.Sprintf("<0x%02X>", b)
}

// ReserveByteTokens registers all 256 reserved byte tokens and returns their
// IDs indexed by byte value. Training (or model seeding) must call this
// before encoding with byte_fallback enabled.
func (v *Vocabulary) ReserveByteTokens() [256]int {
	var ids [256]int
	for b := 0; b < 256; b++ {
		ids[b] = v.Add(byteTokenString(b))
	}
	return ids
}

// ByteTokenID returns the reserved byte-fallback token ID for b, if
// ReserveByteTokens has been called.
func (v *Vocabulary) ByteTokenID(b byte) (int, bool) {
	return v.Lookup(byteTokenString(b))
}

// HasPrefix reports whether any registered token starts with prefix (e.g.
// whether any continuing-subword-prefixed token is registered).
func (v *Vocabulary) HasPrefix(prefix string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	found := false
	_ = v.prefixes.VisitSubtree(patricia.Prefix(prefix), func(patricia.Prefix, patricia.Item) error {
		found = true
		return patricia.SkipSubtree
	})
	return found
}

// TokensWithPrefix returns every registered token string starting with
// prefix.
func (v *Vocabulary) TokensWithPrefix(prefix string) []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	var out []string
	_ = v.prefixes.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, _ patricia.Item) error {
		out = append(out, string(p))
		return nil
	})
	return out
}

// All returns a copy of the dense ID -> token string table.
func (v *Vocabulary) All() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.byID))
	copy(out, v.byID)
	return out
}
