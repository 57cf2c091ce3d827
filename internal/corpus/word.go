package corpus

// Word is a unique corpus word: its current symbol sequence plus the number
// of times it occurred in the training corpus. The Trainer weights every
// pair-frequency update by Freq so that a word appearing a thousand times
// contributes a thousand times the signal of one appearing once.
type Word struct {
	Text    string
	Freq    int
	Symbols *Symbols
}

// Table is the Word Table (C2): the set of unique corpus words, each keyed
// by a stable word ID used throughout the Pair Index to reference
// occurrences without copying word text around.
type Table struct {
	words []*Word
}

// NewTable returns an empty Word Table.
func NewTable() *Table {
	return &Table{}
}

// Add registers a new unique word with its corpus frequency and initial
// symbol decomposition, returning its stable word ID.
func (t *Table) Add(text string, freq int, ids []int, lengths []int) int {
	id := len(t.words)
	t.words = append(t.words, &Word{
		Text:    text,
		Freq:    freq,
		Symbols: NewSymbols(ids, lengths),
	})
	return id
}

// Len returns the number of unique words.
func (t *Table) Len() int { return len(t.words) }

// Word returns the word at the given stable ID.
func (t *Table) Word(id int) *Word { return t.words[id] }

// All returns every word, in insertion order. The returned slice must not be
// mutated by the caller beyond the Word pointers' own exported fields.
func (t *Table) All() []*Word { return t.words }
