package pbpe

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/pbpe-go/pbpe/internal/corpus"
	"github.com/pbpe-go/pbpe/internal/picky"
)

// Trainer drives the main training loop (C7): it owns nothing between calls
// to Train — all mutable state lives on a single trainRun built fresh for
// each call, so a Trainer is safe to reuse or share.
type Trainer struct {
	cfg *trainerConfig
}

// NewTrainer builds a Trainer from the given options, applied in order.
func NewTrainer(opts ...Option) (*Trainer, error) {
	cfg := defaultTrainerConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.logger == nil {
		cfg.logger = nopLogger{}
	}
	return &Trainer{cfg: cfg}, nil
}

// trainRun holds the mutable corpus state for one call to Train.
type trainRun struct {
	cfg *trainerConfig

	vocab   *Vocabulary
	ops     *OperationList
	words   *corpus.Table
	pairs   *corpus.Index
	tokLen  map[int]int   // vocab ID -> character length
	stand   map[int]int   // vocab ID -> standalone weighted occurrence count
	origin  map[int][2]int // merged ID -> (leftID, rightID) that produced it
}

// Train runs the main loop of §4.4 against wordCounts (unique word string ->
// corpus frequency) and returns the trained Model. Training is cooperative:
// ctx is checked between steps, and a partial model (everything accepted so
// far) is returned alongside ErrCancelled if ctx is done before the loop
// reaches its stopping condition.
func (t *Trainer) Train(ctx context.Context, wordCounts map[string]int) (*Model, error) {
	if len(wordCounts) == 0 {
		return nil, NewTrainError("init", ErrEmptyCorpus)
	}

	run := &trainRun{
		cfg:    t.cfg,
		vocab:  NewVocabulary(),
		ops:    NewOperationList(),
		words:  corpus.NewTable(),
		pairs:  corpus.NewIndex(),
		tokLen: make(map[int]int),
		stand:  make(map[int]int),
		origin: make(map[int][2]int),
	}

	if err := run.reserveSpecialTokens(); err != nil {
		return nil, err
	}
	run.seedAlphabetAndPairs(wordCounts)

	if t.cfg.vocabSize > 0 && t.cfg.vocabSize <= run.vocab.Size() {
		return nil, NewTrainError("init", ErrVocabTooSmall)
	}

	t.cfg.logger.Info("training started", "words", len(wordCounts), "initial_vocab", run.vocab.Size(), "target_vocab", t.cfg.vocabSize)

	for {
		select {
		case <-ctx.Done():
			t.cfg.logger.Info("training cancelled", "vocab", run.vocab.Size(), "operations", run.ops.Len())
			return run.model(), NewTrainError("train", ErrCancelled)
		default:
		}

		if t.cfg.vocabSize > 0 && run.vocab.Size() >= t.cfg.vocabSize {
			break
		}

		pair, freq, ok := run.pairs.Top()
		if !ok {
			break
		}
		if t.cfg.minFrequency > 0 && freq < t.cfg.minFrequency {
			break
		}

		if t.cfg.maxTokenLength > 0 && run.tokLen[pair.Left]+run.tokLen[pair.Right] > t.cfg.maxTokenLength {
			run.pairs.Drop(pair)
			continue
		}

		stats := picky.Stats{
			FreqAB: freq,
			FreqA:  run.stand[pair.Left],
			FreqB:  run.stand[pair.Right],
		}
		decision := picky.Decide(stats, t.cfg.threshold)
		vocabBefore := run.vocab.Size()

		if decision.Accept {
			run.acceptMerge(pair, freq)
			if decision.SplitA {
				run.emitRedundantSplit(pair.Left)
			}
			if decision.SplitB {
				run.emitRedundantSplit(pair.Right)
			}
			t.cfg.logger.Debug("merge accepted", "left", pair.Left, "right", pair.Right, "freq", freq, "vocab", run.vocab.Size())
			t.reportProgress(run.vocab.Size() - vocabBefore)
			continue
		}

		split := false
		if decision.SplitA {
			split = run.emitTargetedSplit(pair, pair.Left) || split
		}
		if decision.SplitB {
			split = run.emitTargetedSplit(pair, pair.Right) || split
		}
		if !split {
			// Rejected outright, or the picky part was an atomic alphabet
			// symbol with no components to split into: nothing about this
			// pair's occurrences changed, so it must be dropped here or
			// Top would offer the identical candidate forever.
			run.pairs.Drop(pair)
		}
		t.cfg.logger.Debug("merge rejected", "left", pair.Left, "right", pair.Right, "freq", freq, "split_a", decision.SplitA, "split_b", decision.SplitB)
		t.reportProgress(run.vocab.Size() - vocabBefore)
	}

	t.cfg.logger.Info("training finished", "vocab", run.vocab.Size(), "operations", run.ops.Len())
	return run.model(), nil
}

// reportProgress forwards a vocabulary-delta report to the configured
// ProgressFunc, falling back to an Info-level log line when show_progress
// is set but no callback was supplied. Rendering any of this is the
// caller's concern; the core only ever reports the raw delta.
func (t *Trainer) reportProgress(delta int) {
	if t.cfg.progress != nil {
		t.cfg.progress(delta)
		return
	}
	if t.cfg.showProgress {
		t.cfg.logger.Info("progress", "vocab_added", delta)
	}
}

func (r *trainRun) model() *Model {
	return &Model{
		Vocab:                   r.vocab,
		Operations:              r.ops,
		ContinuingSubwordPrefix: r.cfg.continuingSubwordPrefix,
		EndOfWordSuffix:         r.cfg.endOfWordSuffix,
		UnkToken:                r.cfg.unkToken,
		FuseUnk:                 r.cfg.fuseUnk,
		ByteFallback:            r.cfg.byteFallback,
		IgnoreMerges:            r.cfg.ignoreMerges,
		MaxTokenLength:          r.cfg.maxTokenLength,
	}
}

func (r *trainRun) reserveSpecialTokens() error {
	if len(r.cfg.specialTokens) > 0 {
		if err := r.vocab.ReserveSpecialTokens(r.cfg.specialTokens); err != nil {
			return err
		}
		for _, tok := range r.cfg.specialTokens {
			id, _ := r.vocab.Lookup(tok)
			r.tokLen[id] = utf8.RuneCountInString(tok)
		}
	}
	if r.cfg.byteFallback {
		for _, id := range r.vocab.ReserveByteTokens() {
			r.tokLen[id] = 1
		}
	}
	return nil
}

// wordSeed is the per-unique-word decomposition computed in the initial
// fan-out phase, before the Word Table or Pair Index exist.
type wordSeed struct {
	text    string
	freq    int
	tokens  []string
}

// seedAlphabetAndPairs builds the initial symbol decomposition for every
// unique word. Decomposing words is embarrassingly parallel — it touches no
// shared state — so it runs across cfg.workers goroutines; only the
// subsequent registration into the shared Vocabulary/Word Table/Pair Index
// happens on the driver goroutine, in deterministic word order, matching
// the commutes-or-it-doesn't-run-parallel rule of §5.
func (r *trainRun) seedAlphabetAndPairs(wordCounts map[string]int) {
	words := make([]string, 0, len(wordCounts))
	for w := range wordCounts {
		words = append(words, w)
	}
	sort.Strings(words)

	seeds := make([]wordSeed, len(words))
	parallelRange(len(words), r.cfg.workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			w := words[i]
			seeds[i] = wordSeed{
				text:   w,
				freq:   wordCounts[w],
				tokens: initialSymbols(w, r.cfg.continuingSubwordPrefix, r.cfg.endOfWordSuffix),
			}
		}
	})

	for _, seed := range seeds {
		ids := make([]int, len(seed.tokens))
		lens := make([]int, len(seed.tokens))
		for i, tok := range seed.tokens {
			id := r.vocab.Add(tok)
			if _, ok := r.tokLen[id]; !ok {
				r.tokLen[id] = utf8.RuneCountInString(stripMarkers(tok, r.cfg.continuingSubwordPrefix, r.cfg.endOfWordSuffix))
			}
			ids[i] = id
			lens[i] = r.tokLen[id]
			r.stand[id] += seed.freq
		}
		wordID := r.words.Add(seed.text, seed.freq, ids, lens)
		r.recordInitialPairs(wordID)
	}
}

// stripMarkers removes a continuing-subword prefix or end-of-word suffix so
// the character-length count reflects the grapheme content, not the marker
// decoration. Markers are caller-chosen strings, not necessarily 1
// character, so max_token_length is always measured on content length.
func stripMarkers(tok, prefix, suffix string) string {
	if prefix != "" && len(tok) >= len(prefix) && tok[:len(prefix)] == prefix {
		tok = tok[len(prefix):]
	}
	if suffix != "" && len(tok) >= len(suffix) && tok[len(tok)-len(suffix):] == suffix {
		tok = tok[:len(tok)-len(suffix)]
	}
	return tok
}

func (r *trainRun) recordInitialPairs(wordID int) {
	word := r.words.Word(wordID)
	for _, p := range word.Symbols.Pairs() {
		key := corpus.PairKey{Left: word.Symbols.ID(p.Left), Right: word.Symbols.ID(p.Right)}
		r.pairs.RecordPair(key, wordID, p.Left, word.Freq)
	}
}

// acceptMerge applies an accepted merge candidate to every occurrence,
// updates the Pair Index and standalone frequencies, and appends the Merge
// operation.
//
// Occurrences of the same pair can overlap within one word whenever
// pair.Left == pair.Right (e.g. a tripled symbol from a word like "aaa", or
// "yesss"/"soooo" after a few rounds of merging): merging the first
// occurrence tombstones the position the second occurrence's snapshot still
// names. Occurrences are therefore resolved one word at a time, strictly in
// increasing position order, re-validating that the pair still lives at a
// position before acting on it.
func (r *trainRun) acceptMerge(pair corpus.PairKey, _ int) {
	leftStr, _ := r.vocab.String(pair.Left)
	rightStr, _ := r.vocab.String(pair.Right)
	mergedID := r.vocab.Add(leftStr + rightStr)
	mergedLen := r.tokLen[pair.Left] + r.tokLen[pair.Right]
	r.tokLen[mergedID] = mergedLen
	r.origin[mergedID] = [2]int{pair.Left, pair.Right}

	r.ops.Append(Merge(pair.Left, pair.Right, mergedID))

	for _, occ := range sortedOccurrences(r.pairs.Occurrences(pair)) {
		word := r.words.Word(occ.WordID)
		if word.Symbols.ID(occ.Pos) != pair.Left {
			continue
		}
		next := word.Symbols.Next(occ.Pos)
		if next == -1 || word.Symbols.ID(next) != pair.Right {
			continue
		}

		removed, added := word.Symbols.MergeAt(occ.Pos, mergedID, mergedLen)
		r.applyPairDeltas(occ.WordID, word.Freq, removed, added)
		r.stand[pair.Left] -= word.Freq
		r.stand[pair.Right] -= word.Freq
		r.stand[mergedID] += word.Freq
	}
}

// sortedOccurrences orders occ by word, then by position ascending within
// each word. Index.Occurrences is backed by a map and returns no particular
// order; overlapping occurrences of a self-pair within one word must be
// resolved left-to-right for the result to be deterministic and for later
// occurrences to see the positions an earlier one already consumed.
func sortedOccurrences(occ []corpus.Occurrence) []corpus.Occurrence {
	out := append([]corpus.Occurrence(nil), occ...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].WordID != out[j].WordID {
			return out[i].WordID < out[j].WordID
		}
		return out[i].Pos < out[j].Pos
	})
	return out
}

// applyPairDeltas forgets removed pairs and records added pairs in the Pair
// Index, weighted by the word's corpus frequency.
func (r *trainRun) applyPairDeltas(wordID, weight int, removed, added []corpus.PairDelta) {
	for _, d := range removed {
		key := corpus.PairKey{Left: d.LeftID, Right: d.RightID}
		r.pairs.ForgetPair(key, wordID, d.LeftPos, weight)
	}
	for _, d := range added {
		key := corpus.PairKey{Left: d.LeftID, Right: d.RightID}
		r.pairs.RecordPair(key, wordID, d.LeftPos, weight)
	}
}

// emitRedundantSplit handles the accept-branch case where part id has
// intra_ratio == 1.0: every occurrence of id just got consumed by the merge
// we accepted, so there is nothing left in the corpus to split — the Split
// operation is pure Operation List bookkeeping for future encodings. Only
// emitted when id itself came from a previous merge; atomic alphabet
// symbols have no components to split into.
func (r *trainRun) emitRedundantSplit(id int) {
	parts, ok := r.origin[id]
	if !ok {
		return
	}
	r.ops.Append(Split(id, parts[0], parts[1]))
}

// emitTargetedSplit handles the reject-branch case: part id is "picky" and
// was previously merged, so we undo it, but only at the occurrences that
// would have participated in the rejected pair — other occurrences of id
// elsewhere in the corpus are left alone. Reports false without touching
// anything when id is an atomic alphabet symbol with no origin (it has no
// components to split into) or when every occurrence turned out stale, so
// the caller can tell whether any real progress was made and must drop the
// rejected pair itself otherwise, to guarantee training progress.
//
// Occurrences are resolved one word at a time, in increasing position
// order, the same as acceptMerge and for the same reason: when pair.Left ==
// pair.Right, occurrences can overlap within a word, and an earlier
// occurrence's split can move or consume the position a later occurrence's
// snapshot still names. For the pair.Right side specifically, the position
// of id itself is looked up as the current next-neighbor of occ.Pos, which
// an earlier split in this same word may have already changed — so that
// lookup is re-validated for -1 before use rather than indexed blindly.
func (r *trainRun) emitTargetedSplit(pair corpus.PairKey, id int) bool {
	parts, ok := r.origin[id]
	if !ok {
		return false
	}

	acted := false
	for _, occ := range sortedOccurrences(r.pairs.Occurrences(pair)) {
		word := r.words.Word(occ.WordID)

		pos := occ.Pos
		if id != pair.Left {
			pos = word.Symbols.Next(occ.Pos)
			if pos == -1 {
				continue
			}
		}
		if word.Symbols.ID(pos) != id {
			continue
		}

		removed, added, _ := word.Symbols.SplitAt(pos, parts[0], r.tokLen[parts[0]], parts[1], r.tokLen[parts[1]])
		r.applyPairDeltas(occ.WordID, word.Freq, removed, added)
		r.stand[id] -= word.Freq
		r.stand[parts[0]] += word.Freq
		r.stand[parts[1]] += word.Freq
		acted = true
	}
	if acted {
		r.ops.Append(Split(id, parts[0], parts[1]))
	}
	return acted
}

// parallelRange splits [0,n) into up to workers contiguous chunks and runs
// fn(lo,hi) for each concurrently, waiting for all to finish. Chunking by
// contiguous range (rather than a work-stealing channel) keeps each
// worker's slice of output deterministic and independent of scheduling, the
// same independence firefly's Counter relies on for its partial-map
// channel merge.
func parallelRange(n, workers int, fn func(lo, hi int)) {
	if n == 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
