package pbpe

// encoderConfig holds configuration accumulated by EncoderOption values.
type encoderConfig struct {
	cacheSize int // per-shard capacity; 0 means unlimited
	shards    int
	logger    Logger
}

func defaultEncoderConfig() *encoderConfig {
	return &encoderConfig{shards: 32, logger: nopLogger{}}
}

// EncoderOption configures an Encoder.
type EncoderOption func(*encoderConfig)

// WithEncoderCacheSize sets the maximum number of entries per cache shard.
// 0 (the default) means unlimited.
func WithEncoderCacheSize(size int) EncoderOption {
	return func(c *encoderConfig) { c.cacheSize = size }
}

// WithEncoderShards sets the number of independently-locked cache shards.
func WithEncoderShards(n int) EncoderOption {
	return func(c *encoderConfig) {
		if n > 0 {
			c.shards = n
		}
	}
}

// WithEncoderLogger stores a diagnostic logger on the Encoder's
// configuration. The encoding paths do not write to it: byte-fallback and
// UNK substitutions are not logged.
func WithEncoderLogger(l Logger) EncoderOption {
	return func(c *encoderConfig) { c.logger = l }
}

// Encoder applies a Model's Operation List to new words (C8). An Encoder is
// safe for concurrent use: the Model it wraps is read-only, and the cache
// is a sharded concurrent map.
type Encoder struct {
	model *Model
	cfg   *encoderConfig
	cache *shardedCache
}

// NewEncoder builds an Encoder for m.
func (m *Model) NewEncoder(opts ...EncoderOption) *Encoder {
	cfg := defaultEncoderConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Encoder{
		model: m,
		cfg:   cfg,
		cache: newShardedCache(cfg.shards, cfg.cacheSize),
	}
}

// ClearCache empties every shard of the encode cache. Never required for
// correctness — the model is immutable once trained — but useful for
// benchmarking cold-cache behavior or bounding memory explicitly.
func (e *Encoder) ClearCache() {
	e.cache.clear()
}

// EncodeWord runs the full algorithm of §4.5 against word: initial
// decomposition with fallback for out-of-vocabulary symbols, then ordered
// Operation List application unless ignore_merges is set.
func (e *Encoder) EncodeWord(word string) ([]int, error) {
	if cached, ok := e.cache.get(word); ok {
		out := make([]int, len(cached))
		copy(out, cached)
		return out, nil
	}

	ids, err := e.decomposeWithFallback(word)
	if err != nil {
		return nil, NewEncodeError(word, err)
	}

	if !e.model.IgnoreMerges {
		for _, op := range e.model.Operations.All() {
			ids = applyOperation(ids, op)
		}
	}

	e.cache.put(word, ids)

	out := make([]int, len(ids))
	copy(out, ids)
	return out, nil
}

// decomposeWithFallback produces the initial symbol ID sequence for word,
// resolving any symbol absent from the vocabulary via byte_fallback or
// unk_token, per step 1 of §4.5.
func (e *Encoder) decomposeWithFallback(word string) ([]int, error) {
	parts := graphemes(word)
	symbols := initialSymbols(word, e.model.ContinuingSubwordPrefix, e.model.EndOfWordSuffix)

	var ids []int
	unkPending := false
	flushUnk := func() {
		if unkPending {
			id, _ := e.model.Vocab.Lookup(e.model.UnkToken)
			ids = append(ids, id)
			unkPending = false
		}
	}

	for i, sym := range symbols {
		if id, ok := e.model.Vocab.Lookup(sym); ok {
			flushUnk()
			ids = append(ids, id)
			continue
		}

		if e.model.ByteFallback {
			flushUnk()
			raw := parts[i].text
			for j := 0; j < len(raw); j++ {
				id, ok := e.model.Vocab.ByteTokenID(raw[j])
				if !ok {
					return nil, NewModelError("encode", ErrUnknownToken)
				}
				ids = append(ids, id)
			}
			continue
		}

		if e.model.UnkToken == "" {
			return nil, ErrUnknownToken
		}
		if e.model.FuseUnk {
			unkPending = true
			continue
		}
		id, _ := e.model.Vocab.Lookup(e.model.UnkToken)
		ids = append(ids, id)
	}
	flushUnk()

	return ids, nil
}

// applyOperation applies one operation of the Operation List to ids,
// exactly as specified by §4.5 step 2, returning the resulting sequence.
func applyOperation(ids []int, op Operation) []int {
	switch op.Kind {
	case OpMerge:
		return applyMerge(ids, op.Parts[0], op.Parts[1], op.Result)
	case OpSplit:
		return applySplit(ids, op.Source, op.Parts[0], op.Parts[1])
	default:
		return ids
	}
}

func applyMerge(ids []int, a, b, result int) []int {
	out := ids[:0:0]
	i := 0
	for i < len(ids) {
		if i+1 < len(ids) && ids[i] == a && ids[i+1] == b {
			out = append(out, result)
			i += 2
			continue
		}
		out = append(out, ids[i])
		i++
	}
	return out
}

func applySplit(ids []int, source, a, b int) []int {
	out := ids[:0:0]
	for _, id := range ids {
		if id == source {
			out = append(out, a, b)
			continue
		}
		out = append(out, id)
	}
	return out
}
