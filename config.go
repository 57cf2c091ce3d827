package pbpe

import (
	"io"
	"runtime"

	"github.com/BurntSushi/toml"
)

// trainerConfig holds configuration accumulated by Option values before a
// Trainer is constructed.
type trainerConfig struct {
	vocabSize              int
	minFrequency           int
	maxTokenLength         int // 0 means unbounded
	threshold              float64
	specialTokens          []string
	continuingSubwordPrefix string
	endOfWordSuffix        string
	unkToken               string
	fuseUnk                bool
	byteFallback           bool
	ignoreMerges           bool
	workers                int
	cacheSize              int // 0 means unlimited
	logger                 Logger
	progress               ProgressFunc
	showProgress           bool
}

// ProgressFunc receives a progress report after each training step: the
// number of vocabulary entries added by that step (0 for a rejected
// candidate, usually 1 for an accepted merge).
type ProgressFunc func(vocabAdded int)

func defaultTrainerConfig() *trainerConfig {
	return &trainerConfig{
		vocabSize:      0,
		minFrequency:   0,
		maxTokenLength: 0,
		threshold:      0.9,
		workers:        runtime.NumCPU(),
		cacheSize:      0,
	}
}

// Option configures a Trainer. Options are applied in order, so later
// options override earlier ones.
type Option func(*trainerConfig) error

// WithVocabSize sets the target vocabulary size (special tokens and the
// initial alphabet count toward it).
func WithVocabSize(size int) Option {
	return func(c *trainerConfig) error {
		if size <= 0 {
			return NewTrainError("config", NewConfigError("vocab_size", size, ErrInvalidConfig))
		}
		c.vocabSize = size
		return nil
	}
}

// WithMinFrequency sets the minimum weighted pair frequency below which
// training stops early.
func WithMinFrequency(min int) Option {
	return func(c *trainerConfig) error {
		if min < 0 {
			return NewTrainError("config", NewConfigError("min_frequency", min, ErrInvalidConfig))
		}
		c.minFrequency = min
		return nil
	}
}

// WithMaxTokenLength caps the character length of any token produced by a
// merge. 0 (the default) means unbounded.
func WithMaxTokenLength(max int) Option {
	return func(c *trainerConfig) error {
		if max < 0 {
			return NewTrainError("config", NewConfigError("max_token_length", max, ErrInvalidConfig))
		}
		c.maxTokenLength = max
		return nil
	}
}

// WithThreshold sets the picky-selector intra/extra frequency ratio
// threshold, in [0,1]. Default 0.9.
func WithThreshold(threshold float64) Option {
	return func(c *trainerConfig) error {
		if threshold < 0 || threshold > 1 {
			return NewTrainError("config", NewConfigError("threshold", threshold, ErrInvalidConfig))
		}
		c.threshold = threshold
		return nil
	}
}

// WithSpecialTokens reserves IDs for the given tokens, in order, at the low
// end of the vocabulary before training begins.
func WithSpecialTokens(tokens []string) Option {
	return func(c *trainerConfig) error {
		seen := make(map[string]bool, len(tokens))
		for _, t := range tokens {
			if seen[t] {
				return NewTrainError("config", NewConfigError("special_tokens", t, ErrInvalidConfig))
			}
			seen[t] = true
		}
		c.specialTokens = append([]string(nil), tokens...)
		return nil
	}
}

// WithContinuingSubwordPrefix sets the marker prepended to non-initial
// subwords of a word (e.g. "##").
func WithContinuingSubwordPrefix(prefix string) Option {
	return func(c *trainerConfig) error {
		c.continuingSubwordPrefix = prefix
		return nil
	}
}

// WithEndOfWordSuffix sets the marker appended to the final subword of a word.
func WithEndOfWordSuffix(suffix string) Option {
	return func(c *trainerConfig) error {
		c.endOfWordSuffix = suffix
		return nil
	}
}

// WithUnkToken sets the token emitted for out-of-vocabulary symbols when
// byte_fallback is disabled.
func WithUnkToken(tok string) Option {
	return func(c *trainerConfig) error {
		c.unkToken = tok
		return nil
	}
}

// WithFuseUnk collapses adjacent UNK emissions into a single UNK token.
func WithFuseUnk(fuse bool) Option {
	return func(c *trainerConfig) error {
		c.fuseUnk = fuse
		return nil
	}
}

// WithByteFallback enables replacing out-of-vocabulary characters with the
// token sequence of their UTF-8 bytes. The vocabulary must be seeded with
// all 256 reserved byte tokens (see Vocabulary.ReserveByteTokens).
func WithByteFallback(enabled bool) Option {
	return func(c *trainerConfig) error {
		c.byteFallback = enabled
		return nil
	}
}

// WithIgnoreMerges makes the Encoder skip operation-list application
// entirely, returning the raw initial decomposition. Useful for preserving
// hand-authored vocabulary matches.
func WithIgnoreMerges(ignore bool) Option {
	return func(c *trainerConfig) error {
		c.ignoreMerges = ignore
		return nil
	}
}

// WithWorkers overrides the worker-pool size used for the initial per-word
// decomposition phase of training; pair counting and merge application run
// on the driver goroutine. Defaults to runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(c *trainerConfig) error {
		if n <= 0 {
			return NewTrainError("config", NewConfigError("workers", n, ErrInvalidConfig))
		}
		c.workers = n
		return nil
	}
}

// WithCacheSize validates and records a per-shard encoder cache size on the
// trainer configuration (0, the default, meaning unlimited). The value is
// not carried into the trained Model; an Encoder's cache size is set only by
// WithEncoderCacheSize.
func WithCacheSize(size int) Option {
	return func(c *trainerConfig) error {
		if size < 0 {
			return NewTrainError("config", NewConfigError("cache_size", size, ErrInvalidConfig))
		}
		c.cacheSize = size
		return nil
	}
}

// WithLogger attaches a structured logger for training diagnostics. Nil (the
// default) disables diagnostic logging.
func WithLogger(l Logger) Option {
	return func(c *trainerConfig) error {
		c.logger = l
		return nil
	}
}

// WithProgressFunc attaches a callback invoked after every training step
// with the number of vocabulary entries the step added. Rendering a
// progress bar from this callback is the caller's responsibility; the core
// only reports the raw delta.
func WithProgressFunc(fn ProgressFunc) Option {
	return func(c *trainerConfig) error {
		c.progress = fn
		return nil
	}
}

// WithShowProgress is the boolean companion to WithProgressFunc mirroring
// the show_progress configuration flag: when true and no ProgressFunc is
// set, progress deltas are reported through the logger at Info level
// instead of being dropped silently.
func WithShowProgress(show bool) Option {
	return func(c *trainerConfig) error {
		c.showProgress = show
		return nil
	}
}

// fileConfig mirrors trainerConfig for TOML decoding; BurntSushi/toml needs
// exported fields with toml tags rather than the lower-cased option struct.
type fileConfig struct {
	VocabSize               int      `toml:"vocab_size"`
	MinFrequency             int      `toml:"min_frequency"`
	MaxTokenLength           int      `toml:"max_token_length"`
	Threshold                float64  `toml:"threshold"`
	SpecialTokens            []string `toml:"special_tokens"`
	ContinuingSubwordPrefix  string   `toml:"continuing_subword_prefix"`
	EndOfWordSuffix          string   `toml:"end_of_word_suffix"`
	UnkToken                 string   `toml:"unk_token"`
	FuseUnk                  bool     `toml:"fuse_unk"`
	ByteFallback             bool     `toml:"byte_fallback"`
	IgnoreMerges             bool     `toml:"ignore_merges"`
	Workers                  int      `toml:"workers"`
	CacheSize                int      `toml:"cache_size"`
	ShowProgress             bool     `toml:"show_progress"`
}

// LoadConfig decodes training configuration from TOML read from r and
// returns the equivalent Option slice, ready to pass to NewTrainer. It takes
// a reader rather than a path so the core never performs filesystem I/O
// itself; callers remain responsible for opening the file.
func LoadConfig(r io.Reader) ([]Option, error) {
	var fc fileConfig
	if _, err := toml.NewDecoder(r).Decode(&fc); err != nil {
		return nil, NewModelError("load-config", err)
	}

	var opts []Option
	if fc.VocabSize > 0 {
		opts = append(opts, WithVocabSize(fc.VocabSize))
	}
	if fc.MinFrequency > 0 {
		opts = append(opts, WithMinFrequency(fc.MinFrequency))
	}
	if fc.MaxTokenLength > 0 {
		opts = append(opts, WithMaxTokenLength(fc.MaxTokenLength))
	}
	if fc.Threshold > 0 {
		opts = append(opts, WithThreshold(fc.Threshold))
	}
	if len(fc.SpecialTokens) > 0 {
		opts = append(opts, WithSpecialTokens(fc.SpecialTokens))
	}
	if fc.ContinuingSubwordPrefix != "" {
		opts = append(opts, WithContinuingSubwordPrefix(fc.ContinuingSubwordPrefix))
	}
	if fc.EndOfWordSuffix != "" {
		opts = append(opts, WithEndOfWordSuffix(fc.EndOfWordSuffix))
	}
	if fc.UnkToken != "" {
		opts = append(opts, WithUnkToken(fc.UnkToken))
	}
	opts = append(opts, WithFuseUnk(fc.FuseUnk))
	opts = append(opts, WithByteFallback(fc.ByteFallback))
	opts = append(opts, WithIgnoreMerges(fc.IgnoreMerges))
	opts = append(opts, WithShowProgress(fc.ShowProgress))
	if fc.Workers > 0 {
		opts = append(opts, WithWorkers(fc.Workers))
	}
	if fc.CacheSize > 0 {
		opts = append(opts, WithCacheSize(fc.CacheSize))
	}

	return opts, nil
}
