package pbpe

import (
	"errors"
	"strings"
	"testing"
)

// TestOptionRejectsInvalidValues checks that each Option validates its
// argument eagerly and returns an error wrapping ErrInvalidConfig rather than
// deferring to Train.
func TestOptionRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		opt  Option
	}{
		{"vocab size zero", WithVocabSize(0)},
		{"vocab size negative", WithVocabSize(-1)},
		{"min frequency negative", WithMinFrequency(-1)},
		{"max token length negative", WithMaxTokenLength(-1)},
		{"threshold below zero", WithThreshold(-0.1)},
		{"threshold above one", WithThreshold(1.1)},
		{"workers zero", WithWorkers(0)},
		{"workers negative", WithWorkers(-4)},
		{"cache size negative", WithCacheSize(-1)},
		{"duplicate special tokens", WithSpecialTokens([]string{"[UNK]", "[PAD]", "[UNK]"})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultTrainerConfig()
			err := tc.opt(cfg)
			if err == nil {
				t.Fatal("want an error, got nil")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

// TestOptionAcceptsBoundaryValues checks the inclusive ends of each range
// Option are accepted, not just the interior.
func TestOptionAcceptsBoundaryValues(t *testing.T) {
	cases := []struct {
		name string
		opt  Option
	}{
		{"threshold zero", WithThreshold(0)},
		{"threshold one", WithThreshold(1)},
		{"min frequency zero", WithMinFrequency(0)},
		{"max token length zero", WithMaxTokenLength(0)},
		{"cache size zero", WithCacheSize(0)},
		{"workers one", WithWorkers(1)},
		{"vocab size one", WithVocabSize(1)},
		{"empty special tokens", WithSpecialTokens(nil)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultTrainerConfig()
			if err := tc.opt(cfg); err != nil {
				t.Fatalf("want no error, got %v", err)
			}
		})
	}
}

// TestLoadConfigDecodesTOML checks LoadConfig against a representative TOML
// document, asserting on the resulting trainerConfig rather than the Option
// slice's length (Options are opaque closures).
func TestLoadConfigDecodesTOML(t *testing.T) {
	doc := `
vocab_size = 8000
min_frequency = 2
max_token_length = 16
threshold = 0.75
special_tokens = ["[UNK]", "[PAD]"]
continuing_subword_prefix = "##"
end_of_word_suffix = "</w>"
unk_token = "[UNK]"
fuse_unk = true
byte_fallback = true
ignore_merges = false
workers = 4
cache_size = 1024
show_progress = true
`
	opts, err := LoadConfig(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	cfg := defaultTrainerConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			t.Fatalf("applying decoded option: %v", err)
		}
	}

	if cfg.vocabSize != 8000 {
		t.Errorf("vocabSize = %d, want 8000", cfg.vocabSize)
	}
	if cfg.minFrequency != 2 {
		t.Errorf("minFrequency = %d, want 2", cfg.minFrequency)
	}
	if cfg.maxTokenLength != 16 {
		t.Errorf("maxTokenLength = %d, want 16", cfg.maxTokenLength)
	}
	if cfg.threshold != 0.75 {
		t.Errorf("threshold = %v, want 0.75", cfg.threshold)
	}
	if len(cfg.specialTokens) != 2 || cfg.specialTokens[0] != "[UNK]" || cfg.specialTokens[1] != "[PAD]" {
		t.Errorf("specialTokens = %v, want [[UNK] [PAD]]", cfg.specialTokens)
	}
	if cfg.continuingSubwordPrefix != "##" {
		t.Errorf("continuingSubwordPrefix = %q, want %q", cfg.continuingSubwordPrefix, "##")
	}
	if cfg.endOfWordSuffix != "</w>" {
		t.Errorf("endOfWordSuffix = %q, want %q", cfg.endOfWordSuffix, "</w>")
	}
	if cfg.unkToken != "[UNK]" {
		t.Errorf("unkToken = %q, want %q", cfg.unkToken, "[UNK]")
	}
	if !cfg.fuseUnk {
		t.Error("fuseUnk = false, want true")
	}
	if !cfg.byteFallback {
		t.Error("byteFallback = false, want true")
	}
	if cfg.ignoreMerges {
		t.Error("ignoreMerges = true, want false")
	}
	if cfg.workers != 4 {
		t.Errorf("workers = %d, want 4", cfg.workers)
	}
	if cfg.cacheSize != 1024 {
		t.Errorf("cacheSize = %d, want 1024", cfg.cacheSize)
	}
	if !cfg.showProgress {
		t.Error("showProgress = false, want true")
	}
}

// TestLoadConfigRejectsMalformedTOML checks that a syntactically invalid
// document surfaces a decode error rather than a zero-value config.
func TestLoadConfigRejectsMalformedTOML(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("vocab_size = [this is not valid toml"))
	if err == nil {
		t.Fatal("want a decode error, got nil")
	}
}

// TestLoadConfigOmitsZeroValueFields checks that fields left at their TOML
// zero value don't override trainerConfig defaults with something a real
// caller didn't ask for (e.g. workers=0 must not clobber NumCPU()).
func TestLoadConfigOmitsZeroValueFields(t *testing.T) {
	opts, err := LoadConfig(strings.NewReader(`vocab_size = 100`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	cfg := defaultTrainerConfig()
	wantWorkers := cfg.workers
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			t.Fatalf("applying decoded option: %v", err)
		}
	}

	if cfg.workers != wantWorkers {
		t.Errorf("workers = %d, want unchanged default %d", cfg.workers, wantWorkers)
	}
	if cfg.vocabSize != 100 {
		t.Errorf("vocabSize = %d, want 100", cfg.vocabSize)
	}
}
