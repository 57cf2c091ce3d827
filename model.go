package pbpe

import (
	"encoding/json"
	"fmt"
)

// Model is the trained artifact: a Vocabulary plus the Operation List that
// defines how to get from a word's initial decomposition to its final
// tokens, plus the auxiliary marker/fallback configuration needed to
// reproduce the initial decomposition itself. A Model is immutable once
// built and safe for concurrent use by any number of Encoders.
type Model struct {
	Vocab      *Vocabulary
	Operations *OperationList

	ContinuingSubwordPrefix string
	EndOfWordSuffix         string
	UnkToken                string
	FuseUnk                 bool
	ByteFallback            bool
	IgnoreMerges            bool
	MaxTokenLength          int // 0 means unbounded

	byteOnce byteTokenIDs
}

// modelJSON is the wire shape of the outbound model artifact (spec §6).
type modelJSON struct {
	Type                    string         `json:"type"`
	Vocab                   map[string]int `json:"vocab"`
	Operations              []opJSON       `json:"operations"`
	UnkToken                string         `json:"unk_token,omitempty"`
	ContinuingSubwordPrefix string         `json:"continuing_subword_prefix,omitempty"`
	EndOfWordSuffix         string         `json:"end_of_word_suffix,omitempty"`
	FuseUnk                 bool           `json:"fuse_unk"`
	ByteFallback            bool           `json:"byte_fallback"`
	IgnoreMerges            bool           `json:"ignore_merges"`
	MaxTokenLength          int            `json:"max_token_length,omitempty"`
}

// opJSON is the wire shape of one operation. Source is set only for split
// operations, per §6 — a merge's result ID is never serialized directly;
// it is reconstructed on load from the vocabulary entry whose string equals
// the concatenation of its two parts' strings, mirroring how the Trainer
// itself derives a merge's result ID.
type opJSON struct {
	Op     string `json:"op"`
	Parts  [2]int `json:"parts"`
	Source int    `json:"source,omitempty"`
}

// MarshalJSON writes the model artifact in the exact shape described by
// spec §6. This is a data-model serialization, not a format-plumbing
// concern excluded by the non-goals, so encoding/json is used directly
// rather than reaching for a third-party codec.
func (m *Model) MarshalJSON() ([]byte, error) {
	out := modelJSON{
		Type:                    "PBPE",
		Vocab:                   make(map[string]int, m.Vocab.Size()),
		UnkToken:                m.UnkToken,
		ContinuingSubwordPrefix: m.ContinuingSubwordPrefix,
		EndOfWordSuffix:         m.EndOfWordSuffix,
		FuseUnk:                 m.FuseUnk,
		ByteFallback:            m.ByteFallback,
		IgnoreMerges:            m.IgnoreMerges,
		MaxTokenLength:          m.MaxTokenLength,
	}
	for id, tok := range m.Vocab.All() {
		out.Vocab[tok] = id
	}
	for _, op := range m.Operations.All() {
		switch op.Kind {
		case OpMerge:
			out.Operations = append(out.Operations, opJSON{Op: "merge", Parts: op.Parts})
		case OpSplit:
			out.Operations = append(out.Operations, opJSON{Op: "split", Parts: op.Parts, Source: op.Source})
		}
	}
	return json.Marshal(out)
}

// UnmarshalModel decodes a model artifact and validates the invariants
// listed in spec §7 (MalformedModel): vocabulary IDs contiguous from 0,
// every operation references already-defined IDs, and every split source
// was produced by a preceding merge.
func UnmarshalModel(data []byte) (*Model, error) {
	var in modelJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, NewModelError("unmarshal", err)
	}
	if in.Type != "PBPE" {
		return nil, NewModelError("unmarshal", fmt.Errorf("%w: unexpected type %q", ErrMalformedModel, in.Type))
	}

	byID := make([]string, len(in.Vocab))
	seen := make([]bool, len(in.Vocab))
	for tok, id := range in.Vocab {
		if id < 0 || id >= len(in.Vocab) {
			return nil, NewModelError("unmarshal", fmt.Errorf("%w: id %d not contiguous with vocab size %d", ErrMalformedModel, id, len(in.Vocab)))
		}
		if seen[id] {
			return nil, NewModelError("unmarshal", fmt.Errorf("%w: duplicate id %d", ErrMalformedModel, id))
		}
		seen[id] = true
		byID[id] = tok
	}
	for id, ok := range seen {
		if !ok {
			return nil, NewModelError("unmarshal", fmt.Errorf("%w: id %d missing from vocab", ErrMalformedModel, id))
		}
	}

	vocab := NewVocabulary()
	for _, tok := range byID {
		vocab.Add(tok)
	}

	merged := make(map[int]bool)
	ops := NewOperationList()
	for _, op := range in.Operations {
		switch op.Op {
		case "merge":
			a, b := op.Parts[0], op.Parts[1]
			if a < 0 || a >= len(byID) || b < 0 || b >= len(byID) {
				return nil, NewModelError("unmarshal", fmt.Errorf("%w: merge references undefined id", ErrMalformedModel))
			}
			result, ok := in.Vocab[byID[a]+byID[b]]
			if !ok {
				return nil, NewModelError("unmarshal", fmt.Errorf("%w: merge result %q not in vocab", ErrMalformedModel, byID[a]+byID[b]))
			}
			ops.Append(Merge(a, b, result))
			merged[result] = true
		case "split":
			if !merged[op.Source] {
				return nil, NewModelError("unmarshal", fmt.Errorf("%w: split source %d was never merged", ErrMalformedModel, op.Source))
			}
			a, b := op.Parts[0], op.Parts[1]
			if a < 0 || a >= len(byID) || b < 0 || b >= len(byID) {
				return nil, NewModelError("unmarshal", fmt.Errorf("%w: split references undefined id", ErrMalformedModel))
			}
			ops.Append(Split(op.Source, a, b))
		default:
			return nil, NewModelError("unmarshal", fmt.Errorf("%w: unknown operation %q", ErrMalformedModel, op.Op))
		}
	}

	return &Model{
		Vocab:                   vocab,
		Operations:              ops,
		ContinuingSubwordPrefix: in.ContinuingSubwordPrefix,
		EndOfWordSuffix:         in.EndOfWordSuffix,
		UnkToken:                in.UnkToken,
		FuseUnk:                 in.FuseUnk,
		ByteFallback:            in.ByteFallback,
		IgnoreMerges:            in.IgnoreMerges,
		MaxTokenLength:          in.MaxTokenLength,
	}, nil
}
